package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/muurk/vapix/internal/config"
	"github.com/muurk/vapix/internal/vapix"
)

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs([]string{"Network.HTTPPort=8080", "Image.I0.Text.String=a=b", "Brand.ProdVariant="})
	if err != nil {
		t.Fatalf("parsePairs() error = %v", err)
	}
	want := []vapix.Pair{
		{Key: "Network.HTTPPort", Value: "8080"},
		{Key: "Image.I0.Text.String", Value: "a=b"},
		{Key: "Brand.ProdVariant", Value: ""},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("parsePairs() = %v, want %v", pairs, want)
	}

	for _, bad := range []string{"Network.HTTPPort", "=8080", " =x"} {
		if _, err := parsePairs([]string{bad}); err == nil {
			t.Errorf("parsePairs(%q) error = nil", bad)
		}
	}
}

func TestPairGroups(t *testing.T) {
	got := pairGroups([]vapix.Pair{
		{Key: "Network.HTTPPort"},
		{Key: "root.Network.HTTPSPort"},
		{Key: "Image.I0.Appearance.Resolution"},
	})
	want := []string{"root.Network", "root.Image.I0.Appearance"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pairGroups() = %v, want %v", got, want)
	}
}

func testDefinitions() *vapix.ParameterDefinitions {
	min, max := int64(1), int64(65535)
	maxLen := 8
	return &vapix.ParameterDefinitions{Groups: []*vapix.ParameterGroup{{
		Name: "root",
		Groups: []*vapix.ParameterGroup{
			{Name: "Network", Parameters: []*vapix.ParameterDefinition{
				{Name: "HTTPPort", Type: &vapix.ParameterType{Kind: vapix.KindInt, Min: &min, Max: &max}},
				{Name: "Hostname", Type: &vapix.ParameterType{Kind: vapix.KindString, MaxLen: &maxLen}},
				{Name: "MAC", Type: &vapix.ParameterType{Kind: vapix.KindString, ReadOnly: true}},
				{Name: "Untyped"},
			}},
			{Name: "Image", Parameters: []*vapix.ParameterDefinition{
				{Name: "Resolution", Type: &vapix.ParameterType{Kind: vapix.KindEnum, Entries: []vapix.EnumEntry{{Value: "1920x1080"}, {Value: "1280x720"}}}},
				{Name: "Enabled", Type: &vapix.ParameterType{Kind: vapix.KindBool, TrueValue: "yes", FalseValue: "no"}},
			}},
		},
	}}}
}

func TestCheckPair(t *testing.T) {
	defs := testDefinitions()

	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"Network.HTTPPort", "8080", false},
		{"root.Network.HTTPPort", "65535", false},
		{"Network.HTTPPort", "0", true},
		{"Network.HTTPPort", "70000", true},
		{"Network.HTTPPort", "eighty", true},
		{"Network.Hostname", "cam01", false},
		{"Network.Hostname", "camera-lobby", true},
		{"Network.MAC", "00:11", true},
		{"Network.Untyped", "anything", false},
		{"Network.Missing", "x", true},
		{"Image.Resolution", "1280x720", false},
		{"Image.Resolution", "640x480", true},
		{"Image.Enabled", "no", false},
		{"Image.Enabled", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := checkPair(defs, vapix.Pair{Key: tt.key, Value: tt.value})
			if (err != nil) != tt.wantErr {
				t.Errorf("checkPair() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDescribeType(t *testing.T) {
	defs := testDefinitions()

	tests := map[string]string{
		"root.Network.HTTPPort": "int 1..65535",
		"root.Network.MAC":      "string (ro)",
		"root.Image.Resolution": "enum {1920x1080|1280x720}",
		"root.Image.Enabled":    "bool yes/no",
		"root.Network.Untyped":  "",
		"root.Network.Hostname": "string",
	}
	for path, want := range tests {
		if got := describeType(defs.Lookup(path).Type); got != want {
			t.Errorf("describeType(%s) = %q, want %q", path, got, want)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	tests := map[uint64]string{
		0:          "0 B",
		1023:       "1023 B",
		1024:       "1.0 KiB",
		116109036:  "110.7 MiB",
		1610612736: "1.5 GiB",
	}
	for n, want := range tests {
		if got := humanBytes(n); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestResolveDevice(t *testing.T) {
	reg := config.NewRegistry()
	if _, err := reg.AddDevice("lobby", "https://operator@cam.local:8443"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ref                         string
		wantName, wantURL, wantUser string
		wantErr                     bool
	}{
		{"lobby", "lobby", "https://cam.local:8443", "operator", false},
		{"192.168.0.90", "", "http://192.168.0.90", "root", false},
		{"http://admin@192.168.0.90", "", "http://admin@192.168.0.90", "admin", false},
		{"http://", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			name, rawURL, user, err := resolveDevice(reg, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveDevice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if name != tt.wantName || rawURL != tt.wantURL || user != tt.wantUser {
				t.Errorf("resolveDevice() = %q, %q, %q", name, rawURL, user)
			}
		})
	}
}

func TestTroubleshootingFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"auth", vapix.NewAuthError("denied", 401), true},
		{"transport", vapix.NewTransportError("failed", errors.New("refused")), true},
		{"unsupported", vapix.NewUnsupportedError("no disks"), true},
		{"protocol", vapix.NewProtocolError("rejected", []byte("# Error")), true},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(troubleshootingFor(tt.err)) > 0; got != tt.want {
				t.Errorf("troubleshootingFor() has tips = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTypedClient(t *testing.T) {
	if typedClient(vapix.APIParameters) != "params" || typedClient("mqtt-client") != "" {
		t.Error("typedClient() mapping wrong")
	}
}
