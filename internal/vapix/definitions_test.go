package vapix

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/muurk/vapix/internal/transport"
)

func loadDefinitions(t *testing.T) *ParameterDefinitions {
	t.Helper()
	data, err := os.ReadFile("testdata/definitions.xml")
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}

	c, dev := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(200, "text/xml; charset=ISO-8859-1", string(data)), nil
	})
	defs, err := c.Parameters().ListDefinitions(context.Background(), "root.Brand", "root.Network", "root.Image")
	if err != nil {
		t.Fatalf("ListDefinitions() error = %v", err)
	}

	want := "action=listdefinitions&group=root.Brand%2Croot.Network%2Croot.Image&listformat=xmlschema"
	if got := dev.requests[0].URL.RawQuery; got != want {
		t.Errorf("query = %s, want %s", got, want)
	}
	return defs
}

func TestListDefinitions_Document(t *testing.T) {
	defs := loadDefinitions(t)

	if defs.SchemaVersion != "1.0" || defs.Model != "AXIS M1065-L" || defs.FirmwareVersion != "9.80.3.8" {
		t.Errorf("header = %q/%q/%q", defs.SchemaVersion, defs.Model, defs.FirmwareVersion)
	}
	root := defs.Group("root")
	if root == nil {
		t.Fatal("root group missing")
	}
	if img := root.Group("Image"); img == nil || img.MaxGroups != 4 {
		t.Errorf("Image group = %+v, want MaxGroups 4", img)
	}
	if root.Group("Nope") != nil {
		t.Error("Group(Nope) should be nil")
	}
}

func TestListDefinitions_Types(t *testing.T) {
	defs := loadDefinitions(t)

	brand := defs.Lookup("root.Brand.Brand")
	if brand == nil || brand.Value != "AXIS" || !brand.HasValue || brand.NiceName != "Brand" {
		t.Fatalf("root.Brand.Brand = %+v", brand)
	}
	if brand.Type.Kind != KindString || !brand.Type.ReadOnly || brand.Type.MaxLen != nil {
		t.Errorf("Brand type = %+v", brand.Type)
	}
	if brand.SecurityLevel == nil || brand.SecurityLevel.String() != "7404" || brand.SecurityLevel.Delete != AccessOperator {
		t.Errorf("Brand security level = %v", brand.SecurityLevel)
	}

	if url := defs.Lookup("root.Brand.WebURL"); url.Type.MaxLen == nil || *url.Type.MaxLen != 64 {
		t.Errorf("WebURL maxlen = %v", url.Type.MaxLen)
	}

	port := defs.Lookup("root.Network.HTTPPort")
	if port.Type.Kind != KindInt {
		t.Fatalf("HTTPPort kind = %q", port.Type.Kind)
	}
	if port.Type.Min == nil || *port.Type.Min != 1 || port.Type.Max == nil || *port.Type.Max != 65535 {
		t.Errorf("HTTPPort limits = %v..%v", port.Type.Min, port.Type.Max)
	}
	if len(port.Type.Ranges) != 1 || port.Type.Ranges[0] != "1-65535" {
		t.Errorf("HTTPPort ranges = %v", port.Type.Ranges)
	}

	res := defs.Lookup("root.Image.I0.Resolution")
	if res.Type.Kind != KindEnum || len(res.Type.Entries) != 2 {
		t.Fatalf("Resolution type = %+v", res.Type)
	}
	if res.Type.Entries[1] != (EnumEntry{Value: "1280x720", NiceValue: "720p"}) {
		t.Errorf("Entries[1] = %+v", res.Type.Entries[1])
	}
	if res.SecurityLevel != nil {
		t.Errorf("malformed security level should be dropped, got %v", res.SecurityLevel)
	}

	enabled := defs.Lookup("root.Image.I0.Enabled")
	if v, ok := enabled.AsBool(); !ok || !v {
		t.Errorf("Enabled.AsBool() = %v, %v", v, ok)
	}
	if _, ok := port.AsBool(); ok {
		t.Error("AsBool on an int parameter should fail")
	}
}

func TestListDefinitions_UnknownTypeKeepsConstraint(t *testing.T) {
	defs := loadDefinitions(t)

	overlay := defs.Lookup("root.Image.I0.Overlay")
	if overlay == nil {
		t.Fatal("Overlay missing")
	}
	if overlay.HasValue {
		t.Error("Overlay has no value attribute")
	}
	if overlay.Type.Kind != KindUnknown || !overlay.Type.Hidden {
		t.Errorf("Overlay type = %+v", overlay.Type)
	}
	if !strings.Contains(overlay.Type.Constraint, `<hologram depth="3"`) {
		t.Errorf("Constraint = %q", overlay.Type.Constraint)
	}
}

func TestListDefinitions_Flatten(t *testing.T) {
	flat := loadDefinitions(t).Flatten()

	for _, path := range []string{
		"root.Brand.Brand",
		"root.Brand.WebURL",
		"root.Network.HTTPPort",
		"root.Network.Location",
		"root.Image.I0.Resolution",
		"root.Image.I0.Enabled",
		"root.Image.I0.Overlay",
	} {
		if flat[path] == nil {
			t.Errorf("Flatten() missing %s", path)
		}
	}
	if len(flat) != 7 {
		t.Errorf("Flatten() has %d entries, want 7", len(flat))
	}
}

func TestListDefinitions_Latin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<parameterDefinitions version=\"1.0\"><group name=\"root\"><group name=\"Network\">" +
		"<parameter name=\"Location\" value=\"Caf\xe9\"><type><string/></type></parameter>" +
		"</group></group></parameterDefinitions>"

	c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(200, "text/xml", doc), nil
	})
	defs, err := c.Parameters().ListDefinitions(context.Background())
	if err != nil {
		t.Fatalf("ListDefinitions() error = %v", err)
	}
	if got := defs.Lookup("root.Network.Location").Value; got != "Café" {
		t.Errorf("Location = %q, want Café", got)
	}
}

func TestListDefinitions_BadDocument(t *testing.T) {
	c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(200, "text/xml", "<parameterDefinitions><group"), nil
	})
	if _, err := c.Parameters().ListDefinitions(context.Background()); !IsDecodeError(err) {
		t.Errorf("ListDefinitions() error = %v, want decode error", err)
	}
}

func TestParseSecurityLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"7404", false},
		{"0000", false},
		{"7714", false},
		{"740", true},
		{"74045", true},
		{"7424", true},
		{"", true},
	}
	for _, tt := range tests {
		level, err := ParseSecurityLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSecurityLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && level.String() != tt.in {
			t.Errorf("ParseSecurityLevel(%q).String() = %s", tt.in, level)
		}
	}
}
