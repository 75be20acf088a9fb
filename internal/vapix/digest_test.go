package vapix

import (
	"strings"
	"testing"
)

func TestDigestResponse_RFC2617(t *testing.T) {
	creds := Credentials{Username: "Mufasa", Password: "Circle Of Life"}

	got := digestResponse("MD5", creds, "testrealm@host.com", "dcd98b7102dd2f0e8b11d0f600bfb0c093",
		"GET", "/dir/index.html", nil, "auth", "00000001", "0a4f113b")

	if want := "6629fae49393a05397450978507c4ef1"; got != want {
		t.Errorf("digestResponse() = %s, want %s", got, want)
	}
}

func TestDigestResponse_RFC7616(t *testing.T) {
	creds := Credentials{Username: "Mufasa", Password: "Circle of Life"}
	const (
		realm  = "http-auth@example.org"
		nonce  = "7ypf/xlj9XXwfDPEoM4URrv/xwf94BcCAzFZH4GiTo0v"
		cnonce = "f2/wE4q74E6zIJEtWaHKaf5wv/H5QzzpXusqGemxURZJ"
	)

	tests := []struct {
		algorithm string
		want      string
	}{
		{"MD5", "8ca523f5e9506fed4657c9700eebdbec"},
		{"SHA-256", "753927fa0e85d155564e2e272a28d1802ca10daf4496794697cf8db5856cb6c1"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			got := digestResponse(tt.algorithm, creds, realm, nonce, "GET", "/dir/index.html", nil, "auth", "00000001", cnonce)
			if got != tt.want {
				t.Errorf("digestResponse() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDigestResponse_Variants(t *testing.T) {
	creds := Credentials{Username: "root", Password: "pass"}
	base := digestResponse("MD5", creds, "r", "n", "GET", "/x", nil, "auth", "00000001", "c")

	if got := digestResponse("MD5-sess", creds, "r", "n", "GET", "/x", nil, "auth", "00000001", "c"); got == base {
		t.Error("MD5-sess should differ from MD5")
	}
	if got := digestResponse("MD5", creds, "r", "n", "GET", "/x", []byte("body"), "auth-int", "00000001", "c"); got == base {
		t.Error("auth-int should differ from auth")
	}
	if got := digestResponse("MD5", creds, "r", "n", "GET", "/x", nil, "", "", ""); got == base {
		t.Error("legacy digest should differ from qop=auth")
	}
	if got := digestResponse("SHA-256-sess", creds, "r", "n", "GET", "/x", nil, "auth", "00000001", "c"); len(got) != 64 {
		t.Errorf("SHA-256-sess response length = %d, want 64", len(got))
	}
}

func TestParseChallenges(t *testing.T) {
	header := `Digest realm="AXIS_ACCC8E000001", nonce="abc==", algorithm=SHA-256, qop="auth,auth-int", opaque="o\"q", Basic realm="AXIS_ACCC8E000001"`

	got := parseChallenges([]string{header})
	if len(got) != 2 {
		t.Fatalf("parseChallenges() returned %d challenges, want 2", len(got))
	}

	d := got[0]
	if d.scheme != schemeDigest {
		t.Errorf("scheme = %q, want digest", d.scheme)
	}
	if d.realm != "AXIS_ACCC8E000001" {
		t.Errorf("realm = %q", d.realm)
	}
	if d.nonce != "abc==" {
		t.Errorf("nonce = %q, want abc==", d.nonce)
	}
	if d.algorithm != "SHA-256" {
		t.Errorf("algorithm = %q, want SHA-256", d.algorithm)
	}
	if d.opaque != `o"q` {
		t.Errorf("opaque = %q, want o\"q", d.opaque)
	}
	if len(d.qop) != 2 || d.qop[0] != "auth" || d.qop[1] != "auth-int" {
		t.Errorf("qop = %v", d.qop)
	}

	if got[1].scheme != schemeBasic || got[1].realm != "AXIS_ACCC8E000001" {
		t.Errorf("second challenge = %+v", got[1])
	}
}

func TestParseChallenges_UnquotedBase64Nonce(t *testing.T) {
	got := parseChallenges([]string{`Digest realm=device, nonce=YWJj==, qop=auth`})
	if len(got) != 1 {
		t.Fatalf("got %d challenges, want 1", len(got))
	}
	if got[0].nonce != "YWJj==" {
		t.Errorf("nonce = %q, want YWJj==", got[0].nonce)
	}
	if got[0].algorithm != "MD5" {
		t.Errorf("algorithm = %q, want default MD5", got[0].algorithm)
	}
}

func TestParseChallenges_Garbage(t *testing.T) {
	for _, header := range []string{"", ",,,", `="x"`, `Digest realm="unterminated`} {
		// Must not panic or hang.
		_ = parseChallenges([]string{header})
	}
}

func TestSelectChallenge(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		wantScheme string
		wantAlg    string
		wantOK     bool
	}{
		{
			name: "strongest digest wins",
			headers: []string{
				`Digest realm="r", nonce="n", algorithm=MD5, qop="auth"`,
				`Digest realm="r", nonce="n", algorithm=SHA-256, qop="auth"`,
				`Basic realm="r"`,
			},
			wantScheme: schemeDigest, wantAlg: "SHA-256", wantOK: true,
		},
		{
			name:       "basic only",
			headers:    []string{`Basic realm="r"`},
			wantScheme: schemeBasic, wantOK: true,
		},
		{
			name:       "unsupported algorithm skipped",
			headers:    []string{`Digest realm="r", nonce="n", algorithm=SHA-512-256`, `Digest realm="r", nonce="n", algorithm=MD5-sess, qop=auth`},
			wantScheme: schemeDigest, wantAlg: "MD5-sess", wantOK: true,
		},
		{
			name:    "unknown qop",
			headers: []string{`Digest realm="r", nonce="n", qop="auth-conf"`},
			wantOK:  false,
		},
		{
			name:    "missing nonce",
			headers: []string{`Digest realm="r"`},
			wantOK:  false,
		},
		{
			name:    "unknown scheme",
			headers: []string{`Negotiate`},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := selectChallenge(parseChallenges(tt.headers))
			if ok != tt.wantOK {
				t.Fatalf("selectChallenge() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.scheme != tt.wantScheme || got.algorithm != tt.wantAlg {
				t.Errorf("selectChallenge() = %s/%s, want %s/%s", got.scheme, got.algorithm, tt.wantScheme, tt.wantAlg)
			}
		})
	}
}

func TestDigestAuthorization_Header(t *testing.T) {
	ch := parseChallenges([]string{`Digest realm="testrealm@host.com", qop="auth,auth-int", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", opaque="5ccc069c403ebaf9f0171e9517f40e41"`})[0]
	creds := Credentials{Username: "Mufasa", Password: "Circle Of Life"}

	got := ch.digestAuthorization(creds, "GET", "/dir/index.html", nil, "0a4f113b", 1)

	for _, want := range []string{
		`Digest username="Mufasa"`,
		`realm="testrealm@host.com"`,
		`uri="/dir/index.html"`,
		`algorithm=MD5`,
		`response="6629fae49393a05397450978507c4ef1"`,
		`opaque="5ccc069c403ebaf9f0171e9517f40e41"`,
		`qop=auth,`,
		`nc=00000001`,
		`cnonce="0a4f113b"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Authorization %q missing %q", got, want)
		}
	}
}

func TestDigestAuthorization_Legacy(t *testing.T) {
	ch := parseChallenges([]string{`Digest realm="r", nonce="n"`})[0]
	got := ch.digestAuthorization(Credentials{Username: "root", Password: "pass"}, "GET", "/", nil, "c", 1)

	if strings.Contains(got, "qop=") || strings.Contains(got, "cnonce=") {
		t.Errorf("legacy Authorization should not carry qop/cnonce: %q", got)
	}
}

func TestBasicAuthorization(t *testing.T) {
	got := basicAuthorization(Credentials{Username: "Aladdin", Password: "open sesame"})
	if want := "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ=="; got != want {
		t.Errorf("basicAuthorization() = %s, want %s", got, want)
	}
}
