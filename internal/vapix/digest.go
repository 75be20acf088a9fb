package vapix

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"
)

// Authentication schemes understood by the pipeline.
const (
	schemeDigest = "digest"
	schemeBasic  = "basic"
)

// Digest algorithms, strongest first. Selection walks this list in order.
var digestAlgorithms = []string{"SHA-256", "SHA-256-sess", "MD5", "MD5-sess"}

// challenge is one parsed WWW-Authenticate challenge.
type challenge struct {
	scheme    string // lower-cased
	realm     string
	nonce     string
	opaque    string
	algorithm string // canonical spelling from digestAlgorithms
	qop       []string
	stale     bool
	params    map[string]string
}

// parseChallenges parses every challenge in the given WWW-Authenticate header
// values. Challenges it cannot make sense of are dropped.
func parseChallenges(values []string) []challenge {
	var out []challenge
	for _, v := range values {
		out = append(out, parseChallengeHeader(v)...)
	}
	return out
}

// parseChallengeHeader splits one header value that may hold several
// comma-separated challenges, e.g. `Digest realm="a", qop="auth", Basic realm="a"`.
func parseChallengeHeader(s string) []challenge {
	var (
		out []challenge
		cur *challenge
		p   = headerParser{s: s}
	)

	for {
		p.skipSpaceAndCommas()
		if p.done() {
			break
		}

		tok := p.token()
		if tok == "" {
			// Garbage we can't tokenize; stop rather than loop forever.
			break
		}

		p.skipSpace()
		if p.peek() == '=' {
			p.next()
			p.skipSpace()
			var val string
			if p.peek() == '"' {
				val = p.quoted()
			} else {
				val = p.value()
			}
			if cur != nil {
				cur.params[strings.ToLower(tok)] = val
			}
			continue
		}

		// A bare token starts a new challenge. Token68 credentials (Basic
		// does not use them in challenges) are ignored.
		if cur != nil {
			out = append(out, *cur)
		}
		cur = &challenge{scheme: strings.ToLower(tok), params: map[string]string{}}
	}
	if cur != nil {
		out = append(out, *cur)
	}

	for i := range out {
		out[i].fill()
	}
	return out
}

func (c *challenge) fill() {
	c.realm = c.params["realm"]
	c.nonce = c.params["nonce"]
	c.opaque = c.params["opaque"]
	c.stale = strings.EqualFold(c.params["stale"], "true")

	if c.scheme != schemeDigest {
		return
	}

	alg := c.params["algorithm"]
	if alg == "" {
		alg = "MD5"
	}
	c.algorithm = ""
	for _, known := range digestAlgorithms {
		if strings.EqualFold(alg, known) {
			c.algorithm = known
		}
	}

	if raw, ok := c.params["qop"]; ok {
		for _, q := range strings.Split(raw, ",") {
			if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
				c.qop = append(c.qop, q)
			}
		}
	}
}

// supported reports whether we can answer the challenge.
func (c challenge) supported() bool {
	switch c.scheme {
	case schemeBasic:
		return true
	case schemeDigest:
		if c.algorithm == "" || c.nonce == "" {
			return false
		}
		// A qop list with neither auth nor auth-int is unanswerable.
		return c.qop == nil || c.chooseQop() != ""
	}
	return false
}

func (c challenge) chooseQop() string {
	for _, want := range []string{"auth", "auth-int"} {
		for _, q := range c.qop {
			if q == want {
				return want
			}
		}
	}
	return ""
}

// selectChallenge picks the strongest supported challenge: any digest beats
// Basic, and among digests the order of digestAlgorithms decides.
func selectChallenge(challenges []challenge) (challenge, bool) {
	best, bestRank := challenge{}, -1
	for _, c := range challenges {
		if !c.supported() {
			continue
		}
		if r := c.rank(); r > bestRank {
			best, bestRank = c, r
		}
	}
	return best, bestRank >= 0
}

func (c challenge) rank() int {
	if c.scheme == schemeBasic {
		return 0
	}
	for i, alg := range digestAlgorithms {
		if alg == c.algorithm {
			return len(digestAlgorithms) - i
		}
	}
	return -1
}

// authorization computes the Authorization header value answering c.
func (c challenge) authorization(creds Credentials, method, uri string, body []byte) string {
	if c.scheme == schemeBasic {
		return basicAuthorization(creds)
	}
	cnonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return c.digestAuthorization(creds, method, uri, body, cnonce, 1)
}

func basicAuthorization(creds Credentials) string {
	raw := creds.Username + ":" + creds.Password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// digestAuthorization builds the Digest credentials header. cnonce and nc are
// parameters so the computation is reproducible in tests.
func (c challenge) digestAuthorization(creds Credentials, method, uri string, body []byte, cnonce string, nc uint32) string {
	qop := ""
	if c.qop != nil {
		qop = c.chooseQop()
	}
	ncValue := fmt.Sprintf("%08x", nc)
	response := digestResponse(c.algorithm, creds, c.realm, c.nonce, method, uri, body, qop, ncValue, cnonce)

	var b strings.Builder
	fmt.Fprintf(&b, `Digest username=%s, realm=%s, nonce=%s, uri=%s, algorithm=%s, response=%s`,
		quote(creds.Username), quote(c.realm), quote(c.nonce), quote(uri), c.algorithm, quote(response))
	if c.opaque != "" {
		fmt.Fprintf(&b, `, opaque=%s`, quote(c.opaque))
	}
	if qop != "" {
		fmt.Fprintf(&b, `, qop=%s, nc=%s, cnonce=%s`, qop, ncValue, quote(cnonce))
	}
	return b.String()
}

// digestResponse implements the request-digest of RFC 7616 section 3.4.1.
// An empty qop selects the RFC 2069 compatibility form.
func digestResponse(algorithm string, creds Credentials, realm, nonce, method, uri string, body []byte, qop, nc, cnonce string) string {
	newHash := md5.New
	if strings.HasPrefix(algorithm, "SHA-256") {
		newHash = sha256.New
	}
	h := func(parts ...string) string {
		return hashHex(newHash(), strings.Join(parts, ":"))
	}

	ha1 := h(creds.Username, realm, creds.Password)
	if strings.HasSuffix(algorithm, "-sess") {
		ha1 = h(ha1, nonce, cnonce)
	}

	ha2 := h(method, uri)
	if qop == "auth-int" {
		ha2 = h(method, uri, hashHex(newHash(), string(body)))
	}

	if qop == "" {
		return h(ha1, nonce, ha2)
	}
	return h(ha1, nonce, nc, cnonce, qop, ha2)
}

// quote renders s as an HTTP quoted-string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func hashHex(h hash.Hash, s string) string {
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// headerParser is a small cursor over an auth header value.
type headerParser struct {
	s   string
	pos int
}

func (p *headerParser) done() bool { return p.pos >= len(p.s) }

func (p *headerParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.s[p.pos]
}

func (p *headerParser) next() { p.pos++ }

func (p *headerParser) skipSpace() {
	for !p.done() && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *headerParser) skipSpaceAndCommas() {
	for !p.done() && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == ',') {
		p.pos++
	}
}

func (p *headerParser) token() string {
	start := p.pos
	for !p.done() {
		c := p.s[p.pos]
		if c == ' ' || c == '\t' || c == ',' || c == '=' || c == '"' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

// value reads an unquoted parameter value. Unlike token it keeps '=' so
// base64 padding survives.
func (p *headerParser) value() string {
	start := p.pos
	for !p.done() {
		c := p.s[p.pos]
		if c == ' ' || c == '\t' || c == ',' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

// quoted reads a quoted-string starting at the opening quote, resolving
// backslash escapes. An unterminated string runs to the end of input.
func (p *headerParser) quoted() string {
	p.next()
	var b strings.Builder
	for !p.done() {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '\\':
			if !p.done() {
				b.WriteByte(p.s[p.pos])
				p.pos++
			}
		case '"':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
