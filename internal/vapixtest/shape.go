package vapixtest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/muurk/vapix/internal/transport"
)

// Shape is the canonical form of a request used for replay matching. Two
// requests with equal shapes are the same interaction even when their query
// order or header spelling differ.
type Shape struct {
	Method      string
	Path        string
	Query       string // parameters sorted by name
	Accept      string
	ContentType string
	BodyDigest  string // sha256 of the body, empty when there is none
}

func (s Shape) String() string {
	var b strings.Builder
	b.WriteString(s.Method)
	b.WriteByte(' ')
	b.WriteString(s.Path)
	if s.Query != "" {
		b.WriteByte('?')
		b.WriteString(s.Query)
	}
	if s.Accept != "" {
		fmt.Fprintf(&b, " accept=%s", s.Accept)
	}
	if s.ContentType != "" {
		fmt.Fprintf(&b, " content-type=%s", s.ContentType)
	}
	if s.BodyDigest != "" {
		fmt.Fprintf(&b, " body=sha256:%.12s", s.BodyDigest)
	}
	return b.String()
}

// ShapeOf computes the shape of a live request.
func ShapeOf(req *transport.Request) Shape {
	return newShape(req.Method, req.URL.Path, req.URL.RawQuery,
		req.Header.Get("Accept"), req.Header.Get("Content-Type"), req.Body)
}

// Shape computes the shape of a recorded request.
func (r RecordedRequest) Shape() (Shape, error) {
	body, err := r.Body.Bytes()
	if err != nil {
		return Shape{}, err
	}
	return newShape(r.Method, r.Path, r.Query,
		header(r.Headers, "Accept"), header(r.Headers, "Content-Type"), body), nil
}

func newShape(method, path, query, accept, contentType string, body []byte) Shape {
	s := Shape{
		Method:      strings.ToUpper(method),
		Path:        path,
		Query:       canonicalQuery(query),
		Accept:      canonicalMediaType(accept),
		ContentType: canonicalMediaType(contentType),
	}
	if len(body) > 0 {
		sum := sha256.Sum256(body)
		s.BodyDigest = hex.EncodeToString(sum[:])
	}
	return s
}

// canonicalQuery sorts parameters by name, keeping the order of repeated
// values. Unparseable queries are compared verbatim.
func canonicalQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}
	return values.Encode()
}

// canonicalMediaType lower-cases the type and parameter names and trims
// whitespace, so "Text/Plain; Charset=UTF-8" and "text/plain;charset=UTF-8"
// compare equal.
func canonicalMediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mediaType, params, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	if formatted := mime.FormatMediaType(mediaType, params); formatted != "" {
		return formatted
	}
	return mediaType
}
