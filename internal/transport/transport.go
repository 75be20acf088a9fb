package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the request timeout used by NewHTTPTransport when no
// client is supplied.
const DefaultTimeout = 30 * time.Second

// Request is a fully formed request. Bodies are buffered so that the same
// request can be re-issued after an authentication challenge and recorded
// byte-for-byte.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// RequestURI returns the path and query as they appear on the request line.
// Digest authentication signs exactly this string.
func (r *Request) RequestURI() string {
	return r.URL.RequestURI()
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	u := *r.URL
	clone := &Request{
		Method: r.Method,
		URL:    &u,
		Header: r.Header.Clone(),
	}
	if clone.Header == nil {
		clone.Header = http.Header{}
	}
	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}
	return clone
}

// Response is a complete response with its body read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs one request/response exchange.
//
// Implementations own connection handling, TLS and any retry policy. An error
// means no response was obtained; HTTP error statuses are returned as
// responses.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts an ordinary function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// RoundTrip calls f(ctx, req).
func (f Func) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport sends requests with a net/http client.
type HTTPTransport struct {
	// Client is the underlying HTTP client
	Client *http.Client

	// UserAgent is sent unless the request sets its own
	UserAgent string
}

// NewHTTPTransport creates a transport backed by client. A nil client gets a
// fresh http.Client with DefaultTimeout.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPTransport{Client: client}
}

// RoundTrip sends req and reads the whole response body.
func (t *HTTPTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if t.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// Read the whole body even when the caller will discard it, so the
	// connection can be reused.
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
