package vapixtest

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/muurk/vapix/internal/transport"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// FixtureExt is the file extension of fixture files.
const FixtureExt = ".yaml"

// DeviceInfo identifies the device a fixture was captured from.
type DeviceInfo struct {
	Model             string `yaml:"model"`
	SerialNumber      string `yaml:"serial_number"`
	FirmwareVersion   string `yaml:"firmware_version"`
	FirmwareBuildDate string `yaml:"firmware_build_date,omitempty"`
	Architecture      string `yaml:"architecture,omitempty"`
	SOC               string `yaml:"soc,omitempty"`
	HardwareID        string `yaml:"hardware_id,omitempty"`
}

// FileName is the fixture file name for the device, "<serial> v<firmware>.yaml".
func (d DeviceInfo) FileName() string {
	return fmt.Sprintf("%s v%s%s", d.SerialNumber, d.FirmwareVersion, FixtureExt)
}

// Fixture is a recorded conversation with one device.
type Fixture struct {
	Device    DeviceInfo `yaml:"device"`
	Exchanges []Exchange `yaml:"exchanges"`

	// Path is the file the fixture was loaded from
	Path string `yaml:"-"`
}

// Exchange is one request and the final response it received.
type Exchange struct {
	Request  RecordedRequest  `yaml:"request"`
	Response RecordedResponse `yaml:"response"`
}

// RecordedRequest is the part of a request that identifies it on replay.
// Header names are stored lower-case.
type RecordedRequest struct {
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Query   string            `yaml:"query,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    *Body             `yaml:"body,omitempty"`
}

// RecordedResponse is a complete response.
type RecordedResponse struct {
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    *Body             `yaml:"body,omitempty"`
}

// Body holds a payload as text when it is valid UTF-8 and as base64
// otherwise. Exactly one field is set.
type Body struct {
	Text   string `yaml:"text,omitempty"`
	Base64 string `yaml:"base64,omitempty"`
}

// recordedHeaders lists the request headers that take part in matching.
// Authorization is deliberately absent: it changes with every nonce.
var recordedHeaders = []string{"Accept", "Content-Type"}

// recordedResponseHeaders are kept for replay. Date anchors timestamps that
// devices log without a year.
var recordedResponseHeaders = []string{"Content-Type", "Date"}

// NewBody returns nil for an empty payload.
func NewBody(data []byte) *Body {
	if len(data) == 0 {
		return nil
	}
	if utf8.Valid(data) {
		return &Body{Text: string(data)}
	}
	return &Body{Base64: base64.StdEncoding.EncodeToString(data)}
}

// Bytes decodes the payload. A nil Body is empty.
func (b *Body) Bytes() ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	if b.Base64 != "" {
		if b.Text != "" {
			return nil, errors.New("body has both text and base64")
		}
		return base64.StdEncoding.DecodeString(b.Base64)
	}
	return []byte(b.Text), nil
}

// NewExchange captures req and resp.
func NewExchange(req *transport.Request, resp *transport.Response) Exchange {
	recReq := RecordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Body:   NewBody(req.Body),
	}
	for _, name := range recordedHeaders {
		if v := req.Header.Get(name); v != "" {
			if recReq.Headers == nil {
				recReq.Headers = map[string]string{}
			}
			recReq.Headers[strings.ToLower(name)] = v
		}
	}

	recResp := RecordedResponse{
		Status: resp.StatusCode,
		Body:   NewBody(resp.Body),
	}
	for _, name := range recordedResponseHeaders {
		if v := resp.Header.Get(name); v != "" {
			if recResp.Headers == nil {
				recResp.Headers = map[string]string{}
			}
			recResp.Headers[strings.ToLower(name)] = v
		}
	}

	return Exchange{Request: recReq, Response: recResp}
}

// header looks up name case-insensitively.
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// toResponse rebuilds a transport response.
func (r RecordedResponse) toResponse() (*transport.Response, error) {
	body, err := r.Body.Bytes()
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	for k, v := range r.Headers {
		h.Set(k, v)
	}
	return &transport.Response{StatusCode: r.Status, Header: h, Body: body}, nil
}

// LoadFixture reads and validates one fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	f.Path = path

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks the fields replay depends on.
func (f *Fixture) Validate() error {
	if f.Device.SerialNumber == "" {
		return errors.New("device.serial_number is required")
	}
	if f.Device.FirmwareVersion == "" {
		return errors.New("device.firmware_version is required")
	}
	for i, ex := range f.Exchanges {
		if ex.Request.Method == "" || !strings.HasPrefix(ex.Request.Path, "/") {
			return fmt.Errorf("exchange %d: request needs a method and an absolute path", i)
		}
		if ex.Response.Status < 100 || ex.Response.Status > 599 {
			return fmt.Errorf("exchange %d: invalid status %d", i, ex.Response.Status)
		}
		if _, err := ex.Request.Body.Bytes(); err != nil {
			return fmt.Errorf("exchange %d: request body: %w", i, err)
		}
		if _, err := ex.Response.Body.Bytes(); err != nil {
			return fmt.Errorf("exchange %d: response body: %w", i, err)
		}
	}
	return nil
}

// LoadFixtures reads every fixture in dir concurrently, sorted by file name.
// A missing directory holds no fixtures.
func LoadFixtures(ctx context.Context, dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == FixtureExt {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	fixtures := make([]*Fixture, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := LoadFixture(path)
			if err != nil {
				return err
			}
			fixtures[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// encode renders the fixture as YAML.
func (f *Fixture) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteNew writes the fixture to dir under Device.FileName. It fails with an
// error wrapping fs.ErrExist rather than replace an existing capture.
func (f *Fixture) WriteNew(dir string) (string, error) {
	data, err := f.encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode fixture: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create fixture directory: %w", err)
	}

	path := filepath.Join(dir, f.Device.FileName())
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return path, err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return path, fmt.Errorf("failed to write fixture: %w", err)
	}
	return path, file.Close()
}

// rewrite replaces a fixture file this process created earlier.
func (f *Fixture) rewrite(path string) error {
	data, err := f.encode()
	if err != nil {
		return fmt.Errorf("failed to encode fixture: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
