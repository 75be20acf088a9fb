package vapixtest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/muurk/vapix/internal/logging"
	"github.com/muurk/vapix/internal/transport"
	"github.com/muurk/vapix/internal/vapix"
	"go.uber.org/zap"
)

// Mode selects how a test device reaches its responses.
type Mode int

const (
	// ModeReplaying answers from a fixture file
	ModeReplaying Mode = iota
	// ModeRecording forwards to a live device and captures every exchange
	ModeRecording
	// ModeLive forwards to a live device without capturing anything
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeReplaying:
		return "replay"
	case ModeRecording:
		return "record"
	case ModeLive:
		return "live"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the live-device mode. Empty means recording.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "record", "recording":
		return ModeRecording, nil
	case "live":
		return ModeLive, nil
	case "replay", "replaying":
		return ModeReplaying, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want record or live)", s)
}

// Recorder forwards requests to a real transport and keeps every final
// exchange. It is safe for concurrent use.
type Recorder struct {
	next transport.Transport

	mu        sync.Mutex
	exchanges []Exchange
	written   string // fixture path created by this recorder
	skipped   bool   // a prior capture already existed
}

// NewRecorder wraps next.
func NewRecorder(next transport.Transport) *Recorder {
	return &Recorder{next: next}
}

// RoundTrip forwards req. The unauthenticated leg of a challenge exchange is
// not recorded, so fixtures hold only final responses and no nonces.
func (r *Recorder) RoundTrip(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	resp, err := r.next.RoundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && req.Header.Get("Authorization") == "" {
		return resp, nil
	}

	ex := NewExchange(req, resp)
	r.mu.Lock()
	r.exchanges = append(r.exchanges, ex)
	r.mu.Unlock()
	return resp, nil
}

// Exchanges returns a copy of everything recorded so far.
func (r *Recorder) Exchanges() []Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Exchange(nil), r.exchanges...)
}

// Flush writes the recording as <serial> v<firmware>.yaml in dir and returns
// the path written, or "" when nothing was written. Nothing is written when
// no exchange was recorded or when the file already existed before this
// recorder first flushed; later flushes update the file this recorder made.
func (r *Recorder) Flush(dir string, info DeviceInfo) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.exchanges) == 0 || r.skipped {
		return "", nil
	}
	f := &Fixture{Device: info, Exchanges: append([]Exchange(nil), r.exchanges...)}

	if r.written != "" {
		if err := f.rewrite(r.written); err != nil {
			return "", err
		}
		return r.written, nil
	}

	path, err := f.WriteNew(dir)
	if errors.Is(err, fs.ErrExist) {
		r.skipped = true
		logging.Info("Fixture already exists, keeping the earlier capture",
			zap.String("path", path),
		)
		return "", nil
	}
	if err != nil {
		return "", err
	}

	r.written = path
	logging.Info("Fixture written",
		zap.String("path", path),
		zap.Int("exchanges", len(f.Exchanges)),
	)
	return path, nil
}

// MismatchError reports a replayed request with no recorded exchange.
type MismatchError struct {
	Shape   Shape
	Fixture string
}

func (e *MismatchError) Error() string {
	if e.Fixture == "" {
		return fmt.Sprintf("no recorded exchange for %s", e.Shape)
	}
	return fmt.Sprintf("no recorded exchange for %s in %s", e.Shape, e.Fixture)
}

// Unwrap makes errors.Is(err, vapix.ErrFixtureMismatch) hold.
func (e *MismatchError) Unwrap() error {
	return vapix.ErrFixtureMismatch
}

// Replayer answers requests from a fixture. Requests are matched by Shape,
// never by position. Repeated requests of one shape consume that shape's
// exchanges in recorded order; the last one is reused once they run out.
// It is safe for concurrent use.
type Replayer struct {
	fixture string

	mu      sync.Mutex
	queues  map[Shape][]RecordedResponse
	cursors map[Shape]int
}

// NewReplayer indexes the fixture's exchanges.
func NewReplayer(f *Fixture) (*Replayer, error) {
	r := &Replayer{
		fixture: f.Path,
		queues:  make(map[Shape][]RecordedResponse),
		cursors: make(map[Shape]int),
	}
	for i, ex := range f.Exchanges {
		shape, err := ex.Request.Shape()
		if err != nil {
			return nil, fmt.Errorf("exchange %d: %w", i, err)
		}
		r.queues[shape] = append(r.queues[shape], ex.Response)
	}
	return r, nil
}

// RoundTrip returns the recorded response for req's shape.
func (r *Replayer) RoundTrip(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shape := ShapeOf(req)

	r.mu.Lock()
	queue := r.queues[shape]
	if len(queue) == 0 {
		r.mu.Unlock()
		return nil, &MismatchError{Shape: shape, Fixture: r.fixture}
	}
	i := r.cursors[shape]
	if i < len(queue) {
		r.cursors[shape] = i + 1
	} else {
		i = len(queue) - 1
	}
	recorded := queue[i]
	r.mu.Unlock()

	return recorded.toResponse()
}

// Unused lists the recorded shapes no request has matched yet.
func (r *Replayer) Unused() []Shape {
	r.mu.Lock()
	defer r.mu.Unlock()

	var unused []Shape
	for shape := range r.queues {
		if _, ok := r.cursors[shape]; !ok {
			unused = append(unused, shape)
		}
	}
	return unused
}
