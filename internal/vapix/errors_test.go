package vapix

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestDeviceError_Error(t *testing.T) {
	err := NewHTTPError(500, []byte("Internal Server Error"))
	if got := err.Error(); !strings.Contains(got, "HTTP Error") || !strings.Contains(got, "500") || !strings.Contains(got, "Internal Server Error") {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("boom")
	wrapped := NewTransportError("GET /x failed", cause)
	if !errors.Is(wrapped, cause) {
		t.Error("transport error should unwrap to its cause")
	}
	if !strings.Contains(wrapped.Error(), "caused by: boom") {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestDeviceError_Sentinels(t *testing.T) {
	unsupported := fmt.Errorf("listing disks: %w", NewUnsupportedError("nope"))
	if !errors.Is(unsupported, ErrUnsupportedFeature) {
		t.Error("errors.Is(unsupported, ErrUnsupportedFeature) = false")
	}
	if errors.Is(unsupported, ErrFixtureMismatch) {
		t.Error("unsupported should not match ErrFixtureMismatch")
	}

	miss := NewTransportError("GET /x failed", fmt.Errorf("replay: %w", ErrFixtureMismatch))
	if miss.Type != ErrTypeFixtureMismatch {
		t.Errorf("Type = %v, want %v", miss.Type, ErrTypeFixtureMismatch)
	}
	if !IsFixtureMismatch(miss) || IsTransportError(miss) {
		t.Error("fixture mismatch misclassified")
	}
	if errors.Is(NewProtocolError("x", nil), ErrUnsupportedFeature) {
		t.Error("protocol error should not match ErrUnsupportedFeature")
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"auth", NewAuthError("x", 401), IsAuthError, true},
		{"http", NewHTTPError(503, nil), IsHTTPError, true},
		{"not found", NewHTTPError(404, nil), IsNotFound, true},
		{"not found other status", NewHTTPError(500, nil), IsNotFound, false},
		{"not found wrong type", NewProtocolError("404", nil), IsNotFound, false},
		{"decode", NewDecodeError("x", nil), IsDecodeError, true},
		{"protocol", NewProtocolError("x", nil), IsProtocolError, true},
		{"unsupported", NewUnsupportedError("x"), IsUnsupported, true},
		{"plain error", errors.New("x"), IsAuthError, false},
		{"nil", nil, IsHTTPError, false},
	}
	for _, tt := range tests {
		if got := tt.check(tt.err); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMapNotFoundToUnsupported(t *testing.T) {
	if err := mapNotFoundToUnsupported(NewHTTPError(404, nil), "disk management"); !IsUnsupported(err) {
		t.Errorf("404 mapped to %v", err)
	}
	other := NewHTTPError(500, nil)
	if err := mapNotFoundToUnsupported(other, "disk management"); err != other {
		t.Errorf("500 mapped to %v", err)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want NetworkErrorSubtype
	}{
		{"nil", nil, NetworkErrorGeneral},
		{"cancelled", fmt.Errorf("send: %w", context.Canceled), NetworkErrorCancelled},
		{"deadline", context.DeadlineExceeded, NetworkErrorTimeout},
		{"timeout", timeoutError{}, NetworkErrorTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "camera.invalid"}, NetworkErrorDNS},
		{"refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, NetworkErrorConnectionRefused},
		{"unreachable", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)}, NetworkErrorHostUnreachable},
		{"other", errors.New("weird"), NetworkErrorGeneral},
	}
	for _, tt := range tests {
		if got := ClassifyTransportError(tt.err); got != tt.want {
			t.Errorf("%s: ClassifyTransportError() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewAuthError("x", 401), "Authentication failed - check credentials"},
		{NewHTTPError(503, nil), "Device error (HTTP 503)"},
		{NewUnsupportedError("x"), "Not supported by this device"},
		{NewProtocolError("x", []byte("# Error: bad value\n")), "Device rejected request: # Error: bad value"},
		{&DeviceError{Type: ErrTypeTransport, NetworkSubtype: NetworkErrorConnectionRefused}, "Device refused connection"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); got != tt.want {
			t.Errorf("GetShortErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
