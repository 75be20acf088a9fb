package vapix

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates the transport could not complete the exchange
	ErrTypeTransport ErrorType = iota
	// ErrTypeAuth indicates the device rejected our credentials after one retry
	ErrTypeAuth
	// ErrTypeHTTP indicates a non-2xx status code
	ErrTypeHTTP
	// ErrTypeDecode indicates the response body did not match the expected schema
	ErrTypeDecode
	// ErrTypeProtocol indicates a well-formed but unsuccessful device response
	ErrTypeProtocol
	// ErrTypeUnsupported indicates the device lacks the requested capability
	ErrTypeUnsupported
	// ErrTypeFixtureMismatch indicates a replayed request had no recorded exchange
	ErrTypeFixtureMismatch
)

// NetworkErrorSubtype provides more specific transport error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorCancelled
)

var (
	// ErrUnsupportedFeature matches every ErrTypeUnsupported error via errors.Is.
	ErrUnsupportedFeature = errors.New("this device does not support that feature")

	// ErrFixtureMismatch is returned (wrapped) by replaying transports when no
	// recorded exchange matches a request.
	ErrFixtureMismatch = errors.New("no recorded exchange matches request")
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeDecode:
		return "Decode Error"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeUnsupported:
		return "Unsupported Feature"
	case ErrTypeFixtureMismatch:
		return "Fixture Mismatch"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred during device communication
type DeviceError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Body           string              // Raw response body for diagnostics (if applicable)
	Code           int                 // JSON API error code (if applicable)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // Transport error classification
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Body != "" {
		msg += fmt.Sprintf(" (body: %q)", truncate(e.Body, 200))
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnsupportedFeature) and errors.Is(err,
// ErrFixtureMismatch) work for the corresponding types.
func (e *DeviceError) Is(target error) bool {
	switch target {
	case ErrUnsupportedFeature:
		return e.Type == ErrTypeUnsupported
	case ErrFixtureMismatch:
		return e.Type == ErrTypeFixtureMismatch
	}
	return false
}

// NewTransportError wraps a transport failure. Replay misses are promoted to
// ErrTypeFixtureMismatch so callers can tell them apart.
func NewTransportError(message string, err error) *DeviceError {
	if errors.Is(err, ErrFixtureMismatch) {
		return &DeviceError{
			Type:    ErrTypeFixtureMismatch,
			Message: message,
			Err:     err,
		}
	}
	return &DeviceError{
		Type:           ErrTypeTransport,
		Message:        message,
		Err:            err,
		NetworkSubtype: ClassifyTransportError(err),
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string, statusCode int) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeAuth,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewHTTPError creates an HTTP-level error carrying the body text
func NewHTTPError(statusCode int, body []byte) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// NewDecodeError creates a decoding error
func NewDecodeError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeDecode,
		Message: message,
		Err:     err,
	}
}

// NewProtocolError creates an error for a semantically invalid device response
func NewProtocolError(message string, body []byte) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeProtocol,
		Message: message,
		Body:    string(body),
	}
}

// NewUnsupportedError creates an unsupported-feature error
func NewUnsupportedError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeUnsupported,
		Message: message,
	}
}

// ClassifyTransportError analyzes a transport error
func ClassifyTransportError(err error) NetworkErrorSubtype {
	if err == nil {
		return NetworkErrorGeneral
	}

	if errors.Is(err, context.Canceled) {
		return NetworkErrorCancelled
	}

	if os.IsTimeout(err) {
		return NetworkErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NetworkErrorDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return NetworkErrorConnectionRefused
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) || errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return NetworkErrorHostUnreachable
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyTransportError(urlErr.Err)
	}

	return NetworkErrorGeneral
}

func asDeviceError(err error) (*DeviceError, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	devErr, ok := asDeviceError(err)
	return ok && devErr.Type == t
}

// IsTransportError checks if an error is a transport failure
func IsTransportError(err error) bool {
	return isType(err, ErrTypeTransport)
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	return isType(err, ErrTypeAuth)
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	return isType(err, ErrTypeHTTP)
}

// IsNotFound checks if an error is an HTTP 404
func IsNotFound(err error) bool {
	devErr, ok := asDeviceError(err)
	return ok && devErr.Type == ErrTypeHTTP && devErr.StatusCode == 404
}

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool {
	return isType(err, ErrTypeDecode)
}

// IsProtocolError checks if an error is a protocol error
func IsProtocolError(err error) bool {
	return isType(err, ErrTypeProtocol)
}

// IsUnsupported checks if an error signals a missing device capability
func IsUnsupported(err error) bool {
	return isType(err, ErrTypeUnsupported)
}

// IsFixtureMismatch checks if an error is a replay miss
func IsFixtureMismatch(err error) bool {
	return isType(err, ErrTypeFixtureMismatch)
}

// mapNotFoundToUnsupported turns an HTTP 404 into ErrTypeUnsupported. Older
// firmware answers 404 for CGIs it does not ship.
func mapNotFoundToUnsupported(err error, feature string) error {
	if IsNotFound(err) {
		return NewUnsupportedError(feature + " is not available on this device")
	}
	return err
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	devErr, ok := asDeviceError(err)
	if !ok {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTransport:
		switch devErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Device not responding (timeout)"
		case NetworkErrorConnectionRefused:
			return "Device refused connection"
		case NetworkErrorDNS:
			return "Cannot resolve device hostname"
		case NetworkErrorHostUnreachable:
			return "Device unreachable - check network connection"
		case NetworkErrorCancelled:
			return "Request cancelled"
		default:
			return "Network error - check connection"
		}
	case ErrTypeAuth:
		return "Authentication failed - check credentials"
	case ErrTypeHTTP:
		return fmt.Sprintf("Device error (HTTP %d)", devErr.StatusCode)
	case ErrTypeDecode:
		return "Failed to parse device response"
	case ErrTypeProtocol:
		if devErr.Body != "" {
			return fmt.Sprintf("Device rejected request: %s", strings.TrimSpace(truncate(devErr.Body, 120)))
		}
		return devErr.Message
	case ErrTypeUnsupported:
		return "Not supported by this device"
	default:
		return devErr.Message
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
