package vapix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// APIErrorCode is an error code returned in a JSON API error envelope.
type APIErrorCode int

// Error codes shared by the JSON APIs.
const (
	APIErrInvalidParameter      APIErrorCode = 1000
	APIErrAccessForbidden       APIErrorCode = 2001
	APIErrUnsupportedHTTPMethod APIErrorCode = 2002
	APIErrUnsupportedAPIVersion APIErrorCode = 2003
	APIErrUnsupportedAPIMethod  APIErrorCode = 2004
	APIErrInvalidJSON           APIErrorCode = 4000
	APIErrRequiredParamMissing  APIErrorCode = 4002
	APIErrInternal              APIErrorCode = 8000
)

func (c APIErrorCode) String() string {
	switch c {
	case APIErrInvalidParameter:
		return "invalid parameter"
	case APIErrAccessForbidden:
		return "access forbidden"
	case APIErrUnsupportedHTTPMethod:
		return "unsupported HTTP method"
	case APIErrUnsupportedAPIVersion:
		return "unsupported API version"
	case APIErrUnsupportedAPIMethod:
		return "unsupported API method"
	case APIErrInvalidJSON:
		return "invalid JSON"
	case APIErrRequiredParamMissing:
		return "required parameter missing"
	case APIErrInternal:
		return "internal error"
	default:
		return fmt.Sprintf("error %d", int(c))
	}
}

type jsonRequest struct {
	APIVersion string `json:"apiVersion"`
	Method     string `json:"method"`
	Params     any    `json:"params,omitempty"`
}

type jsonError struct {
	Code    APIErrorCode `json:"code"`
	Message string       `json:"message"`
}

type jsonResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *jsonError      `json:"error"`
}

// jsonService calls methods on one of the device's JSON APIs.
type jsonService struct {
	client     *Client
	path       string
	apiVersion string
}

// call posts {"apiVersion","method","params"} and decodes the envelope's data
// member into out. params may be nil.
func (s jsonService) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(jsonRequest{
		APIVersion: s.apiVersion,
		Method:     method,
		Params:     params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	resp, err := s.client.Do(ctx, Call{
		Method:      http.MethodPost,
		Path:        s.path,
		ContentType: ContentTypeJSON,
		Body:        body,
		Accept:      ContentTypeJSON,
	})
	if err != nil {
		return err
	}

	var envelope jsonResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return NewDecodeError(fmt.Sprintf("failed to decode %s response", method), err)
	}

	if envelope.Error != nil {
		return newAPIError(method, envelope.Error)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return NewDecodeError(fmt.Sprintf("%s response included neither data nor error", method), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return NewDecodeError(fmt.Sprintf("failed to decode %s data", method), err)
	}
	return nil
}

func newAPIError(method string, e *jsonError) *DeviceError {
	msg := fmt.Sprintf("%s: %s", method, e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}

	t := ErrTypeProtocol
	if e.Code == APIErrUnsupportedAPIMethod {
		t = ErrTypeUnsupported
	}
	return &DeviceError{
		Type:    t,
		Message: msg,
		Code:    int(e.Code),
	}
}
