package vapix

import (
	"context"
	"errors"
	"testing"

	"github.com/muurk/vapix/internal/transport"
)

func TestServices_KnownAndUnknown(t *testing.T) {
	c, dev := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		if req.URL.Path != "/axis-cgi/apidiscovery.cgi" || req.Method != "POST" {
			t.Errorf("request = %s %s", req.Method, req.URL.Path)
		}
		if req.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", req.Header.Get("Content-Type"))
		}
		if string(req.Body) != `{"apiVersion":"1.0","method":"getApiList"}` {
			t.Errorf("body = %s", req.Body)
		}
		return respond(200, "application/json", `{"method":"getApiList","apiVersion":"1.0","data":{"apiList":[
			{"id":"param-cgi","version":"1.0","name":"Legacy Parameter Handling","docLink":""},
			{"id":"mqtt-client","version":"1.0","name":"MQTT Client API","docLink":"","extra":true}
		]}}`), nil
	})

	services, err := c.Services(context.Background())
	if err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if services.Parameters == nil {
		t.Fatal("Parameters should be present")
	}
	if services.Parameters.APIVersion() != "1.0" {
		t.Errorf("Parameters.APIVersion() = %s", services.Parameters.APIVersion())
	}
	if services.BasicDeviceInfo != nil || services.DiskManagement != nil {
		t.Error("unadvertised services should be nil")
	}
	if len(services.APIs) != 2 {
		t.Errorf("APIs = %d, want 2", len(services.APIs))
	}
	if dev.calls != 1 {
		t.Errorf("calls = %d, want 1", dev.calls)
	}
}

func TestServices_AllKnown(t *testing.T) {
	c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(200, "application/json", `{"data":{"apiList":[
			{"id":"disk-management","version":"1.0"},
			{"id":"basic-device-info","version":"1.1"},
			{"id":"param-cgi","version":"1.0"}
		]}}`), nil
	})

	services, err := c.Services(context.Background())
	if err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if services.Parameters == nil || services.BasicDeviceInfo == nil || services.DiskManagement == nil {
		t.Errorf("services = %+v, want all present", services)
	}
	if services.BasicDeviceInfo.svc.apiVersion != "1.1" {
		t.Errorf("BasicDeviceInfo version = %s, want 1.1", services.BasicDeviceInfo.svc.apiVersion)
	}
	if services.Empty() {
		t.Error("Empty() = true")
	}
}

func TestServices_NotFoundIsEmptyRegistry(t *testing.T) {
	c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(404, "text/html", "maybe this isn't a camera?"), nil
	})

	services, err := c.Services(context.Background())
	if err != nil {
		t.Fatalf("Services() error = %v, want nil", err)
	}
	if !services.Empty() || len(services.APIs) != 0 {
		t.Errorf("services = %+v, want empty", services)
	}
}

func TestServices_EmptyList(t *testing.T) {
	c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(200, "application/json", `{"data":{"apiList":[]}}`), nil
	})

	services, err := c.Services(context.Background())
	if err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if !services.Empty() {
		t.Error("Empty() = false")
	}
}

func TestServices_ErrorsPropagate(t *testing.T) {
	tests := []struct {
		name  string
		resp  *transport.Response
		check func(error) bool
	}{
		{"server error", respond(500, "text/plain", "oops"), IsHTTPError},
		{"bad json", respond(200, "application/json", "{"), IsDecodeError},
		{"neither data nor error", respond(200, "application/json", `{"apiVersion":"1.0"}`), IsDecodeError},
		{"api error", respond(200, "application/json", `{"error":{"code":8000,"message":"internal"}}`), IsProtocolError},
		{"unsupported method", respond(200, "application/json", `{"error":{"code":2004}}`), IsUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
				return tt.resp, nil
			})
			services, err := c.Services(context.Background())
			if services != nil || !tt.check(err) {
				t.Errorf("Services() = %v, %v", services, err)
			}
		})
	}
}

func TestJSONService_ErrorCode(t *testing.T) {
	c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(200, "application/json", `{"apiVersion":"1.1","error":{"code":2001,"message":"Access forbidden"}}`), nil
	})

	err := jsonService{client: c, path: basicDeviceInfoPath, apiVersion: "1.1"}.call(context.Background(), "getAllProperties", nil, nil)

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("call() error = %v, want *DeviceError", err)
	}
	if devErr.Code != int(APIErrAccessForbidden) || devErr.Type != ErrTypeProtocol {
		t.Errorf("DeviceError = %+v", devErr)
	}
	if errors.Is(err, ErrUnsupportedFeature) {
		t.Error("access forbidden should not be unsupported")
	}
}
