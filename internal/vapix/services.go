package vapix

import (
	"context"

	"github.com/muurk/vapix/internal/logging"
	"go.uber.org/zap"
)

const apiDiscoveryPath = "/axis-cgi/apidiscovery.cgi"

// API ids advertised by the discovery service that have a typed client.
const (
	APIParameters      = "param-cgi"
	APIBasicDeviceInfo = "basic-device-info"
	APIDiskManagement  = "disk-management"
)

// API is one entry of the device's API list.
type API struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Name    string `json:"name"`
	DocLink string `json:"docLink"`
}

// Services holds a client for each known API the device advertises. A nil
// field means the device did not advertise that API.
type Services struct {
	Parameters      *Parameters
	BasicDeviceInfo *BasicDeviceInfo
	DiskManagement  *DiskManagement

	// APIs is the complete list as advertised, including ids without a
	// typed client.
	APIs []API
}

// Empty reports whether no known API was advertised.
func (s *Services) Empty() bool {
	return s.Parameters == nil && s.BasicDeviceInfo == nil && s.DiskManagement == nil
}

// Services asks the device which APIs it offers.
//
// Firmware that predates API discovery answers 404; that yields an empty
// registry and a nil error, and callers fall back to c.Parameters().
func (c *Client) Services(ctx context.Context) (*Services, error) {
	svc := jsonService{client: c, path: apiDiscoveryPath, apiVersion: "1.0"}

	var data struct {
		APIList []API `json:"apiList"`
	}
	if err := svc.call(ctx, "getApiList", nil, &data); err != nil {
		if IsNotFound(err) {
			logging.Debug("API discovery not available", zap.String("host", c.Host()))
			return &Services{}, nil
		}
		return nil, err
	}

	services := &Services{APIs: data.APIList}
	for _, api := range data.APIList {
		switch api.ID {
		case APIParameters:
			services.Parameters = &Parameters{client: c, apiVersion: api.Version}
		case APIBasicDeviceInfo:
			services.BasicDeviceInfo = newBasicDeviceInfo(c, api.Version)
		case APIDiskManagement:
			services.DiskManagement = &DiskManagement{client: c, apiVersion: api.Version}
		}
	}

	logging.Debug("Discovered device APIs",
		zap.String("host", c.Host()),
		zap.Int("advertised", len(data.APIList)),
	)
	return services, nil
}
