package vapix

import "context"

const basicDeviceInfoPath = "/axis-cgi/basicdeviceinfo.cgi"

// BasicDeviceInfo is the JSON basic device information API.
type BasicDeviceInfo struct {
	svc jsonService
}

func newBasicDeviceInfo(c *Client, apiVersion string) *BasicDeviceInfo {
	return &BasicDeviceInfo{svc: jsonService{client: c, path: basicDeviceInfoPath, apiVersion: apiVersion}}
}

// DeviceProperties are the identifying properties of a device.
type DeviceProperties struct {
	Architecture    string `json:"Architecture"`
	Brand           string `json:"Brand"`
	BuildDate       string `json:"BuildDate"`
	HardwareID      string `json:"HardwareID"`
	ProdFullName    string `json:"ProdFullName"`
	ProdNbr         string `json:"ProdNbr"`
	ProdShortName   string `json:"ProdShortName"`
	ProdType        string `json:"ProdType"`
	ProdVariant     string `json:"ProdVariant"`
	SerialNumber    string `json:"SerialNumber"`
	Soc             string `json:"Soc"`
	SocSerialNumber string `json:"SocSerialNumber"`
	Version         string `json:"Version"`
	WebURL          string `json:"WebURL"`
}

// devicePropertyNames is the property list requested by Properties.
var devicePropertyNames = []string{
	"Architecture",
	"Brand",
	"BuildDate",
	"HardwareID",
	"ProdFullName",
	"ProdNbr",
	"ProdShortName",
	"ProdType",
	"ProdVariant",
	"SerialNumber",
	"Soc",
	"SocSerialNumber",
	"Version",
	"WebURL",
}

// Properties fetches the identifying properties with getProperties.
func (b *BasicDeviceInfo) Properties(ctx context.Context) (*DeviceProperties, error) {
	params := struct {
		PropertyList []string `json:"propertyList"`
	}{PropertyList: devicePropertyNames}

	var data struct {
		PropertyList DeviceProperties `json:"propertyList"`
	}
	if err := b.svc.call(ctx, "getProperties", params, &data); err != nil {
		return nil, err
	}
	return &data.PropertyList, nil
}

// AllProperties fetches every property the device reports, including ones
// DeviceProperties does not model.
func (b *BasicDeviceInfo) AllProperties(ctx context.Context) (map[string]string, error) {
	var data struct {
		PropertyList map[string]string `json:"propertyList"`
	}
	if err := b.svc.call(ctx, "getAllProperties", nil, &data); err != nil {
		return nil, err
	}
	if data.PropertyList == nil {
		data.PropertyList = map[string]string{}
	}
	return data.PropertyList, nil
}
