package vapix

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/muurk/vapix/internal/arch"
	"github.com/muurk/vapix/internal/logging"
	"go.uber.org/zap"
)

const (
	uploadPath     = "/axis-cgi/applications/upload.cgi"
	uploadBoundary = "fileboundary"
)

// Parameters consulted to decide whether a device hosts applications.
const (
	paramEmbeddedDevelopmentVersion = "Properties.EmbeddedDevelopment.Version"
	paramFirmwareVersion            = "Properties.Firmware.Version"
	paramSystemSoc                  = "Properties.System.Soc"
	paramSystemArchitecture         = "Properties.System.Architecture"
)

// Applications manages installable application packages.
type Applications struct {
	client *Client

	// EmbeddedDevelopmentVersion is the platform version applications
	// build against.
	EmbeddedDevelopmentVersion string

	// FirmwareVersion is empty when the device did not report it.
	FirmwareVersion string

	// Architecture is empty when unknown.
	Architecture arch.Architecture

	// SOC is empty when unknown. Some devices report no SoC at all.
	SOC arch.SOC
}

// Applications returns the application API. Devices without an embedded
// development platform return ErrUnsupportedFeature.
func (c *Client) Applications(ctx context.Context) (*Applications, error) {
	params, err := c.Parameters().List(ctx,
		paramFirmwareVersion,
		paramEmbeddedDevelopmentVersion,
		paramSystemSoc,
		paramSystemArchitecture,
	)
	if err != nil {
		return nil, err
	}

	version, ok := params.Lookup(paramEmbeddedDevelopmentVersion)
	if !ok {
		return nil, NewUnsupportedError("device has no embedded development platform")
	}

	apps := &Applications{
		client:                     c,
		EmbeddedDevelopmentVersion: version,
	}
	apps.FirmwareVersion, _ = params.Lookup(paramFirmwareVersion)
	if v, ok := params.Lookup(paramSystemArchitecture); ok {
		apps.Architecture, _ = arch.FromParam(v)
	}
	if v, ok := params.Lookup(paramSystemSoc); ok {
		apps.SOC, _ = arch.SOCFromParam(v)
	}
	return apps, nil
}

// CheckExecutable verifies that an ELF executable targets the device's
// architecture. It fails when either side cannot be identified.
func (a *Applications) CheckExecutable(executable []byte) error {
	got, ok := arch.Sniff(executable)
	if !ok {
		return fmt.Errorf("executable architecture not recognized")
	}
	if a.Architecture == "" {
		return fmt.Errorf("device architecture unknown, cannot verify %s executable", got.DisplayName())
	}
	if got != a.Architecture {
		return fmt.Errorf("executable is built for %s, device runs %s", got.DisplayName(), a.Architecture.DisplayName())
	}
	return nil
}

// Upload installs an application package (.eap). The device answers "OK"
// on success; anything else is returned as ErrTypeProtocol.
func (a *Applications) Upload(ctx context.Context, pkg []byte) error {
	body, contentType, err := uploadBody(pkg)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(ctx, Call{
		Method:      http.MethodPost,
		Path:        uploadPath,
		ContentType: contentType,
		Body:        body,
		Accept:      ContentTypeText,
	})
	if err != nil {
		return err
	}

	if !strings.HasPrefix(string(resp.Body), "OK") {
		return NewProtocolError("application upload rejected", resp.Body)
	}

	logging.Info("Application uploaded",
		zap.String("host", a.client.Host()),
		zap.Int("bytes", len(pkg)),
	)
	return nil
}

func uploadBody(pkg []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(uploadBoundary); err != nil {
		return nil, "", err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="packfil"; filename="application.eap"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(pkg); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
