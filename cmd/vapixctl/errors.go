package main

import (
	"io"

	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/urls"
	"github.com/muurk/vapix/internal/vapix"
)

// reportError prints err as a failure box with troubleshooting tips.
func reportError(w io.Writer, err error) {
	ui.NewPrinter(w).PrintError(vapix.GetShortErrorMessage(err), err, troubleshootingFor(err))
}

func troubleshootingFor(err error) []string {
	switch {
	case vapix.IsFixtureMismatch(err):
		return []string{
			"The fixture has no recording of this request",
			"Record one against a real device with 'vapixctl capture'",
		}
	case vapix.IsAuthError(err):
		return []string{
			"Check the username with --user",
			"Set " + EnvPassword + " or enter the password when prompted",
			"The account may lack the access level this request needs",
		}
	case vapix.IsTransportError(err):
		return []string{
			"Check the device is powered on and reachable",
			"Verify the host, port and scheme (http or https)",
			"Try a longer --timeout on slow links",
		}
	case vapix.IsUnsupported(err):
		return []string{
			"This firmware does not offer the requested API",
			"Run 'vapixctl services' to see what the device advertises",
			"API reference: " + urls.VAPIXLibrary,
		}
	case vapix.IsProtocolError(err):
		return []string{
			"The device rejected the request; check names and values",
			"Run 'vapixctl params definitions' to see allowed values",
		}
	}
	return nil
}
