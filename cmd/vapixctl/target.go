package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/muurk/vapix/internal/config"
	"github.com/muurk/vapix/internal/transport"
	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
	"github.com/muurk/vapix/internal/vapixtest"
	"github.com/muurk/vapix/internal/version"
)

// EnvPassword supplies the device password without prompting.
const EnvPassword = "VAPIX_PASSWORD"

// target is the device a command talks to.
type target struct {
	// Name is the saved device name, the fixture name, or the host
	Name   string
	Client *vapix.Client
}

// open connects to the device named by --device, or replays --fixture.
func (a *app) open(p *ui.Printer) (*target, error) {
	return a.openWith(p, nil)
}

// openWith is open with the HTTP transport optionally wrapped, e.g. by a
// recorder.
func (a *app) openWith(p *ui.Printer, wrap func(transport.Transport) transport.Transport) (*target, error) {
	if a.fixture != "" {
		if wrap != nil {
			return nil, fmt.Errorf("--fixture cannot be combined with recording")
		}
		f, err := vapixtest.LoadFixture(a.fixture)
		if err != nil {
			return nil, err
		}
		dev, err := vapixtest.NewReplayDevice(f)
		if err != nil {
			return nil, err
		}
		return &target{Name: dev.Name, Client: dev.Client}, nil
	}

	if a.device == "" {
		return nil, fmt.Errorf("no device given; use --device NAME|HOST|URL")
	}

	reg, err := a.loadRegistry()
	if err != nil {
		return nil, err
	}

	name, rawURL, username, err := resolveDevice(reg, a.device)
	if err != nil {
		return nil, err
	}
	if a.user != "" {
		username = a.user
	}

	u, _ := url.Parse(rawURL)
	password, err := a.password(p, u, username)
	if err != nil {
		return nil, err
	}

	var t transport.Transport = a.httpTransport(reg)
	if wrap != nil {
		t = wrap(t)
	}

	client, err := vapix.NewClientWithCredentials(t, rawURL, vapix.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = client.Host()
	}
	return &target{Name: name, Client: client}, nil
}

func (a *app) httpTransport(reg *config.Registry) *transport.HTTPTransport {
	t := transport.NewHTTPTransport(&http.Client{Timeout: a.requestTimeout(reg)})
	t.UserAgent = version.UserAgent()
	return t
}

// resolveDevice maps a saved name, host or URL to a device URL. name is
// empty unless ref is a saved device.
func resolveDevice(reg *config.Registry, ref string) (name, rawURL, username string, err error) {
	if d := reg.GetDevice(ref); d != nil {
		return ref, d.URL, reg.UsernameFor(d), nil
	}

	rawURL = ref
	if !strings.Contains(ref, "://") {
		rawURL = "http://" + ref
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", "", fmt.Errorf("%q is not a saved device, host or URL", ref)
	}

	if u.User != nil {
		username = u.User.Username()
	}
	if username == "" {
		username = reg.UsernameFor(nil)
	}
	if username == "" {
		username = vapix.DefaultUsername
	}
	return "", rawURL, username, nil
}

// password returns VAPIX_PASSWORD, else the URL's password, else prompts on
// a terminal. Without a terminal the device default is used.
func (a *app) password(p *ui.Printer, u *url.URL, username string) (string, error) {
	if pw, ok := os.LookupEnv(EnvPassword); ok {
		return pw, nil
	}
	if u != nil && u.User != nil {
		if pw, ok := u.User.Password(); ok {
			return pw, nil
		}
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return vapix.DefaultPassword, nil
	}

	host := ""
	if u != nil {
		host = u.Host
	}
	return p.ReadPassword(fmt.Sprintf("Password for %s@%s: ", username, host))
}

// deviceField is the header line naming the target.
func deviceField(t *target) ui.Field {
	return ui.Field{Key: "Device", Value: t.Name}
}
