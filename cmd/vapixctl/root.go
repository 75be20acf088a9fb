package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/config"
	"github.com/muurk/vapix/internal/logging"
	"github.com/muurk/vapix/internal/transport"
	"github.com/muurk/vapix/internal/version"
)

// app holds the global flags and lazily loaded state shared by commands.
type app struct {
	configPath string
	device     string
	user       string
	timeout    time.Duration
	fixture    string

	registry *config.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "vapixctl",
		Short: "Axis device VAPIX utility",
		Long: `A command line client for the VAPIX API of Axis network devices.

Finds devices with mDNS, lists the APIs they advertise, reads and updates
parameters, and shows device information, disks and application support.

Devices are named with --device, which accepts a saved device name, a host
or a URL. Passwords are read from VAPIX_PASSWORD or prompted for; they are
never saved.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.InitializeFromEnv()
		},
	}

	// Disable automatic completion command generation
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&a.device, "device", "d", "", "Device name, host or URL")
	flags.StringVarP(&a.user, "user", "u", "", "Username (default from config, then root)")
	flags.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout (default from config)")
	flags.StringVar(&a.fixture, "fixture", "", "Replay a recorded fixture file instead of contacting a device")
	flags.StringVar(&a.configPath, "config", "", "Config file (default $VAPIX_CONFIG, else the user config directory)")

	root.AddCommand(
		newScanCmd(a),
		newServicesCmd(a),
		newInfoCmd(a),
		newParamsCmd(a),
		newDisksCmd(a),
		newRecordingsCmd(a),
		newLogCmd(a),
		newAppsCmd(a),
		newSniffCmd(),
		newDevicesCmd(a),
		newCaptureCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vapixctl %s\n", version.Full())
		},
	}
}

// loadRegistry loads the config file once per invocation.
func (a *app) loadRegistry() (*config.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}

	var (
		reg *config.Registry
		err error
	)
	if a.configPath != "" {
		reg, err = config.LoadRegistryFrom(a.configPath)
	} else {
		reg, err = config.LoadRegistry()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a.registry = reg
	return reg, nil
}

func (a *app) saveRegistry() error {
	if a.configPath != "" {
		return a.registry.SaveTo(a.configPath)
	}
	return a.registry.Save()
}

// requestTimeout is --timeout, else the configured preference.
func (a *app) requestTimeout(reg *config.Registry) time.Duration {
	if a.timeout > 0 {
		return a.timeout
	}
	if reg != nil && reg.Preferences != nil && reg.Preferences.RequestTimeout > 0 {
		return time.Duration(reg.Preferences.RequestTimeout) * time.Second
	}
	return transport.DefaultTimeout
}
