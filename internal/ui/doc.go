// Package ui renders vapixctl output in the terminal.
//
// Components are plain lipgloss renderers that follow a "render once and
// print" pattern; nothing here is interactive except Confirm and
// ReadPassword.
//
//   - Header: command banner showing the operation and its target
//   - Table: aligned columns for lists of services, parameters, disks
//   - Result: success, warning, and failure boxes with troubleshooting tips
//
// A Printer ties them to an io.Writer and the terminal width:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Device Services", "vapixctl services lobby",
//	    ui.Field{Key: "Device", Value: "http://192.168.0.90"})
//	p.PrintTable(ui.NewTable("ID", "VERSION").AddRow("param-cgi", "1.0"))
//
// # Logging Integration
//
// Logging is controlled via the VAPIX_LOG_LEVEL environment variable. When
// unset, zap logging is silent so the styled output stays readable.
package ui
