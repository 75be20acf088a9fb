// Package logging provides structured logging for the VAPIX client and its tools.
//
// This package wraps a package-global zap logger. Library code logs device
// exchanges at debug level; the CLI and the fixture harness log at info level.
//
// # Log Levels
//
//   - Debug: every device exchange, challenge metadata, redacted headers, body dumps
//   - Info: fixture files written, devices discovered
//   - Warn: recoverable oddities (unparseable challenges, skipped fixture files)
//   - Error: failures surfaced to the user
//
// # Configuration
//
// Logging is silent unless enabled:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The level comes from VAPIX_LOG_LEVEL ("debug", "info", "warn", "error").
//
// # Credentials
//
// Authorization, WWW-Authenticate and cookie headers are always redacted, and no helper
// accepts a password. Challenge logging is limited to scheme, realm and algorithm.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
