// Package log builds the slog loggers used across vegancheck.
//
// Every logger is wrapped in a SecureHandler, which masks credentials before
// they are written: classifier API keys and cookies configured as extra
// request headers, bearer tokens, and values that look like opaque keys.
// This holds in verbose mode too, so debug logs can be shared safely.
//
// The page context logs through a SwitchHandler. Its Switch starts off and
// is flipped by the TOGGLE_LOGGING and SET_LOGGING messages, so page logs
// stay silent unless someone asks for them.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("calling classifier", "x-api-key", key) // x-api-key=***REDACTED***
package log
