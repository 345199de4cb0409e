// Package log provides slog-based logging that keeps secrets and subject PII
// out of log output.
//
// The SecureHandler wraps any slog.Handler. It replaces credentials (auth
// headers, API keys, cookies configured for probes) with a fixed mask, and
// reduces phone numbers to their last four digits wherever they appear as a
// value, a subject or inside a probe URL.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("starting batch", "subject", "+15551234567") // subject=*******4567
//	slog.SetDefault(logger)
package log
