// Package log provides slog loggers that never write secrets or full e-mail
// addresses.
//
// SecureHandler wraps any slog.Handler and cleans every record:
//   - provider credentials (hibp-api-key, x-key, key, cx, configured API keys)
//     are replaced with MaskValue
//   - values that look like secrets (Google API keys, JWTs, bearer tokens,
//     long alphanumeric keys) are replaced with MaskValue
//   - e-mail addresses in messages and values are shortened by MaskEmail
//
// The masking stays on in verbose mode, since logs are often pasted into
// bug reports.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("querying provider", "provider", "hibp", "email", email)
//	// email is written as j***@example.com
package log
