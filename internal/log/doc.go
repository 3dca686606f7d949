// Package log builds the slog loggers used by secretsanta.
//
// Every logger is wrapped in a SecureHandler that masks credentials (cookies,
// authorization headers, tokens) by attribute key or value shape, and masks
// the local part of e-mail addresses found in messages and string values.
// Employee lists are made of names and addresses, so anything echoed from a
// list or from a server error ends up sanitised even in verbose mode.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("request", "cookie", "session=abc") // cookie=***REDACTED***
package log
