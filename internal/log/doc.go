// Package log provides structured logging for linkhound with automatic
// redaction of crawl credentials, built on top of the standard slog package.
//
// The crawler can be configured with per-site authentication cookies and
// headers (see the .linkhound config file). Those values flow through the
// fetcher and would otherwise end up in debug logs of outgoing requests.
// The RedactingHandler masks them before they reach the underlying handler.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Debug("request sent",
//	    "cookie", "session=abc123", // masked
//	    "url", "https://example.com/docs",
//	)
//	slog.SetDefault(logger)
package log
