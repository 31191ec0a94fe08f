package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoStartURL is returned when no start URL is provided via
	// argument or the START_URL environment variable.
	ErrNoStartURL = errors.New("no start URL specified")

	// ErrInvalidStartURL is returned when the start URL cannot be parsed
	// or does not use an http or https scheme.
	ErrInvalidStartURL = errors.New("invalid start URL: must be an absolute http or https URL")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	// A budget of zero would mean no fetches at all.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidConcurrency is returned when the worker pool size is not
	// positive. Zero workers would stall the crawl immediately.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the per-request timeout is not
	// positive. A zero timeout would fail every fetch immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDeadline is returned when the overall crawl deadline is
	// negative. Use zero for no deadline.
	ErrInvalidDeadline = errors.New("invalid deadline: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use zero for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidExcludePatterns is returned when the EXCLUDE_PATTERNS
	// environment variable does not hold a JSON array of strings.
	ErrInvalidExcludePatterns = errors.New("invalid exclude patterns: EXCLUDE_PATTERNS must be a JSON array of strings")

	// ErrNoSink is returned when neither an S3 bucket nor an output
	// directory is configured. The engine must always have somewhere to
	// persist its report.
	ErrNoSink = errors.New("no sink configured: provide an S3 bucket or an output directory")
)
