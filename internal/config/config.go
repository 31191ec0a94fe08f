package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These mirror the operational defaults the
// crawler has always shipped with and are chosen to keep a single run
// bounded and predictable.
const (
	// DefaultMaxPages caps the number of fetch attempts per session.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Override with --max-pages.
	DefaultMaxPages = 100

	// DefaultConcurrency is the worker pool size. Ten concurrent
	// requests against a single site balances throughput with
	// politeness toward the target server.
	DefaultConcurrency = 10

	// DefaultTimeout bounds each individual GET. It is a safety ceiling
	// independent of the overall crawl deadline: one slow page must not
	// stall a worker indefinitely.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRedirects bounds redirect chains per fetch. Ten hops is
	// the conventional browser limit; longer chains are treated as
	// connection failures.
	DefaultMaxRedirects = 10

	// DefaultMaxBodySize limits the response body read per page. 5MB is
	// generous for HTML while preventing memory exhaustion from
	// unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies linkhound in HTTP requests. A
	// descriptive User-Agent lets site operators recognize crawler
	// traffic in their logs.
	DefaultUserAgent = "linkhound/1.0 (+https://github.com/linkhound/linkhound)"

	// DefaultOutputDir is where reports are written when no S3 bucket
	// is configured.
	DefaultOutputDir = "reports"

	// AppName is the application name used for XDG directory paths.
	AppName = "linkhound"
)

// Environment variable names accepted as invocation input. These exist
// for scheduler-style invocation where flags are inconvenient: a cron
// wrapper or container entrypoint sets the environment and runs
// `linkhound crawl` with no arguments.
const (
	EnvStartURL        = "START_URL"
	EnvExcludePatterns = "EXCLUDE_PATTERNS"
	EnvMaxPages        = "MAX_PAGES"
	EnvS3Bucket        = "S3_BUCKET"
)

// Config holds all configuration for a crawl session.
// It is populated from CLI flags (with environment fallbacks), validated
// once, and passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// StartURL is the seed URL the crawl begins from. Required.
	StartURL string

	// ExcludePatterns are plain substrings matched against each URL's
	// path and query. A match excludes the URL from fetching.
	ExcludePatterns []string

	// MaxPages is the fetch budget for the session.
	MaxPages int

	// Concurrency is the number of parallel crawl workers.
	Concurrency int

	// Timeout is the per-request timeout for each GET.
	Timeout time.Duration

	// Deadline bounds the whole crawl. Zero means no deadline; the
	// session ends on frontier exhaustion or budget saturation.
	Deadline time.Duration

	// MaxRedirects bounds redirect chains per fetch.
	MaxRedirects int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Headers are extra HTTP headers sent with every request, typically
	// loaded from the site config file (e.g. an auth cookie for a
	// staging site behind basic auth).
	Headers map[string]string

	// S3Bucket is the object-storage sink for the report artifacts.
	// When empty, reports are written under OutputDir instead.
	S3Bucket string

	// OutputDir is the local directory sink used when S3Bucket is empty.
	OutputDir string

	// ReportFile, when set, additionally writes the rendered report to
	// this path.
	ReportFile string

	// JSONStdout prints the JSON report to stdout instead of the
	// human-readable summary table.
	JSONStdout bool

	// MarkdownStdout prints the Markdown report instead of the summary
	// table. Mutually exclusive with JSONStdout and CSVStdout.
	MarkdownStdout bool

	// CSVStdout prints the broken link table as CSV rows instead of the
	// summary table. Mutually exclusive with JSONStdout and MarkdownStdout.
	CSVStdout bool

	// ConfigFilePath is the path to the .linkhound config file. Empty
	// means search the current directory and then the home directory.
	ConfigFilePath string

	// Verbose enables debug-level log output.
	Verbose bool

	// DBDir is the directory for the SQLite session history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB controls whether finished sessions are written to the
	// history database for later comparison.
	SaveToDB bool
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would be error-prone; this
// constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxPages:     DefaultMaxPages,
		Concurrency:  DefaultConcurrency,
		Timeout:      DefaultTimeout,
		MaxRedirects: DefaultMaxRedirects,
		MaxBodySize:  DefaultMaxBodySize,
		UserAgent:    DefaultUserAgent,
		OutputDir:    DefaultOutputDir,
		DBDir:        XDGDataDir(),
		SaveToDB:     true,
	}
}

// ApplyEnv fills unset invocation inputs from the environment. Explicit
// flag values win; the environment only supplies what is missing. The
// EXCLUDE_PATTERNS variable holds a JSON array of strings, matching the
// shape schedulers pass as event payloads.
func (c *Config) ApplyEnv() error {
	if c.StartURL == "" {
		c.StartURL = os.Getenv(EnvStartURL)
	}
	if c.S3Bucket == "" {
		c.S3Bucket = os.Getenv(EnvS3Bucket)
	}
	if len(c.ExcludePatterns) == 0 {
		if raw := os.Getenv(EnvExcludePatterns); raw != "" {
			var patterns []string
			if err := json.Unmarshal([]byte(raw), &patterns); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidExcludePatterns, err)
			}
			c.ExcludePatterns = patterns
		}
	}
	if c.MaxPages == DefaultMaxPages {
		if raw := os.Getenv(EnvMaxPages); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return ErrInvalidMaxPages
			}
			c.MaxPages = n
		}
	}
	return nil
}

// Validate checks the configuration and returns a specific error
// describing the first problem found. We validate once after flag
// parsing, before any crawling begins, to fail fast with a clear
// message rather than at the point of use.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	u, err := url.Parse(c.StartURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidStartURL
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Deadline < 0 {
		return ErrInvalidDeadline
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.S3Bucket == "" && c.OutputDir == "" {
		return ErrNoSink
	}

	return nil
}

// XDGDataDir returns the XDG data directory for linkhound.
// On Linux: ~/.local/share/linkhound
// On macOS: ~/Library/Application Support/linkhound
// On Windows: %LOCALAPPDATA%\linkhound
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkhound.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
