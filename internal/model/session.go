package model

import "time"

// CrawlSession holds the configuration and lifecycle timestamps of a
// single crawl run. It is created at invocation start, immutable for
// the run's duration, and consumed by the report builder.
type CrawlSession struct {
	// StartURL is the normalized seed URL of the crawl.
	StartURL string `json:"startURL"`

	// ExcludePatterns is the ordered list of substring patterns that
	// fence off parts of the site. Order does not affect which URLs are
	// excluded, only which pattern is reported as the match.
	ExcludePatterns []string `json:"excludePatterns,omitempty"`

	// MaxPages is the fetch budget: the maximum number of fetch
	// attempts permitted in this session.
	MaxPages int `json:"maxPages"`

	// Concurrency is the size of the worker pool.
	Concurrency int `json:"concurrency"`

	// StartedAt is when the session began.
	StartedAt time.Time `json:"startedAt"`

	// FinishedAt is when the session ended (frontier exhaustion, budget
	// saturation, or deadline).
	FinishedAt time.Time `json:"finishedAt"`
}
