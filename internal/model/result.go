package model

import "time"

// CrawlTarget is a discovered URL awaiting processing in the frontier.
// Targets are created when a link is discovered (or for the seed URL),
// handed to exactly one worker, and discarded after processing.
//
// Design decision: Targets are transferred by value from discoverer to
// frontier to worker rather than shared. Nothing mutates a target after
// creation, which keeps the frontier free of per-item locking.
type CrawlTarget struct {
	// URL is the normalized absolute URL to process.
	URL string

	// Depth is the link distance from the start URL. The seed has depth 0.
	Depth int

	// Referrer is the normalized URL of the page this target was
	// discovered on. Empty for the seed.
	Referrer string
}

// PageResult records the classification outcome of one processed URL.
// Exactly one PageResult is created per processed URL; it is immutable
// after creation and owned by the coordinator's accumulator until
// report generation.
type PageResult struct {
	// URL is the normalized URL this result describes.
	URL string `json:"url"`

	// Status is the single classification that holds for this URL.
	Status PageStatus `json:"status"`

	// Code is the HTTP status code for client and server errors.
	// Zero for all other classifications.
	Code int `json:"code,omitempty"`

	// Reason carries extra detail: the network failure description for
	// connection failures, or the matched pattern for excluded URLs.
	Reason string `json:"reason,omitempty"`

	// Referrer is the page the URL was discovered on. Empty for the seed.
	Referrer string `json:"referrer,omitempty"`

	// Timestamp is when the classification was made.
	Timestamp time.Time `json:"timestamp"`
}
