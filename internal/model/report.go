package model

// BrokenLinkRecord is the aggregated view over all broken PageResults
// for one URL. A broken URL discovered from several pages yields a
// single record listing every distinct referrer.
type BrokenLinkRecord struct {
	// URL is the broken link.
	URL string `json:"url"`

	// Status is the broken classification: client_error, server_error,
	// or connection_failure. A record never carries an ok status.
	Status PageStatus `json:"status"`

	// Code is the HTTP status code when the server responded (4xx/5xx).
	Code int `json:"code,omitempty"`

	// Reason is the network failure description for connection failures.
	Reason string `json:"reason,omitempty"`

	// Referrers lists the distinct pages that linked to this URL,
	// sorted lexicographically. Empty when the seed itself is broken.
	Referrers []string `json:"referrers"`
}

// Report is the durable result of one crawl session. The JSON encoding
// of this struct is the machine-readable report artifact; the HTML and
// Markdown renderings are built from the same data.
//
// Design decision: We keep report data and rendering separate. This
// struct stays free of presentation concerns so the same Report can be
// serialized to JSON, stored in the session database, rendered to HTML,
// and diffed against historical runs.
type Report struct {
	// StartURL is the seed URL of the session.
	StartURL string `json:"startURL"`

	// CrawlDate is when the session started.
	CrawlDate string `json:"crawlDate"`

	// Session carries the full session configuration and timestamps.
	Session CrawlSession `json:"session"`

	// PagesVisited is the number of fetch attempts made.
	// Always less than or equal to the session's MaxPages.
	PagesVisited int `json:"pagesVisited"`

	// BrokenLinksFound is the number of distinct broken URLs.
	BrokenLinksFound int `json:"brokenLinksFound"`

	// BrokenLinks lists every broken URL, sorted by URL.
	BrokenLinks []BrokenLinkRecord `json:"brokenLinks"`

	// Error is set only for fatal configuration errors: the run produced
	// no crawl, but still emits a report rather than crashing.
	Error string `json:"error,omitempty"`
}
