// Package crawler implements the crawl engine: URL normalization,
// exclusion filtering, bounded fetching, link extraction, the frontier
// work queue, and the coordinator that drives them with a fixed pool of
// concurrent workers.
//
// The engine processes each discovered URL exactly once and classifies
// it with exactly one status (see the model package). All crawl-time
// anomalies (broken links, network failures, malformed HTML) are
// recorded as data rather than raised as errors; only configuration and
// report persistence problems escalate to the caller.
//
// Concurrency model: a fixed pool of N workers shares the frontier and
// an atomic fetch budget. Workers collect results locally and the
// coordinator merges them deterministically (sorted by URL) when the
// frontier is exhausted, the budget saturates, or the deadline fires.
package crawler
