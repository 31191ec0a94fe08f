// Package model defines the core data structures used throughout linkhound.
//
// This package contains the following main types:
//   - CrawlTarget: A discovered URL waiting in the frontier
//   - PageResult: The classification outcome of one processed URL
//   - CrawlSession: Configuration and lifecycle of a single crawl run
//   - Report: The durable, serializable crawl report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, report, database) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
