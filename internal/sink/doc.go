// Package sink persists finished report artifacts to durable storage.
//
// A Sink stores named report artifacts. Two implementations exist:
// S3Sink uploads to an S3 bucket for scheduled production runs, and
// FSSink writes to a local directory for development and testing.
//
// Sink failures are the one class of error that escalates: a crawl
// whose report cannot be stored has failed, even though broken pages
// found during the crawl are ordinary data.
package sink
