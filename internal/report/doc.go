// Package report builds crawl reports and writes them in multiple formats.
//
// The Builder aggregates per-page crawl results into a model.Report:
// broken pages are grouped by URL with every distinct referrer that
// linked to them, and ordering is made deterministic so two crawls of
// the same site produce byte-identical artifacts.
//
// This package contains writers for different output formats:
//   - ConsoleWriter: Human-readable table output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - HTMLWriter: Self-contained HTML page for sharing in a browser
//   - MarkdownWriter: Markdown summary for documentation
//   - CSVWriter: Flat rows for spreadsheet import
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
