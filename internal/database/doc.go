// Package database provides SQLite-based storage for crawl session history.
//
// Each finished crawl is stored as one row holding the full report JSON
// plus queryable summary columns. The history enables the compare
// command to diff the latest two sessions of a site and report which
// broken links are new, resolved, or unchanged.
//
// We use modernc.org/sqlite, a pure Go SQLite implementation, so the
// binary cross-compiles without cgo.
package database
