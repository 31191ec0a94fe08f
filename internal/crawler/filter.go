package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Decision is the exclusion filter's verdict for a URL.
type Decision int

const (
	// Allow means the URL is in scope and not excluded: fetch it.
	Allow Decision = iota

	// Exclude means the URL matched an exclusion pattern or points at a
	// binary resource. It is recorded but never fetched.
	Exclude

	// OutOfScope means the URL's host differs from the start URL's
	// host. It is recorded but never fetched.
	OutOfScope
)

// binaryExtensions are resource suffixes that can never contain links
// and are skipped rather than fetched. HEAD-checking them is left to
// external tooling to keep crawl duration bounded.
var binaryExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".pdf", ".zip", ".doc", ".docx",
}

// Filter decides whether a normalized URL may be fetched. It is pure
// and side-effect free: the same URL always yields the same decision.
//
// Patterns are plain substrings matched against the URL's path and
// query, not globs or regular expressions. This mirrors the operational
// intent of a pattern list meant for quick path fencing ("/admin",
// "?sort="); any match excludes, so pattern order only determines which
// pattern is reported as the match.
type Filter struct {
	// host is the start URL's host; URLs on any other host are out of
	// scope.
	host string

	// patterns is the ordered exclusion pattern list.
	patterns []string
}

// NewFilter creates a Filter scoped to the start URL's host. The host
// is taken from the normalized form of the start URL, so an explicit
// default port ("http://example.com:80") matches the port-stripped
// URLs the crawl actually processes.
func NewFilter(startURL string, patterns []string) (*Filter, error) {
	seed, ok := Normalize(startURL, nil)
	if !ok {
		return nil, fmt.Errorf("invalid start URL: %s", startURL)
	}
	u, err := url.Parse(seed)
	if err != nil {
		return nil, err
	}
	return &Filter{
		host:     u.Host,
		patterns: patterns,
	}, nil
}

// Check classifies a normalized URL. For Exclude decisions the second
// return value names the first matching pattern (or the binary
// extension), which the coordinator records as the exclusion reason.
func (f *Filter) Check(target string) (Decision, string) {
	u, err := url.Parse(target)
	if err != nil {
		// Normalized URLs always reparse; treat anything else as
		// out of scope rather than fetching it.
		return OutOfScope, ""
	}

	if !strings.EqualFold(u.Host, f.host) {
		return OutOfScope, ""
	}

	matchTarget := u.Path
	if u.RawQuery != "" {
		matchTarget += "?" + u.RawQuery
	}

	for _, pattern := range f.patterns {
		if pattern != "" && strings.Contains(matchTarget, pattern) {
			return Exclude, pattern
		}
	}

	pathLower := strings.ToLower(u.Path)
	for _, ext := range binaryExtensions {
		if strings.HasSuffix(pathLower, ext) {
			return Exclude, ext
		}
	}

	return Allow, ""
}

// Host returns the in-scope host the filter was built for.
func (f *Filter) Host() string {
	return f.host
}
