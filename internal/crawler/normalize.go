package crawler

import (
	"net/url"
	"strings"
)

// schemePrefixes that can never yield a fetchable page. Links carrying
// them are unusable input, not broken links, and are discarded silently.
var skipPrefixes = []string{
	"javascript:",
	"mailto:",
	"tel:",
	"data:",
}

// Normalize resolves a raw link against the page it was found on and
// canonicalizes it for deduplication:
//
//   - relative references are resolved against base
//   - scheme and host are lowercased
//   - the fragment is stripped
//   - default ports (:80 for http, :443 for https) are removed
//   - one trailing slash is stripped from the path, but "/" is never
//     collapsed to empty, and an empty path becomes "/"
//
// The second return value is false for unusable input: unparseable
// URLs, non-http(s) schemes, bare fragments, and javascript:/mailto:
// style pseudo-links. Callers must discard those without recording a
// result.
//
// Normalize is idempotent: normalizing an already-normalized URL is a
// no-op.
func Normalize(rawURL string, base *url.URL) (string, bool) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" || raw == "#" {
		return "", false
	}
	lower := strings.ToLower(raw)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Remove default ports so http://example.com:80/ and
	// http://example.com/ deduplicate to the same URL.
	switch {
	case u.Scheme == "http" && u.Port() == "80":
		u.Host = u.Hostname()
	case u.Scheme == "https" && u.Port() == "443":
		u.Host = u.Hostname()
	}

	switch {
	case u.Path == "":
		u.Path = "/"
	case len(u.Path) > 1 && strings.HasSuffix(u.Path, "/"):
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), true
}
