package model

import (
	"encoding/json"
	"fmt"
)

// PageStatus classifies the outcome of processing a single URL.
// Every processed URL receives exactly one classification.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method and JSON marshaling
// provide stable human-readable output when needed.
type PageStatus int

const (
	// StatusOK indicates the page was fetched successfully (2xx, or 3xx
	// resolved within the redirect hop limit).
	StatusOK PageStatus = iota

	// StatusClientError indicates the server answered with a 4xx status code.
	// The page is counted as a broken link.
	StatusClientError

	// StatusServerError indicates the server answered with a 5xx status code.
	// The page is counted as a broken link.
	StatusServerError

	// StatusConnectionFailure indicates a network-level failure: DNS error,
	// connection refused, TLS failure, or timeout. No HTTP response exists,
	// so there is no status code. The page is counted as a broken link.
	StatusConnectionFailure

	// StatusExcluded indicates the URL matched a configured exclusion pattern.
	// Excluded URLs are recorded but never fetched.
	StatusExcluded

	// StatusOutOfScope indicates the URL's host differs from the start URL's
	// host. Out-of-scope URLs are recorded but never fetched.
	StatusOutOfScope
)

// statusNames maps each status to its wire representation.
// These strings appear in the JSON report and in the session database,
// so they must remain stable across releases.
var statusNames = map[PageStatus]string{
	StatusOK:                "ok",
	StatusClientError:       "client_error",
	StatusServerError:       "server_error",
	StatusConnectionFailure: "connection_failure",
	StatusExcluded:          "excluded",
	StatusOutOfScope:        "out_of_scope",
}

// String returns the stable wire representation of the status.
func (s PageStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Broken reports whether the status classifies the URL as a broken link.
// A broken link is a client error, server error, or connection failure;
// excluded and out-of-scope URLs were never fetched and cannot be broken.
func (s PageStatus) Broken() bool {
	switch s {
	case StatusClientError, StatusServerError, StatusConnectionFailure:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the status as its wire string.
func (s PageStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the status from its wire string.
// This is needed when reports are read back from the session database
// for historical comparison.
func (s *PageStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown page status %q", name)
}
