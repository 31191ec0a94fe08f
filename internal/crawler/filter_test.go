package crawler

import (
	"testing"
)

// TestFilterCheck tests URL classification against scope and patterns.
func TestFilterCheck(t *testing.T) {
	t.Parallel()

	filter, err := NewFilter("https://docs.example.com/", []string{"/archive/", "?print="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name        string
		target      string
		wantDecide  Decision
		wantPattern string
	}{
		{
			name:       "in-scope page allowed",
			target:     "https://docs.example.com/guide",
			wantDecide: Allow,
		},
		{
			name:       "root allowed",
			target:     "https://docs.example.com/",
			wantDecide: Allow,
		},
		{
			name:       "different host out of scope",
			target:     "https://blog.example.com/post",
			wantDecide: OutOfScope,
		},
		{
			name:       "parent domain out of scope",
			target:     "https://example.com/guide",
			wantDecide: OutOfScope,
		},
		{
			name:       "host comparison case-insensitive",
			target:     "https://DOCS.example.com/guide",
			wantDecide: Allow,
		},
		{
			name:        "path pattern excluded",
			target:      "https://docs.example.com/archive/2020",
			wantDecide:  Exclude,
			wantPattern: "/archive/",
		},
		{
			name:        "query pattern excluded",
			target:      "https://docs.example.com/guide?print=1",
			wantDecide:  Exclude,
			wantPattern: "?print=",
		},
		{
			name:       "pattern not matched against host",
			target:     "https://docs.example.com/guide-print",
			wantDecide: Allow,
		},
		{
			name:        "binary extension excluded",
			target:      "https://docs.example.com/manual.pdf",
			wantDecide:  Exclude,
			wantPattern: ".pdf",
		},
		{
			name:        "binary extension case-insensitive",
			target:      "https://docs.example.com/photo.JPG",
			wantDecide:  Exclude,
			wantPattern: ".jpg",
		},
		{
			name:       "extension only matched at path end",
			target:     "https://docs.example.com/zip-codes",
			wantDecide: Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decision, pattern := filter.Check(tt.target)
			if decision != tt.wantDecide {
				t.Fatalf("Check(%q) decision = %v, want %v", tt.target, decision, tt.wantDecide)
			}
			if pattern != tt.wantPattern {
				t.Errorf("Check(%q) pattern = %q, want %q", tt.target, pattern, tt.wantPattern)
			}
		})
	}
}

// TestFilterFirstPatternWins verifies the reported pattern is the first
// match in configuration order.
func TestFilterFirstPatternWins(t *testing.T) {
	t.Parallel()

	filter, err := NewFilter("https://example.com", []string{"/a/b", "/a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decision, pattern := filter.Check("https://example.com/a/b/c")
	if decision != Exclude {
		t.Fatalf("expected Exclude, got %v", decision)
	}
	if pattern != "/a/b" {
		t.Errorf("expected first matching pattern %q, got %q", "/a/b", pattern)
	}
}

// TestFilterNoPatterns verifies that an empty pattern list excludes
// nothing in scope.
func TestFilterNoPatterns(t *testing.T) {
	t.Parallel()

	filter, err := NewFilter("https://example.com", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decision, _ := filter.Check("https://example.com/anything"); decision != Allow {
		t.Errorf("expected Allow with no patterns, got %v", decision)
	}
	if got, want := filter.Host(), "example.com"; got != want {
		t.Errorf("Host() = %q, want %q", got, want)
	}
}

// TestFilterDefaultPortStartURL tests that an explicit default port on
// the start URL still scopes the normalized, port-stripped URLs the
// crawl processes.
func TestFilterDefaultPortStartURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		startURL string
		target   string
	}{
		{
			name:     "http default port",
			startURL: "http://example.com:80/",
			target:   "http://example.com/guide",
		},
		{
			name:     "https default port",
			startURL: "https://example.com:443/",
			target:   "https://example.com/guide",
		},
		{
			name:     "uppercase host",
			startURL: "https://EXAMPLE.com/",
			target:   "https://example.com/guide",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			filter, err := NewFilter(tt.startURL, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if decision, _ := filter.Check(tt.target); decision != Allow {
				t.Errorf("Check(%q) = %v, want Allow", tt.target, decision)
			}
		})
	}
}

// TestFilterInvalidStartURL tests that unusable start URLs are rejected.
func TestFilterInvalidStartURL(t *testing.T) {
	t.Parallel()

	for _, startURL := range []string{"", "ftp://example.com/", "/relative"} {
		if _, err := NewFilter(startURL, nil); err == nil {
			t.Errorf("NewFilter(%q) should fail", startURL)
		}
	}
}
