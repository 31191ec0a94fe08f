package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/linkhound/linkhound/internal/model"
)

// FetchOutcome is the classified result of one GET.
// Exactly one of the broken statuses, StatusOK, holds; Body is non-nil
// only for OK HTML responses that should be handed to the extractor.
type FetchOutcome struct {
	// Status is the fetch classification.
	Status model.PageStatus

	// Code is the HTTP status code when a response was received.
	Code int

	// Reason describes the network failure for connection failures.
	Reason string

	// Body is the decoded HTML body for successful HTML pages, nil
	// otherwise (non-HTML content, errors, oversized bodies truncated).
	Body []byte
}

// Fetcher performs single bounded GETs and classifies their outcome.
// It never retries: a failed fetch is a terminal classification for that
// URL within the session, which keeps crawl duration bounded and
// predictable. Retry policies belong in a decorator around Fetch, not
// here.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	cookie      string
	headers     map[string]string
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithCookie sets a cookie sent with every request, typically an auth
// session for a protected staging site.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithClient replaces the HTTP client. Used by tests to inject
// transports; production callers should rely on NewFetcher's client.
func WithClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a Fetcher with a per-request timeout and a bounded
// redirect hop count. Redirect chains longer than maxRedirects are
// classified as connection failures rather than followed forever.
func NewFetcher(timeout time.Duration, maxRedirects int, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent:   "linkhound/1.0",
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch issues one GET for the URL and classifies the outcome:
//
//   - 2xx (including 3xx resolved within the hop limit) -> StatusOK,
//     with the body returned for extraction when it is HTML
//   - 4xx -> StatusClientError with the code
//   - 5xx -> StatusServerError with the code
//   - transport failure (DNS, refused connection, TLS, timeout,
//     context cancellation, redirect overflow) -> StatusConnectionFailure
//     with a reason string
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) FetchOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return FetchOutcome{Status: model.StatusConnectionFailure, Reason: failureReason(err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchOutcome{Status: model.StatusConnectionFailure, Reason: failureReason(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return FetchOutcome{Status: model.StatusServerError, Code: resp.StatusCode}
	case resp.StatusCode >= 400:
		return FetchOutcome{Status: model.StatusClientError, Code: resp.StatusCode}
	}

	outcome := FetchOutcome{Status: model.StatusOK, Code: resp.StatusCode}

	// Only HTML carries links worth extracting; other content types are
	// healthy pages with nothing to discover.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return outcome
	}

	limited := io.LimitReader(resp.Body, f.maxBodySize)

	// Decode non-UTF-8 pages before parsing. On failure fall back to
	// the raw bytes; extraction is best-effort.
	reader, err := charset.NewReader(limited, contentType)
	if err != nil {
		reader = limited
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		// A truncated body degrades this page's discovered links, not
		// the fetch itself.
		return outcome
	}

	outcome.Body = body
	return outcome
}

// failureReason converts a transport error into a stable, compact
// reason string for the report. Context deadlines are reported as
// timeouts so abandoned in-flight fetches read sensibly.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout: deadline exceeded"
	case errors.Is(err, context.Canceled):
		return "timeout: crawl cancelled"
	}

	// url.Error wraps the transport error with method and URL; the URL
	// is already recorded on the result, so keep only the cause.
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 && idx+2 < len(msg) {
		return msg[idx+2:]
	}
	return msg
}
