package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linkhound/linkhound/internal/model"
)

// Coordinator owns a crawl session's mutable state: the frontier, the
// fetch budget, and the result accumulators. It drives the filter,
// fetcher, and extractor from a fixed pool of workers and is discarded
// when the session ends.
//
// Design decision: all session state lives on this struct and is
// injected into workers at start rather than held in package globals.
// Each Run call builds fresh state, so a Coordinator is single-use.
type Coordinator struct {
	fetcher     *Fetcher
	filter      *Filter
	concurrency int
	maxPages    int
	logger      *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithConcurrency sets the worker pool size.
func WithConcurrency(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMaxPages sets the session fetch budget.
func WithMaxPages(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a Coordinator around a fetcher and filter.
func NewCoordinator(fetcher *Fetcher, filter *Filter, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		fetcher:     fetcher,
		filter:      filter,
		concurrency: 10,
		maxPages:    100,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Run crawls from the start URL until the frontier is exhausted, the
// fetch budget saturates, or the context is done. It returns every
// recorded PageResult sorted by URL, plus the number of fetch attempts
// made (pagesVisited).
//
// Run never fails: an unreachable start URL yields a one-attempt
// session whose single result is a connection failure, and a cancelled
// context yields whatever accumulated before the deadline. Partial
// results are always valid results.
func (c *Coordinator) Run(ctx context.Context, startURL string) ([]model.PageResult, int) {
	budget := NewBudget(c.maxPages)
	frontier := NewFrontier(budget)

	seed, ok := Normalize(startURL, nil)
	if !ok {
		// Validated configuration never gets here; an unusable seed
		// simply produces an empty session.
		c.logger.Warn("unusable start URL", "url", startURL)
		return nil, 0
	}
	frontier.Enqueue(model.CrawlTarget{URL: seed})

	// Deadline or interrupt: close the frontier so blocked workers
	// drain. In-flight fetches are abandoned by their request context
	// and recorded as connection failures.
	stop := context.AfterFunc(ctx, frontier.Close)
	defer stop()

	// Per-worker local accumulators avoid lock contention on the hot
	// path; the merge below restores determinism by sorting.
	locals := make([][]model.PageResult, c.concurrency)

	g, ctx := errgroup.WithContext(ctx)
	for i := range c.concurrency {
		g.Go(func() error {
			for {
				target, ok := frontier.Dequeue()
				if !ok {
					return nil
				}
				c.process(ctx, target, frontier, budget, &locals[i])
				frontier.Done()
			}
		})
	}
	// Workers only return nil; fetch anomalies are recorded as results.
	_ = g.Wait()

	results := make([]model.PageResult, 0, frontier.SeenCount())
	for _, local := range locals {
		results = append(results, local...)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].URL < results[j].URL
	})

	c.logger.Info("crawl finished",
		"startURL", seed,
		"pagesVisited", budget.Used(),
		"urlsSeen", frontier.SeenCount(),
		"results", len(results),
	)

	return results, budget.Used()
}

// process handles one dequeued target: gate it through the filter,
// fetch it if allowed, record exactly one PageResult, and feed any
// discovered links back into the frontier.
func (c *Coordinator) process(ctx context.Context, target model.CrawlTarget, frontier *Frontier, budget *Budget, results *[]model.PageResult) {
	decision, pattern := c.filter.Check(target.URL)
	switch decision {
	case Exclude:
		*results = append(*results, model.PageResult{
			URL:       target.URL,
			Status:    model.StatusExcluded,
			Reason:    pattern,
			Referrer:  target.Referrer,
			Timestamp: time.Now().UTC(),
		})
		return
	case OutOfScope:
		*results = append(*results, model.PageResult{
			URL:       target.URL,
			Status:    model.StatusOutOfScope,
			Referrer:  target.Referrer,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	// The budget is consumed per fetch attempt. A target that lost the
	// race to the cutoff is dropped silently: discovered-but-unvisited
	// URLs do not appear in the report.
	if !budget.TryAcquire() {
		return
	}

	c.logger.Debug("fetching", "url", target.URL, "depth", target.Depth)
	outcome := c.fetcher.Fetch(ctx, target.URL)

	*results = append(*results, model.PageResult{
		URL:       target.URL,
		Status:    outcome.Status,
		Code:      outcome.Code,
		Reason:    outcome.Reason,
		Referrer:  target.Referrer,
		Timestamp: time.Now().UTC(),
	})

	if outcome.Status != model.StatusOK || outcome.Body == nil {
		return
	}

	base, err := url.Parse(target.URL)
	if err != nil {
		return
	}

	for raw := range ExtractLinks(bytes.NewReader(outcome.Body)) {
		normalized, usable := Normalize(raw, base)
		if !usable || normalized == target.URL {
			continue
		}
		frontier.Enqueue(model.CrawlTarget{
			URL:      normalized,
			Depth:    target.Depth + 1,
			Referrer: target.URL,
		})
	}
}
