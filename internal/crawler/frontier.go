package crawler

import (
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/linkhound/linkhound/internal/model"
)

// Budget is the shared fetch budget for a session: an atomic counter
// compared against maxPages. It is acquired once per fetch attempt,
// right before dispatch, so pagesVisited can never exceed the budget
// even with concurrent workers.
type Budget struct {
	max  int64
	used atomic.Int64
}

// NewBudget creates a budget of max fetch attempts.
func NewBudget(max int) *Budget {
	return &Budget{max: int64(max)}
}

// TryAcquire consumes one fetch attempt. It returns false once the
// budget is saturated; no fetch may be dispatched after that.
func (b *Budget) TryAcquire() bool {
	for {
		used := b.used.Load()
		if used >= b.max {
			return false
		}
		if b.used.CompareAndSwap(used, used+1) {
			return true
		}
	}
}

// Saturated reports whether the budget is exhausted.
func (b *Budget) Saturated() bool {
	return b.used.Load() >= b.max
}

// Used returns the number of fetch attempts made so far.
func (b *Budget) Used() int {
	return int(b.used.Load())
}

// Frontier is the concurrent-safe work queue of discovered,
// not-yet-processed crawl targets plus the seen set.
//
// The seen-check and admission happen under one lock, so two workers
// discovering the same URL concurrently can never both admit it. The
// frontier also tracks pending work (queued plus in-process targets);
// when that count reaches zero with an empty queue the crawl is
// exhausted, which is the primary termination signal.
type Frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	queue []model.CrawlTarget
	seen  mapset.Set[string]

	// pending counts targets that are queued or being processed.
	// Workers decrement it via Done after finishing a target,
	// including any re-enqueueing of its children.
	pending int

	closed bool
	budget *Budget
}

// NewFrontier creates an empty frontier sharing the session's budget.
// Enqueueing stops once the budget is saturated: URLs discovered after
// the cutoff are dropped, so discovery order decides which URLs are
// admitted before the budget ends the session.
func NewFrontier(budget *Budget) *Frontier {
	f := &Frontier{
		seen:   mapset.NewSet[string](),
		budget: budget,
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Enqueue admits a target if its URL has not been seen and the budget
// is not yet saturated. It returns false, as a no-op, otherwise.
// Marking seen and admitting are a single atomic step.
func (f *Frontier) Enqueue(t model.CrawlTarget) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.budget.Saturated() {
		return false
	}
	if !f.seen.Add(t.URL) {
		return false
	}

	f.queue = append(f.queue, t)
	f.pending++
	f.cond.Signal()
	return true
}

// Dequeue pops the oldest target, blocking while the queue is empty but
// work is still in flight (an in-process target may yet discover more
// links). It returns false when the frontier is exhausted or closed.
//
// A closed frontier never hands out targets, even when the queue is
// non-empty: queued work left over after a deadline must be dropped,
// not dispatched against a dead context and misreported as broken.
func (f *Frontier) Dequeue() (model.CrawlTarget, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if f.closed {
			return model.CrawlTarget{}, false
		}
		if len(f.queue) > 0 {
			break
		}
		if f.pending == 0 {
			return model.CrawlTarget{}, false
		}
		f.cond.Wait()
	}

	t := f.queue[0]
	f.queue = f.queue[1:]
	return t, true
}

// Done marks one dequeued target as fully processed. When the last
// pending target finishes with an empty queue, all blocked workers are
// released to observe exhaustion.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending--
	if f.pending == 0 {
		f.cond.Broadcast()
	}
}

// Close shuts the frontier down early (deadline or cancellation).
// Blocked workers wake and drain; further enqueues are rejected.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cond.Broadcast()
}

// SeenCount returns the number of unique URLs encountered.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Cardinality()
}
