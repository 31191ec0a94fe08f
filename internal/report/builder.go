package report

import (
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/linkhound/linkhound/internal/model"
)

// crawlDateFormat is the timestamp layout used in report artifacts.
const crawlDateFormat = "2006-01-02 15:04:05"

// Build aggregates per-page crawl results into a Report.
//
// Broken results for the same URL collapse into one BrokenLinkRecord
// carrying every distinct referrer. Records are sorted by URL and
// referrers lexicographically, so the same crawl data always yields a
// byte-identical report regardless of worker scheduling.
func Build(session model.CrawlSession, results []model.PageResult, pagesVisited int) *model.Report {
	type aggregate struct {
		status    model.PageStatus
		code      int
		reason    string
		referrers mapset.Set[string]
	}

	broken := make(map[string]*aggregate)
	for _, r := range results {
		if !r.Status.Broken() {
			continue
		}
		agg, ok := broken[r.URL]
		if !ok {
			agg = &aggregate{
				status:    r.Status,
				code:      r.Code,
				reason:    r.Reason,
				referrers: mapset.NewSet[string](),
			}
			broken[r.URL] = agg
		}
		if r.Referrer != "" {
			agg.referrers.Add(r.Referrer)
		}
	}

	records := make([]model.BrokenLinkRecord, 0, len(broken))
	for url, agg := range broken {
		referrers := agg.referrers.ToSlice()
		sort.Strings(referrers)
		records = append(records, model.BrokenLinkRecord{
			URL:       url,
			Status:    agg.status,
			Code:      agg.code,
			Reason:    agg.reason,
			Referrers: referrers,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].URL < records[j].URL
	})

	return &model.Report{
		StartURL:         session.StartURL,
		CrawlDate:        session.StartedAt.Format(crawlDateFormat),
		Session:          session,
		PagesVisited:     pagesVisited,
		BrokenLinksFound: len(records),
		BrokenLinks:      records,
	}
}

// BuildError creates a zero-page report for a run that failed before
// any crawling happened. The report records the fatal error instead of
// crawl data, so the artifact pipeline still produces output.
func BuildError(session model.CrawlSession, fatal error) *model.Report {
	started := session.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	return &model.Report{
		StartURL:         session.StartURL,
		CrawlDate:        started.Format(crawlDateFormat),
		Session:          session,
		PagesVisited:     0,
		BrokenLinksFound: 0,
		BrokenLinks:      []model.BrokenLinkRecord{},
		Error:            fatal.Error(),
	}
}
