package database

import (
	"context"
	"testing"
	"time"

	"github.com/linkhound/linkhound/internal/model"
)

// openTestDB opens a SessionDB in a temp directory.
func openTestDB(t *testing.T) *SessionDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

// makeReport builds a report fixture for the given site and broken URLs.
func makeReport(site string, pagesVisited int, brokenURLs ...string) *model.Report {
	broken := make([]model.BrokenLinkRecord, 0, len(brokenURLs))
	for _, u := range brokenURLs {
		broken = append(broken, model.BrokenLinkRecord{
			URL:       u,
			Status:    model.StatusClientError,
			Code:      404,
			Referrers: []string{"https://" + site + "/"},
		})
	}
	return &model.Report{
		StartURL:  "https://" + site + "/",
		CrawlDate: "2026-03-15 09:30:00",
		Session: model.CrawlSession{
			StartURL:  "https://" + site + "/",
			MaxPages:  100,
			StartedAt: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		},
		PagesVisited:     pagesVisited,
		BrokenLinksFound: len(broken),
		BrokenLinks:      broken,
	}
}

// TestOpenCreateIfNotExists tests database creation behavior.
func TestOpenCreateIfNotExists(t *testing.T) {
	t.Parallel()

	t.Run("creates database and directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir() + "/nested"
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer db.Close()
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

// TestSaveAndGetLatestReport tests the save/load round trip.
func TestSaveAndGetLatestReport(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	report := makeReport("docs.example.com", 42, "https://docs.example.com/missing")
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	got, err := db.GetLatestReport(ctx, "docs.example.com")
	if err != nil {
		t.Fatalf("failed to get report: %v", err)
	}
	if got == nil {
		t.Fatal("expected a report")
	}
	if got.StartURL != report.StartURL {
		t.Errorf("StartURL = %q, want %q", got.StartURL, report.StartURL)
	}
	if got.PagesVisited != 42 {
		t.Errorf("PagesVisited = %d, want 42", got.PagesVisited)
	}
	if len(got.BrokenLinks) != 1 {
		t.Fatalf("got %d broken links, want 1", len(got.BrokenLinks))
	}
	if got.BrokenLinks[0].Status != model.StatusClientError {
		t.Errorf("status = %v, want client_error", got.BrokenLinks[0].Status)
	}
}

// TestGetLatestReportMissing verifies an unknown site returns nil, nil.
func TestGetLatestReportMissing(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	got, err := db.GetLatestReport(context.Background(), "unknown.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil report for unknown site")
	}
}

// TestGetHistory tests history ordering.
func TestGetHistory(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	first := makeReport("docs.example.com", 10, "https://docs.example.com/a")
	second := makeReport("docs.example.com", 20, "https://docs.example.com/a", "https://docs.example.com/b")
	if err := db.SaveReport(ctx, first); err != nil {
		t.Fatalf("failed to save first report: %v", err)
	}
	if err := db.SaveReport(ctx, second); err != nil {
		t.Fatalf("failed to save second report: %v", err)
	}

	history, err := db.GetHistory(ctx, "docs.example.com")
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d reports, want 2", len(history))
	}
	// Newest first.
	if history[0].PagesVisited != 20 {
		t.Errorf("newest report PagesVisited = %d, want 20", history[0].PagesVisited)
	}
	if history[1].PagesVisited != 10 {
		t.Errorf("oldest report PagesVisited = %d, want 10", history[1].PagesVisited)
	}
}

// TestGetHistoryWithMetadata tests the summary view.
func TestGetHistoryWithMetadata(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	report := makeReport("docs.example.com", 15, "https://docs.example.com/x")
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	metas, err := db.GetHistoryWithMetadata(ctx, "docs.example.com")
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("got %d entries, want 1", len(metas))
	}

	meta := metas[0]
	if meta.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if meta.Site != "docs.example.com" {
		t.Errorf("Site = %q", meta.Site)
	}
	if meta.PagesVisited != 15 {
		t.Errorf("PagesVisited = %d, want 15", meta.PagesVisited)
	}
	if meta.BrokenCount != 1 {
		t.Errorf("BrokenCount = %d, want 1", meta.BrokenCount)
	}
	if meta.Timestamp.IsZero() {
		t.Error("expected parsed timestamp")
	}
}

// TestGetReportByID tests lookup by database ID.
func TestGetReportByID(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveReport(ctx, makeReport("docs.example.com", 5)); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	metas, err := db.GetHistoryWithMetadata(ctx, "docs.example.com")
	if err != nil || len(metas) != 1 {
		t.Fatalf("failed to get metadata: %v", err)
	}

	got, err := db.GetReportByID(ctx, metas[0].ID)
	if err != nil {
		t.Fatalf("failed to get report by ID: %v", err)
	}
	if got == nil || got.PagesVisited != 5 {
		t.Errorf("got %+v, want PagesVisited 5", got)
	}

	missing, err := db.GetReportByID(ctx, 99999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown ID")
	}
}

// TestListSites tests site enumeration.
func TestListSites(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveReport(ctx, makeReport("b.example.com", 1)); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if err := db.SaveReport(ctx, makeReport("a.example.com", 1)); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if err := db.SaveReport(ctx, makeReport("a.example.com", 2)); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	sites, err := db.ListSites(ctx)
	if err != nil {
		t.Fatalf("failed to list sites: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("got %d sites, want 2", len(sites))
	}
	if sites[0] != "a.example.com" || sites[1] != "b.example.com" {
		t.Errorf("sites = %v, want sorted [a.example.com b.example.com]", sites)
	}
}

// TestParseTimestamp tests the multi-format timestamp fallback.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		wantZero bool
	}{
		{"2026-03-15 09:30:00", false},
		{"2026-03-15T09:30:00Z", false},
		{"2026-03-15T09:30:00", false},
		{"not a timestamp", true},
		{"", true},
	}

	for _, tt := range tests {
		got := parseTimestamp(tt.input)
		if got.IsZero() != tt.wantZero {
			t.Errorf("parseTimestamp(%q) zero = %v, want %v", tt.input, got.IsZero(), tt.wantZero)
		}
	}
}

// TestSiteKeyCaseInsensitive tests that a session saved under a
// mixed-case start URL is found by its lowercase site key.
func TestSiteKeyCaseInsensitive(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	rpt := makeReport("example.com", 10, "https://example.com/missing")
	rpt.StartURL = "https://Example.COM/"
	rpt.Session.StartURL = rpt.StartURL
	if err := db.SaveReport(ctx, rpt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetLatestReport(ctx, "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected mixed-case session to be found by lowercase site key")
	}
	if got.StartURL != "https://Example.COM/" {
		t.Errorf("StartURL = %q, want the original casing preserved", got.StartURL)
	}

	sites, err := db.ListSites(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 1 || sites[0] != "example.com" {
		t.Errorf("ListSites = %v, want [example.com]", sites)
	}
}
