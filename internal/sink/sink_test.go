package sink

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/linkhound/linkhound/internal/model"
	"github.com/linkhound/linkhound/internal/report"
)

// recordingSink captures Put calls for assertions.
type recordingSink struct {
	puts map[string][]byte
	fail string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{puts: make(map[string][]byte)}
}

func (r *recordingSink) Put(_ context.Context, key, _ string, body []byte) error {
	if r.fail != "" && strings.Contains(key, r.fail) {
		return errors.New("storage unavailable")
	}
	r.puts[key] = body
	return nil
}

// testReport builds a small finished report fixture.
func testReport() *model.Report {
	session := model.CrawlSession{
		StartURL:  "https://example.com/",
		MaxPages:  100,
		StartedAt: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
	}
	return report.Build(session, []model.PageResult{
		{URL: "https://example.com/", Status: model.StatusOK, Code: 200},
		{URL: "https://example.com/missing", Status: model.StatusClientError, Code: 404, Referrer: "https://example.com/"},
	}, 2)
}

// TestReportKeys tests the date-partitioned key layout.
func TestReportKeys(t *testing.T) {
	t.Parallel()

	htmlKey, jsonKey := ReportKeys(time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC))

	if want := "reports/2026-03-15/broken_links_report.html"; htmlKey != want {
		t.Errorf("htmlKey = %q, want %q", htmlKey, want)
	}
	if want := "reports/2026-03-15/broken_links_data.json"; jsonKey != want {
		t.Errorf("jsonKey = %q, want %q", jsonKey, want)
	}
}

// TestPublish tests artifact rendering and storage.
func TestPublish(t *testing.T) {
	t.Parallel()

	t.Run("stores both artifacts", func(t *testing.T) {
		t.Parallel()

		s := newRecordingSink()
		if err := Publish(context.Background(), s, testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		htmlBody, ok := s.puts["reports/2026-03-15/broken_links_report.html"]
		if !ok {
			t.Fatal("HTML artifact not stored")
		}
		if !strings.Contains(string(htmlBody), "https://example.com/missing") {
			t.Error("HTML artifact missing broken link")
		}

		jsonBody, ok := s.puts["reports/2026-03-15/broken_links_data.json"]
		if !ok {
			t.Fatal("JSON artifact not stored")
		}
		if !strings.Contains(string(jsonBody), `"brokenLinksFound": 1`) {
			t.Error("JSON artifact missing broken link count")
		}
	})

	t.Run("storage failure escalates", func(t *testing.T) {
		t.Parallel()

		s := newRecordingSink()
		s.fail = ".json"

		err := Publish(context.Background(), s, testReport())
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, ErrPublish) {
			t.Errorf("error %v should wrap ErrPublish", err)
		}
	})
}
