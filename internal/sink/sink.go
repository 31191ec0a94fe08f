package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/linkhound/linkhound/internal/model"
	"github.com/linkhound/linkhound/internal/report"
)

// Artifact names within a report prefix.
const (
	// HTMLArtifact is the human-readable report file name.
	HTMLArtifact = "broken_links_report.html"

	// JSONArtifact is the machine-readable report file name.
	JSONArtifact = "broken_links_data.json"

	// keyPrefix is the top-level storage prefix for all reports.
	keyPrefix = "reports"
)

// ErrPublish wraps any artifact storage failure.
var ErrPublish = errors.New("failed to publish report")

// Sink stores one named report artifact.
//
// Design decision: the interface takes fully-rendered bytes rather than
// a model.Report so storage backends stay ignorant of report formats.
// Rendering happens once in Publish and backends only move bytes.
type Sink interface {
	// Put stores body under key with the given content type.
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// ReportKeys returns the date-partitioned storage keys for a session
// that started at the given time. Reports from the same day share a
// prefix, so a later run that day overwrites the earlier artifacts.
func ReportKeys(startedAt time.Time) (htmlKey, jsonKey string) {
	day := startedAt.Format("2006-01-02")
	return path.Join(keyPrefix, day, HTMLArtifact), path.Join(keyPrefix, day, JSONArtifact)
}

// Publish renders the HTML and JSON artifacts and stores both in the
// sink. Any storage failure aborts publication and is returned wrapped
// in ErrPublish; callers treat it as a fatal run error.
func Publish(ctx context.Context, s Sink, rpt *model.Report) error {
	htmlKey, jsonKey := ReportKeys(rpt.Session.StartedAt)

	var htmlBuf bytes.Buffer
	if _, err := report.NewHTMLWriter(&htmlBuf).Write(rpt); err != nil {
		return fmt.Errorf("%w: render html: %v", ErrPublish, err)
	}

	var jsonBuf bytes.Buffer
	if _, err := report.NewJSONWriter(&jsonBuf, report.WithPrettyPrint()).Write(rpt); err != nil {
		return fmt.Errorf("%w: render json: %v", ErrPublish, err)
	}

	if err := s.Put(ctx, htmlKey, "text/html; charset=utf-8", htmlBuf.Bytes()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, htmlKey, err)
	}
	if err := s.Put(ctx, jsonKey, "application/json", jsonBuf.Bytes()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, jsonKey, err)
	}

	return nil
}
