package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/linkhound/linkhound/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, for example
// pasting a crawl summary into an issue or a wiki page.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeBrokenLinks(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with session information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Broken Link Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + report.StartURL + "`"},
			{"Crawl Date", report.CrawlDate},
			{"Pages Visited", strconv.Itoa(report.PagesVisited)},
			{"Broken Links", strconv.Itoa(report.BrokenLinksFound)},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert reflecting the overall outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.Error != "":
		md.Cautionf("Crawl failed before visiting any pages: %s", report.Error)
	case report.BrokenLinksFound > 0:
		md.Warningf("%d broken link(s) found across %d visited page(s).",
			report.BrokenLinksFound, report.PagesVisited)
	default:
		md.Tip("No broken links found.")
	}
	md.PlainText("")
}

// writeBrokenLinks writes the per-URL broken link table.
func (w *MarkdownWriter) writeBrokenLinks(md *markdown.Markdown, report *model.Report) {
	if len(report.BrokenLinks) == 0 {
		return
	}

	md.H2("Broken Links")
	md.PlainText("")

	rows := make([][]string, 0, len(report.BrokenLinks))
	for _, link := range report.BrokenLinks {
		detail := link.Reason
		if link.Code != 0 {
			detail = "HTTP " + strconv.Itoa(link.Code)
		}
		rows = append(rows, []string{
			link.URL,
			link.Status.String(),
			detail,
			strings.Join(link.Referrers, "<br>"),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Detail", "Found On"},
		Rows:   rows,
	})
	md.PlainText("")
}
