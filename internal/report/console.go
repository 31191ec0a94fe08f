package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rodaine/table"

	"github.com/linkhound/linkhound/internal/model"
)

// ConsoleWriter outputs a human-readable summary for terminal display.
// It prints the session header followed by an aligned table of broken
// links, or a short all-clear line when the crawl found nothing.
type ConsoleWriter struct {
	baseWriter
}

// NewConsoleWriter creates a ConsoleWriter that outputs to the given writer.
func NewConsoleWriter(output io.Writer) *ConsoleWriter {
	return &ConsoleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report summary and broken link table.
func (w *ConsoleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\nBroken link report for %s\n", report.StartURL)
	fmt.Fprintf(&sb, "Crawl date:    %s\n", report.CrawlDate)
	fmt.Fprintf(&sb, "Pages visited: %d\n", report.PagesVisited)
	fmt.Fprintf(&sb, "Broken links:  %d\n\n", report.BrokenLinksFound)

	switch {
	case report.Error != "":
		fmt.Fprintf(&sb, "Crawl failed: %s\n", report.Error)
	case len(report.BrokenLinks) == 0:
		sb.WriteString("No broken links found.\n")
	default:
		tbl := table.New("URL", "Status", "Detail", "Found On")
		tbl.WithWriter(&sb)
		for _, link := range report.BrokenLinks {
			detail := link.Reason
			if link.Code != 0 {
				detail = "HTTP " + strconv.Itoa(link.Code)
			}
			for i, ref := range link.Referrers {
				if i == 0 {
					tbl.AddRow(link.URL, link.Status.String(), detail, ref)
				} else {
					tbl.AddRow("", "", "", ref)
				}
			}
			if len(link.Referrers) == 0 {
				tbl.AddRow(link.URL, link.Status.String(), detail, "")
			}
		}
		tbl.Print()
	}

	return w.output.Write([]byte(sb.String()))
}
