package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/linkhound/linkhound/internal/model"
)

// CSVWriter outputs the broken link table as CSV rows.
// This format is designed for spreadsheet import and ad-hoc analysis.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// brokenLinkRow is the flat CSV projection of a BrokenLinkRecord.
type brokenLinkRow struct {
	URL       string `csv:"URL"`
	Status    string `csv:"Status"`
	Code      string `csv:"Code"`
	Reason    string `csv:"Reason"`
	Referrers string `csv:"Referrers"`
}

// Write outputs one CSV row per broken link, preceded by a header row.
// Referrers are joined with a space so each record stays on one line.
func (w *CSVWriter) Write(report *model.Report) (int, error) {
	rows := make([]brokenLinkRow, 0, len(report.BrokenLinks))
	for _, link := range report.BrokenLinks {
		code := ""
		if link.Code != 0 {
			code = strconv.Itoa(link.Code)
		}
		rows = append(rows, brokenLinkRow{
			URL:       link.URL,
			Status:    link.Status.String(),
			Code:      code,
			Reason:    link.Reason,
			Referrers: strings.Join(link.Referrers, " "),
		})
	}

	var sb strings.Builder
	if err := gocsv.Marshal(&rows, &sb); err != nil {
		return 0, err
	}
	return w.output.Write([]byte(sb.String()))
}
