package report

import (
	"bytes"
	"html/template"
	"io"

	"github.com/linkhound/linkhound/internal/model"
)

// HTMLWriter outputs reports as a self-contained HTML page.
// This format is designed for browsing and sharing: the page embeds its
// own styling and needs no external assets.
//
// Design decision: We use html/template rather than string concatenation
// because it escapes URLs and failure reasons automatically. Crawled
// sites control that text, so it must never be injected raw into markup.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Broken Link Report - {{.StartURL}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; color: #333; }
h1 { color: #2c3e50; }
.summary { background: #ecf0f1; border-radius: 6px; padding: 16px 24px; margin-bottom: 24px; }
.summary p { margin: 6px 0; }
.error { background: #fdecea; border-left: 4px solid #c0392b; padding: 12px 16px; }
.ok { background: #eafaf1; border-left: 4px solid #27ae60; padding: 12px 16px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #bdc3c7; padding: 8px 12px; text-align: left; vertical-align: top; }
th { background: #34495e; color: #fff; }
tr:nth-child(even) { background: #f8f9fa; }
.status { font-weight: bold; color: #c0392b; }
</style>
</head>
<body>
<h1>Broken Link Report</h1>
<div class="summary">
<p><strong>Start URL:</strong> {{.StartURL}}</p>
<p><strong>Crawl date:</strong> {{.CrawlDate}}</p>
<p><strong>Pages visited:</strong> {{.PagesVisited}}</p>
<p><strong>Broken links found:</strong> {{.BrokenLinksFound}}</p>
</div>
{{if .Error}}
<div class="error"><strong>Crawl failed:</strong> {{.Error}}</div>
{{else if .BrokenLinks}}
<table>
<tr><th>URL</th><th>Status</th><th>Detail</th><th>Found on</th></tr>
{{range .BrokenLinks}}
<tr>
<td><a href="{{.URL}}">{{.URL}}</a></td>
<td class="status">{{.Status}}</td>
<td>{{if .Code}}HTTP {{.Code}}{{else}}{{.Reason}}{{end}}</td>
<td>{{range .Referrers}}{{.}}<br>{{end}}</td>
</tr>
{{end}}
</table>
{{else}}
<div class="ok">No broken links found.</div>
{{end}}
</body>
</html>
`))

// Write renders the report page and outputs it in one call.
func (w *HTMLWriter) Write(report *model.Report) (int, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, report); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
