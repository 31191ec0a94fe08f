package crawler

import (
	"io"
	"iter"

	"golang.org/x/net/html"
)

// ExtractLinks parses an HTML body and yields the raw href value of
// every anchor element, in document order. The sequence is finite and
// single-use.
//
// Extraction is best-effort: the x/net/html parser repairs malformed
// markup instead of failing, and a read error mid-parse simply ends the
// sequence early with whatever was found. A bad page degrades its own
// discovered-link set, never the crawl.
//
// Non-hyperlink resources (img, script, link rel=stylesheet) are not
// link discovery targets and are ignored.
func ExtractLinks(body io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		doc, err := html.Parse(body)
		if err != nil {
			return
		}

		for n := range doc.Descendants() {
			if n.Type != html.ElementNode || n.Data != "a" {
				continue
			}
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					if !yield(attr.Val) {
						return
					}
					break
				}
			}
		}
	}
}
