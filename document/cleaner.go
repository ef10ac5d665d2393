package document

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	edgarMarkerRe = regexp.MustCompile(`(?m)^\s*<(/?DOCUMENT|TYPE)>[^\n<]*`)
	nonASCIIRe    = regexp.MustCompile(`[^\x00-\x7F]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize strips markup and noise from raw document text: SEC EDGAR
// boilerplate markers, HTML tags (keeping visible text joined by single
// spaces, entities decoded), non-ASCII bytes, and whitespace runs. It
// never fails; if the markup cannot be parsed the input is returned
// unchanged, since downstream stages tolerate noisy text better than a
// dropped document.
func Normalize(raw string) string {
	text := edgarMarkerRe.ReplaceAllString(raw, " ")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return raw
	}
	doc.Find("script, style").Remove()
	text = visibleText(doc)

	text = nonASCIIRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// visibleText walks the parsed tree collecting text nodes separated by
// single spaces, the way a browser would render inline boundaries.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return b.String()
}
