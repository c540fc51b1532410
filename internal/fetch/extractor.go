package fetch

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nonContentSelectors lists structural elements stripped before text
// extraction.
const nonContentSelectors = "script, style, nav, header, footer, aside, menu"

// boilerplateSelectors lists class/id hooks that mark navigation and ad
// regions on typical government portals.
var boilerplateSelectors = []string{
	".nav", ".navigation", ".sidebar", ".advertisement",
	".footer", ".header", "#navigation", "#sidebar",
}

// mainContentSelectors is the ordered list of candidate main-content
// regions. The first match wins; <body> is the fallback.
var mainContentSelectors = []string{
	"main", ".main-content", ".content", "article",
	".main", "#main", "#content", ".page-content",
}

// ExtractText parses HTML and returns the page's normalized main-content
// text: boilerplate stripped, best-guess content region selected, and
// whitespace collapsed to single spaces.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(nonContentSelectors).Remove()
	for _, selector := range boilerplateSelectors {
		doc.Find(selector).Remove()
	}

	region := doc.Find("body").First()
	for _, selector := range mainContentSelectors {
		if match := doc.Find(selector).First(); match.Length() > 0 {
			region = match
			break
		}
	}
	if region.Length() == 0 {
		return "", nil
	}

	return normalizeWhitespace(region.Text()), nil
}

// normalizeWhitespace collapses all runs of whitespace to single spaces.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
