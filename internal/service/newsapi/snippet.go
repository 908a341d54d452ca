package newsapi

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanSnippet strips HTML markup and collapses whitespace. Plain text passes
// through unchanged apart from whitespace.
func CleanSnippet(s string) string {
	if s == "" {
		return ""
	}
	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
