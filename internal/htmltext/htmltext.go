// Package htmltext flattens HTML fragments from the feed into plain text.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strip returns the text content of an HTML fragment with whitespace
// collapsed to single spaces. Plain text passes through unchanged.
func Strip(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// Fall back to crude tag replacement rather than dropping the text.
		r := strings.NewReplacer("<br/>", " ", "<br />", " ", "<br>", " ", "\n", " ")
		return strings.TrimSpace(r.Replace(s))
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate cuts s to at most max runes, appending "..." when it was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimRight(string(runes[:max]), " ") + "..."
}
