package textutil

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips markup from user supplied text, drops control characters other than newlines and
// tabs, trims the result and caps it at limit runes. A non-positive limit disables the cap.
func PlainText(value string, limit int) string {
	if value == "" {
		return ""
	}
	cleaned := html.UnescapeString(strictPolicy.Sanitize(value))
	cleaned = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, cleaned)
	return truncateRunes(strings.TrimSpace(cleaned), limit)
}

// SingleLine is PlainText with all whitespace runs collapsed to one space.
func SingleLine(value string, limit int) string {
	return truncateRunes(strings.Join(strings.Fields(PlainText(value, 0)), " "), limit)
}

func truncateRunes(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	count := 0
	for i := range value {
		if count == limit {
			return strings.TrimSpace(value[:i])
		}
		count++
	}
	return value
}
