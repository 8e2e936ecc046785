package pipeline

import (
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged and are turned into <mark> tags
// afterwards, so raw HTML never needs to be enabled.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)
)

// NormalizeText prepares generated chapter text for Markdown conversion.
// Strips placeholder runes from the input first so callers cannot forge marks.
func NormalizeText(content string) string {
	content = strings.NewReplacer(MarkStartPlaceholder, "", MarkEndPlaceholder, "").Replace(content)
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	content = multipleBlankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.NewReplacer(MarkStartPlaceholder, "<mark>", MarkEndPlaceholder, "</mark>").Replace(content)
}
