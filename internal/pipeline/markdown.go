package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdownConversion indicates chapter Markdown could not be converted.
var ErrMarkdownConversion = errors.New("markdown conversion failed")

// FragmentRenderer converts chapter text into an HTML fragment.
type FragmentRenderer interface {
	RenderFragment(content string) (string, error)
}

// GoldmarkRenderer converts Markdown to HTML fragments using goldmark.
// Safe for concurrent use.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer creates a GoldmarkRenderer with the extensions useful
// for narrative text: GFM, footnotes and typographic punctuation.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// Raw HTML in chapter text is omitted; stories come from generators.
		),
	)
	return &GoldmarkRenderer{md: md}
}

// RenderFragment normalizes content and returns the HTML body fragment,
// with ==highlight== spans rendered as <mark>.
func (r *GoldmarkRenderer) RenderFragment(content string) (string, error) {
	normalized := NormalizeText(content)
	if normalized == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(normalized), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdownConversion, err)
	}
	return ConvertMarkPlaceholders(buf.String()), nil
}

// Compile-time interface check.
var _ FragmentRenderer = (*GoldmarkRenderer)(nil)
