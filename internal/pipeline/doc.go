// Package pipeline implements the HTML stages of story rendering that sit
// around template execution:
//   - chapter text normalization (line endings, blank lines, ==highlight== syntax)
//   - chapter Markdown to HTML fragments via Goldmark
//   - stylesheet injection into the rendered document
//   - resolution of relative image paths against a local image directory
//
// PDF generation is handled separately by the root storypdf package using
// headless Chrome. This package never touches the browser.
package pipeline
