package storypdf_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	storypdf "github.com/alnah/go-storypdf"
)

const exampleStory = `{
  "id": "story-42",
  "name": "Lucía",
  "story": {
    "title": "el faro dormido",
    "chapters": [
      {"number": 1, "title": "la tormenta", "content": "El faro se **apagó**."},
      {"number": 2, "title": "la luz", "content": "Y volvió a brillar."}
    ],
    "word_count": 8
  },
  "generatedImages": []
}`

// Example renders a story to HTML with the embedded template.
// Rendering to PDF works the same way through Generator.Generate (requires Chrome).
func Example() {
	doc, err := storypdf.DecodeStoryBytes([]byte(exampleStory))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := storypdf.Validate(doc); err != nil {
		fmt.Println("error:", err)
		return
	}

	renderer, err := storypdf.NewTemplateRenderer()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	html, err := renderer.Render(context.Background(), doc)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(html, "El faro dormido") && strings.Contains(html, "<strong>apagó</strong>") {
		fmt.Println("HTML rendered")
	}
	// Output: HTML rendered
}

// Example_validation shows how missing fields are reported.
func Example_validation() {
	doc, err := storypdf.DecodeStoryBytes([]byte(`{"id": "story-1"}`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	err = storypdf.Validate(doc)
	fmt.Println(errors.Is(err, storypdf.ErrValidation))
	fmt.Println(err)
	// Output:
	// true
	// missing required fields: name, story
}

// Example_preview writes the HTML preview without launching a browser.
func Example_preview() {
	dir, err := os.MkdirTemp("", "storypdf-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	gen, err := storypdf.NewGenerator(storypdf.WithStore(storypdf.NewArtifactStore(dir)))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	doc, _ := storypdf.DecodeStoryBytes([]byte(exampleStory))
	res, err := gen.Preview(context.Background(), doc, "")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(filepath.Base(res.PreviewPath), res.Success)
	// Output: preview_story-42.html true
}

// ExampleArtifactFileName shows the artifact naming scheme.
func ExampleArtifactFileName() {
	name := storypdf.ArtifactFileName("story-42", time.UnixMilli(1760882700000))

	fmt.Println(strings.HasPrefix(name, "cuento_story-42_1760882700000_"))
	fmt.Println(strings.HasSuffix(name, ".pdf"))
	// Output:
	// true
	// true
}
