package storypdf

import (
	"fmt"
	"time"
)

// StoryDocument is the input record for one generated story.
type StoryDocument struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Story           *Story     `json:"story"`
	GeneratedImages []ImageRef `json:"generatedImages"`
	Style           string     `json:"style,omitempty"`
	Language        string     `json:"language,omitempty"`
}

// Story holds the narrative content of a document.
type Story struct {
	Title     string    `json:"title"`
	Chapters  []Chapter `json:"chapters"`
	WordCount int       `json:"word_count"`
}

// Chapter is one section of a story. Content is Markdown-flavoured text.
type Chapter struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
}

// ImageRef references an illustration. Chapter is 1-based; 0 is the cover.
type ImageRef struct {
	URL     string `json:"url"`
	Chapter int    `json:"chapter"`
	Prompt  string `json:"prompt,omitempty"`
}

// ImagesForChapter returns the images attached to chapter n, in input order.
func (d *StoryDocument) ImagesForChapter(n int) []ImageRef {
	var out []ImageRef
	for _, img := range d.GeneratedImages {
		if img.Chapter == n {
			out = append(out, img)
		}
	}
	return out
}

// CoverImage returns the first image attached to chapter 0, if any.
func (d *StoryDocument) CoverImage() *ImageRef {
	for i := range d.GeneratedImages {
		if d.GeneratedImages[i].Chapter == 0 {
			return &d.GeneratedImages[i]
		}
	}
	return nil
}

// ArtifactMetadata summarizes the document a PDF was generated from.
type ArtifactMetadata struct {
	Title        string `json:"title"`
	ChapterCount int    `json:"chapterCount"`
	ImageCount   int    `json:"imageCount"`
	WordCount    int    `json:"wordCount"`
	Style        string `json:"style"`
	Language     string `json:"language"`
}

// ArtifactRecord describes a successfully generated PDF.
// ProcessingTime is in seconds, measured from validation start to save completion.
type ArtifactRecord struct {
	FilePath       string           `json:"filePath"`
	FileName       string           `json:"fileName"`
	Size           int64            `json:"size"`
	ProcessingTime float64          `json:"processingTime"`
	Success        bool             `json:"success"`
	Metadata       ArtifactMetadata `json:"metadata"`
}

// PreviewResult is returned by Generator.Preview.
type PreviewResult struct {
	PreviewPath string `json:"previewPath"`
	Success     bool   `json:"success"`
}

// StoreStats is a snapshot of the output directory.
// Error is set when the scan failed; the counters are then zero.
type StoreStats struct {
	TotalPDFs   int    `json:"totalPDFs"`
	TotalSize   int64  `json:"totalSize"`
	AverageSize int64  `json:"averageSize"` // Rounded to the nearest byte
	OutputPath  string `json:"outputPath"`
	Error       string `json:"error,omitempty"`
}

// PruneResult reports the outcome of an age-based cleanup.
type PruneResult struct {
	DeletedCount int    `json:"deletedCount"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// GenerateOptions customizes a single Generate call.
type GenerateOptions struct {
	// FileName overrides the generated artifact name. Must not contain separators.
	FileName string
	// Print overrides the default print settings.
	Print *PrintOverrides
}

// Default print geometry: A4 portrait, zero margins.
const (
	DefaultPaperWidth  = 8.27
	DefaultPaperHeight = 11.69
	DefaultMargin      = 0.0
	// DefaultContentTimeout bounds content loading, network idle and font readiness.
	DefaultContentTimeout = 60 * time.Second
)

// PrintOverrides holds optional print settings. A nil field keeps the default.
// Dimensions are in inches.
type PrintOverrides struct {
	PaperWidth        *float64 `json:"paperWidth,omitempty"`
	PaperHeight       *float64 `json:"paperHeight,omitempty"`
	MarginTop         *float64 `json:"marginTop,omitempty"`
	MarginBottom      *float64 `json:"marginBottom,omitempty"`
	MarginLeft        *float64 `json:"marginLeft,omitempty"`
	MarginRight       *float64 `json:"marginRight,omitempty"`
	Landscape         *bool    `json:"landscape,omitempty"`
	Scale             *float64 `json:"scale,omitempty"`
	PageRanges        *string  `json:"pageRanges,omitempty"`
	PrintBackground   *bool    `json:"printBackground,omitempty"`
	PreferCSSPageSize *bool    `json:"preferCSSPageSize,omitempty"`
	HeaderTemplate    *string  `json:"headerTemplate,omitempty"`
	FooterTemplate    *string  `json:"footerTemplate,omitempty"`
}

// Validate checks override values. A nil receiver is valid.
func (o *PrintOverrides) Validate() error {
	if o == nil {
		return nil
	}
	dims := []struct {
		name string
		v    *float64
	}{
		{"paperWidth", o.PaperWidth},
		{"paperHeight", o.PaperHeight},
	}
	for _, d := range dims {
		if d.v != nil && *d.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidOverrides, d.name, *d.v)
		}
	}
	margins := []struct {
		name string
		v    *float64
	}{
		{"marginTop", o.MarginTop},
		{"marginBottom", o.MarginBottom},
		{"marginLeft", o.MarginLeft},
		{"marginRight", o.MarginRight},
	}
	for _, m := range margins {
		if m.v != nil && *m.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidOverrides, m.name, *m.v)
		}
	}
	// Chrome accepts scale in [0.1, 2].
	if o.Scale != nil && (*o.Scale < 0.1 || *o.Scale > 2) {
		return fmt.Errorf("%w: scale must be between 0.1 and 2, got %v", ErrInvalidOverrides, *o.Scale)
	}
	return nil
}

// printSettings is the fully resolved print configuration handed to a backend.
type printSettings struct {
	PaperWidth        float64
	PaperHeight       float64
	MarginTop         float64
	MarginBottom      float64
	MarginLeft        float64
	MarginRight       float64
	Landscape         bool
	Scale             float64
	PageRanges        string
	PrintBackground   bool
	PreferCSSPageSize bool
	HeaderTemplate    string
	FooterTemplate    string
}

// defaultPrintSettings returns the fixed A4 layout used for every story.
func defaultPrintSettings() printSettings {
	return printSettings{
		PaperWidth:        DefaultPaperWidth,
		PaperHeight:       DefaultPaperHeight,
		MarginTop:         DefaultMargin,
		MarginBottom:      DefaultMargin,
		MarginLeft:        DefaultMargin,
		MarginRight:       DefaultMargin,
		Scale:             1,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

// resolvePrintSettings merges overrides into the defaults.
func resolvePrintSettings(o *PrintOverrides) printSettings {
	s := defaultPrintSettings()
	if o == nil {
		return s
	}
	setFloat(&s.PaperWidth, o.PaperWidth)
	setFloat(&s.PaperHeight, o.PaperHeight)
	setFloat(&s.MarginTop, o.MarginTop)
	setFloat(&s.MarginBottom, o.MarginBottom)
	setFloat(&s.MarginLeft, o.MarginLeft)
	setFloat(&s.MarginRight, o.MarginRight)
	setFloat(&s.Scale, o.Scale)
	if o.Landscape != nil {
		s.Landscape = *o.Landscape
	}
	if o.PageRanges != nil {
		s.PageRanges = *o.PageRanges
	}
	if o.PrintBackground != nil {
		s.PrintBackground = *o.PrintBackground
	}
	if o.PreferCSSPageSize != nil {
		s.PreferCSSPageSize = *o.PreferCSSPageSize
	}
	if o.HeaderTemplate != nil {
		s.HeaderTemplate = *o.HeaderTemplate
	}
	if o.FooterTemplate != nil {
		s.FooterTemplate = *o.FooterTemplate
	}
	return s
}

// displayHeaderFooter reports whether Chrome should paint header/footer templates.
func (s printSettings) displayHeaderFooter() bool {
	return s.HeaderTemplate != "" || s.FooterTemplate != ""
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
