package storypdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-storypdf/internal/assets"
	"github.com/alnah/go-storypdf/internal/pipeline"
)

// HTMLRenderer turns a story document into a standalone HTML document.
type HTMLRenderer interface {
	Render(ctx context.Context, doc *StoryDocument) (string, error)
}

// RenderContext is the data a story template executes against.
// Document fields are promoted, so templates use .Story.Title, .Name and so on.
type RenderContext struct {
	*StoryDocument
	ImagesCount int
	ShowCredits bool
	// Timestamp is the render time in RFC 3339.
	Timestamp string
}

// ChapterImage returns the image URL for a chapter: its own image_url, or
// the first generated image attached to its number.
func (c *RenderContext) ChapterImage(ch Chapter) string {
	if ch.ImageURL != "" {
		return ch.ImageURL
	}
	for _, img := range c.GeneratedImages {
		if img.Chapter == ch.Number && ch.Number > 0 {
			return img.URL
		}
	}
	return ""
}

// TemplateRenderer loads story templates and renders documents to HTML.
// Templates are parsed on every call, so edits in the template directory
// apply to the next render. Safe for concurrent use.
type TemplateRenderer struct {
	loader         assets.AssetLoader
	templateDir    string
	templateName   string
	stylesheetName string
	imageDir       string
	markdown       pipeline.FragmentRenderer
	cssInjector    pipeline.CSSInjector
	now            func() time.Time
	logger         *zap.Logger
}

// RendererOption configures a TemplateRenderer.
type RendererOption func(*TemplateRenderer)

// WithTemplateDir reads templates and stylesheets from dir, falling back
// to the embedded defaults for names the directory does not provide.
func WithTemplateDir(dir string) RendererOption {
	return func(r *TemplateRenderer) {
		r.templateDir = dir
	}
}

// WithTemplateName selects the template used by Render.
func WithTemplateName(name string) RendererOption {
	return func(r *TemplateRenderer) {
		r.templateName = name
	}
}

// WithStylesheetName selects the stylesheet injected by Render.
func WithStylesheetName(name string) RendererOption {
	return func(r *TemplateRenderer) {
		r.stylesheetName = name
	}
}

// WithImageDir resolves relative image paths against dir.
func WithImageDir(dir string) RendererOption {
	return func(r *TemplateRenderer) {
		r.imageDir = dir
	}
}

// WithRendererLogger sets the logger used for warnings.
func WithRendererLogger(l *zap.Logger) RendererOption {
	return func(r *TemplateRenderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithAssetLoader replaces template and stylesheet loading entirely.
func WithAssetLoader(l assets.AssetLoader) RendererOption {
	return func(r *TemplateRenderer) {
		r.loader = l
	}
}

// withClock overrides the render timestamp source (for testing).
func withClock(now func() time.Time) RendererOption {
	return func(r *TemplateRenderer) {
		r.now = now
	}
}

// NewTemplateRenderer creates a TemplateRenderer using the embedded
// story template and stylesheet unless options say otherwise.
func NewTemplateRenderer(opts ...RendererOption) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		templateName:   assets.DefaultTemplateName,
		stylesheetName: assets.DefaultStyleName,
		markdown:       pipeline.NewGoldmarkRenderer(),
		cssInjector:    &pipeline.CSSInjection{},
		now:            time.Now,
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.loader == nil {
		resolver, err := assets.NewAssetResolver(r.templateDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
		}
		r.loader = resolver
	}

	return r, nil
}

// LoadTemplate reads and parses the named template with the helper table bound.
func (r *TemplateRenderer) LoadTemplate(name string) (*template.Template, error) {
	src, err := r.loader.LoadTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateLoad, name, err)
	}

	tmpl, err := template.New(name).Funcs(helperFuncs(r.markdown)).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateLoad, name, err)
	}
	return tmpl, nil
}

// LoadStylesheet reads the named stylesheet. A missing stylesheet is not an
// error: a warning is logged and the document renders unstyled.
func (r *TemplateRenderer) LoadStylesheet(name string) (string, error) {
	css, err := r.loader.LoadStyle(name)
	if err != nil {
		if assets.IsNotFound(err) {
			r.logger.Warn("stylesheet not found, rendering without styles",
				zap.String("stylesheet", name))
			return "", nil
		}
		return "", fmt.Errorf("%w: stylesheet %q: %v", ErrTemplateLoad, name, err)
	}
	return css, nil
}

// Render executes the configured template for doc and injects the stylesheet.
func (r *TemplateRenderer) Render(ctx context.Context, doc *StoryDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc == nil || doc.Story == nil {
		return "", fmt.Errorf("%w: document has no story", ErrTemplateRender)
	}

	tmpl, err := r.LoadTemplate(r.templateName)
	if err != nil {
		return "", err
	}
	css, err := r.LoadStylesheet(r.stylesheetName)
	if err != nil {
		return "", err
	}

	data := &RenderContext{
		StoryDocument: doc,
		ImagesCount:   len(doc.GeneratedImages),
		ShowCredits:   true,
		Timestamp:     r.now().UTC().Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	html := r.cssInjector.InjectCSS(ctx, buf.String(), css)

	html, err = pipeline.ResolveImagePaths(html, r.imageDir)
	if err != nil {
		return "", fmt.Errorf("%w: resolving image paths: %v", ErrTemplateRender, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return html, nil
}

// Compile-time interface check.
var _ HTMLRenderer = (*TemplateRenderer)(nil)
