package storypdf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-storypdf/internal/fileutil"
	"github.com/alnah/go-storypdf/internal/metrics"
)

const previewPerm = 0o640

// DefaultOutputDir is where artifacts go when no store is configured.
var DefaultOutputDir = filepath.Join("temp", "pdfs")

// Generator runs the story pipeline: validate, render HTML, render PDF, save.
// It owns the engine and shuts it down on Close. Safe for concurrent use.
type Generator struct {
	renderer HTMLRenderer
	engine   Engine
	store    *ArtifactStore
	now      func() time.Time
	logger   *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRenderer replaces the HTML renderer.
func WithRenderer(r HTMLRenderer) GeneratorOption {
	return func(g *Generator) {
		g.renderer = r
	}
}

// WithEngine replaces the rendering engine.
func WithEngine(e Engine) GeneratorOption {
	return func(g *Generator) {
		g.engine = e
	}
}

// WithStore replaces the artifact store.
func WithStore(s *ArtifactStore) GeneratorOption {
	return func(g *Generator) {
		g.store = s
	}
}

// WithLogger sets the logger for pipeline runs.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// withGeneratorClock overrides the clock used for timing and naming (for testing).
func withGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator. Missing components get defaults:
// the embedded template, a rod engine and a store in DefaultOutputDir.
func NewGenerator(opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.renderer == nil {
		r, err := NewTemplateRenderer(WithRendererLogger(g.logger))
		if err != nil {
			return nil, err
		}
		g.renderer = r
	}
	if g.engine == nil {
		g.engine = NewRodEngine(WithEngineLogger(g.logger))
	}
	if g.store == nil {
		g.store = NewArtifactStore(DefaultOutputDir, WithStoreLogger(g.logger))
	}
	return g, nil
}

// Generate renders doc to PDF and stores it. Input is validated before any
// rendering work, so an invalid document never touches the engine.
func (g *Generator) Generate(ctx context.Context, doc *StoryDocument, opts GenerateOptions) (rec *ArtifactRecord, err error) {
	start := g.now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generating story PDF: internal error: %v", r)
			rec = nil
		}
		g.observe("generate", doc, start, err)
	}()

	if err := Validate(doc); err != nil {
		return nil, fmt.Errorf("generating story PDF: validating story: %w", err)
	}
	if err := opts.Print.Validate(); err != nil {
		return nil, fmt.Errorf("generating story PDF: validating story: %w", err)
	}

	html, err := g.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("generating story PDF: rendering HTML: %w", err)
	}

	pdf, err := g.engine.RenderToPDF(ctx, html, opts.Print)
	if err != nil {
		return nil, fmt.Errorf("generating story PDF: rendering PDF: %w", err)
	}

	fileName := opts.FileName
	if fileName == "" {
		fileName = ArtifactFileName(doc.ID, g.now())
	}
	saved, err := g.store.Save(ctx, pdf, fileName)
	if err != nil {
		return nil, fmt.Errorf("generating story PDF: saving artifact: %w", err)
	}

	return &ArtifactRecord{
		FilePath:       saved.FilePath,
		FileName:       saved.FileName,
		Size:           saved.Size,
		ProcessingTime: g.now().Sub(start).Seconds(),
		Success:        true,
		Metadata:       metadataFor(doc),
	}, nil
}

// Preview renders doc to HTML and writes it to outputPath without
// starting the engine. An empty outputPath writes preview_<id>.html to
// the store's output directory.
func (g *Generator) Preview(ctx context.Context, doc *StoryDocument, outputPath string) (res *PreviewResult, err error) {
	start := g.now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("previewing story: internal error: %v", r)
			res = nil
		}
		g.observe("preview", doc, start, err)
	}()

	if err := Validate(doc); err != nil {
		return nil, fmt.Errorf("previewing story: validating story: %w", err)
	}

	html, err := g.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("previewing story: rendering HTML: %w", err)
	}

	if outputPath == "" {
		outputPath = filepath.Join(g.store.OutputDir(), "preview_"+fileutil.SanitizeToken(doc.ID)+".html")
	}
	path, err := fileutil.WriteFileAtomic(filepath.Dir(outputPath), filepath.Base(outputPath), []byte(html), previewPerm)
	if err != nil {
		return nil, fmt.Errorf("previewing story: writing preview: %w: %v", ErrIO, err)
	}

	return &PreviewResult{PreviewPath: path, Success: true}, nil
}

// Stats reports on the output directory.
func (g *Generator) Stats(ctx context.Context) StoreStats {
	return g.store.Stats(ctx)
}

// PruneOlderThan removes artifacts older than maxAge.
func (g *Generator) PruneOlderThan(ctx context.Context, maxAge time.Duration) PruneResult {
	return g.store.PruneOlderThan(ctx, maxAge)
}

// Engine returns the rendering engine.
func (g *Generator) Engine() Engine {
	return g.engine
}

// Close shuts the rendering engine down.
func (g *Generator) Close() error {
	if g.engine != nil {
		return g.engine.Shutdown()
	}
	return nil
}

// observe logs a pipeline run and records its outcome.
func (g *Generator) observe(op string, doc *StoryDocument, start time.Time, err error) {
	elapsed := g.now().Sub(start)
	status := StatusFor(err)

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("status", status),
		zap.Duration("elapsed", elapsed),
	}
	if doc != nil {
		fields = append(fields, zap.String("story_id", doc.ID))
	}

	if op == "generate" {
		metrics.GenerationsTotal.WithLabelValues(status).Inc()
		if err == nil {
			metrics.GenerationDuration.Observe(elapsed.Seconds())
		}
	}

	if err != nil {
		g.logger.Warn("story pipeline failed", append(fields, zap.Error(err))...)
		return
	}
	g.logger.Info("story pipeline completed", fields...)
}

// StatusFor classifies a pipeline error into a metrics status label.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.StatusCanceled
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidOverrides), errors.Is(err, ErrInvalidFileName):
		return metrics.StatusValidation
	case errors.Is(err, ErrTemplateLoad), errors.Is(err, ErrTemplateRender):
		return metrics.StatusTemplateError
	case errors.Is(err, ErrRender):
		return metrics.StatusRenderError
	case errors.Is(err, ErrIO):
		return metrics.StatusIOError
	default:
		return metrics.StatusFailure
	}
}

func metadataFor(doc *StoryDocument) ArtifactMetadata {
	return ArtifactMetadata{
		Title:        doc.Story.Title,
		ChapterCount: len(doc.Story.Chapters),
		ImageCount:   len(doc.GeneratedImages),
		WordCount:    doc.Story.WordCount,
		Style:        doc.Style,
		Language:     doc.Language,
	}
}
