package storypdf

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Engine renders HTML documents to PDF with a long-lived headless browser.
// Implementations are safe for concurrent use; each render owns its page.
type Engine interface {
	// EnsureStarted launches the browser if it is not running.
	// Concurrent callers share a single launch.
	EnsureStarted(ctx context.Context) error
	// RenderToPDF paints html in a fresh page and prints it.
	RenderToPDF(ctx context.Context, html string, overrides *PrintOverrides) ([]byte, error)
	// Shutdown closes the browser. Safe to call more than once.
	Shutdown() error
	// State reports the lifecycle state.
	State() EngineState
}

// EngineState is the browser lifecycle state.
type EngineState int

const (
	StateUninitialized EngineState = iota
	StateRunning
	StateClosed
)

func (s EngineState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("EngineState(%d)", int(s))
	}
}

// Rendering backends.
const (
	BackendRod      = "rod"
	BackendChromedp = "chromedp"
)

// Page geometry used while laying out a story.
const (
	viewportWidth     = 1200
	viewportHeight    = 1600
	deviceScaleFactor = 2

	// networkIdleWindow is how long the page must go without requests.
	networkIdleWindow = 500 * time.Millisecond

	fontsReadyJS = `() => document.fonts.ready.then(() => true)`
)

// engineConfig holds settings shared by every backend.
type engineConfig struct {
	browserBin     string
	sandbox        bool
	maxPages       int
	contentTimeout time.Duration
	logger         *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithBrowserBin uses a specific Chrome/Chromium binary.
func WithBrowserBin(path string) EngineOption {
	return func(c *engineConfig) {
		c.browserBin = path
	}
}

// WithSandbox enables Chrome's sandbox. It is off by default because
// containers rarely grant the privileges it needs.
func WithSandbox(enabled bool) EngineOption {
	return func(c *engineConfig) {
		c.sandbox = enabled
	}
}

// WithMaxPages bounds concurrently rendering pages. Zero or negative
// selects ResolveConcurrency(0).
func WithMaxPages(n int) EngineOption {
	return func(c *engineConfig) {
		c.maxPages = n
	}
}

// WithContentTimeout bounds content loading, network idle and font readiness.
func WithContentTimeout(d time.Duration) EngineOption {
	return func(c *engineConfig) {
		if d > 0 {
			c.contentTimeout = d
		}
	}
}

// WithEngineLogger sets the logger for browser lifecycle events.
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newEngineConfig(opts []EngineOption) engineConfig {
	cfg := engineConfig{
		contentTimeout: DefaultContentTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.maxPages = ResolveConcurrency(cfg.maxPages)
	return cfg
}

// hardenedFlags are passed to every Chrome launch.
// no-zygote only works without the sandbox, so it is added separately.
var hardenedFlags = []string{
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-accelerated-2d-canvas",
	"no-first-run",
	"disable-gpu",
}

// NewEngine creates the engine for the named backend.
func NewEngine(backend string, opts ...EngineOption) (Engine, error) {
	switch backend {
	case "", BackendRod:
		return NewRodEngine(opts...), nil
	case BackendChromedp:
		return NewChromedpEngine(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, backend)
	}
}

// phaseError builds a render error, preferring the caller's context error
// as the cause so cancellation stays visible to errors.Is.
func phaseError(ctx context.Context, phase, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return newRenderError(phase, ctxErr)
	}
	return newRenderError(phase, err)
}
