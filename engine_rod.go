package storypdf

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-storypdf/internal/metrics"
	"github.com/alnah/go-storypdf/internal/process"
)

// RodEngine renders PDFs with go-rod.
// Rod downloads Chromium on first launch when no binary is configured.
type RodEngine struct {
	cfg     engineConfig
	limiter *pageLimiter

	mu       sync.Mutex
	state    EngineState
	browser  *rod.Browser
	launcher *launcher.Launcher
	pid      int
}

// Compile-time interface check.
var _ Engine = (*RodEngine)(nil)

// NewRodEngine creates a rod-backed engine. The browser starts lazily.
func NewRodEngine(opts ...EngineOption) *RodEngine {
	cfg := newEngineConfig(opts)
	return &RodEngine{
		cfg:     cfg,
		limiter: newPageLimiter(cfg.maxPages, BackendRod),
	}
}

// State reports the lifecycle state.
func (e *RodEngine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// EnsureStarted launches Chrome if it is not running.
func (e *RodEngine) EnsureStarted(ctx context.Context) error {
	_, err := e.browserHandle(ctx)
	return err
}

// browserHandle returns the running browser, launching it under the lock.
func (e *RodEngine) browserHandle(ctx context.Context) (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, newRenderError(ErrBrowserConnect, err)
	}

	l := e.newLauncher()
	u, err := l.Launch()
	if err != nil {
		metrics.BrowserLaunchesTotal.WithLabelValues(BackendRod, metrics.StatusFailure).Inc()
		e.cfg.logger.Error("browser launch failed", zap.String("backend", BackendRod), zap.Error(err))
		return nil, newRenderError(ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		metrics.BrowserLaunchesTotal.WithLabelValues(BackendRod, metrics.StatusFailure).Inc()
		e.cfg.logger.Error("browser connect failed", zap.String("backend", BackendRod), zap.Error(err))
		return nil, newRenderError(ErrBrowserConnect, err)
	}

	e.browser = browser
	e.launcher = l
	e.pid = l.PID()
	e.state = StateRunning
	metrics.BrowserLaunchesTotal.WithLabelValues(BackendRod, metrics.StatusSuccess).Inc()
	e.cfg.logger.Info("browser started",
		zap.String("backend", BackendRod),
		zap.Int("pid", e.pid),
		zap.Int("max_pages", e.limiter.size),
	)
	return browser, nil
}

func (e *RodEngine) newLauncher() *launcher.Launcher {
	l := launcher.New().Headless(true).NoSandbox(!e.cfg.sandbox)
	for _, name := range hardenedFlags {
		l = l.Set(flags.Flag(name))
	}
	if !e.cfg.sandbox {
		l = l.Set(flags.Flag("no-zygote"))
	}
	if e.cfg.browserBin != "" {
		l = l.Bin(e.cfg.browserBin)
	}
	return l
}

// RenderToPDF paints html in a new page and prints it to PDF.
func (e *RodEngine) RenderToPDF(ctx context.Context, html string, overrides *PrintOverrides) ([]byte, error) {
	if err := overrides.Validate(); err != nil {
		return nil, err
	}

	browser, err := e.browserHandle(ctx)
	if err != nil {
		return nil, err
	}

	release, err := e.limiter.acquire(ctx)
	if err != nil {
		return nil, newRenderError(ErrPageCreate, err)
	}
	defer release()

	start := time.Now()
	defer func() {
		metrics.RenderDuration.WithLabelValues(BackendRod).Observe(time.Since(start).Seconds())
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		if e.State() == StateClosed {
			err = ErrEngineClosed
		}
		return nil, phaseError(ctx, ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: deviceScaleFactor,
	}); err != nil {
		return nil, phaseError(ctx, ErrPageCreate, err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, e.cfg.contentTimeout)
	defer cancel()

	if err := e.loadContent(p.Context(loadCtx), html); err != nil {
		return nil, phaseError(ctx, ErrPageLoad, err)
	}
	if _, err := p.Context(loadCtx).Eval(fontsReadyJS); err != nil {
		return nil, phaseError(ctx, ErrFontsLoad, err)
	}

	reader, err := p.PDF(buildRodPDFOptions(resolvePrintSettings(overrides)))
	if err != nil {
		return nil, phaseError(ctx, ErrPDFGeneration, err)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, phaseError(ctx, ErrPDFGeneration, err)
	}
	return buf, nil
}

// loadContent sets the document and waits for load and network idle.
func (e *RodEngine) loadContent(p *rod.Page, html string) error {
	waitIdle := p.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	if err := p.SetDocumentContent(html); err != nil {
		return err
	}
	if err := p.WaitLoad(); err != nil {
		return err
	}
	waitIdle()
	return p.GetContext().Err()
}

// Shutdown closes the browser and kills its process group.
func (e *RodEngine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser == nil {
		return nil
	}

	err := e.browser.Close()
	if killErr := process.KillTree(e.pid); killErr != nil {
		e.cfg.logger.Debug("browser process already gone", zap.Int("pid", e.pid), zap.Error(killErr))
	}
	if e.launcher != nil {
		e.launcher.Cleanup()
	}

	e.cfg.logger.Info("browser stopped", zap.String("backend", BackendRod), zap.Int("pid", e.pid))
	e.browser = nil
	e.launcher = nil
	e.pid = 0
	e.state = StateClosed
	return err
}

// buildRodPDFOptions converts resolved settings to the CDP print request.
func buildRodPDFOptions(s printSettings) *proto.PagePrintToPDF {
	opts := &proto.PagePrintToPDF{
		Landscape:         s.Landscape,
		PrintBackground:   s.PrintBackground,
		Scale:             floatPtr(s.Scale),
		PaperWidth:        floatPtr(s.PaperWidth),
		PaperHeight:       floatPtr(s.PaperHeight),
		MarginTop:         floatPtr(s.MarginTop),
		MarginBottom:      floatPtr(s.MarginBottom),
		MarginLeft:        floatPtr(s.MarginLeft),
		MarginRight:       floatPtr(s.MarginRight),
		PageRanges:        s.PageRanges,
		PreferCSSPageSize: s.PreferCSSPageSize,
	}
	if s.displayHeaderFooter() {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate = emptyIfBlank(s.HeaderTemplate)
		opts.FooterTemplate = emptyIfBlank(s.FooterTemplate)
	}
	return opts
}

// emptyIfBlank keeps Chrome from printing its default header or footer.
func emptyIfBlank(tmpl string) string {
	if tmpl == "" {
		return "<span></span>"
	}
	return tmpl
}
