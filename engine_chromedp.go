package storypdf

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/alnah/go-storypdf/internal/metrics"
)

// ChromedpEngine renders PDFs with chromedp. Each render runs in its own tab
// of a shared browser; cancelling the tab context closes the tab.
// Content is considered loaded once document.readyState is "complete" and
// fonts are ready; unlike RodEngine it does not wait for the network to idle.
type ChromedpEngine struct {
	cfg     engineConfig
	limiter *pageLimiter

	mu            sync.Mutex
	state         EngineState
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// Compile-time interface check.
var _ Engine = (*ChromedpEngine)(nil)

// NewChromedpEngine creates a chromedp-backed engine. The browser starts lazily.
func NewChromedpEngine(opts ...EngineOption) *ChromedpEngine {
	cfg := newEngineConfig(opts)
	return &ChromedpEngine{
		cfg:     cfg,
		limiter: newPageLimiter(cfg.maxPages, BackendChromedp),
	}
}

// State reports the lifecycle state.
func (e *ChromedpEngine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// EnsureStarted launches Chrome if it is not running.
func (e *ChromedpEngine) EnsureStarted(ctx context.Context) error {
	_, err := e.browserContext(ctx)
	return err
}

func (e *ChromedpEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Headless)
	if !e.cfg.sandbox {
		opts = append(opts, chromedp.NoSandbox, chromedp.Flag("no-zygote", true))
	}
	for _, name := range hardenedFlags {
		opts = append(opts, chromedp.Flag(name, true))
	}
	if e.cfg.browserBin != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.browserBin))
	}
	return opts
}

// browserContext returns the shared browser context, launching Chrome under the lock.
func (e *ChromedpEngine) browserContext(ctx context.Context) (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil {
		return e.browserCtx, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, newRenderError(ErrBrowserConnect, err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), e.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run on a browser context starts the process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		metrics.BrowserLaunchesTotal.WithLabelValues(BackendChromedp, metrics.StatusFailure).Inc()
		e.cfg.logger.Error("browser launch failed", zap.String("backend", BackendChromedp), zap.Error(err))
		return nil, newRenderError(ErrBrowserConnect, err)
	}

	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	e.allocCancel = allocCancel
	e.state = StateRunning
	metrics.BrowserLaunchesTotal.WithLabelValues(BackendChromedp, metrics.StatusSuccess).Inc()
	e.cfg.logger.Info("browser started",
		zap.String("backend", BackendChromedp),
		zap.Int("max_pages", e.limiter.size),
	)
	return browserCtx, nil
}

// RenderToPDF paints html in a new tab and prints it to PDF.
func (e *ChromedpEngine) RenderToPDF(ctx context.Context, html string, overrides *PrintOverrides) ([]byte, error) {
	if err := overrides.Validate(); err != nil {
		return nil, err
	}

	browserCtx, err := e.browserContext(ctx)
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
		metrics.RenderDuration.WithLabelValues(BackendChromedp).Observe(time.Since(start).Seconds())
	}()

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight, chromedp.EmulateScale(deviceScaleFactor)),
	); err != nil {
		if e.State() == StateClosed {
			err = ErrEngineClosed
		}
		return nil, phaseError(ctx, ErrPageCreate, err)
	}

	loadCtx, cancel := context.WithTimeout(tabCtx, e.cfg.contentTimeout)
	defer cancel()

	var ready bool
	if err := chromedp.Run(loadCtx,
		setDocumentContent(html),
		chromedp.Poll(`document.readyState === "complete"`, &ready, chromedp.WithPollingInterval(50*time.Millisecond)),
	); err != nil {
		return nil, phaseError(ctx, ErrPageLoad, err)
	}

	var fontsReady bool
	if err := chromedp.Run(loadCtx,
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, awaitPromise),
	); err != nil {
		return nil, phaseError(ctx, ErrFontsLoad, err)
	}

	var buf []byte
	if err := chromedp.Run(tabCtx, printToPDF(resolvePrintSettings(overrides), &buf)); err != nil {
		return nil, phaseError(ctx, ErrPDFGeneration, err)
	}
	return buf, nil
}

// Shutdown closes the browser and its allocator.
func (e *ChromedpEngine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx == nil {
		return nil
	}

	err := chromedp.Cancel(e.browserCtx)
	e.browserCancel()
	e.allocCancel()

	e.cfg.logger.Info("browser stopped", zap.String("backend", BackendChromedp))
	e.browserCtx = nil
	e.browserCancel = nil
	e.allocCancel = nil
	e.state = StateClosed
	return err
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// setDocumentContent replaces the main frame document with html.
func setDocumentContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

// printToPDF prints the current tab with the resolved settings.
func printToPDF(s printSettings, res *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		params := page.PrintToPDF().
			WithLandscape(s.Landscape).
			WithPrintBackground(s.PrintBackground).
			WithScale(s.Scale).
			WithPaperWidth(s.PaperWidth).
			WithPaperHeight(s.PaperHeight).
			WithMarginTop(s.MarginTop).
			WithMarginBottom(s.MarginBottom).
			WithMarginLeft(s.MarginLeft).
			WithMarginRight(s.MarginRight).
			WithPageRanges(s.PageRanges).
			WithPreferCSSPageSize(s.PreferCSSPageSize)
		if s.displayHeaderFooter() {
			params = params.
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(emptyIfBlank(s.HeaderTemplate)).
				WithFooterTemplate(emptyIfBlank(s.FooterTemplate))
		}
		buf, _, err := params.Do(ctx)
		if err != nil {
			return err
		}
		*res = buf
		return nil
	})
}
