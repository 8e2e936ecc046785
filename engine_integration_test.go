//go:build integration

package storypdf

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"
)

const simpleHTML = `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body><h1>Hola</h1><p>Había una vez.</p></body>
</html>`

func TestEngine_RenderToPDF_Integration(t *testing.T) {
	t.Parallel()

	for backend, engine := range testEngines() {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			t.Run("simple document", func(t *testing.T) {
				t.Parallel()

				ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
				defer cancel()

				pdf, err := engine.RenderToPDF(ctx, simpleHTML, nil)
				if err != nil {
					t.Fatalf("RenderToPDF() error: %v", err)
				}
				assertValidPDF(t, pdf)
				if engine.State() != StateRunning {
					t.Errorf("State() = %v, want running", engine.State())
				}
			})

			t.Run("overrides with footer", func(t *testing.T) {
				t.Parallel()

				ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
				defer cancel()

				footer := `<div style="font-size:8px"><span class="pageNumber"></span></div>`
				landscape := true
				pdf, err := engine.RenderToPDF(ctx, simpleHTML, &PrintOverrides{
					MarginBottom:   floatPtr(0.5),
					Landscape:      &landscape,
					FooterTemplate: &footer,
				})
				if err != nil {
					t.Fatalf("RenderToPDF() error: %v", err)
				}
				assertValidPDF(t, pdf)
			})

			t.Run("concurrent renders", func(t *testing.T) {
				t.Parallel()

				ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
				defer cancel()

				var wg sync.WaitGroup
				errs := make(chan error, 6)
				for range 6 {
					wg.Add(1)
					go func() {
						defer wg.Done()
						pdf, err := engine.RenderToPDF(ctx, simpleHTML, nil)
						if err == nil && len(pdf) == 0 {
							err = errors.New("empty PDF")
						}
						errs <- err
					}()
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					if err != nil {
						t.Errorf("concurrent render error: %v", err)
					}
				}
			})

			t.Run("canceled context", func(t *testing.T) {
				t.Parallel()

				ctx, cancel := context.WithCancel(context.Background())
				cancel()

				_, err := engine.RenderToPDF(ctx, simpleHTML, nil)
				if !errors.Is(err, ErrRender) {
					t.Errorf("RenderToPDF() error = %v, want ErrRender", err)
				}
			})
		})
	}
}

func TestEngine_ShutdownAndRestart_Integration(t *testing.T) {
	t.Parallel()

	bin := os.Getenv("ROD_BROWSER_BIN")
	engines := map[string]Engine{
		BackendRod:      NewRodEngine(WithBrowserBin(bin), WithMaxPages(1)),
		BackendChromedp: NewChromedpEngine(WithBrowserBin(bin), WithMaxPages(1)),
	}

	for backend, engine := range engines {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			if err := engine.EnsureStarted(ctx); err != nil {
				t.Fatalf("EnsureStarted() error: %v", err)
			}
			if err := engine.EnsureStarted(ctx); err != nil {
				t.Fatalf("second EnsureStarted() error: %v", err)
			}
			if err := engine.Shutdown(); err != nil {
				t.Logf("Shutdown() returned: %v", err)
			}
			if engine.State() != StateClosed {
				t.Errorf("State() = %v, want closed", engine.State())
			}
			if err := engine.Shutdown(); err != nil {
				t.Errorf("second Shutdown() error: %v", err)
			}

			// A closed engine starts again on demand.
			pdf, err := engine.RenderToPDF(ctx, simpleHTML, nil)
			if err != nil {
				t.Fatalf("RenderToPDF() after restart error: %v", err)
			}
			assertValidPDF(t, pdf)
			_ = engine.Shutdown()
		})
	}
}

func TestEngine_ContentTimeout_Integration(t *testing.T) {
	t.Parallel()

	engine := NewRodEngine(WithBrowserBin(os.Getenv("ROD_BROWSER_BIN")), WithContentTimeout(time.Second))
	t.Cleanup(func() { _ = engine.Shutdown() })

	// The image request never settles before the timeout.
	html := `<html><body><img src="http://10.255.255.1/never.png"></body></html>`

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	start := time.Now()
	_, err := engine.RenderToPDF(ctx, html, nil)
	if err == nil {
		t.Skip("network returned quickly; timeout path not exercised")
	}
	if !errors.Is(err, ErrPageLoad) {
		t.Errorf("RenderToPDF() error = %v, want ErrPageLoad", err)
	}
	if elapsed := time.Since(start); elapsed > 15*time.Second {
		t.Errorf("RenderToPDF() took %v, content timeout not applied", elapsed)
	}
}

func TestGenerator_Generate_Integration(t *testing.T) {
	t.Parallel()

	for backend, engine := range testEngines() {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			// Close is not called: the shared engine is shut down in TestMain.
			g, err := NewGenerator(WithEngine(engine), WithStore(NewArtifactStore(t.TempDir())))
			if err != nil {
				t.Fatalf("NewGenerator() error: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			rec, err := g.Generate(ctx, validDocument(), GenerateOptions{})
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			data, err := os.ReadFile(rec.FilePath)
			if err != nil {
				t.Fatalf("reading artifact: %v", err)
			}
			assertValidPDF(t, data)
			if rec.Size != int64(len(data)) {
				t.Errorf("Size = %d, file has %d bytes", rec.Size, len(data))
			}
		})
	}
}
