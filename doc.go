// Package storypdf turns story documents into paginated PDF files using
// html/template and headless Chrome.
//
// # Quick Start
//
// Create a generator, generate a story, and close when done:
//
//	gen, err := storypdf.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	doc, err := storypdf.DecodeStory(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec, err := gen.Generate(ctx, doc, storypdf.GenerateOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rec.FilePath, rec.Size)
//
// # Pipeline
//
// Generate runs these stages and stops at the first failure:
//
//  1. Validation of the document shape (id, name, story title, chapters)
//  2. Template rendering to HTML (helpers, Markdown chapters, stylesheet)
//  3. PDF rendering in a fresh browser page (A4, zero margins by default)
//  4. Atomic save to the output directory as cuento_<id>_<millis>_<token>.pdf
//
// Each stage error is wrapped with its name, and the sentinels in errors.go
// stay reachable with errors.Is. Preview stops after stage 2 and writes the
// HTML instead, so it never starts a browser.
//
// # Configuration
//
// Components are assembled with functional options:
//
//	renderer, err := storypdf.NewTemplateRenderer(
//	    storypdf.WithTemplateDir("/srv/templates"),
//	)
//	engine, err := storypdf.NewEngine(storypdf.BackendChromedp,
//	    storypdf.WithMaxPages(4),
//	    storypdf.WithContentTimeout(30*time.Second),
//	)
//	gen, err := storypdf.NewGenerator(
//	    storypdf.WithRenderer(renderer),
//	    storypdf.WithEngine(engine),
//	    storypdf.WithStore(storypdf.NewArtifactStore("/srv/pdfs")),
//	)
//
// # Concurrency
//
// A Generator is safe for concurrent use. The engine keeps one browser
// process and opens one page per render; WithMaxPages bounds how many pages
// render at once (default ResolveConcurrency(0)). Every blocking step
// observes the caller's context.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The rod backend downloads a
// managed Chromium on first run (~/.cache/rod/browser/) when ROD_BROWSER_BIN
// is not set. The sandbox is disabled unless WithSandbox(true) is given.
package storypdf
