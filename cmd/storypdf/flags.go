package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-storypdf/internal/config"
)

// ErrUsage wraps flag parsing and argument errors.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// engineFlags holds rendering engine flags.
type engineFlags struct {
	backend    string
	browserBin string
	maxPages   int
	timeout    string
	sandbox    bool
}

// templateFlags holds template and image resolution flags.
type templateFlags struct {
	dir        string
	name       string
	stylesheet string
	images     string
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common    commonFlags
	engine    engineFlags
	templates templateFlags
	output    string
	workers   int
	name      string
}

// previewFlags holds all flags for the preview command.
type previewFlags struct {
	common    commonFlags
	templates templateFlags
	output    string
	out       string
}

// artifactFlags holds flags for stats and prune.
type artifactFlags struct {
	common commonFlags
	output string
	json   bool
	maxAge string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common    commonFlags
	engine    engineFlags
	templates templateFlags
	output    string
	addr      string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addEngineFlags adds rendering engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.backend, "backend", "", "rendering backend: rod, chromedp")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary path")
	fs.IntVar(&f.maxPages, "max-pages", 0, "concurrent browser pages (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "content load timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.sandbox, "sandbox", false, "enable the Chrome sandbox")
}

// addTemplateFlags adds template flags to a FlagSet.
func addTemplateFlags(fs *flag.FlagSet, f *templateFlags) {
	fs.StringVar(&f.dir, "templates", "", "template directory")
	fs.StringVar(&f.name, "template", "", "template name without .html")
	fs.StringVar(&f.stylesheet, "stylesheet", "", "stylesheet name without .css")
	fs.StringVar(&f.images, "images", "", "base directory for relative image paths")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return fs.Args(), nil
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string) (*generateFlags, *flag.FlagSet, []string, error) {
	fs := newFlagSet("generate")
	f := &generateFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel generations (0 = max pages)")
	fs.StringVar(&f.name, "name", "", "artifact file name (single input only)")
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addTemplateFlags(fs, &f.templates)

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, nil, err
	}
	return f, fs, rest, nil
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string) (*previewFlags, []string, error) {
	fs := newFlagSet("preview")
	f := &previewFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.out, "out", "", "preview file path")
	addCommonFlags(fs, &f.common)
	addTemplateFlags(fs, &f.templates)

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseArtifactFlags parses flags for the stats and prune commands.
func parseArtifactFlags(name string, args []string) (*artifactFlags, []string, error) {
	fs := newFlagSet(name)
	f := &artifactFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	addCommonFlags(fs, &f.common)
	switch name {
	case "stats":
		fs.BoolVar(&f.json, "json", false, "print JSON")
	case "prune":
		fs.StringVar(&f.maxAge, "max-age", "", "delete files at least this old (e.g., 24h)")
	}

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, *flag.FlagSet, []string, error) {
	fs := newFlagSet("serve")
	f := &serveFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.addr, "addr", "", "listen address (e.g., :8080)")
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addTemplateFlags(fs, &f.templates)

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, nil, err
	}
	return f, fs, rest, nil
}

// mergeEngineFlags copies explicitly set engine flags into cfg (CLI wins).
func mergeEngineFlags(fs *flag.FlagSet, f *engineFlags, cfg *config.Config) {
	if f.backend != "" {
		cfg.Engine.Backend = f.backend
	}
	if f.browserBin != "" {
		cfg.Engine.BrowserBin = f.browserBin
	}
	if f.maxPages != 0 {
		cfg.Engine.MaxPages = f.maxPages
	}
	if f.timeout != "" {
		cfg.Engine.ContentTimeout = f.timeout
	}
	if fs.Changed("sandbox") {
		cfg.Engine.Sandbox = f.sandbox
	}
}

// mergeTemplateFlags copies non-empty template flags into cfg.
func mergeTemplateFlags(f *templateFlags, cfg *config.Config) {
	if f.dir != "" {
		cfg.Templates.Dir = f.dir
	}
	if f.name != "" {
		cfg.Templates.Name = f.name
	}
	if f.stylesheet != "" {
		cfg.Templates.Stylesheet = f.stylesheet
	}
	if f.images != "" {
		cfg.Images.BaseDir = f.images
	}
}

func mergeOutputFlag(output string, cfg *config.Config) {
	if output != "" {
		cfg.Output.Dir = output
	}
}
