package main

// Notes:
// - parse*Flags: we test flag names, shorthands and positional args.
// - merge*Flags: we test that only set flags override config; --sandbox
//   is applied only when given explicitly.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"testing"

	"github.com/alnah/go-storypdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseGenerateFlags
// ---------------------------------------------------------------------------

func TestParseGenerateFlags(t *testing.T) {
	t.Parallel()

	args := []string{
		"-o", "out", "-w", "4", "--name", "x.pdf", "-c", "work", "-q",
		"--backend", "chromedp", "--browser-bin", "/usr/bin/chromium", "--max-pages", "2",
		"-t", "90s", "--sandbox", "--templates", "tpl", "--template", "bedtime",
		"--stylesheet", "soft", "--images", "img", "a.json", "b.json",
	}

	f, fs, rest, err := parseGenerateFlags(args)
	if err != nil {
		t.Fatalf("parseGenerateFlags() error = %v", err)
	}

	if f.output != "out" || f.workers != 4 || f.name != "x.pdf" {
		t.Errorf("generate flags = %+v", f)
	}
	if f.common.config != "work" || !f.common.quiet || f.common.verbose {
		t.Errorf("common flags = %+v", f.common)
	}
	if f.engine.backend != "chromedp" || f.engine.browserBin != "/usr/bin/chromium" ||
		f.engine.maxPages != 2 || f.engine.timeout != "90s" || !f.engine.sandbox {
		t.Errorf("engine flags = %+v", f.engine)
	}
	if f.templates.dir != "tpl" || f.templates.name != "bedtime" ||
		f.templates.stylesheet != "soft" || f.templates.images != "img" {
		t.Errorf("template flags = %+v", f.templates)
	}
	if !fs.Changed("sandbox") {
		t.Error("sandbox should be marked changed")
	}
	if len(rest) != 2 || rest[0] != "a.json" || rest[1] != "b.json" {
		t.Errorf("positional args = %v", rest)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	t.Parallel()

	if _, _, _, err := parseGenerateFlags([]string{"--bogus"}); !errors.Is(err, ErrUsage) {
		t.Errorf("generate: error = %v, want ErrUsage", err)
	}
	if _, _, err := parsePreviewFlags([]string{"--workers", "2"}); !errors.Is(err, ErrUsage) {
		t.Errorf("preview: error = %v, want ErrUsage", err)
	}
	if _, _, err := parseArtifactFlags("stats", []string{"--max-age", "1h"}); !errors.Is(err, ErrUsage) {
		t.Errorf("stats: --max-age should be rejected, got %v", err)
	}
	if _, _, err := parseArtifactFlags("prune", []string{"--json"}); !errors.Is(err, ErrUsage) {
		t.Errorf("prune: --json should be rejected, got %v", err)
	}
	if _, _, _, err := parseServeFlags([]string{"--addr"}); !errors.Is(err, ErrUsage) {
		t.Errorf("serve: missing value should fail, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI wins over config, unset flags keep config
// ---------------------------------------------------------------------------

func TestMergeEngineFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()
		f, fs, _, err := parseGenerateFlags(nil)
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Engine.Sandbox = true
		cfg.Engine.BrowserBin = "/opt/chrome"

		mergeEngineFlags(fs, &f.engine, cfg)

		if !cfg.Engine.Sandbox {
			t.Error("Sandbox overridden by an unset flag")
		}
		if cfg.Engine.BrowserBin != "/opt/chrome" || cfg.Engine.Backend != config.BackendRod {
			t.Errorf("Engine = %+v", cfg.Engine)
		}
	})

	t.Run("explicit false sandbox wins", func(t *testing.T) {
		t.Parallel()
		f, fs, _, err := parseGenerateFlags([]string{"--sandbox=false"})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Engine.Sandbox = true

		mergeEngineFlags(fs, &f.engine, cfg)

		if cfg.Engine.Sandbox {
			t.Error("--sandbox=false should disable the sandbox")
		}
	})
}

func TestMergeTemplateFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	mergeTemplateFlags(&templateFlags{name: "bedtime"}, cfg)
	mergeOutputFlag("", cfg)

	if cfg.Templates.Name != "bedtime" {
		t.Errorf("Templates.Name = %q, want bedtime", cfg.Templates.Name)
	}
	if cfg.Templates.Stylesheet != config.DefaultConfig().Templates.Stylesheet {
		t.Errorf("Templates.Stylesheet changed to %q", cfg.Templates.Stylesheet)
	}
	if cfg.Output.Dir != config.DefaultConfig().Output.Dir {
		t.Errorf("Output.Dir changed to %q", cfg.Output.Dir)
	}
}
