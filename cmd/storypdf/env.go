package main

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	storypdf "github.com/alnah/go-storypdf"
	"github.com/alnah/go-storypdf/internal/config"
	"github.com/alnah/go-storypdf/internal/server"
)

// Pipeline is the generation service used by every command.
type Pipeline interface {
	server.Service
	Close() error
}

// Compile-time interface implementation check.
var _ Pipeline = (*storypdf.Generator)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	// NewPipeline builds the generator from the resolved configuration.
	NewPipeline func(cfg *config.Config, logger *zap.Logger) (Pipeline, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		NewPipeline: newGeneratorPipeline,
	}
}

// newGeneratorPipeline wires renderer, engine and store from cfg.
// The browser is not launched until the first PDF render.
func newGeneratorPipeline(cfg *config.Config, logger *zap.Logger) (Pipeline, error) {
	timeout, err := cfg.ContentTimeout()
	if err != nil {
		return nil, err
	}

	renderer, err := storypdf.NewTemplateRenderer(
		storypdf.WithTemplateDir(cfg.Templates.Dir),
		storypdf.WithTemplateName(cfg.Templates.Name),
		storypdf.WithStylesheetName(cfg.Templates.Stylesheet),
		storypdf.WithImageDir(cfg.Images.BaseDir),
		storypdf.WithRendererLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	engine, err := storypdf.NewEngine(cfg.Engine.Backend,
		storypdf.WithBrowserBin(cfg.Engine.BrowserBin),
		storypdf.WithSandbox(cfg.Engine.Sandbox),
		storypdf.WithMaxPages(cfg.Engine.MaxPages),
		storypdf.WithContentTimeout(timeout),
		storypdf.WithEngineLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return storypdf.NewGenerator(
		storypdf.WithRenderer(renderer),
		storypdf.WithEngine(engine),
		storypdf.WithStore(storypdf.NewArtifactStore(cfg.Output.Dir, storypdf.WithStoreLogger(logger))),
		storypdf.WithLogger(logger),
	)
}
