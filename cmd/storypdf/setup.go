package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-storypdf/internal/config"
	"github.com/alnah/go-storypdf/internal/logging"
)

// loadConfig resolves configuration: defaults or file, then environment.
// Flags are merged by the caller, which must call cfg.Validate afterwards.
func loadConfig(f *commonFlags, env *Environment) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.config != "" {
		var err error
		cfg, err = config.LoadConfig(f.config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	cfg.ApplyEnv(env.Getenv)
	return cfg, nil
}

// newLogger builds the command logger. --verbose forces debug and --quiet
// keeps only errors.
func newLogger(f *commonFlags, cfg *config.Config, env *Environment) (*zap.Logger, error) {
	lc := logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	switch {
	case f.verbose:
		lc.Level = "debug"
	case f.quiet:
		lc.Level = "error"
	}

	logger, err := logging.New(lc, env.Stdout, env.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// setupPipeline validates cfg and builds the logger and pipeline.
// The returned cleanup closes the pipeline and flushes the logger.
func setupPipeline(f *commonFlags, cfg *config.Config, env *Environment) (Pipeline, *zap.Logger, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger, err := newLogger(f, cfg, env)
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := env.NewPipeline(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, fmt.Errorf("building pipeline: %w", err)
	}

	cleanup := func() {
		if err := p.Close(); err != nil {
			logger.Warn("shutting down engine", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return p, logger, cleanup, nil
}
