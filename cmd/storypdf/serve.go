package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-storypdf/internal/server"
)

// runServeCmd serves the HTTP API until ctx is canceled.
// The engine is shut down once, after the server has drained.
func runServeCmd(ctx context.Context, args []string, env *Environment) (string, error) {
	f, fs, rest, err := parseServeFlags(args)
	if err != nil {
		return "", err
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return hintFor(err, &f.common, nil), err
	}
	mergeEngineFlags(fs, &f.engine, cfg)
	mergeTemplateFlags(&f.templates, cfg)
	mergeOutputFlag(f.output, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}

	p, logger, cleanup, err := setupPipeline(&f.common, cfg, env)
	if err != nil {
		return hintFor(err, &f.common, cfg), err
	}
	defer cleanup()

	// Durations were checked by setupPipeline.
	shutdownTimeout, _ := cfg.ShutdownTimeout()
	maxAge, _ := cfg.RetentionMaxAge()
	interval, _ := cfg.RetentionInterval()

	srv := server.New(p, server.Options{
		Addr:              cfg.Server.Addr,
		ShutdownTimeout:   shutdownTimeout,
		RetentionMaxAge:   maxAge,
		RetentionInterval: interval,
		Version:           Version,
		Logger:            logger,
	})
	if err := srv.Run(ctx); err != nil {
		return "", err
	}
	return "", nil
}
