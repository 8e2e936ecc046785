package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	storypdf "github.com/alnah/go-storypdf"
	"github.com/alnah/go-storypdf/internal/config"
)

// runStatsCmd prints a snapshot of the output directory.
func runStatsCmd(ctx context.Context, args []string, env *Environment) (string, error) {
	f, rest, err := parseArtifactFlags("stats", args)
	if err != nil {
		return "", err
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("%w: stats takes no arguments", ErrUsage)
	}

	p, _, cleanup, hint, err := artifactPipeline(f, env)
	if err != nil {
		return hint, err
	}
	defer cleanup()

	stats := p.Stats(ctx)
	if stats.Error != "" {
		return "", fmt.Errorf("%w: reading %s: %s", storypdf.ErrIO, stats.OutputPath, stats.Error)
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return "", enc.Encode(stats)
	}
	printStats(env.Stdout, stats)
	return "", nil
}

// runPruneCmd deletes artifacts older than --max-age or retention.maxAge.
func runPruneCmd(ctx context.Context, args []string, env *Environment) (string, error) {
	f, rest, err := parseArtifactFlags("prune", args)
	if err != nil {
		return "", err
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("%w: prune takes no arguments", ErrUsage)
	}

	var maxAge time.Duration
	if f.maxAge != "" {
		maxAge, err = time.ParseDuration(f.maxAge)
		if err != nil || maxAge < 0 {
			return "", fmt.Errorf("%w: --max-age %q must be a non-negative duration", ErrUsage, f.maxAge)
		}
	}

	p, cfg, cleanup, hint, err := artifactPipeline(f, env)
	if err != nil {
		return hint, err
	}
	defer cleanup()

	if f.maxAge == "" {
		// Validated by setupPipeline.
		maxAge, _ = cfg.RetentionMaxAge()
	}

	res := p.PruneOlderThan(ctx, maxAge)
	if !res.Success {
		return "", fmt.Errorf("%w: pruning: %s", storypdf.ErrIO, res.Error)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Deleted %d file(s) older than %s\n", res.DeletedCount, maxAge)
	}
	return "", nil
}

func artifactPipeline(f *artifactFlags, env *Environment) (Pipeline, *config.Config, func(), string, error) {
	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return nil, nil, nil, hintFor(err, &f.common, nil), err
	}
	mergeOutputFlag(f.output, cfg)

	p, _, cleanup, err := setupPipeline(&f.common, cfg, env)
	if err != nil {
		return nil, nil, nil, hintFor(err, &f.common, cfg), err
	}
	return p, cfg, cleanup, "", nil
}

func printStats(w io.Writer, s storypdf.StoreStats) {
	fmt.Fprintf(w, "Output directory: %s\n", s.OutputPath)
	fmt.Fprintf(w, "PDFs:             %d\n", s.TotalPDFs)
	fmt.Fprintf(w, "Total size:       %s\n", formatBytes(s.TotalSize))
	fmt.Fprintf(w, "Average size:     %s\n", formatBytes(s.AverageSize))
}
