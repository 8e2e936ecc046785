package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	storypdf "github.com/alnah/go-storypdf"
)

// Sentinel errors for generate operations.
var (
	ErrNoInput            = errors.New("no story file specified")
	ErrReadStory          = errors.New("failed to read story file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// stdinPath reads the story from standard input.
const stdinPath = "-"

// maxWorkers caps -w.
const maxWorkers = 32

// GenerationResult holds the outcome of a single story.
type GenerationResult struct {
	InputPath string
	Record    *storypdf.ArtifactRecord
	Err       error
	Duration  time.Duration
}

// runGenerateCmd renders each story file to a PDF artifact.
func runGenerateCmd(ctx context.Context, args []string, env *Environment) (string, error) {
	f, fs, inputs, err := parseGenerateFlags(args)
	if err != nil {
		return "", err
	}
	if len(inputs) == 0 {
		return "", ErrNoInput
	}
	if err := validateWorkers(f.workers); err != nil {
		return "", err
	}
	if f.name != "" && len(inputs) > 1 {
		return "", fmt.Errorf("%w: --name requires a single story file", ErrUsage)
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return hintFor(err, &f.common, nil), err
	}
	mergeEngineFlags(fs, &f.engine, cfg)
	mergeTemplateFlags(&f.templates, cfg)
	mergeOutputFlag(f.output, cfg)

	p, _, cleanup, err := setupPipeline(&f.common, cfg, env)
	if err != nil {
		return hintFor(err, &f.common, cfg), err
	}
	defer cleanup()

	workers := f.workers
	if workers == 0 {
		workers = storypdf.ResolveConcurrency(cfg.Engine.MaxPages)
	}

	results := generateBatch(ctx, p, inputs, workers, f.name, env)
	failed, firstErr := printResults(results, f.common.quiet, f.common.verbose, env)
	if failed > 0 {
		err := fmt.Errorf("%d of %d generation(s) failed: %w", failed, len(results), firstErr)
		return hintFor(firstErr, &f.common, cfg), err
	}
	return "", nil
}

// generateBatch processes inputs concurrently, at most workers at a time.
// Results keep input order.
func generateBatch(ctx context.Context, p Pipeline, inputs []string, workers int, name string, env *Environment) []GenerationResult {
	if len(inputs) == 0 {
		return nil
	}

	results := make([]GenerationResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = GenerationResult{InputPath: in, Err: err}
				return nil
			}
			results[i] = generateFile(ctx, p, in, name, env)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// generateFile decodes one story and runs it through the pipeline.
func generateFile(ctx context.Context, p Pipeline, path, name string, env *Environment) GenerationResult {
	start := time.Now()
	result := GenerationResult{InputPath: path}

	doc, err := readStory(path, env.Stdin)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	rec, err := p.Generate(ctx, doc, storypdf.GenerateOptions{FileName: name})
	result.Record = rec
	result.Err = err
	result.Duration = time.Since(start)
	return result
}

// readStory decodes a story file, or stdin when path is "-".
func readStory(path string, stdin io.Reader) (*storypdf.StoryDocument, error) {
	if path == stdinPath {
		return storypdf.DecodeStory(stdin)
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided story path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadStory, err)
	}
	defer f.Close()

	doc, err := storypdf.DecodeStory(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}

func validateWorkers(n int) error {
	if n < 0 || n > maxWorkers {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}

// printResults writes one line per result and returns the failure count
// and the first error.
func printResults(results []GenerationResult, quiet, verbose bool, env *Environment) (int, error) {
	var failed int
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s, %v)\n",
				r.InputPath, r.Record.FilePath, formatBytes(r.Record.Size), r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.Record.FilePath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}

	return failed, firstErr
}

// formatBytes renders n with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
