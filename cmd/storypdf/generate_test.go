package main

// Notes:
// - generateBatch: we test result ordering, the worker limit and
//   cancellation. The fake pipeline tracks the peak number of concurrent calls.
// - readStory: file, stdin and error paths.
// - printResults/formatBytes: output lines and counts.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	storypdf "github.com/alnah/go-storypdf"
)

// ---------------------------------------------------------------------------
// TestGenerateBatch
// ---------------------------------------------------------------------------

func TestGenerateBatch(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		if got := generateBatch(context.Background(), te.pipeline, nil, 2, "", te.Environment); got != nil {
			t.Errorf("generateBatch(nil) = %v, want nil", got)
		}
	})

	t.Run("keeps input order and respects worker limit", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		te.pipeline.delay = 20 * time.Millisecond

		var inputs []string
		for i := range 6 {
			content := strings.Replace(validStoryJSON, "story-123", fmt.Sprintf("story-%d", i), 1)
			inputs = append(inputs, writeStory(t, fmt.Sprintf("s%d.json", i), content))
		}

		results := generateBatch(context.Background(), te.pipeline, inputs, 2, "", te.Environment)

		if len(results) != len(inputs) {
			t.Fatalf("got %d results, want %d", len(results), len(inputs))
		}
		for i, r := range results {
			if r.Err != nil {
				t.Fatalf("result %d error = %v", i, r.Err)
			}
			if r.InputPath != inputs[i] {
				t.Errorf("result %d input = %q, want %q", i, r.InputPath, inputs[i])
			}
			want := fmt.Sprintf("cuento_story-%d.pdf", i)
			if r.Record.FileName != want {
				t.Errorf("result %d file = %q, want %q", i, r.Record.FileName, want)
			}
		}
		if peak := te.pipeline.maxInFlight.Load(); peak > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", peak)
		}
	})

	t.Run("canceled context fails every input", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := generateBatch(ctx, te.pipeline, []string{"a.json", "b.json"}, 1, "", te.Environment)

		for _, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("%s error = %v, want context.Canceled", r.InputPath, r.Err)
			}
		}
		if len(te.pipeline.generated) != 0 {
			t.Errorf("generated %v after cancel", te.pipeline.generated)
		}
	})
}

// ---------------------------------------------------------------------------
// TestReadStory
// ---------------------------------------------------------------------------

func TestReadStory(t *testing.T) {
	t.Parallel()

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		doc, err := readStory(writeStory(t, "s.json", validStoryJSON), nil)
		if err != nil {
			t.Fatalf("readStory() error = %v", err)
		}
		if doc.ID != "story-123" || doc.Story == nil || len(doc.Story.Chapters) != 1 {
			t.Errorf("doc = %+v", doc)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		t.Parallel()
		doc, err := readStory("-", strings.NewReader(validStoryJSON))
		if err != nil {
			t.Fatalf("readStory(-) error = %v", err)
		}
		if doc.Name != "El dragón y la luna" {
			t.Errorf("Name = %q", doc.Name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := readStory(filepath.Join(t.TempDir(), "none.json"), nil)
		if !errors.Is(err, ErrReadStory) {
			t.Errorf("error = %v, want ErrReadStory", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		path := writeStory(t, "bad.json", `{"id": `)
		_, err := readStory(path, nil)
		if !errors.Is(err, storypdf.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
		if err != nil && !strings.Contains(err.Error(), path) {
			t.Errorf("error %q should name the file", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestValidateWorkers
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, maxWorkers} {
		if err := validateWorkers(n); err != nil {
			t.Errorf("validateWorkers(%d) error = %v", n, err)
		}
	}
	for _, n := range []int{-1, maxWorkers + 1} {
		if err := validateWorkers(n); !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", n, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	rec := &storypdf.ArtifactRecord{FilePath: "out/a.pdf", Size: 2048}
	results := []GenerationResult{
		{InputPath: "a.json", Record: rec, Duration: 1500 * time.Millisecond},
		{InputPath: "b.json", Err: errBoom},
	}

	tests := []struct {
		name           string
		quiet, verbose bool
		wantStdout     []string
		notStdout      []string
	}{
		{"default", false, false, []string{"Created out/a.pdf", "1 succeeded, 1 failed"}, nil},
		{"verbose", false, true, []string{"a.json -> out/a.pdf (2.0 KiB, 1.5s)"}, nil},
		{"quiet", true, false, nil, []string{"Created", "succeeded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv(t)

			failed, firstErr := printResults(results, tt.quiet, tt.verbose, te.Environment)

			if failed != 1 || !errors.Is(firstErr, errBoom) {
				t.Errorf("printResults() = (%d, %v), want (1, boom)", failed, firstErr)
			}
			if !strings.Contains(te.stderr.String(), "FAILED b.json: boom") {
				t.Errorf("stderr = %q", te.stderr.String())
			}
			for _, s := range tt.wantStdout {
				if !strings.Contains(te.stdout.String(), s) {
					t.Errorf("stdout = %q, want %q", te.stdout.String(), s)
				}
			}
			for _, s := range tt.notStdout {
				if strings.Contains(te.stdout.String(), s) {
					t.Errorf("stdout = %q, should not contain %q", te.stdout.String(), s)
				}
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
