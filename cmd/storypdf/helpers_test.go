package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	storypdf "github.com/alnah/go-storypdf"
	"github.com/alnah/go-storypdf/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake pipeline and environment
// ---------------------------------------------------------------------------

const validStoryJSON = `{
  "id": "story-123",
  "name": "El dragón y la luna",
  "story": {
    "title": "el dragón y la luna",
    "chapters": [{"number": 1, "title": "El comienzo", "content": "Había una vez."}],
    "word_count": 3
  },
  "generatedImages": []
}`

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeEngine struct{}

func (fakeEngine) EnsureStarted(context.Context) error { return nil }
func (fakeEngine) RenderToPDF(context.Context, string, *storypdf.PrintOverrides) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}
func (fakeEngine) Shutdown() error             { return nil }
func (fakeEngine) State() storypdf.EngineState { return storypdf.StateUninitialized }

// fakePipeline validates stories like the real generator but never renders.
type fakePipeline struct {
	generateErr error
	delay       time.Duration

	mu          sync.Mutex
	generated   []string
	fileNames   []string
	previewPath string
	pruneAge    time.Duration
	stats       storypdf.StoreStats
	pruneResult storypdf.PruneResult

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	closes      atomic.Int32
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		stats:       storypdf.StoreStats{TotalPDFs: 2, TotalSize: 3072, AverageSize: 1536, OutputPath: "out"},
		pruneResult: storypdf.PruneResult{DeletedCount: 4, Success: true},
	}
}

func (f *fakePipeline) Generate(ctx context.Context, doc *storypdf.StoryDocument, opts storypdf.GenerateOptions) (*storypdf.ArtifactRecord, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := storypdf.Validate(doc); err != nil {
		return nil, err
	}
	if f.generateErr != nil {
		return nil, f.generateErr
	}

	name := opts.FileName
	if name == "" {
		name = "cuento_" + doc.ID + ".pdf"
	}
	f.mu.Lock()
	f.generated = append(f.generated, doc.ID)
	f.fileNames = append(f.fileNames, opts.FileName)
	f.mu.Unlock()
	return &storypdf.ArtifactRecord{
		FilePath: filepath.Join("out", name),
		FileName: name,
		Size:     2048,
		Success:  true,
	}, nil
}

func (f *fakePipeline) Preview(_ context.Context, doc *storypdf.StoryDocument, outputPath string) (*storypdf.PreviewResult, error) {
	if err := storypdf.Validate(doc); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.previewPath = outputPath
	f.mu.Unlock()
	path := outputPath
	if path == "" {
		path = filepath.Join("out", "preview_"+doc.ID+".html")
	}
	return &storypdf.PreviewResult{PreviewPath: path, Success: true}, nil
}

func (f *fakePipeline) Stats(context.Context) storypdf.StoreStats { return f.stats }

func (f *fakePipeline) PruneOlderThan(_ context.Context, maxAge time.Duration) storypdf.PruneResult {
	f.mu.Lock()
	f.pruneAge = maxAge
	f.mu.Unlock()
	return f.pruneResult
}

func (f *fakePipeline) Engine() storypdf.Engine { return fakeEngine{} }

func (f *fakePipeline) Close() error {
	f.closes.Add(1)
	return nil
}

// testEnv wires a fake pipeline and captures output.
type testEnv struct {
	*Environment
	stdout   *syncBuffer
	stderr   *syncBuffer
	pipeline *fakePipeline
	builds   atomic.Int32
	gotCfg   *config.Config
	vars     map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{
		stdout:   &syncBuffer{},
		stderr:   &syncBuffer{},
		pipeline: newFakePipeline(),
		vars:     map[string]string{},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC) },
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return te.vars[k] },
		NewPipeline: func(cfg *config.Config, _ *zap.Logger) (Pipeline, error) {
			te.builds.Add(1)
			te.gotCfg = cfg
			return te.pipeline, nil
		},
	}
	return te
}

// writeStory writes content to a file in a temp dir and returns its path.
func writeStory(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

var errBoom = errors.New("boom")
