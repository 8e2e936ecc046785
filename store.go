package storypdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-storypdf/internal/fileutil"
	"github.com/alnah/go-storypdf/internal/metrics"
)

const (
	artifactPrefix = "cuento_"
	artifactExt    = ".pdf"

	// artifactPerm allows other users in the group to read generated PDFs.
	artifactPerm fs.FileMode = 0o640
)

// SavedFile describes an artifact written to the output directory.
type SavedFile struct {
	FilePath string
	FileName string
	Size     int64
}

// ArtifactStore persists generated PDFs in a single output directory and
// reports on or prunes its contents.
type ArtifactStore struct {
	outputDir string
	now       func() time.Time
	remove    func(string) error
	logger    *zap.Logger
}

// StoreOption configures an ArtifactStore.
type StoreOption func(*ArtifactStore)

// WithStoreLogger sets the logger for save and prune events.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *ArtifactStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// withStoreClock overrides the prune cutoff clock (for testing).
func withStoreClock(now func() time.Time) StoreOption {
	return func(s *ArtifactStore) {
		s.now = now
	}
}

// withStoreRemove overrides file removal during prune (for testing).
func withStoreRemove(remove func(string) error) StoreOption {
	return func(s *ArtifactStore) {
		s.remove = remove
	}
}

// NewArtifactStore creates a store rooted at outputDir. The directory is
// created on first save.
func NewArtifactStore(outputDir string, opts ...StoreOption) *ArtifactStore {
	s := &ArtifactStore{
		outputDir: outputDir,
		now:       time.Now,
		remove:    os.Remove,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OutputDir returns the directory artifacts are written to.
func (s *ArtifactStore) OutputDir() string {
	return s.outputDir
}

// ArtifactFileName builds a unique artifact name for a story id:
// cuento_<id>_<epoch millis>_<8 hex chars>.pdf. Characters outside
// [A-Za-z0-9_-] in id are replaced with underscores.
func ArtifactFileName(id string, now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%s_%d_%s%s", artifactPrefix, fileutil.SanitizeToken(id), now.UnixMilli(), token, artifactExt)
}

// Save writes buf to fileName inside the output directory atomically.
func (s *ArtifactStore) Save(ctx context.Context, buf []byte, fileName string) (*SavedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := fileutil.ValidateFileName(fileName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileName, err)
	}

	path, err := fileutil.WriteFileAtomic(s.outputDir, fileName, buf, artifactPerm)
	if err != nil {
		s.logger.Error("saving artifact failed",
			zap.String("file_name", fileName),
			zap.String("output_dir", s.outputDir),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	size := int64(len(buf))
	metrics.ArtifactBytes.Observe(float64(size))
	s.logger.Info("artifact saved", zap.String("path", path), zap.Int64("size", size))

	return &SavedFile{
		FilePath: path,
		FileName: fileName,
		Size:     size,
	}, nil
}

// Stats counts the PDFs in the output directory. It never fails: scan
// errors are reported in StoreStats.Error. A missing directory is empty.
func (s *ArtifactStore) Stats(ctx context.Context) StoreStats {
	stats := StoreStats{OutputPath: s.outputDir}

	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats
		}
		stats.Error = err.Error()
		return stats
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return StoreStats{OutputPath: s.outputDir, Error: err.Error()}
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), artifactExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat.
			continue
		}
		stats.TotalPDFs++
		stats.TotalSize += info.Size()
	}

	if stats.TotalPDFs > 0 {
		stats.AverageSize = int64(math.Round(float64(stats.TotalSize) / float64(stats.TotalPDFs)))
	}
	return stats
}

// PruneOlderThan deletes regular files whose modification time is at or
// before now-maxAge. It never fails: the first scan, removal or context error
// ends the run with DeletedCount=0 and Success=false. Temp files of saves in
// progress are skipped.
func (s *ArtifactStore) PruneOlderThan(ctx context.Context, maxAge time.Duration) PruneResult {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PruneResult{Success: true}
		}
		s.logger.Error("scanning output directory failed", zap.String("output_dir", s.outputDir), zap.Error(err))
		return PruneResult{Error: err.Error()}
	}

	cutoff := s.now().Add(-maxAge)
	var deleted int
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return s.pruneFailed(deleted, err)
		}
		if !entry.Type().IsRegular() || isSaveTemp(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.outputDir, entry.Name())
		if err := s.remove(path); err != nil {
			return s.pruneFailed(deleted, fmt.Errorf("removing %s: %w", entry.Name(), err))
		}
		deleted++
	}

	metrics.ArtifactsPrunedTotal.Add(float64(deleted))
	if deleted > 0 {
		s.logger.Info("artifacts pruned",
			zap.Int("deleted", deleted),
			zap.Duration("max_age", maxAge),
		)
	}
	return PruneResult{DeletedCount: deleted, Success: true}
}

// pruneFailed logs a partial prune and reports it as a failure.
func (s *ArtifactStore) pruneFailed(deleted int, err error) PruneResult {
	metrics.ArtifactsPrunedTotal.Add(float64(deleted))
	s.logger.Warn("pruning artifacts failed",
		zap.String("output_dir", s.outputDir),
		zap.Int("deleted_before_failure", deleted),
		zap.Error(err),
	)
	return PruneResult{Error: err.Error()}
}

// isSaveTemp matches the ".<name>-*.tmp" files written by Save before rename.
func isSaveTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}
