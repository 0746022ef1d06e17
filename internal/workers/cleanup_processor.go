// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
)

// DefaultTempFileMaxAge is the age after which a staged upload is removed.
const DefaultTempFileMaxAge = 24 * time.Hour

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	uploadDir string
	maxAge    time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor for the staged
// uploads under uploadDir
func NewCleanupProcessor(uploadDir string, maxAge time.Duration, logger *slog.Logger) *CleanupProcessor {
	if maxAge <= 0 {
		maxAge = DefaultTempFileMaxAge
	}
	return &CleanupProcessor{
		uploadDir: uploadDir,
		maxAge:    maxAge,
		now:       time.Now,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupTempFiles removes staged uploads older than the max age
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files", slog.String("dir", p.uploadDir))

	cutoff := p.now().Add(-p.maxAge)
	var deletedCount int

	err := filepath.WalkDir(p.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			p.logger.WarnContext(ctx, "failed to delete temp file",
				slog.String("file", path),
				slog.String("error", err.Error()))
		} else {
			deletedCount++
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}

func removeUpload(ctx context.Context, logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.WarnContext(ctx, "failed to remove upload",
			slog.String("file", path),
			slog.String("error", err.Error()))
	}
}
