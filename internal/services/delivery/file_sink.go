package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/interfaces"
	"github.com/ternarybob/docmark/internal/models"
)

// FileSink writes artifacts into a directory
type FileSink struct {
	dir    string
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DeliverySink = (*FileSink)(nil)

// NewFileSink creates a sink writing into dir, created on first use
func NewFileSink(dir string, logger arbor.ILogger) *FileSink {
	return &FileSink{dir: dir, logger: logger}
}

// Path returns where an artifact with the given filename is written
func (s *FileSink) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// Deliver writes the artifact atomically via a temp file and rename
func (s *FileSink) Deliver(ctx context.Context, artifact *models.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	target := s.Path(artifact.Filename)
	tmp, err := os.CreateTemp(s.dir, ".docmark-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(artifact.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	s.logger.Info().
		Str("path", target).
		Int("bytes", len(artifact.Data)).
		Int("pages", artifact.PageCount).
		Msg("Artifact written")
	return nil
}
