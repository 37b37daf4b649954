package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
)

// Service implements interfaces.BlobStore on the local filesystem. Locators
// are opaque filenames relative to the configured directory.
type Service struct {
	dir    string
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.BlobStore = (*Service)(nil)

// NewService creates a filesystem blob store rooted at the configured directory.
func NewService(config *common.BlobConfig, logger arbor.ILogger) (*Service, error) {
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Service{
		dir:    config.Dir,
		logger: logger,
	}, nil
}

// Put copies the source's bytes into storage before returning. The write goes
// to a temporary file first and is renamed into place, so a failed copy never
// leaves a partial blob behind a returned locator.
func (s *Service) Put(ctx context.Context, source io.Reader, nameHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	locator := fmt.Sprintf("page_%d_%s%s", time.Now().UnixMilli(), shortID(), extension(nameHint))
	finalPath := filepath.Join(s.dir, locator)
	partPath := finalPath + ".part"

	out, err := os.Create(partPath)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}

	if _, err := io.Copy(out, source); err != nil {
		out.Close()
		os.Remove(partPath)
		return "", fmt.Errorf("failed to copy blob: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("failed to finalize blob: %w", err)
	}

	if err := os.Rename(partPath, finalPath); err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("failed to finalize blob: %w", err)
	}

	s.logger.Debug().Str("locator", locator).Msg("Blob stored")
	return locator, nil
}

// Open returns a reader over a stored blob.
func (s *Service) Open(locator string) (io.ReadCloser, error) {
	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", locator, err)
	}
	return f, nil
}

// Delete removes a blob. Deleting a missing blob is not an error: callers
// must tolerate already-absent files (double delete, external tampering).
func (s *Service) Delete(locator string) error {
	path, err := s.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete blob %s: %w", locator, err)
	}
	s.logger.Debug().Str("locator", locator).Msg("Blob deleted")
	return nil
}

// resolve maps a locator to its path, rejecting anything that would escape
// the blob directory.
func (s *Service) resolve(locator string) (string, error) {
	if locator == "" || locator != filepath.Base(locator) {
		return "", fmt.Errorf("invalid blob locator: %q", locator)
	}
	return filepath.Join(s.dir, locator), nil
}

func shortID() string {
	return uuid.New().String()[:8]
}

// extension returns a safe file extension from the original filename hint.
func extension(nameHint string) string {
	ext := strings.ToLower(filepath.Ext(nameHint))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
