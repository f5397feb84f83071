package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// LocalBackend implements the storage contract on the local filesystem.
// Files are stored under a base directory, preserving any subdirectory
// structure present in the filename.
type LocalBackend struct {
	baseDir string
	log     *slog.Logger
}

func newLocalDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return NewLocalBackend(cfg.Local.BaseDir, log)
}

// NewLocalBackend creates a local filesystem backend rooted at baseDir,
// creating the directory if needed. An empty baseDir defaults to "storage".
func NewLocalBackend(baseDir string, log *slog.Logger) (*LocalBackend, error) {
	if baseDir == "" {
		baseDir = "storage"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create base directory: %w", interfaces.ErrConfiguration, err)
	}
	return &LocalBackend{baseDir: baseDir, log: log}, nil
}

// filePath resolves filename under the base directory. Keys whose cleaned
// join leaves the base directory are rejected; they can never name stored
// content.
func (b *LocalBackend) filePath(filename string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.Clean(filename))
	if !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: filename escapes base directory: %s", interfaces.ErrNotFound, filename)
	}
	return p, nil
}

// Save writes data to the file, creating parent directories as needed.
func (b *LocalBackend) Save(ctx context.Context, filename string, data []byte) error {
	path, err := b.filePath(filename)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", interfaces.ErrTransport, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write file: %w", interfaces.ErrTransport, err)
	}

	b.log.Debug("Stored file",
		slog.String("path", path),
		slog.Int("size", len(data)))
	return nil
}

// LoadOnce reads the full file content. Returns ErrNotFound if the file
// does not exist.
func (b *LocalBackend) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	path, err := b.filePath(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("%w: failed to read file: %w", interfaces.ErrTransport, err)
	}
	return data, nil
}

// LoadStream opens the file for sequential reading.
func (b *LocalBackend) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	path, err := b.filePath(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("%w: failed to open file: %w", interfaces.ErrTransport, err)
	}
	return f, nil
}

// Download copies the file to targetPath.
func (b *LocalBackend) Download(ctx context.Context, filename, targetPath string) error {
	src, err := b.LoadStream(ctx, filename)
	if err != nil {
		return err
	}
	defer src.Close()
	return writeStreamToFile(src, targetPath)
}

// Exists checks whether the file is present on disk.
func (b *LocalBackend) Exists(ctx context.Context, filename string) (bool, error) {
	path, err := b.filePath(filename)
	if err != nil {
		// An escaping key never resolves to stored content.
		return false, nil
	}

	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to stat file: %w", interfaces.ErrTransport, err)
	}
	return true, nil
}

// Delete removes the file. A missing file is not an error.
func (b *LocalBackend) Delete(ctx context.Context, filename string) error {
	path, err := b.filePath(filename)
	if err != nil {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to remove file: %w", interfaces.ErrTransport, err)
	}
	return nil
}

// writeStreamToFile drains r into targetPath. All failures are local I/O
// failures of the destination, not transport failures of the backend.
func writeStreamToFile(r io.Reader, targetPath string) error {
	f, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrLocalIO, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", interfaces.ErrLocalIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrLocalIO, err)
	}
	return nil
}
