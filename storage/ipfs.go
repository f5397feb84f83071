package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// IPFSBackend implements the storage contract against an IPFS node. IPFS is
// content-addressed, so the keyed namespace the contract requires is built
// on the node's mutable file system (MFS) under a fixed root directory.
type IPFSBackend struct {
	shell *shell.Shell
	root  string
	log   *slog.Logger
}

func newIPFSDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return NewIPFSBackend(cfg.IPFS, log)
}

// NewIPFSBackend creates an IPFS storage backend connected to the node's
// API address. An empty address defaults to localhost:5001.
func NewIPFSBackend(cfg IPFSConfig, log *slog.Logger) (*IPFSBackend, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:5001"
	}

	root := cfg.Root
	if root == "" {
		root = "/storage"
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}

	sh := shell.NewShell(addr)
	if cfg.Timeout > 0 {
		sh.SetTimeout(cfg.Timeout)
	}

	return &IPFSBackend{
		shell: sh,
		root:  strings.TrimSuffix(root, "/"),
		log:   log,
	}, nil
}

func (b *IPFSBackend) mfsPath(filename string) string {
	return path.Join(b.root, filename)
}

// isMFSNotFound reports whether the files API error means the path is
// absent. The API signals this only through the error message.
func isMFSNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "does not exist")
}

// Save writes data into MFS, creating parent directories and truncating
// existing content.
func (b *IPFSBackend) Save(ctx context.Context, filename string, data []byte) error {
	p := b.mfsPath(filename)

	err := b.shell.FilesWrite(ctx, p, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true),
		shell.FilesWrite.Truncate(true))
	if err != nil {
		return fmt.Errorf("%w: failed to write to IPFS: %w", interfaces.ErrTransport, err)
	}

	b.log.Debug("Stored file in IPFS",
		slog.String("path", p),
		slog.Int("size", len(data)))
	return nil
}

// LoadOnce reads the full file content from MFS.
func (b *IPFSBackend) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read from IPFS: %w", interfaces.ErrTransport, err)
	}
	return data, nil
}

// LoadStream opens the MFS file for sequential reading.
func (b *IPFSBackend) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	rc, err := b.shell.FilesRead(ctx, b.mfsPath(filename))
	if err != nil {
		if isMFSNotFound(err) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("%w: failed to read from IPFS: %w", interfaces.ErrTransport, err)
	}
	return rc, nil
}

// Download streams the MFS file to targetPath.
func (b *IPFSBackend) Download(ctx context.Context, filename, targetPath string) error {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeStreamToFile(rc, targetPath)
}

// Exists stats the MFS path.
func (b *IPFSBackend) Exists(ctx context.Context, filename string) (bool, error) {
	_, err := b.shell.FilesStat(ctx, b.mfsPath(filename))
	if err != nil {
		if isMFSNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to stat IPFS path: %w", interfaces.ErrTransport, err)
	}
	return true, nil
}

// Delete removes the MFS file. A missing file is not an error.
func (b *IPFSBackend) Delete(ctx context.Context, filename string) error {
	if err := b.shell.FilesRm(ctx, b.mfsPath(filename), true); err != nil {
		if isMFSNotFound(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to remove IPFS path: %w", interfaces.ErrTransport, err)
	}
	return nil
}
