package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.uber.org/atomic"

	"github.com/filedepot/storage-access-backend/interfaces"
	"github.com/filedepot/storage-access-backend/metrics"
)

// Storage is the single process-wide entry point for file operations. It
// retains exactly one backend driver, chosen once by Init, and forwards
// every operation to it. The facade adds no behavior of its own beyond
// error normalization, the buffered-vs-streaming load branch, and
// best-effort latency reporting.
//
// Init must complete before the first operation; the surrounding
// application lifecycle is responsible for that ordering. After Init the
// facade is safe for arbitrarily many concurrent callers, since it is a
// stateless forwarding layer over the retained driver.
type Storage struct {
	log     *slog.Logger
	latency *metrics.OperationLatency

	initialized atomic.Bool
	runner      interfaces.FileStorage
	backend     interfaces.BackendType
}

// New creates an uninitialized facade. latency may be nil, which disables
// latency reporting.
func New(log *slog.Logger, latency *metrics.OperationLatency) *Storage {
	if log == nil {
		log = slog.Default()
	}
	return &Storage{log: log, latency: latency}
}

// Init resolves the configured backend type to a driver constructor,
// instantiates the driver once, and retains it. Driver construction may
// perform I/O (opening network clients, creating directories); ctx bounds
// that setup work.
//
// Init transitions the facade from uninitialized to initialized exactly
// once; a second call returns ErrAlreadyInitialized. There is no way back.
func (s *Storage) Init(ctx context.Context, cfg *Config) error {
	return s.initBackend(ctx, cfg, ConstructorFor(cfg.Backend))
}

func (s *Storage) initBackend(ctx context.Context, cfg *Config, construct Constructor) error {
	if s.initialized.Load() {
		return interfaces.ErrAlreadyInitialized
	}

	runner, err := construct(ctx, cfg, s.log)
	if err != nil {
		s.log.Error("Failed to initialize storage backend",
			slog.String("backend", cfg.Backend.String()),
			"err", err)
		return fmt.Errorf("init storage backend %q: %w", cfg.Backend, err)
	}

	s.runner = runner
	s.backend = cfg.Backend
	if s.backend == "" {
		s.backend = interfaces.BackendLocal
	}
	s.initialized.Store(true)

	s.log.Info("Storage backend initialized",
		slog.String("backend", s.backend.String()))
	return nil
}

// Backend returns the type of the retained driver, or the empty string
// before initialization.
func (s *Storage) Backend() interfaces.BackendType {
	if !s.initialized.Load() {
		return ""
	}
	return s.backend
}

func (s *Storage) active() (interfaces.FileStorage, error) {
	if !s.initialized.Load() {
		return nil, interfaces.ErrNotInitialized
	}
	return s.runner, nil
}

func (s *Storage) observe(operation string, start time.Time) {
	s.latency.Observe(operation, s.backend.String(), time.Since(start))
}

// Save stores data under filename, overwriting existing content.
func (s *Storage) Save(ctx context.Context, filename string, data []byte) error {
	runner, err := s.active()
	if err != nil {
		return err
	}
	defer s.observe("save", time.Now())

	if err := runner.Save(ctx, filename, data); err != nil {
		s.log.Error("Failed to save file",
			slog.String("filename", filename),
			"err", err)
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

// Load retrieves filename either buffered or streaming. With stream=false
// the payload is fully materialized first and wrapped in a reader; with
// stream=true the returned reader is lazy and single-pass. The caller
// closes the reader in both modes.
func (s *Storage) Load(ctx context.Context, filename string, stream bool) (io.ReadCloser, error) {
	if stream {
		return s.LoadStream(ctx, filename)
	}
	data, err := s.LoadOnce(ctx, filename)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// LoadOnce retrieves the full payload of filename in memory.
func (s *Storage) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	runner, err := s.active()
	if err != nil {
		return nil, err
	}
	defer s.observe("load_once", time.Now())

	data, err := runner.LoadOnce(ctx, filename)
	if err != nil {
		s.log.Error("Failed to load file",
			slog.String("filename", filename),
			"err", err)
		return nil, fmt.Errorf("load_once %s: %w", filename, err)
	}
	return data, nil
}

// LoadStream retrieves filename as a lazy, forward-only reader. Each call
// returns an independent reader tied to its own underlying read, so
// consumption may interleave freely with other operations.
func (s *Storage) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	runner, err := s.active()
	if err != nil {
		return nil, err
	}
	defer s.observe("load_stream", time.Now())

	rc, err := runner.LoadStream(ctx, filename)
	if err != nil {
		s.log.Error("Failed to open file stream",
			slog.String("filename", filename),
			"err", err)
		return nil, fmt.Errorf("load_stream %s: %w", filename, err)
	}
	return rc, nil
}

// Download writes the payload of filename to targetPath on the local
// filesystem.
func (s *Storage) Download(ctx context.Context, filename, targetPath string) error {
	runner, err := s.active()
	if err != nil {
		return err
	}
	defer s.observe("download", time.Now())

	if err := runner.Download(ctx, filename, targetPath); err != nil {
		s.log.Error("Failed to download file",
			slog.String("filename", filename),
			slog.String("target", targetPath),
			"err", err)
		return fmt.Errorf("download %s: %w", filename, err)
	}
	return nil
}

// Exists reports whether filename currently resolves to stored content.
// Transport failures are returned as errors, never as a false result.
func (s *Storage) Exists(ctx context.Context, filename string) (bool, error) {
	runner, err := s.active()
	if err != nil {
		return false, err
	}
	defer s.observe("exists", time.Now())

	ok, err := runner.Exists(ctx, filename)
	if err != nil {
		s.log.Error("Failed to check file existence",
			slog.String("filename", filename),
			"err", err)
		return false, fmt.Errorf("exists %s: %w", filename, err)
	}
	return ok, nil
}

// Delete removes filename. Deleting a file that does not exist succeeds.
func (s *Storage) Delete(ctx context.Context, filename string) error {
	runner, err := s.active()
	if err != nil {
		return err
	}
	defer s.observe("delete", time.Now())

	if err := runner.Delete(ctx, filename); err != nil {
		s.log.Error("Failed to delete file",
			slog.String("filename", filename),
			"err", err)
		return fmt.Errorf("delete %s: %w", filename, err)
	}
	return nil
}
