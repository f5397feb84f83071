package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// SupabaseBackend implements the storage contract against the Supabase
// Storage REST API with bearer-token authentication.
type SupabaseBackend struct {
	baseURL string
	bucket  string
	apiKey  string
	client  *http.Client
	log     *slog.Logger
}

func newSupabaseDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return NewSupabaseBackend(cfg.Supabase, log)
}

// NewSupabaseBackend creates a Supabase storage backend for one bucket of a
// project.
func NewSupabaseBackend(cfg SupabaseConfig, log *slog.Logger) (*SupabaseBackend, error) {
	if cfg.URL == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: supabase url and bucket are required", interfaces.ErrConfiguration)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supabase api key is required", interfaces.ErrConfiguration)
	}

	return &SupabaseBackend{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		bucket:  cfg.Bucket,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}, nil
}

func (b *SupabaseBackend) objectURL(filename string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", b.baseURL, b.bucket, escapePath(filename))
}

func (b *SupabaseBackend) infoURL(filename string) string {
	return fmt.Sprintf("%s/storage/v1/object/info/%s/%s", b.baseURL, b.bucket, escapePath(filename))
}

func (b *SupabaseBackend) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	return req, nil
}

// isAbsent reports whether the API status means the object does not exist.
// Supabase returns 400 rather than 404 for some missing-object lookups.
func isAbsent(status int) bool {
	return status == http.StatusNotFound || status == http.StatusBadRequest
}

// Save uploads data with upsert semantics, overwriting existing content.
func (b *SupabaseBackend) Save(ctx context.Context, filename string, data []byte) error {
	req, err := b.newRequest(ctx, http.MethodPost, b.objectURL(filename), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("x-upsert", "true")
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: object upload returned status %d", interfaces.ErrTransport, resp.StatusCode)
	}

	b.log.Debug("Stored object",
		slog.String("bucket", b.bucket),
		slog.String("object", filename),
		slog.Int("size", len(data)))
	return nil
}

// LoadOnce fetches the object and materializes it in memory.
func (b *SupabaseBackend) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read object body: %w", interfaces.ErrTransport, err)
	}
	return data, nil
}

// LoadStream returns the object body as read from the connection.
func (b *SupabaseBackend) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	req, err := b.newRequest(ctx, http.MethodGet, b.objectURL(filename), nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	if isAbsent(resp.StatusCode) {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: object fetch returned status %d", interfaces.ErrTransport, resp.StatusCode)
	}
	return resp.Body, nil
}

// Download streams the object to targetPath.
func (b *SupabaseBackend) Download(ctx context.Context, filename, targetPath string) error {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeStreamToFile(rc, targetPath)
}

// Exists queries object metadata. Absence maps to false; any other failure
// is a transport error.
func (b *SupabaseBackend) Exists(ctx context.Context, filename string) (bool, error) {
	req, err := b.newRequest(ctx, http.MethodGet, b.infoURL(filename), nil)
	if err != nil {
		return false, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case isAbsent(resp.StatusCode):
		return false, nil
	default:
		return false, fmt.Errorf("%w: object info returned status %d", interfaces.ErrTransport, resp.StatusCode)
	}
}

// Delete removes the object. A missing object is not an error.
func (b *SupabaseBackend) Delete(ctx context.Context, filename string) error {
	req, err := b.newRequest(ctx, http.MethodDelete, b.objectURL(filename), nil)
	if err != nil {
		return err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || isAbsent(resp.StatusCode) {
		return nil
	}
	return fmt.Errorf("%w: object delete returned status %d", interfaces.ErrTransport, resp.StatusCode)
}
