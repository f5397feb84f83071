package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// AzureBlobBackend implements the storage contract against the Azure Blob
// service REST API. Authentication uses a SAS token scoped to the
// container, appended to every request URL.
type AzureBlobBackend struct {
	endpoint  string
	container string
	sasToken  string
	client    *http.Client
	log       *slog.Logger
}

func newAzureBlobDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return NewAzureBlobBackend(cfg.Azure, log)
}

// NewAzureBlobBackend creates an Azure Blob storage backend. Either the
// account name or an explicit endpoint must be configured, along with the
// container name.
func NewAzureBlobBackend(cfg AzureBlobConfig, log *slog.Logger) (*AzureBlobBackend, error) {
	if cfg.Container == "" {
		return nil, fmt.Errorf("%w: azure container name is required", interfaces.ErrConfiguration)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.AccountName == "" {
			return nil, fmt.Errorf("%w: azure account name or endpoint is required", interfaces.ErrConfiguration)
		}
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	}

	return &AzureBlobBackend{
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		container: cfg.Container,
		sasToken:  strings.TrimPrefix(cfg.SASToken, "?"),
		client:    &http.Client{Timeout: 60 * time.Second},
		log:       log,
	}, nil
}

func (b *AzureBlobBackend) blobURL(filename string) string {
	u := fmt.Sprintf("%s/%s/%s", b.endpoint, b.container, escapePath(filename))
	if b.sasToken != "" {
		u += "?" + b.sasToken
	}
	return u
}

func (b *AzureBlobBackend) newRequest(ctx context.Context, method, filename string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.blobURL(filename), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	req.Header.Set("x-ms-version", "2021-08-06")
	return req, nil
}

// Save uploads data as a block blob, overwriting existing content.
func (b *AzureBlobBackend) Save(ctx context.Context, filename string, data []byte) error {
	req, err := b.newRequest(ctx, http.MethodPut, filename, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	req.ContentLength = int64(len(data))

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: blob upload returned status %d", interfaces.ErrTransport, resp.StatusCode)
	}

	b.log.Debug("Stored blob",
		slog.String("container", b.container),
		slog.String("blob", filename),
		slog.Int("size", len(data)))
	return nil
}

// LoadOnce fetches the blob and materializes it in memory.
func (b *AzureBlobBackend) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read blob body: %w", interfaces.ErrTransport, err)
	}
	return data, nil
}

// LoadStream returns the blob body as read from the connection.
func (b *AzureBlobBackend) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	req, err := b.newRequest(ctx, http.MethodGet, filename, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: blob fetch returned status %d", interfaces.ErrTransport, resp.StatusCode)
	}
	return resp.Body, nil
}

// Download streams the blob to targetPath.
func (b *AzureBlobBackend) Download(ctx context.Context, filename, targetPath string) error {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeStreamToFile(rc, targetPath)
}

// Exists heads the blob. A 404 maps to false; any other failure is a
// transport error.
func (b *AzureBlobBackend) Exists(ctx context.Context, filename string) (bool, error) {
	req, err := b.newRequest(ctx, http.MethodHead, filename, nil)
	if err != nil {
		return false, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: blob head returned status %d", interfaces.ErrTransport, resp.StatusCode)
	}
}

// Delete removes the blob. A missing blob is not an error.
func (b *AzureBlobBackend) Delete(ctx context.Context, filename string) error {
	req, err := b.newRequest(ctx, http.MethodDelete, filename, nil)
	if err != nil {
		return err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("%w: blob delete returned status %d", interfaces.ErrTransport, resp.StatusCode)
	}
}

// escapePath escapes each path segment of a filename while keeping the
// segment separators intact.
func escapePath(filename string) string {
	segments := strings.Split(filename, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
