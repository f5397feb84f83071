package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/hashicorp/vault/api"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// VaultBackend implements the storage contract against a HashiCorp Vault
// KV v2 secrets engine. Payloads are stored base64-encoded in a single
// "content" field, one secret per filename.
type VaultBackend struct {
	client    *api.Client
	mountPath string
	dataPath  string
	log       *slog.Logger
}

func newVaultDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return NewVaultBackend(cfg.Vault, log)
}

// NewVaultBackend creates a Vault storage backend using token
// authentication.
func NewVaultBackend(cfg VaultConfig, log *slog.Logger) (*VaultBackend, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: vault address is required", interfaces.ErrConfiguration)
	}

	config := api.DefaultConfig()
	config.Address = cfg.Address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Vault client: %w", interfaces.ErrConfiguration, err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	mountPath := strings.Trim(cfg.MountPath, "/")
	if mountPath == "" {
		mountPath = "secret"
	}
	dataPath := strings.Trim(cfg.DataPath, "/")
	if dataPath == "" {
		dataPath = "files"
	}

	return &VaultBackend{
		client:    client,
		mountPath: mountPath,
		dataPath:  dataPath,
		log:       log,
	}, nil
}

func (b *VaultBackend) secretPath(filename string) string {
	return path.Join(b.mountPath, "data", b.dataPath, filename)
}

func (b *VaultBackend) metadataPath(filename string) string {
	return path.Join(b.mountPath, "metadata", b.dataPath, filename)
}

// Save stores data as a new secret version, overwriting previous content.
func (b *VaultBackend) Save(ctx context.Context, filename string, data []byte) error {
	p := b.secretPath(filename)

	_, err := b.client.Logical().WriteWithContext(ctx, p, map[string]interface{}{
		"data": map[string]interface{}{
			"content": base64.StdEncoding.EncodeToString(data),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to write secret: %w", interfaces.ErrTransport, err)
	}

	b.log.Debug("Stored file in Vault",
		slog.String("path", p),
		slog.Int("size", len(data)))
	return nil
}

// LoadOnce reads and decodes the secret's content field.
func (b *VaultBackend) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	secret, err := b.client.Logical().ReadWithContext(ctx, b.secretPath(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read secret: %w", interfaces.ErrTransport, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
	}

	inner, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		// KV v2 returns {"data": null} for deleted versions.
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
	}
	content, ok := inner["content"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: secret has no content field", interfaces.ErrTransport)
	}

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode secret content: %w", interfaces.ErrTransport, err)
	}
	return data, nil
}

// LoadStream wraps the materialized secret in a reader. Vault secrets are
// read whole; laziness here would not reduce memory use.
func (b *VaultBackend) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	data, err := b.LoadOnce(ctx, filename)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Download writes the secret's content to targetPath.
func (b *VaultBackend) Download(ctx context.Context, filename, targetPath string) error {
	data, err := b.LoadOnce(ctx, filename)
	if err != nil {
		return err
	}
	return writeStreamToFile(bytes.NewReader(data), targetPath)
}

// Exists reads the secret and reports whether it holds live data.
func (b *VaultBackend) Exists(ctx context.Context, filename string) (bool, error) {
	secret, err := b.client.Logical().ReadWithContext(ctx, b.secretPath(filename))
	if err != nil {
		return false, fmt.Errorf("%w: failed to read secret: %w", interfaces.ErrTransport, err)
	}
	if secret == nil || secret.Data == nil {
		return false, nil
	}
	_, ok := secret.Data["data"].(map[string]interface{})
	return ok, nil
}

// Delete removes the secret's metadata and all versions. Deleting an
// absent secret succeeds.
func (b *VaultBackend) Delete(ctx context.Context, filename string) error {
	if _, err := b.client.Logical().DeleteWithContext(ctx, b.metadataPath(filename)); err != nil {
		return fmt.Errorf("%w: failed to delete secret: %w", interfaces.ErrTransport, err)
	}
	return nil
}
