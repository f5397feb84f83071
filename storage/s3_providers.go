package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// Several providers expose S3-compatible object storage APIs, so their
// drivers are the S3 backend pointed at the provider's interoperability
// endpoint. When no explicit endpoint is configured it is derived from the
// configured region using the provider's endpoint scheme.

func newOSSDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return newS3CompatBackend(cfg.S3, "oss", "https://oss-%s.aliyuncs.com", log)
}

func newGCSDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	// GCS uses a single global interoperability endpoint with HMAC keys.
	return newS3CompatBackend(cfg.S3, "gcs", "https://storage.googleapis.com", log)
}

func newCOSDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return newS3CompatBackend(cfg.S3, "cos", "https://cos.%s.myqcloud.com", log)
}

func newOCIDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	// OCI's compatibility endpoint embeds the tenancy namespace
	// (https://{namespace}.compat.objectstorage.{region}.oraclecloud.com),
	// which cannot be derived from the region alone.
	if cfg.S3.Endpoint == "" {
		return nil, fmt.Errorf("%w: oci backend requires an explicit endpoint", interfaces.ErrConfiguration)
	}
	return newS3CompatBackend(cfg.S3, "oci", "", log)
}

func newOBSDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return newS3CompatBackend(cfg.S3, "obs", "https://obs.%s.myhuaweicloud.com", log)
}

func newBOSDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return newS3CompatBackend(cfg.S3, "baidu-obs", "https://s3.%s.bcebos.com", log)
}

func newTOSDriver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return newS3CompatBackend(cfg.S3, "tos", "https://tos-s3-%s.volces.com", log)
}

func newS3CompatBackend(cfg S3Config, provider, endpointScheme string, log *slog.Logger) (*S3Backend, error) {
	if cfg.Endpoint == "" {
		if strings.Contains(endpointScheme, "%s") {
			if cfg.Region == "" {
				return nil, fmt.Errorf("%w: %s backend requires a region or an explicit endpoint", interfaces.ErrConfiguration, provider)
			}
			cfg.Endpoint = fmt.Sprintf(endpointScheme, cfg.Region)
		} else {
			cfg.Endpoint = endpointScheme
		}
	}

	backend, err := NewS3Backend(cfg, log)
	if err != nil {
		return nil, err
	}

	log.Debug("Using S3-compatible backend",
		slog.String("provider", provider),
		slog.String("endpoint", cfg.Endpoint))
	return backend, nil
}
