package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/storage-access-backend/interfaces"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConstructorFor_TotalOverIdentifierSpace(t *testing.T) {
	backends := []interfaces.BackendType{
		interfaces.BackendLocal,
		interfaces.BackendS3,
		interfaces.BackendAzureBlob,
		interfaces.BackendAliyunOSS,
		interfaces.BackendGoogleCloud,
		interfaces.BackendTencentCOS,
		interfaces.BackendOracleOCI,
		interfaces.BackendHuaweiOBS,
		interfaces.BackendBaiduOBS,
		interfaces.BackendVolcengineTOS,
		interfaces.BackendSupabase,
		interfaces.BackendIPFS,
		interfaces.BackendVault,
		interfaces.BackendType(""),
		interfaces.BackendType("bogus-name"),
	}

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			assert.NotNil(t, ConstructorFor(backend))
		})
	}
}

func TestConstructorFor_UnknownFallsBackToLocal(t *testing.T) {
	cfg := &Config{Local: LocalConfig{BaseDir: t.TempDir()}}

	for _, backend := range []interfaces.BackendType{"", "local", "bogus-name"} {
		t.Run(string(backend), func(t *testing.T) {
			construct := ConstructorFor(backend)
			runner, err := construct(context.Background(), cfg, testLogger())
			require.NoError(t, err)
			assert.IsType(t, &LocalBackend{}, runner)
		})
	}
}

func TestConstructorFor_S3YieldsS3Backend(t *testing.T) {
	cfg := &Config{
		Backend: interfaces.BackendS3,
		S3: S3Config{
			Bucket:    "test-bucket",
			Region:    "us-east-1",
			AccessKey: "key",
			SecretKey: "secret",
		},
	}

	construct := ConstructorFor(interfaces.BackendS3)
	runner, err := construct(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &S3Backend{}, runner)
}

func TestConstructorFor_S3CompatProviders(t *testing.T) {
	tests := []struct {
		backend interfaces.BackendType
		cfg     S3Config
		wantErr bool
	}{
		{backend: interfaces.BackendAliyunOSS, cfg: S3Config{Bucket: "b", Region: "cn-hangzhou"}},
		{backend: interfaces.BackendGoogleCloud, cfg: S3Config{Bucket: "b"}},
		{backend: interfaces.BackendTencentCOS, cfg: S3Config{Bucket: "b", Region: "ap-guangzhou"}},
		{backend: interfaces.BackendHuaweiOBS, cfg: S3Config{Bucket: "b", Region: "cn-north-4"}},
		{backend: interfaces.BackendBaiduOBS, cfg: S3Config{Bucket: "b", Region: "bj"}},
		{backend: interfaces.BackendVolcengineTOS, cfg: S3Config{Bucket: "b", Region: "cn-beijing"}},
		// OCI's endpoint embeds the tenancy namespace and must be explicit.
		{backend: interfaces.BackendOracleOCI, cfg: S3Config{Bucket: "b", Region: "us-ashburn-1"}, wantErr: true},
		{backend: interfaces.BackendOracleOCI, cfg: S3Config{Bucket: "b", Endpoint: "https://ns.compat.objectstorage.us-ashburn-1.oraclecloud.com"}},
		// Region-derived endpoints need a region.
		{backend: interfaces.BackendAliyunOSS, cfg: S3Config{Bucket: "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			construct := ConstructorFor(tt.backend)
			runner, err := construct(context.Background(), &Config{S3: tt.cfg}, testLogger())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, interfaces.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &S3Backend{}, runner)
		})
	}
}
