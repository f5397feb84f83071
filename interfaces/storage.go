package interfaces

import (
	"context"
	"errors"
	"io"
)

// BackendType selects which storage driver the facade instantiates.
// The value is read once from configuration at process start.
type BackendType string

const (
	// BackendLocal stores files on the local filesystem. It is the default
	// for unknown or empty backend types.
	BackendLocal BackendType = "local"
	// BackendS3 stores files in Amazon S3 or an S3-compatible service.
	BackendS3 BackendType = "s3"
	// BackendAzureBlob stores files in Azure Blob Storage.
	BackendAzureBlob BackendType = "azure-blob"
	// BackendAliyunOSS stores files in Alibaba Cloud OSS.
	BackendAliyunOSS BackendType = "oss"
	// BackendGoogleCloud stores files in Google Cloud Storage.
	BackendGoogleCloud BackendType = "gcs"
	// BackendTencentCOS stores files in Tencent Cloud COS.
	BackendTencentCOS BackendType = "cos"
	// BackendOracleOCI stores files in Oracle Cloud Object Storage.
	BackendOracleOCI BackendType = "oci"
	// BackendHuaweiOBS stores files in Huawei Cloud OBS.
	BackendHuaweiOBS BackendType = "obs"
	// BackendBaiduOBS stores files in Baidu Object Storage (BOS).
	BackendBaiduOBS BackendType = "baidu-obs"
	// BackendVolcengineTOS stores files in Volcengine TOS.
	BackendVolcengineTOS BackendType = "volcengine-tos"
	// BackendSupabase stores files in Supabase Storage.
	BackendSupabase BackendType = "supabase"
	// BackendIPFS stores files in an IPFS node's mutable file system.
	BackendIPFS BackendType = "ipfs"
	// BackendVault stores files in a HashiCorp Vault KV v2 engine.
	BackendVault BackendType = "vault"
)

// String returns the configuration value for this backend type.
func (t BackendType) String() string {
	return string(t)
}

var (
	// ErrNotFound is returned when the requested file does not exist in the
	// backend.
	ErrNotFound = errors.New("file not found")

	// ErrTransport is returned when the backend itself fails: network,
	// authentication, or storage-medium errors. An existence check must
	// surface transport failures as this error, never as a false result.
	ErrTransport = errors.New("storage transport failure")

	// ErrConfiguration is returned at initialization time when a backend
	// cannot be constructed from its configuration.
	ErrConfiguration = errors.New("storage backend misconfigured")

	// ErrLocalIO is returned by Download when the destination path cannot
	// be written.
	ErrLocalIO = errors.New("local file write failure")

	// ErrNotInitialized is returned when a facade operation is invoked
	// before Init completed.
	ErrNotInitialized = errors.New("storage facade not initialized")

	// ErrAlreadyInitialized is returned when Init is invoked a second time.
	ErrAlreadyInitialized = errors.New("storage facade already initialized")
)

// FileStorage is the operation contract every storage driver implements.
// Filenames are opaque keys within the backend's namespace; drivers may
// impose their own validation but the contract does not.
type FileStorage interface {
	// Save durably stores data under filename, overwriting any existing
	// content.
	Save(ctx context.Context, filename string, data []byte) error

	// LoadOnce returns the full payload materialized in memory.
	// Returns ErrNotFound if the file does not exist.
	LoadOnce(ctx context.Context, filename string) ([]byte, error)

	// LoadStream returns the payload as a lazy, forward-only reader.
	// The reader is single-pass and must be closed by the caller. Errors
	// may surface either from this call or while reading.
	LoadStream(ctx context.Context, filename string) (io.ReadCloser, error)

	// Download writes the payload to targetPath on the local filesystem.
	// Returns ErrNotFound if the file does not exist and ErrLocalIO if the
	// destination cannot be written.
	Download(ctx context.Context, filename, targetPath string) error

	// Exists reports whether filename currently resolves to stored
	// content. A transport failure is an error, not a false result.
	Exists(ctx context.Context, filename string) (bool, error)

	// Delete removes the file. Deleting a file that does not exist is not
	// an error.
	Delete(ctx context.Context, filename string) error
}
