package storage

import (
	"time"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// Config carries the backend selection plus per-backend settings. Only the
// section matching the selected backend is consumed; the rest is ignored.
type Config struct {
	// Backend selects the driver to instantiate. Unknown or empty values
	// fall back to the local filesystem driver.
	Backend interfaces.BackendType

	Local    LocalConfig
	S3       S3Config
	Azure    AzureBlobConfig
	Supabase SupabaseConfig
	IPFS     IPFSConfig
	Vault    VaultConfig
}

// LocalConfig configures the local filesystem driver.
type LocalConfig struct {
	// BaseDir is the directory files are stored under. Defaults to
	// "storage" relative to the working directory.
	BaseDir string
}

// S3Config configures the S3 driver and the S3-compatible provider drivers
// (OSS, GCS, COS, OCI, OBS, TOS). For compatible providers the endpoint is
// derived from the region when not set explicitly.
type S3Config struct {
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// AzureBlobConfig configures the Azure Blob Storage driver. Authentication
// uses a SAS token scoped to the container.
type AzureBlobConfig struct {
	AccountName string
	Container   string
	SASToken    string
	// Endpoint overrides the default https://{account}.blob.core.windows.net.
	Endpoint string
}

// SupabaseConfig configures the Supabase Storage driver.
type SupabaseConfig struct {
	// URL is the project URL, e.g. https://xyzcompany.supabase.co.
	URL    string
	Bucket string
	APIKey string
}

// IPFSConfig configures the IPFS driver. Files are kept in the node's
// mutable file system under Root.
type IPFSConfig struct {
	// Addr is the IPFS API address, host:port.
	Addr string
	// Root is the MFS directory files are stored under. Defaults to
	// "/storage".
	Root    string
	Timeout time.Duration
}

// VaultConfig configures the HashiCorp Vault driver (KV v2 engine).
type VaultConfig struct {
	Address string
	Token   string
	// MountPath is the KV v2 mount, defaults to "secret".
	MountPath string
	// DataPath is the path prefix within the mount, defaults to "files".
	DataPath string
}
