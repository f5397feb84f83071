package storage

import (
	"context"
	"log/slog"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// Constructor is a deferred driver factory. Resolution via ConstructorFor
// only returns the constructor; instantiation happens exactly once, inside
// Storage.Init.
type Constructor func(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error)

// ConstructorFor maps a backend type to its driver constructor. It is total
// over the identifier space: unknown and empty values resolve to the local
// filesystem constructor, the same one the "local" identifier resolves to.
// It has no side effects and never fails.
func ConstructorFor(backend interfaces.BackendType) Constructor {
	switch backend {
	case interfaces.BackendS3:
		return newS3Driver
	case interfaces.BackendAzureBlob:
		return newAzureBlobDriver
	case interfaces.BackendAliyunOSS:
		return newOSSDriver
	case interfaces.BackendGoogleCloud:
		return newGCSDriver
	case interfaces.BackendTencentCOS:
		return newCOSDriver
	case interfaces.BackendOracleOCI:
		return newOCIDriver
	case interfaces.BackendHuaweiOBS:
		return newOBSDriver
	case interfaces.BackendBaiduOBS:
		return newBOSDriver
	case interfaces.BackendVolcengineTOS:
		return newTOSDriver
	case interfaces.BackendSupabase:
		return newSupabaseDriver
	case interfaces.BackendIPFS:
		return newIPFSDriver
	case interfaces.BackendVault:
		return newVaultDriver
	case interfaces.BackendLocal:
		return newLocalDriver
	default:
		return newLocalDriver
	}
}
