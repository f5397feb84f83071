// Package storage provides a uniform file-storage facade with pluggable
// backend drivers.
//
// Application code performs all file operations (save, load, stream,
// download, exists, delete) through the Storage facade, while the bytes
// live in one of many interchangeable backends:
//
//   - Local filesystem for development and single-node deployments
//   - Amazon S3 and S3-compatible services
//   - Alibaba OSS, Google Cloud Storage, Tencent COS, Oracle OCI,
//     Huawei OBS, Baidu BOS, and Volcengine TOS via their S3-compatible
//     endpoints
//   - Azure Blob Storage via the Blob REST API
//   - Supabase Storage via its REST API
//   - IPFS via the node's mutable file system
//   - HashiCorp Vault KV v2 for small sensitive payloads
//
// # Backend Selection
//
// Exactly one backend is selected per process, at initialization time, by
// the configured backend type:
//
//	cfg := &storage.Config{
//	    Backend: interfaces.BackendS3,
//	    S3:      storage.S3Config{Bucket: "uploads", Region: "us-west-2"},
//	}
//	store := storage.New(logger, latency)
//	if err := store.Init(ctx, cfg); err != nil {
//	    return err
//	}
//
// ConstructorFor resolves the backend type to a driver constructor and is
// total: unknown and empty types fall back to the local filesystem driver.
// The facade instantiates the driver exactly once and forwards every
// subsequent operation to it.
//
// # Load Modes
//
// Load(ctx, name, stream) routes between the buffered and streaming paths.
// LoadOnce materializes the whole payload in memory; LoadStream returns a
// lazy, single-pass io.ReadCloser backed by one underlying read, so large
// payloads never need to fit in memory at once.
//
// # Error Policy
//
// Drivers return the sentinel error kinds defined in the interfaces
// package, always wrapping the underlying cause. The facade logs each
// failure with the operation name and re-raises it unchanged; it never
// downgrades, swallows, or reclassifies. Callers use errors.Is against
// interfaces.ErrNotFound, interfaces.ErrTransport, and friends regardless
// of which backend is configured.
package storage
