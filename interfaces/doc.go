// Package interfaces defines the core contract of the storage system,
// separating interface definitions from driver implementations.
//
// # Storage Contract
//
// FileStorage: the operation contract every backend driver implements,
// covering Save, LoadOnce, LoadStream, Download, Exists, and Delete. Callers never
// branch on the backend type; every backend presents exactly this surface.
//
// BackendType: the configuration value selecting which driver the facade
// instantiates. Unknown and empty values fall back to the local filesystem
// driver.
//
// # Error Kinds
//
// Failures are normalized to a small closed set of sentinel errors so that
// calling code can handle them without backend-specific knowledge:
//
//   - ErrNotFound: the requested file does not exist
//   - ErrTransport: network, authentication, or medium failure
//   - ErrConfiguration: backend could not be constructed (Init time only)
//   - ErrLocalIO: Download destination is unwritable
//
// Drivers wrap the most specific kind they can detect around the underlying
// cause; the facade re-raises them unchanged. Test with errors.Is.
package interfaces
