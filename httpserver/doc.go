// Package httpserver exposes the storage facade over HTTP.
//
// The files API maps directly onto the facade operations:
//
//	PUT    /api/files/{name}               save request body
//	GET    /api/files/{name}[?stream=true] fetch content (buffered or streamed)
//	HEAD   /api/files/{name}               existence check
//	DELETE /api/files/{name}               delete
//
// The server also provides /livez, /readyz, /drain, and /undrain endpoints
// for orchestration, an optional pprof endpoint, and a Prometheus metrics
// listener on a separate address.
package httpserver
