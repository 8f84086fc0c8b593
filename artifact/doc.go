// Package artifact turns document payloads returned by the backend into bytes
// with a MIME type and file name.
//
// The backend ships generated documents two ways: base64 text inside a JSON
// envelope (purchase orders, invoices) and raw byte streams (final reports).
// Both end up as an [Artifact].
//
// # Architecture boundaries
//
// This package does no network I/O. It never opens or renders documents; WriteTo
// is the only filesystem access and it writes inside a caller-chosen directory.
package artifact
