// Package modelstore persists projection artifacts produced by the linear
// methods.
//
// Store is the interface for reading and writing serialized models.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with atomic writes
//   - MemoryStore: In-memory store for testing
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3
//
// # Format
//
// Models are framed with a magic header, a compression tag (none, LZ4 or
// zstd) and the binary encodings of the projection matrix and mean vector.
// The format is a breaking-change boundary: bytes written by one release are
// only guaranteed to decode in releases sharing the same magic.
package modelstore
