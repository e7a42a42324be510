// Package blobstore provides the storage abstraction for graphbuild's pipeline
// artifacts: raw input, label shards, dictionaries, staging buffers, bucket
// files and the final adjacency list.
//
// Every artifact is written once through Create and read front to back through
// OpenReader, so a backend only needs streaming writes and ranged reads.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem, atomic rename on close
//   - MemoryStore: In-memory, used by tests
//   - s3.Store: Amazon S3 with multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for writing
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// A WritableBlob must not expose partial data: readers see either nothing or
// the complete blob after Close. Abort discards the data.
package blobstore
