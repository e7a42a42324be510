package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading and writing pipeline artifacts.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob for streaming writes. The blob becomes visible
	// under name only after a successful Close.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes starting at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader for length bytes starting at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a handle to a blob being written.
type WritableBlob interface {
	io.Writer
	// Close commits the written data.
	Close() error
	// Abort discards the written data. Abort after Close is a no-op.
	Abort() error
	// Sync flushes buffered data to durable storage where supported.
	Sync() error
}

// OpenReader opens name and returns a sequential reader over its full content.
// Closing the reader closes the underlying blob.
func OpenReader(ctx context.Context, store BlobStore, name string) (io.ReadCloser, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if b.Size() == 0 {
		return &blobReader{ReadCloser: io.NopCloser(emptyReader{}), blob: b}, nil
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &blobReader{ReadCloser: rc, blob: b}, nil
}

type blobReader struct {
	io.ReadCloser
	blob Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// Exists reports whether name is present in store.
func Exists(ctx context.Context, store BlobStore, name string) (bool, error) {
	names, err := store.List(ctx, name)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
