package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/hupe1980/graphbuild/codec"
	"github.com/hupe1980/graphbuild/internal/recordio"
	"github.com/hupe1980/graphbuild/resource"
)

// Store opens and creates the artifacts of one run.
//
// Intermediate artifacts are framed with recordio and compressed with the
// run's codec. Raw artifacts (input dump, final outputs) bypass the codec.
// Both kinds pass through the controller's IO limiter.
type Store struct {
	blobs blobstore.BlobStore
	codec codec.Codec
	rc    *resource.Controller
	keep  bool
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the codec for intermediate artifacts.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithController sets the resource controller used for IO throttling.
func WithController(rc *resource.Controller) Option {
	return func(s *Store) { s.rc = rc }
}

// WithKeep makes Discard a no-op so intermediates survive the run.
func WithKeep(keep bool) Option {
	return func(s *Store) { s.keep = keep }
}

// NewStore creates a Store over blobs.
func NewStore(blobs blobstore.BlobStore, optFns ...Option) *Store {
	s := &Store{blobs: blobs, codec: codec.Default}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Blobs returns the underlying blob store.
func (s *Store) Blobs() blobstore.BlobStore { return s.blobs }

// Codec returns the codec used for intermediate artifacts.
func (s *Store) Codec() codec.Codec { return s.codec }

// Writer is an artifact being written. Data becomes visible under its name
// only after Commit.
type Writer struct {
	name  string
	blob  blobstore.WritableBlob
	enc   io.WriteCloser
	done  bool
	bytes int64
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.enc.Write(p)
	w.bytes += int64(n)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", w.name, err)
	}
	return n, nil
}

// Name returns the artifact name.
func (w *Writer) Name() string { return w.name }

// Commit flushes the encoder and publishes the artifact.
func (w *Writer) Commit() error {
	if w.done {
		return nil
	}
	w.done = true
	if err := w.enc.Close(); err != nil {
		_ = w.blob.Abort()
		return fmt.Errorf("flush %s: %w", w.name, err)
	}
	if err := w.blob.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", w.name, err)
	}
	return nil
}

// Abort discards the artifact. Abort after Commit is a no-op.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.enc.Close()
	return w.blob.Abort()
}

// CreateRaw creates an uncompressed artifact.
func (s *Store) CreateRaw(ctx context.Context, name string) (*Writer, error) {
	return s.create(ctx, name, codec.None{})
}

// Create creates an artifact compressed with the run's codec.
func (s *Store) Create(ctx context.Context, name string) (*Writer, error) {
	return s.create(ctx, name, s.codec)
}

func (s *Store) create(ctx context.Context, name string, c codec.Codec) (*Writer, error) {
	blob, err := s.blobs.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	enc, err := c.NewWriter(resource.NewRateLimitedWriter(ctx, blob, s.rc))
	if err != nil {
		_ = blob.Abort()
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return &Writer{name: name, blob: blob, enc: enc}, nil
}

// Reader is an open artifact.
type Reader struct {
	name string
	src  io.ReadCloser
	dec  io.ReadCloser
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.dec.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("read %s: %w", r.name, err)
	}
	return n, err
}

// Name returns the artifact name.
func (r *Reader) Name() string { return r.name }

// Close releases the decoder and the underlying blob.
func (r *Reader) Close() error {
	err := r.dec.Close()
	if cerr := r.src.Close(); err == nil {
		err = cerr
	}
	return err
}

// OpenRaw opens an uncompressed artifact.
func (s *Store) OpenRaw(ctx context.Context, name string) (*Reader, error) {
	return s.open(ctx, name, codec.None{})
}

// Open opens an artifact compressed with the run's codec.
func (s *Store) Open(ctx context.Context, name string) (*Reader, error) {
	return s.open(ctx, name, s.codec)
}

func (s *Store) open(ctx context.Context, name string, c codec.Codec) (*Reader, error) {
	src, err := blobstore.OpenReader(ctx, s.blobs, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	dec, err := c.NewReader(resource.NewRateLimitedReader(ctx, src, s.rc))
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &Reader{name: name, src: src, dec: dec}, nil
}

// Sink is a framed intermediate artifact being written.
type Sink struct {
	*recordio.Writer
	w *Writer
}

// CreateSink creates a framed intermediate artifact.
func (s *Store) CreateSink(ctx context.Context, name string) (*Sink, error) {
	w, err := s.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Sink{Writer: recordio.NewWriter(w), w: w}, nil
}

// Name returns the artifact name.
func (k *Sink) Name() string { return k.w.name }

// Commit flushes buffered frames and publishes the artifact.
func (k *Sink) Commit() error {
	if err := k.Flush(); err != nil {
		_ = k.w.Abort()
		return err
	}
	return k.w.Commit()
}

// Abort discards the artifact.
func (k *Sink) Abort() error { return k.w.Abort() }

// Source is an open framed intermediate artifact.
type Source struct {
	*recordio.Reader
	r *Reader
}

// OpenSource opens a framed intermediate artifact.
func (s *Store) OpenSource(ctx context.Context, name string) (*Source, error) {
	r, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Source{Reader: recordio.NewReader(r), r: r}, nil
}

// Name returns the artifact name.
func (src *Source) Name() string { return src.r.name }

// Close releases the artifact.
func (src *Source) Close() error { return src.r.Close() }

// Discard deletes intermediate artifacts once their consumer is done.
// It does nothing when the store keeps intermediates.
func (s *Store) Discard(ctx context.Context, names ...string) error {
	if s.keep {
		return nil
	}
	return s.Delete(ctx, names...)
}

// Delete removes artifacts unconditionally.
func (s *Store) Delete(ctx context.Context, names ...string) error {
	var errs []error
	for _, name := range names {
		if err := s.blobs.Delete(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
