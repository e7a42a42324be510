package codec

import (
	"io"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

// ZSTD uses the Zstandard frame format (better ratio, good for large bucket files).
type ZSTD struct {
	// Level is the zstd compression level; 0 selects zstd.SpeedDefault.
	Level int
}

func (z ZSTD) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := zstd.SpeedDefault
	if z.Level > 0 {
		level = zstd.EncoderLevelFromZstd(z.Level)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
}

func (ZSTD) NewReader(r io.Reader) (io.ReadCloser, error) {
	// A single stream is decoded sequentially; no need for decoder goroutines.
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{dec: dec}, nil
}

func (ZSTD) Name() string { return "zstd" }

type zstdReadCloser struct {
	dec    *zstd.Decoder
	closed atomic.Bool
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	if z.closed.Load() {
		return 0, errClosed
	}
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	if z.closed.CompareAndSwap(false, true) {
		z.dec.Close()
	}
	return nil
}
