// Package codec centralizes compression of intermediate pipeline artifacts.
//
// Every artifact of a run is written and read with the same codec, so the
// codec is a run-wide setting rather than something recorded per file.
package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Codec wraps artifact streams with a compression format.
// Implementations must be safe for concurrent use.
type Codec interface {
	// NewWriter returns a writer that compresses into w. Closing it flushes
	// the compressed stream but does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader returns a reader that decompresses r. Closing it releases
	// decoder resources but does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = None{}

var builtin = map[string]Codec{
	"none": None{},
	"lz4":  LZ4{},
	"zstd": ZSTD{},
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	if name == "" {
		return Default, nil
	}
	c, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (available: %v)", name, Names())
	}
	return c, nil
}

// Names lists the built-in codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// None passes data through unchanged.
type None struct{}

func (None) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }
func (None) NewReader(r io.Reader) (io.ReadCloser, error)  { return io.NopCloser(r), nil }
func (None) Name() string                                  { return "none" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

var errClosed = errors.New("codec: stream closed")
