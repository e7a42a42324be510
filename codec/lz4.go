package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 uses the LZ4 frame format (fast, good for hot intermediate data).
type LZ4 struct{}

func (LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.BlockSizeOption(lz4.Block4Mb)); err != nil {
		return nil, err
	}
	return zw, nil
}

func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (LZ4) Name() string { return "lz4" }
