package adjlist

import (
	"bufio"
	"io"
	"strconv"
)

const bufferSize = 256 * 1024

// Writer formats adjacency lines.
type Writer struct {
	bw   *bufio.Writer
	line []byte
}

// NewWriter returns a buffered Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriterSize(w, bufferSize)}
}

// WriteHeader writes the vertex count line.
func (w *Writer) WriteHeader(n uint64) error {
	w.line = strconv.AppendUint(w.line[:0], n, 10)
	w.line = append(w.line, '\n')
	_, err := w.bw.Write(w.line)
	return err
}

// WriteEntry writes one vertex line. nbrs must already be sorted and unique.
func (w *Writer) WriteEntry(v uint64, nbrs []uint64) error {
	w.line = strconv.AppendUint(w.line[:0], v, 10)
	w.line = append(w.line, ' ')
	w.line = strconv.AppendInt(w.line, int64(len(nbrs)), 10)
	for _, u := range nbrs {
		w.line = append(w.line, ' ')
		w.line = strconv.AppendUint(w.line, u, 10)
	}
	w.line = append(w.line, '\n')
	_, err := w.bw.Write(w.line)
	return err
}

// Flush writes buffered lines to the underlying writer.
func (w *Writer) Flush() error { return w.bw.Flush() }
