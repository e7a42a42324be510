package recordio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const bufferSize = 256 * 1024

// MaxLabelSize bounds a single label frame. Larger lengths indicate corruption.
const MaxLabelSize = 64 << 20

// ErrCorrupt is returned when a frame cannot be decoded.
var ErrCorrupt = errors.New("recordio: corrupt frame")

// Writer encodes frames onto an underlying stream.
//
// Frame layouts:
//
//	label:  uvarint(len) bytes
//	token:  kind byte, then label frame (KindLabel) or uvarint(id) (KindVertex)
//	edge:   token token
//	pair:   uvarint(src) uvarint(dst)
type Writer struct {
	bw      *bufio.Writer
	scratch [binary.MaxVarintLen64]byte
	records int64
}

// NewWriter returns a buffered frame writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriterSize(w, bufferSize)}
}

func (w *Writer) uvarint(v uint64) error {
	n := binary.PutUvarint(w.scratch[:], v)
	_, err := w.bw.Write(w.scratch[:n])
	return err
}

func (w *Writer) label(label []byte) error {
	if err := w.uvarint(uint64(len(label))); err != nil {
		return err
	}
	_, err := w.bw.Write(label)
	return err
}

func (w *Writer) token(t Token) error {
	if err := w.bw.WriteByte(byte(t.Kind)); err != nil {
		return err
	}
	switch t.Kind {
	case KindLabel:
		return w.label(t.Label)
	case KindVertex:
		return w.uvarint(t.ID)
	default:
		return fmt.Errorf("recordio: unknown token kind %q", t.Kind)
	}
}

// WriteLabel writes a single label frame.
func (w *Writer) WriteLabel(label []byte) error {
	w.records++
	return w.label(label)
}

// WriteEdge writes an edge of two tagged tokens.
func (w *Writer) WriteEdge(a, b Token) error {
	w.records++
	if err := w.token(a); err != nil {
		return err
	}
	return w.token(b)
}

// WritePair writes a resolved (src, dst) pair.
func (w *Writer) WritePair(src, dst uint64) error {
	w.records++
	if err := w.uvarint(src); err != nil {
		return err
	}
	return w.uvarint(dst)
}

// Records returns the number of records written so far.
func (w *Writer) Records() int64 { return w.records }

// Flush writes buffered frames to the underlying stream.
func (w *Writer) Flush() error { return w.bw.Flush() }

// Reader decodes frames written by Writer.
//
// Read methods return io.EOF only at a clean record boundary; a stream that
// ends inside a record yields io.ErrUnexpectedEOF.
type Reader struct {
	br  *bufio.Reader
	buf []byte
}

// NewReader returns a buffered frame reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, bufferSize)}
}

func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (r *Reader) label(first bool) ([]byte, error) {
	n, err := binary.ReadUvarint(r.br)
	if err != nil {
		if first && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, noEOF(err)
	}
	if n > MaxLabelSize {
		return nil, fmt.Errorf("%w: label length %d", ErrCorrupt, n)
	}
	if uint64(cap(r.buf)) < n {
		r.buf = make([]byte, n)
	}
	r.buf = r.buf[:n]
	if _, err := io.ReadFull(r.br, r.buf); err != nil {
		return nil, noEOF(err)
	}
	return r.buf, nil
}

// ReadLabel reads the next label frame. The returned slice is only valid
// until the next call on r.
func (r *Reader) ReadLabel() ([]byte, error) {
	return r.label(true)
}

func (r *Reader) token(first bool) (Token, error) {
	kind, err := r.br.ReadByte()
	if err != nil {
		if first && errors.Is(err, io.EOF) {
			return Token{}, io.EOF
		}
		return Token{}, noEOF(err)
	}
	switch Kind(kind) {
	case KindLabel:
		label, err := r.label(false)
		if err != nil {
			return Token{}, err
		}
		// Copy so both tokens of an edge stay valid together.
		return LabelToken(append([]byte(nil), label...)), nil
	case KindVertex:
		id, err := binary.ReadUvarint(r.br)
		if err != nil {
			return Token{}, noEOF(err)
		}
		return VertexToken(id), nil
	default:
		return Token{}, fmt.Errorf("%w: token kind 0x%02x", ErrCorrupt, kind)
	}
}

// ReadEdge reads the next edge record.
func (r *Reader) ReadEdge() (Token, Token, error) {
	a, err := r.token(true)
	if err != nil {
		return Token{}, Token{}, err
	}
	b, err := r.token(false)
	if err != nil {
		return Token{}, Token{}, err
	}
	return a, b, nil
}

// ReadPair reads the next resolved pair.
func (r *Reader) ReadPair() (uint64, uint64, error) {
	src, err := binary.ReadUvarint(r.br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, 0, io.EOF
		}
		return 0, 0, noEOF(err)
	}
	dst, err := binary.ReadUvarint(r.br)
	if err != nil {
		return 0, 0, noEOF(err)
	}
	return src, dst, nil
}
