package adjlist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxLineSize bounds a single adjacency line.
const MaxLineSize = 256 << 20

// Entry is one vertex line.
type Entry struct {
	Vertex    uint64
	Neighbors []uint64
}

// Reader parses an adjacency list.
type Reader struct {
	sc   *bufio.Scanner
	n    uint64
	line int64
	nbrs []uint64
}

// NewReader reads the header line of r.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufferSize), MaxLineSize)

	rd := &Reader{sc: sc}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, &VerifyError{Line: 1, Reason: "missing header"}
	}
	rd.line = 1
	n, err := strconv.ParseUint(string(bytes.TrimSpace(sc.Bytes())), 10, 64)
	if err != nil {
		return nil, &VerifyError{Line: 1, Reason: fmt.Sprintf("invalid vertex count: %v", err)}
	}
	rd.n = n
	return rd, nil
}

// N returns the vertex count from the header.
func (r *Reader) N() uint64 { return r.n }

// Line returns the number of the last line read.
func (r *Reader) Line() int64 { return r.line }

// Next returns the next entry, or io.EOF after the last one. Neighbors is
// reused by the following call.
func (r *Reader) Next() (Entry, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Entry{}, err
		}
		return Entry{}, io.EOF
	}
	r.line++

	fields := bytes.Fields(r.sc.Bytes())
	if len(fields) < 2 {
		return Entry{}, r.errorf("expected vertex and degree, got %d fields", len(fields))
	}
	v, err := strconv.ParseUint(string(fields[0]), 10, 64)
	if err != nil {
		return Entry{}, r.errorf("invalid vertex: %v", err)
	}
	degree, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return Entry{}, r.errorf("invalid degree: %v", err)
	}
	if uint64(len(fields)-2) != degree {
		return Entry{}, r.errorf("degree %d but %d neighbors", degree, len(fields)-2)
	}

	r.nbrs = r.nbrs[:0]
	for _, f := range fields[2:] {
		u, err := strconv.ParseUint(string(f), 10, 64)
		if err != nil {
			return Entry{}, r.errorf("invalid neighbor: %v", err)
		}
		r.nbrs = append(r.nbrs, u)
	}
	return Entry{Vertex: v, Neighbors: r.nbrs}, nil
}

func (r *Reader) errorf(format string, args ...any) error {
	return &VerifyError{Line: r.line, Reason: fmt.Sprintf(format, args...)}
}

// ReadAll parses a whole adjacency list into a map from vertex to a copy of
// its neighbors.
func ReadAll(r io.Reader) (uint64, map[uint64][]uint64, error) {
	rd, err := NewReader(r)
	if err != nil {
		return 0, nil, err
	}
	out := make(map[uint64][]uint64)
	for {
		e, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return rd.N(), out, nil
		}
		if err != nil {
			return 0, nil, err
		}
		out[e.Vertex] = append([]uint64(nil), e.Neighbors...)
	}
}
