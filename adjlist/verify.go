package adjlist

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// ErrInvalid is matched by every *VerifyError.
var ErrInvalid = errors.New("invalid adjacency list")

// VerifyError reports the first line violating the format or its invariants.
type VerifyError struct {
	Line   int64
	Reason string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("adjlist: line %d: %s", e.Line, e.Reason)
}

func (e *VerifyError) Unwrap() error { return ErrInvalid }

// Report summarizes a verified adjacency list.
type Report struct {
	N uint64
	// M is the sum of all degrees.
	M int64
	// Vertices counts vertices with at least one neighbor.
	Vertices  int64
	SelfLoops int64
	// Symmetric is true when every neighbor relation was checked in both
	// directions. Symmetry is only checked when N fits in 32 bits.
	Symmetric bool
}

// Verify reads an adjacency list and checks that vertex IDs ascend and stay
// below N, that each neighbor list is strictly ascending with a matching
// degree, and that every (v, u) entry has a matching (u, v) entry.
func Verify(r io.Reader) (Report, error) {
	rd, err := NewReader(r)
	if err != nil {
		return Report{}, err
	}
	rep := Report{N: rd.N()}
	checkSymmetry := rd.N() <= math.MaxUint32+1

	// Pairs are keyed by (min<<32 | max); a symmetric list adds each key
	// once from each side.
	lower := roaring64.New()
	upper := roaring64.New()

	first := true
	var prev uint64
	for {
		e, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Report{}, err
		}
		line := rd.Line()
		fail := func(format string, args ...any) error {
			return &VerifyError{Line: line, Reason: fmt.Sprintf(format, args...)}
		}

		if e.Vertex >= rep.N {
			return Report{}, fail("vertex %d out of range [0,%d)", e.Vertex, rep.N)
		}
		if !first && e.Vertex <= prev {
			return Report{}, fail("vertex %d not after %d", e.Vertex, prev)
		}
		if len(e.Neighbors) == 0 {
			return Report{}, fail("vertex %d listed with degree 0", e.Vertex)
		}
		first, prev = false, e.Vertex

		for i, u := range e.Neighbors {
			if u >= rep.N {
				return Report{}, fail("neighbor %d out of range [0,%d)", u, rep.N)
			}
			if i > 0 && u <= e.Neighbors[i-1] {
				return Report{}, fail("neighbor %d not after %d", u, e.Neighbors[i-1])
			}
			if u == e.Vertex {
				rep.SelfLoops++
				continue
			}
			if checkSymmetry {
				if e.Vertex < u {
					lower.Add(e.Vertex<<32 | u)
				} else {
					upper.Add(u<<32 | e.Vertex)
				}
			}
		}
		rep.Vertices++
		rep.M += int64(len(e.Neighbors))
	}

	if checkSymmetry {
		if diff := roaring64.Xor(lower, upper); !diff.IsEmpty() {
			key := diff.Minimum()
			a, b := key>>32, key&math.MaxUint32
			return Report{}, &VerifyError{Line: rd.Line(), Reason: fmt.Sprintf("edge %d-%d listed in one direction only", a, b)}
		}
		rep.Symmetric = true
	}
	return rep, nil
}
