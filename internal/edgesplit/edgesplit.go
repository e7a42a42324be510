// Package edgesplit distributes resolved edges into contiguous vertex
// buckets, emitting each edge once in each direction.
package edgesplit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/graphbuild/internal/artifact"
)

// SelfLoopPolicy decides what happens to edges (v, v).
type SelfLoopPolicy int

const (
	// KeepSelfLoops records v as its own neighbor.
	KeepSelfLoops SelfLoopPolicy = iota
	// DropSelfLoops discards self-loops entirely.
	DropSelfLoops
)

func (p SelfLoopPolicy) String() string {
	switch p {
	case KeepSelfLoops:
		return "keep"
	case DropSelfLoops:
		return "drop"
	default:
		return fmt.Sprintf("SelfLoopPolicy(%d)", int(p))
	}
}

// Layout divides [0,N) into E buckets of size S = ceil(N/E).
type Layout struct {
	N uint64
	E int
	S uint64
}

// NewLayout returns the bucket layout for n vertices over e buckets.
func NewLayout(n uint64, e int) Layout {
	l := Layout{N: n, E: e}
	if n > 0 {
		l.S = (n-1)/uint64(e) + 1
	}
	return l
}

// Bucket returns the bucket holding vertex v.
func (l Layout) Bucket(v uint64) int { return int(v / l.S) }

// Range returns the vertices covered by bucket b, clipped to N.
func (l Layout) Range(b int) (lo, hi uint64) {
	lo = min(uint64(b)*l.S, l.N)
	hi = min(lo+l.S, l.N)
	return lo, hi
}

// Stats summarizes a split.
type Stats struct {
	// Records counts directed records per bucket.
	Records   []int64
	SelfLoops int64
}

// Split reads the resolved edge stream in and writes the E bucket artifacts.
func Split(ctx context.Context, store *artifact.Store, names artifact.Names, in string, layout Layout, policy SelfLoopPolicy) (Stats, error) {
	if layout.E < 1 {
		return Stats{}, fmt.Errorf("edgesplit: bucket count must be positive, got %d", layout.E)
	}
	src, err := store.OpenSource(ctx, in)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = src.Close() }()

	sinks := make([]*artifact.Sink, layout.E)
	abort := func() {
		for _, s := range sinks {
			if s != nil {
				_ = s.Abort()
			}
		}
	}
	for b := range sinks {
		s, err := store.CreateSink(ctx, names.Split(b))
		if err != nil {
			abort()
			return Stats{}, err
		}
		sinks[b] = s
	}

	stats := Stats{Records: make([]int64, layout.E)}
	emit := func(src, dst uint64) error {
		if src >= layout.N {
			return fmt.Errorf("edgesplit: vertex %d out of range [0,%d)", src, layout.N)
		}
		b := layout.Bucket(src)
		stats.Records[b]++
		return sinks[b].WritePair(src, dst)
	}

	var edges int64
	for {
		a, b, err := src.ReadEdge()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil && (!a.Resolved() || !b.Resolved()) {
			err = fmt.Errorf("edgesplit: unresolved edge %s %s", a, b)
		}
		if err == nil && a.ID == b.ID {
			stats.SelfLoops++
			if policy == DropSelfLoops {
				continue
			}
		}
		if err == nil {
			err = emit(a.ID, b.ID)
		}
		if err == nil {
			err = emit(b.ID, a.ID)
		}
		if err != nil {
			abort()
			return Stats{}, fmt.Errorf("split %s: %w", in, err)
		}
		edges++
		if edges%4096 == 0 {
			if err := ctx.Err(); err != nil {
				abort()
				return Stats{}, err
			}
		}
	}

	for b, s := range sinks {
		if err := s.Commit(); err != nil {
			for _, rest := range sinks[b+1:] {
				_ = rest.Abort()
			}
			return Stats{}, err
		}
	}
	return stats, nil
}
