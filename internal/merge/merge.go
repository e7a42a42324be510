// Package merge turns bucket edge files into the final adjacency list.
//
// Each bucket is merged independently into a part artifact holding its
// adjacency lines. Parts are then concatenated in bucket order behind the
// vertex-count header, so the output does not depend on how many buckets
// were merged at once.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphbuild/adjlist"
	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/edgesplit"
	"github.com/hupe1980/graphbuild/resource"
)

// ErrMemoryBudget is returned when one bucket's neighbor lists cannot fit in
// the configured memory limit. More buckets shrink each merge.
var ErrMemoryBudget = errors.New("bucket exceeds memory budget")

const sliceHeaderSize = 24

// Estimate returns the memory reserved while merging a bucket of the given
// vertex span and directed record count.
func Estimate(span uint64, records int64) int64 {
	return int64(span)*sliceHeaderSize + records*8
}

// BucketStats describes one merged bucket.
type BucketStats struct {
	Bucket    int
	Vertices  int64
	DegreeSum int64
	Duration  time.Duration
}

// BucketFunc observes merged buckets. It may be called concurrently.
type BucketFunc func(BucketStats)

// Result summarizes the adjacency list.
type Result struct {
	// N is the vertex count written in the header.
	N uint64
	// M is the sum of all emitted degrees.
	M int64
	// Vertices is the number of vertices with at least one neighbor.
	Vertices int64
}

// Merger merges bucket files.
type Merger struct {
	store    *artifact.Store
	names    artifact.Names
	rc       *resource.Controller
	onBucket BucketFunc
}

// New returns a Merger. rc may be nil.
func New(store *artifact.Store, names artifact.Names, rc *resource.Controller, onBucket BucketFunc) *Merger {
	if onBucket == nil {
		onBucket = func(BucketStats) {}
	}
	return &Merger{store: store, names: names, rc: rc, onBucket: onBucket}
}

// Run merges every bucket and writes the adjacency list to out as an
// uncompressed artifact. records holds the directed record count of each
// bucket. Nothing is published under out unless every bucket succeeds.
func (m *Merger) Run(ctx context.Context, layout edgesplit.Layout, records []int64, out string) (Result, error) {
	var (
		degreeSum atomic.Int64
		vertices  atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	for b := 0; b < layout.E; b++ {
		g.Go(func() error {
			if err := m.rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer m.rc.ReleaseWorker()

			bs, err := m.mergeBucket(gctx, layout, b, records[b])
			if err != nil {
				return fmt.Errorf("merge bucket %d: %w", b, err)
			}
			degreeSum.Add(bs.DegreeSum)
			vertices.Add(bs.Vertices)
			m.onBucket(bs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.discardParts(ctx, layout.E)
		return Result{}, err
	}

	if err := m.concat(ctx, layout, out); err != nil {
		m.discardParts(ctx, layout.E)
		return Result{}, err
	}
	m.discardParts(ctx, layout.E)
	return Result{N: layout.N, M: degreeSum.Load(), Vertices: vertices.Load()}, nil
}

func (m *Merger) discardParts(ctx context.Context, e int) {
	parts := make([]string, e)
	for b := range parts {
		parts[b] = m.names.Part(b)
	}
	_ = m.store.Discard(ctx, parts...)
}

func (m *Merger) reserve(ctx context.Context, b int, estimate int64) error {
	if err := m.rc.AcquireMemory(ctx, estimate); err != nil {
		if errors.Is(err, resource.ErrOverBudget) {
			return fmt.Errorf("%w: bucket %d: %w", ErrMemoryBudget, b, err)
		}
		return err
	}
	return nil
}

func (m *Merger) mergeBucket(ctx context.Context, layout edgesplit.Layout, b int, records int64) (BucketStats, error) {
	start := time.Now()
	lo, hi := layout.Range(b)

	estimate := Estimate(hi-lo, records)
	if err := m.reserve(ctx, b, estimate); err != nil {
		return BucketStats{}, err
	}
	defer m.rc.ReleaseMemory(estimate)

	lists, err := m.load(ctx, b, lo, hi)
	if err != nil {
		return BucketStats{}, err
	}

	w, err := m.store.Create(ctx, m.names.Part(b))
	if err != nil {
		return BucketStats{}, err
	}
	aw := adjlist.NewWriter(w)

	bs := BucketStats{Bucket: b}
	for i, nbrs := range lists {
		if len(nbrs) == 0 {
			continue
		}
		slices.Sort(nbrs)
		nbrs = slices.Compact(nbrs)
		if err := aw.WriteEntry(lo+uint64(i), nbrs); err != nil {
			_ = w.Abort()
			return BucketStats{}, err
		}
		bs.Vertices++
		bs.DegreeSum += int64(len(nbrs))
		lists[i] = nil
	}
	if err := aw.Flush(); err != nil {
		_ = w.Abort()
		return BucketStats{}, err
	}
	if err := w.Commit(); err != nil {
		return BucketStats{}, err
	}
	if err := m.store.Discard(ctx, m.names.Split(b)); err != nil {
		return BucketStats{}, err
	}

	bs.Duration = time.Since(start)
	return bs, nil
}

func (m *Merger) load(ctx context.Context, b int, lo, hi uint64) ([][]uint64, error) {
	src, err := m.store.OpenSource(ctx, m.names.Split(b))
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	lists := make([][]uint64, hi-lo)
	var n int64
	for {
		v, u, err := src.ReadPair()
		if errors.Is(err, io.EOF) {
			return lists, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name(), err)
		}
		if v < lo || v >= hi {
			return nil, fmt.Errorf("read %s: vertex %d outside bucket range [%d,%d)", src.Name(), v, lo, hi)
		}
		lists[v-lo] = append(lists[v-lo], u)
		n++
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
}

func (m *Merger) concat(ctx context.Context, layout edgesplit.Layout, out string) error {
	w, err := m.store.CreateRaw(ctx, out)
	if err != nil {
		return err
	}
	aw := adjlist.NewWriter(w)
	err = aw.WriteHeader(layout.N)
	if err == nil {
		err = aw.Flush()
	}
	if err != nil {
		_ = w.Abort()
		return err
	}
	for b := 0; b < layout.E; b++ {
		if err := m.appendPart(ctx, w, b); err != nil {
			_ = w.Abort()
			return err
		}
	}
	return w.Commit()
}

func (m *Merger) appendPart(ctx context.Context, w io.Writer, b int) error {
	r, err := m.store.Open(ctx, m.names.Part(b))
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	_, err = io.Copy(w, r)
	return err
}
