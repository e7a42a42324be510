// Package resolve rewrites the labelled edge stream into vertex IDs, one
// partition dictionary per pass.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/dictionary"
	"github.com/hupe1980/graphbuild/internal/partition"
	"github.com/hupe1980/graphbuild/internal/recordio"
	"github.com/hupe1980/graphbuild/internal/staging"
)

// ErrUnresolvedLabel is returned when a label survives every pass. It means
// the dictionaries do not cover the edge stream.
var ErrUnresolvedLabel = errors.New("label not resolved after final pass")

// PassStats describes one resolution pass.
type PassStats struct {
	Pass     int
	Resolved int64
	Edges    int64
	Duration time.Duration
}

// PassFunc observes completed passes.
type PassFunc func(PassStats)

// Resolver runs the K resolution passes.
type Resolver struct {
	store  *artifact.Store
	dicts  *dictionary.Builder
	alt    staging.Alternator
	onPass PassFunc
}

// New returns a Resolver that runs one pass per dictionary over alt.
func New(store *artifact.Store, dicts *dictionary.Builder, alt staging.Alternator, onPass PassFunc) *Resolver {
	if onPass == nil {
		onPass = func(PassStats) {}
	}
	return &Resolver{store: store, dicts: dicts, alt: alt, onPass: onPass}
}

// Run executes every pass. On success the resolved stream is in alt.Final()
// and the number of edges is returned.
func (r *Resolver) Run(ctx context.Context, layout dictionary.Layout, stats partition.Stats) (int64, error) {
	var edges int64
	for i := 0; i < r.alt.Passes(); i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		ps, err := r.pass(ctx, i, layout, stats)
		if err != nil {
			return 0, fmt.Errorf("resolve pass %d: %w", i, err)
		}
		edges = ps.Edges
		r.onPass(ps)
	}
	return edges, nil
}

func (r *Resolver) pass(ctx context.Context, i int, layout dictionary.Layout, stats partition.Stats) (PassStats, error) {
	start := time.Now()
	last := i == r.alt.Passes()-1

	dict, release, err := r.dicts.Load(ctx, i, layout, stats)
	if err != nil {
		return PassStats{}, err
	}
	defer release()

	in, out := r.alt.Pass(i)
	ps := PassStats{Pass: i}
	rewrite := func(t recordio.Token) (recordio.Token, error) {
		if t.Resolved() {
			return t, nil
		}
		if id, ok := dict.Lookup(t.Label); ok {
			ps.Resolved++
			return recordio.VertexToken(id), nil
		}
		if last {
			return t, fmt.Errorf("%w: %s in edge %d", ErrUnresolvedLabel, t, ps.Edges+1)
		}
		return t, nil
	}

	if err := r.rewrite(ctx, in, out, &ps.Edges, rewrite); err != nil {
		return PassStats{}, err
	}
	if err := r.store.Discard(ctx, in); err != nil {
		return PassStats{}, err
	}

	ps.Duration = time.Since(start)
	return ps, nil
}

func (r *Resolver) rewrite(ctx context.Context, in, out string, edges *int64, fn func(recordio.Token) (recordio.Token, error)) error {
	src, err := r.store.OpenSource(ctx, in)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	sink, err := r.store.CreateSink(ctx, out)
	if err != nil {
		return err
	}

	for {
		a, b, err := src.ReadEdge()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			a, err = fn(a)
		}
		if err == nil {
			b, err = fn(b)
		}
		if err == nil {
			err = sink.WriteEdge(a, b)
		}
		if err != nil {
			_ = sink.Abort()
			return err
		}
		*edges++
		if *edges%4096 == 0 {
			if err := ctx.Err(); err != nil {
				_ = sink.Abort()
				return err
			}
		}
	}
	return sink.Commit()
}
