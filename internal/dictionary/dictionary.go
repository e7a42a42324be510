// Package dictionary assigns dense vertex IDs to the distinct labels of each
// partition.
//
// Partition i owns the ID range [Bases[i], Bases[i]+Distinct[i]). Within a
// partition IDs follow first-occurrence order, and the distinct labels are
// persisted in that order, so a label's ID is its base plus its position in
// the dictionary artifact.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/partition"
	"github.com/hupe1980/graphbuild/resource"
)

// ErrMemoryBudget is returned when one partition's dictionary cannot fit in
// the configured memory limit. More partitions shrink each dictionary.
var ErrMemoryBudget = errors.New("dictionary exceeds memory budget")

// entryOverhead approximates the per-label cost of a Go map entry keyed by
// string, beyond the label bytes themselves.
const entryOverhead = 64

// Estimate returns the memory reserved while building or loading a
// partition with the given occurrence and byte counts. It is an upper bound:
// every occurrence is assumed distinct.
func Estimate(occurrences, bytes int64) int64 {
	return bytes + occurrences*entryOverhead
}

// Layout records how the ID space is divided among partitions.
type Layout struct {
	Distinct []uint64
	Bases    []uint64
	// N is the total number of distinct labels.
	N uint64
}

// Range returns the ID range owned by partition i.
func (l Layout) Range(i int) (lo, hi uint64) {
	return l.Bases[i], l.Bases[i] + l.Distinct[i]
}

func newLayout(distinct []uint64) Layout {
	l := Layout{Distinct: distinct, Bases: make([]uint64, len(distinct))}
	for i, d := range distinct {
		l.Bases[i] = l.N
		l.N += d
	}
	return l
}

// Builder builds the dictionaries of a run.
type Builder struct {
	store *artifact.Store
	names artifact.Names
	rc    *resource.Controller
}

// NewBuilder returns a Builder. rc may be nil.
func NewBuilder(store *artifact.Store, names artifact.Names, rc *resource.Controller) *Builder {
	return &Builder{store: store, names: names, rc: rc}
}

// Build reads every partition shard and writes its dictionary. Partitions
// are built concurrently up to the controller's worker limit; the layout is
// the same for any worker count.
func (b *Builder) Build(ctx context.Context, stats partition.Stats) (Layout, error) {
	k := len(stats.Occurrences)
	distinct := make([]uint64, k)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < k; i++ {
		g.Go(func() error {
			if err := b.rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer b.rc.ReleaseWorker()

			n, err := b.buildPartition(gctx, i, Estimate(stats.Occurrences[i], stats.Bytes[i]))
			if err != nil {
				return err
			}
			distinct[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Layout{}, err
	}
	return newLayout(distinct), nil
}

func (b *Builder) reserve(ctx context.Context, i int, estimate int64) error {
	if err := b.rc.AcquireMemory(ctx, estimate); err != nil {
		if errors.Is(err, resource.ErrOverBudget) {
			return fmt.Errorf("%w: partition %d: %w", ErrMemoryBudget, i, err)
		}
		return err
	}
	return nil
}

func (b *Builder) buildPartition(ctx context.Context, i int, estimate int64) (uint64, error) {
	if err := b.reserve(ctx, i, estimate); err != nil {
		return 0, err
	}
	defer b.rc.ReleaseMemory(estimate)

	src, err := b.store.OpenSource(ctx, b.names.Label(i))
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	sink, err := b.store.CreateSink(ctx, b.names.Dict(i))
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{})
	for {
		label, err := src.ReadLabel()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = sink.Abort()
			return 0, fmt.Errorf("read %s: %w", src.Name(), err)
		}
		if _, ok := seen[string(label)]; ok {
			continue
		}
		seen[string(label)] = struct{}{}
		if err := sink.WriteLabel(label); err != nil {
			_ = sink.Abort()
			return 0, fmt.Errorf("write %s: %w", sink.Name(), err)
		}
		if len(seen)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				_ = sink.Abort()
				return 0, err
			}
		}
	}
	if err := sink.Commit(); err != nil {
		return 0, err
	}
	return uint64(len(seen)), nil
}

// Dictionary is one partition's label to ID mapping, loaded in memory.
type Dictionary struct {
	ids map[string]uint64
}

// Load reads the dictionary of partition i. The reservation made for it is
// returned to rc by Release.
func (b *Builder) Load(ctx context.Context, i int, layout Layout, stats partition.Stats) (*Dictionary, func(), error) {
	estimate := Estimate(int64(layout.Distinct[i]), stats.Bytes[i])
	if err := b.reserve(ctx, i, estimate); err != nil {
		return nil, nil, err
	}
	release := func() { b.rc.ReleaseMemory(estimate) }

	ids := make(map[string]uint64, layout.Distinct[i])
	err := b.each(ctx, i, layout.Bases[i], func(id uint64, label []byte) error {
		ids[string(label)] = id
		return nil
	})
	if err != nil {
		release()
		return nil, nil, err
	}
	if uint64(len(ids)) != layout.Distinct[i] {
		release()
		return nil, nil, fmt.Errorf("%s: expected %d labels, found %d", b.names.Dict(i), layout.Distinct[i], len(ids))
	}
	return &Dictionary{ids: ids}, release, nil
}

func (b *Builder) each(ctx context.Context, i int, base uint64, fn func(id uint64, label []byte) error) error {
	src, err := b.store.OpenSource(ctx, b.names.Dict(i))
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	id := base
	for {
		label, err := src.ReadLabel()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", src.Name(), err)
		}
		if err := fn(id, label); err != nil {
			return err
		}
		id++
	}
}

// Lookup returns the ID of label.
func (d *Dictionary) Lookup(label []byte) (uint64, bool) {
	id, ok := d.ids[string(label)]
	return id, ok
}

// Len returns the number of labels in the dictionary.
func (d *Dictionary) Len() int { return len(d.ids) }

// ExportLabels writes "id\tlabel" lines for every vertex in ID order.
func (b *Builder) ExportLabels(ctx context.Context, layout Layout, w io.Writer) error {
	var line []byte
	for i := range layout.Distinct {
		err := b.each(ctx, i, layout.Bases[i], func(id uint64, label []byte) error {
			line = strconv.AppendUint(line[:0], id, 10)
			line = append(line, '\t')
			line = append(line, label...)
			line = append(line, '\n')
			_, err := w.Write(line)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard removes the shard and dictionary artifacts of every partition.
func (b *Builder) Discard(ctx context.Context, k int, shards, dicts bool) error {
	var names []string
	for i := 0; i < k; i++ {
		if shards {
			names = append(names, b.names.Label(i))
		}
		if dicts {
			names = append(names, b.names.Dict(i))
		}
	}
	return b.store.Discard(ctx, names...)
}
