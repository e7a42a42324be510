// Package partition routes label occurrences to K hash partitions and
// writes the raw edge stream for the resolver.
package partition

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/graphbuild/ingest"
	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/hash"
	"github.com/hupe1980/graphbuild/internal/recordio"
)

// Partitioner maps a label to a partition index in [0,K).
type Partitioner struct {
	k    int
	hash hash.Func
}

// New returns a Partitioner over k partitions.
func New(k int, fn hash.Func) (*Partitioner, error) {
	if k < 1 {
		return nil, fmt.Errorf("partition: count must be positive, got %d", k)
	}
	if fn == nil {
		return nil, errors.New("partition: hash function is nil")
	}
	return &Partitioner{k: k, hash: fn}, nil
}

// K returns the number of partitions.
func (p *Partitioner) K() int { return p.k }

// Partition returns the partition index of label.
func (p *Partitioner) Partition(label []byte) int {
	return int(p.hash(label) % uint64(p.k))
}

// Stats summarizes a partitioning run.
type Stats struct {
	// Edges is the number of records written to the edge stream.
	Edges int64
	// Occurrences counts label occurrences per partition.
	Occurrences []int64
	// Bytes sums the label bytes written to each partition.
	Bytes []int64
}

// Writer appends label occurrences to their partition shard and edges to
// the initial staging buffer.
type Writer struct {
	p      *Partitioner
	shards []*artifact.Sink
	edges  *artifact.Sink
	stats  Stats
}

// NewWriter creates the K shard artifacts and the edge artifact.
func NewWriter(ctx context.Context, store *artifact.Store, names artifact.Names, edges string, p *Partitioner) (*Writer, error) {
	w := &Writer{
		p:      p,
		shards: make([]*artifact.Sink, p.k),
		stats:  Stats{Occurrences: make([]int64, p.k), Bytes: make([]int64, p.k)},
	}
	for i := range w.shards {
		sink, err := store.CreateSink(ctx, names.Label(i))
		if err != nil {
			w.Abort()
			return nil, err
		}
		w.shards[i] = sink
	}
	sink, err := store.CreateSink(ctx, edges)
	if err != nil {
		w.Abort()
		return nil, err
	}
	w.edges = sink
	return w, nil
}

func (w *Writer) occurrence(label []byte) error {
	i := w.p.Partition(label)
	w.stats.Occurrences[i]++
	w.stats.Bytes[i] += int64(len(label))
	if err := w.shards[i].WriteLabel(label); err != nil {
		return fmt.Errorf("write %s: %w", w.shards[i].Name(), err)
	}
	return nil
}

// Add records one edge.
func (w *Writer) Add(subject, object []byte) error {
	if err := w.occurrence(subject); err != nil {
		return err
	}
	if err := w.occurrence(object); err != nil {
		return err
	}
	w.stats.Edges++
	if err := w.edges.WriteEdge(recordio.LabelToken(subject), recordio.LabelToken(object)); err != nil {
		return fmt.Errorf("write %s: %w", w.edges.Name(), err)
	}
	return nil
}

// Commit publishes every artifact.
func (w *Writer) Commit() (Stats, error) {
	for i, sink := range w.shards {
		if err := sink.Commit(); err != nil {
			w.abortFrom(i + 1)
			return Stats{}, err
		}
	}
	if err := w.edges.Commit(); err != nil {
		return Stats{}, err
	}
	return w.stats, nil
}

func (w *Writer) abortFrom(i int) {
	for _, sink := range w.shards[i:] {
		if sink != nil {
			_ = sink.Abort()
		}
	}
	if w.edges != nil {
		_ = w.edges.Abort()
	}
}

// Abort discards every artifact not yet committed.
func (w *Writer) Abort() { w.abortFrom(0) }

// Run ingests the raw input and partitions it.
func Run(ctx context.Context, store *artifact.Store, names artifact.Names, edges string, p *Partitioner, ing ingest.Ingester) (Stats, error) {
	in, err := store.OpenRaw(ctx, names.Raw())
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = in.Close() }()

	w, err := NewWriter(ctx, store, names, edges, p)
	if err != nil {
		return Stats{}, err
	}
	if err := ing.Ingest(ctx, in, func(pair ingest.Pair) error {
		return w.Add(pair.Subject, pair.Object)
	}); err != nil {
		w.Abort()
		return Stats{}, err
	}
	return w.Commit()
}
