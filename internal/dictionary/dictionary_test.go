package dictionary

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/partition"
	"github.com/hupe1980/graphbuild/resource"
)

var names = artifact.Names{Base: "g"}

// writeShards writes the given label occurrences per partition and returns
// matching stats.
func writeShards(t *testing.T, store *artifact.Store, shards [][]string) partition.Stats {
	t.Helper()
	stats := partition.Stats{
		Occurrences: make([]int64, len(shards)),
		Bytes:       make([]int64, len(shards)),
	}
	for i, labels := range shards {
		sink, err := store.CreateSink(context.Background(), names.Label(i))
		require.NoError(t, err)
		for _, l := range labels {
			require.NoError(t, sink.WriteLabel([]byte(l)))
			stats.Occurrences[i]++
			stats.Bytes[i] += int64(len(l))
		}
		require.NoError(t, sink.Commit())
	}
	return stats
}

func TestBuild_FirstOccurrenceOrder(t *testing.T) {
	for _, workers := range []int64{1, 3} {
		ctx := context.Background()
		store := artifact.NewStore(blobstore.NewMemoryStore())
		stats := writeShards(t, store, [][]string{
			{"<b>", "<a>", "<b>", "<b>"},
			{},
			{"<c>", "<c>", "<d>"},
		})

		rc := resource.NewController(resource.Config{MaxWorkers: workers})
		b := NewBuilder(store, names, rc)
		layout, err := b.Build(ctx, stats)
		require.NoError(t, err)

		assert.Equal(t, []uint64{2, 0, 2}, layout.Distinct)
		assert.Equal(t, []uint64{0, 2, 2}, layout.Bases)
		assert.Equal(t, uint64(4), layout.N)

		lo, hi := layout.Range(2)
		assert.Equal(t, uint64(2), lo)
		assert.Equal(t, uint64(4), hi)

		d0, release, err := b.Load(ctx, 0, layout, stats)
		require.NoError(t, err)
		defer release()

		id, ok := d0.Lookup([]byte("<b>"))
		require.True(t, ok)
		assert.Equal(t, uint64(0), id)
		id, ok = d0.Lookup([]byte("<a>"))
		require.True(t, ok)
		assert.Equal(t, uint64(1), id)
		_, ok = d0.Lookup([]byte("<c>"))
		assert.False(t, ok)

		d2, release2, err := b.Load(ctx, 2, layout, stats)
		require.NoError(t, err)
		defer release2()
		assert.Equal(t, 2, d2.Len())
		id, ok = d2.Lookup([]byte("<d>"))
		require.True(t, ok)
		assert.Equal(t, uint64(3), id)

		var buf bytes.Buffer
		require.NoError(t, b.ExportLabels(ctx, layout, &buf))
		assert.Equal(t, "0\t<b>\n1\t<a>\n2\t<c>\n3\t<d>\n", buf.String())
	}
}

func TestBuild_MemoryBudget(t *testing.T) {
	store := artifact.NewStore(blobstore.NewMemoryStore())
	stats := writeShards(t, store, [][]string{{"<a>", "<b>", "<c>"}})

	rc := resource.NewController(resource.Config{MemoryLimitBytes: Estimate(3, 9) - 1})
	_, err := NewBuilder(store, names, rc).Build(context.Background(), stats)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMemoryBudget)
	assert.ErrorIs(t, err, resource.ErrOverBudget)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestBuild_ReleasesMemory(t *testing.T) {
	store := artifact.NewStore(blobstore.NewMemoryStore())
	stats := writeShards(t, store, [][]string{{"<a>"}, {"<b>"}})

	rc := resource.NewController(resource.Config{MemoryLimitBytes: Estimate(1, 3), MaxWorkers: 2})
	b := NewBuilder(store, names, rc)
	layout, err := b.Build(context.Background(), stats)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), layout.N)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	store := artifact.NewStore(mem)
	stats := writeShards(t, store, [][]string{{"<a>"}, {"<b>"}})

	b := NewBuilder(store, names, nil)
	_, err := b.Build(ctx, stats)
	require.NoError(t, err)

	require.NoError(t, b.Discard(ctx, 2, true, false))
	left, err := mem.List(ctx, "g_")
	require.NoError(t, err)
	assert.Equal(t, []string{"g_dict_0", "g_dict_1"}, left)
}
