package merge

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/hupe1980/graphbuild/codec"
	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/edgesplit"
	"github.com/hupe1980/graphbuild/resource"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var names = artifact.Names{Base: "g"}

func writeSplits(t *testing.T, store *artifact.Store, buckets [][][2]uint64) []int64 {
	t.Helper()
	records := make([]int64, len(buckets))
	for b, pairs := range buckets {
		sink, err := store.CreateSink(context.Background(), names.Split(b))
		require.NoError(t, err)
		for _, p := range pairs {
			require.NoError(t, sink.WritePair(p[0], p[1]))
			records[b]++
		}
		require.NoError(t, sink.Commit())
	}
	return records
}

// Vertices 0..4 in buckets of size 3; vertex 2 has no edges.
var buckets = [][][2]uint64{
	{{0, 4}, {0, 1}, {1, 0}, {0, 4}, {1, 1}, {1, 1}},
	{{4, 0}, {3, 4}, {4, 0}, {4, 3}},
}

const want = "5\n0 2 1 4\n1 2 0 1\n3 1 4\n4 2 0 3\n"

func TestRun(t *testing.T) {
	for _, c := range []codec.Codec{codec.None{}, codec.LZ4{}, codec.ZSTD{}} {
		for _, workers := range []int64{1, 2} {
			ctx := context.Background()
			mem := blobstore.NewMemoryStore()
			store := artifact.NewStore(mem, artifact.WithCodec(c))
			records := writeSplits(t, store, buckets)

			var (
				mu   sync.Mutex
				seen []BucketStats
			)
			rc := resource.NewController(resource.Config{MaxWorkers: workers})
			m := New(store, names, rc, func(bs BucketStats) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, bs)
			})

			res, err := m.Run(ctx, edgesplit.NewLayout(5, 2), records, names.Adj())
			require.NoError(t, err)
			assert.Equal(t, uint64(5), res.N)
			assert.Equal(t, int64(7), res.M)
			assert.Equal(t, int64(4), res.Vertices)
			assert.Len(t, seen, 2)

			got, ok := mem.Bytes(names.Adj())
			require.True(t, ok)
			assert.Equal(t, want, string(got), "codec=%s workers=%d", c.Name(), workers)

			left, err := mem.List(ctx, "g_")
			require.NoError(t, err)
			assert.Equal(t, []string{"g_adj"}, left)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	mem := blobstore.NewMemoryStore()
	store := artifact.NewStore(mem)
	records := writeSplits(t, store, [][][2]uint64{{}, {}, {}})

	res, err := New(store, names, nil, nil).Run(context.Background(), edgesplit.NewLayout(0, 3), records, names.Adj())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.M)

	got, ok := mem.Bytes(names.Adj())
	require.True(t, ok)
	assert.Equal(t, "0\n", string(got))
}

func TestRun_MemoryBudget(t *testing.T) {
	mem := blobstore.NewMemoryStore()
	store := artifact.NewStore(mem)
	records := writeSplits(t, store, buckets)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16, MaxWorkers: 2})
	_, err := New(store, names, rc, nil).Run(context.Background(), edgesplit.NewLayout(5, 2), records, names.Adj())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMemoryBudget)

	_, ok := mem.Bytes(names.Adj())
	assert.False(t, ok, "no adjacency list on failure")
}

func TestRun_KeepIntermediates(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	store := artifact.NewStore(mem, artifact.WithKeep(true))
	records := writeSplits(t, store, buckets)

	_, err := New(store, names, nil, nil).Run(ctx, edgesplit.NewLayout(5, 2), records, names.Adj())
	require.NoError(t, err)

	left, err := mem.List(ctx, "g_")
	require.NoError(t, err)
	assert.Equal(t, []string{"g_adj", "g_part_0", "g_part_1", "g_split_0", "g_split_1"}, left)
}
