package resolve

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/dictionary"
	"github.com/hupe1980/graphbuild/internal/hash"
	"github.com/hupe1980/graphbuild/internal/partition"
	"github.com/hupe1980/graphbuild/internal/recordio"
	"github.com/hupe1980/graphbuild/internal/staging"
)

var names = artifact.Names{Base: "g"}

type fixture struct {
	mem    *blobstore.MemoryStore
	store  *artifact.Store
	dicts  *dictionary.Builder
	alt    staging.Alternator
	layout dictionary.Layout
	stats  partition.Stats
}

func setup(t *testing.T, k int, edges [][2]string) fixture {
	t.Helper()
	ctx := context.Background()

	mem := blobstore.NewMemoryStore()
	store := artifact.NewStore(mem)
	p, err := partition.New(k, hash.ELFHash)
	require.NoError(t, err)

	w, err := partition.NewWriter(ctx, store, names, names.Tmp(0), p)
	require.NoError(t, err)
	for _, e := range edges {
		require.NoError(t, w.Add([]byte(e[0]), []byte(e[1])))
	}
	stats, err := w.Commit()
	require.NoError(t, err)

	dicts := dictionary.NewBuilder(store, names, nil)
	layout, err := dicts.Build(ctx, stats)
	require.NoError(t, err)

	alt, err := staging.New(k, names.Tmp(0), names.Tmp(1))
	require.NoError(t, err)

	return fixture{mem: mem, store: store, dicts: dicts, alt: alt, layout: layout, stats: stats}
}

func readEdges(t *testing.T, store *artifact.Store, name string) [][2]recordio.Token {
	t.Helper()
	src, err := store.OpenSource(context.Background(), name)
	require.NoError(t, err)
	defer src.Close()

	var out [][2]recordio.Token
	for {
		a, b, err := src.ReadEdge()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, [2]recordio.Token{a, b})
	}
}

func TestRun_ResolvesEveryLabel(t *testing.T) {
	edges := [][2]string{
		{"<a>", "<b>"},
		{"<b>", "<c>"},
		{`"1984"`, "<a>"},
		{"<c>", "<c>"},
	}
	for _, k := range []int{1, 2, 5} {
		f := setup(t, k, edges)

		var passes []PassStats
		n, err := New(f.store, f.dicts, f.alt, func(ps PassStats) { passes = append(passes, ps) }).
			Run(context.Background(), f.layout, f.stats)
		require.NoError(t, err)
		assert.Equal(t, int64(len(edges)), n)
		require.Len(t, passes, k)

		var resolved int64
		for i, ps := range passes {
			assert.Equal(t, i, ps.Pass)
			resolved += ps.Resolved
		}
		assert.Equal(t, int64(2*len(edges)), resolved, "each token resolved exactly once")

		got := readEdges(t, f.store, f.alt.Final())
		require.Len(t, got, len(edges))

		ids := map[string]uint64{}
		for i, e := range got {
			for j, tok := range e {
				require.True(t, tok.Resolved(), "k=%d edge %d", k, i)
				assert.Less(t, tok.ID, f.layout.N)
				label := edges[i][j]
				if prev, ok := ids[label]; ok {
					assert.Equal(t, prev, tok.ID, "label %s has one ID", label)
				}
				ids[label] = tok.ID
			}
		}
		assert.Len(t, ids, int(f.layout.N))

		left, err := f.mem.List(context.Background(), "g_tmp_")
		require.NoError(t, err)
		assert.Equal(t, []string{f.alt.Final()}, left)
	}
}

func TestRun_UnresolvedLabel(t *testing.T) {
	f := setup(t, 2, [][2]string{{"<a>", "<b>"}})

	// Append an edge the dictionaries have never seen.
	sink, err := f.store.CreateSink(context.Background(), names.Tmp(0))
	require.NoError(t, err)
	require.NoError(t, sink.WriteEdge(recordio.LabelToken([]byte("<a>")), recordio.LabelToken([]byte("<ghost>"))))
	require.NoError(t, sink.Commit())

	_, err = New(f.store, f.dicts, f.alt, nil).Run(context.Background(), f.layout, f.stats)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedLabel)
	assert.Contains(t, err.Error(), "<ghost>")
}

func TestRun_Canceled(t *testing.T) {
	f := setup(t, 2, [][2]string{{"<a>", "<b>"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f.store, f.dicts, f.alt, nil).Run(ctx, f.layout, f.stats)
	assert.ErrorIs(t, err, context.Canceled)
}
