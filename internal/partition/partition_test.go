package partition

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/hupe1980/graphbuild/ingest"
	"github.com/hupe1980/graphbuild/ingest/nquads"
	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/hash"
)

func TestPartitioner(t *testing.T) {
	p, err := New(5, hash.ELFHash)
	require.NoError(t, err)
	assert.Equal(t, 5, p.K())

	for _, label := range []string{"<a>", "<b>", `"123"`, "_:x"} {
		i := p.Partition([]byte(label))
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 5)
		assert.Equal(t, i, p.Partition([]byte(label)), "deterministic")
	}

	_, err = New(0, hash.ELFHash)
	assert.Error(t, err)
	_, err = New(1, nil)
	assert.Error(t, err)
}

func readLabels(t *testing.T, store *artifact.Store, name string) []string {
	t.Helper()
	src, err := store.OpenSource(context.Background(), name)
	require.NoError(t, err)
	defer src.Close()

	var labels []string
	for {
		label, err := src.ReadLabel()
		if errors.Is(err, io.EOF) {
			return labels
		}
		require.NoError(t, err)
		labels = append(labels, string(label))
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	names := artifact.Names{Base: "g"}
	require.NoError(t, mem.Put(ctx, names.Raw(), []byte("<a> <p> <b> .\n<b> <p> <a> .\n<a> <p> <a> .\n")))

	store := artifact.NewStore(mem)
	p, err := New(3, hash.ELFHash)
	require.NoError(t, err)

	stats, err := Run(ctx, store, names, names.Tmp(0), p, nquads.New())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Edges)

	var total int64
	for i, n := range stats.Occurrences {
		total += n
		labels := readLabels(t, store, names.Label(i))
		assert.Len(t, labels, int(n))
		for _, l := range labels {
			assert.Equal(t, i, p.Partition([]byte(l)))
		}
	}
	assert.Equal(t, int64(6), total)

	var bytes int64
	for _, n := range stats.Bytes {
		bytes += n
	}
	assert.Equal(t, int64(6*3), bytes)

	src, err := store.OpenSource(ctx, names.Tmp(0))
	require.NoError(t, err)
	defer src.Close()
	a, b, err := src.ReadEdge()
	require.NoError(t, err)
	assert.Equal(t, "<a>", string(a.Label))
	assert.Equal(t, "<b>", string(b.Label))
}

func TestRun_MalformedAbortsArtifacts(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	names := artifact.Names{Base: "g"}
	require.NoError(t, mem.Put(ctx, names.Raw(), []byte("<a> <p> <b> .\n<a> <b> .\n")))

	p, err := New(2, hash.ELFHash)
	require.NoError(t, err)

	_, err = Run(ctx, artifact.NewStore(mem), names, names.Tmp(0), p, nquads.New())
	assert.ErrorIs(t, err, ingest.ErrMalformedRecord)

	left, err := mem.List(ctx, "g_")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRun_MissingInput(t *testing.T) {
	p, err := New(2, hash.ELFHash)
	require.NoError(t, err)

	_, err = Run(context.Background(), artifact.NewStore(blobstore.NewMemoryStore()), artifact.Names{Base: "g"}, "g_tmp_0", p,
		ingest.IngesterFunc(func(context.Context, io.Reader, ingest.EmitFunc) error { return nil }))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.True(t, strings.Contains(err.Error(), "open g"))
}
