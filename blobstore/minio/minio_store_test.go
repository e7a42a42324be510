package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig_Validation(t *testing.T) {
	_, err := NewFromConfig(Config{Bucket: "graphs"})
	assert.Error(t, err)

	_, err = NewFromConfig(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	store, err := NewFromConfig(Config{Endpoint: "localhost:9000", Bucket: "graphs", Prefix: "btc"})
	require.NoError(t, err)
	assert.Equal(t, "btc/g_adj", store.key("g_adj"))
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-graphbuild"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	_, err = client.ListBuckets(ctx)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		require.NoError(t, err)
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	assert.Equal(t, "minio", string(buf))
	require.NoError(t, blob.Close())

	w, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("0 1\n1 0\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := blobstore.OpenReader(ctx, store, "stream.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "0 1\n1 0\n", string(got))

	aborted, err := store.Create(ctx, "aborted.txt")
	require.NoError(t, err)
	_, err = aborted.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, aborted.Abort())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")
	assert.Contains(t, names, "stream.txt")
	assert.NotContains(t, names, "aborted.txt")

	require.NoError(t, store.Delete(ctx, "test.txt"))
	require.NoError(t, store.Delete(ctx, "stream.txt"))

	_, err = store.Open(ctx, "test.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
