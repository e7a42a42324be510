// Package graphbuild converts raw graph dumps that do not fit in memory into
// compact, integer-indexed adjacency lists.
//
// Every distinct label of the input becomes a vertex with a dense ID in
// [0,N), and each vertex lists its distinct neighbors in ascending order.
// Edges are undirected: an input record (a, b) makes b a neighbor of a and a
// a neighbor of b.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./data")
//	res, err := graphbuild.Build(ctx, store, "btc-2009")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("n = %d\nm = %d\n", res.N, res.M)
//
// The raw dump is read from "btc-2009" and the adjacency list is written to
// "btc-2009_adj". Any blobstore.BlobStore works, including the S3 and MinIO
// stores in blobstore/s3 and blobstore/minio.
//
// # Pipeline
//
// A build runs six stages, each materializing its output before the next
// starts:
//
//  1. partition: the ingester parses the dump; each label occurrence is
//     appended to one of K hash partitions and each edge to a staging buffer.
//  2. dictionary: each partition's distinct labels receive consecutive IDs
//     in first-occurrence order; partition 0 receives the lowest IDs.
//  3. resolve: K passes over the edge stream, each loading one dictionary
//     and rewriting the labels it knows into vertex IDs.
//  4. split: resolved edges are written in both directions into E buckets
//     of ceil(N/E) consecutive vertices.
//  5. merge: each bucket's neighbor lists are sorted and deduplicated.
//  6. labels: optionally, the vertex ID to label map is written.
//
// Only one dictionary or one bucket per worker is held in memory at a time,
// so K and E bound the working set. WithMemoryLimit turns that bound into a
// hard limit: a partition or bucket that cannot fit fails with
// ErrMemoryBudget.
//
// # Output Format
//
//	N
//	vertexID degree neighbor_1 ... neighbor_degree
//
// Vertices without neighbors are omitted. See package adjlist for a reader
// and a verifier.
//
// # Errors
//
// Malformed input aborts the build with a *ParseError naming the 1-based
// line (errors.Is(err, ErrMalformedRecord)). Invalid options fail with
// ErrInvalidConfig before any work is done.
package graphbuild
