// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("graphs/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	res, err := graphbuild.Build(ctx, store, "btc-2019")
//
// # Features
//
//   - Range reads for streaming artifact consumption
//   - Multipart streaming uploads for large bucket files
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
