// Package minio implements blobstore.BlobStore on MinIO and other
// S3-compatible object stores using minio-go.
//
//	store, err := minio.NewFromConfig(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "graphs",
//	    Prefix:    "btc/",
//	})
//
// Streaming writes upload through an io.Pipe; the object appears only when
// the upload finishes in Close.
package minio
