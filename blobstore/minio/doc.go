// Package minio provides a MinIO (and S3-compatible) implementation of
// blobstore.Store.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	store := nrminio.NewStore(client, "datasets", "bench/")
package minio
