// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "datasets/")
//	r, err := store.Open(ctx, "sift.fvecs.zst")
//
// Credentials and region come from the default AWS configuration chain.
package s3
