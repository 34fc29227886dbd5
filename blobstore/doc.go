// Package blobstore reads and writes whole named objects such as dataset
// files.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local file system
//   - MemoryStore: in-memory, for tests
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3
//
// Objects are written through Create and become visible once the returned
// writer is closed without error.
package blobstore
