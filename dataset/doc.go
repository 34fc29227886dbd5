// Package dataset reads and writes vector datasets in the .fvecs layout:
// every vector is a little-endian int32 dimension followed by that many
// little-endian float32 components.
//
// Files may be compressed. The compression is chosen from the object name:
// ".zst" (zstd), ".gz" (gzip) and ".lz4" (LZ4 frames); anything else is
// stored raw.
//
//	vecs, err := dataset.Load(ctx, blobstore.NewLocalStore("data"), "sift_base.fvecs.zst")
package dataset
