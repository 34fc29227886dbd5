// Package lshindex is a multi-table LSH index for Euclidean nearest
// neighbour search over any lsh.Family.
//
// Each table has its own hash function and stores the whole dataset. A
// probe visits, in every table, the query's bucket followed by the buckets
// whose index differs from it in one or two of the low bits
// (lsh.FlipNeighbors2). The adj argument caps how many of those buckets are
// visited per table.
//
//	fams := make([]*lsh.PStableHash[float32], 4)
//	for i := range fams {
//	    fams[i], _ = lsh.NewPStableHash[float32](dim, 4, lsh.NewRand(seed, uint64(i)))
//	}
//	idx, _ := lshindex.New[float32](fams, 64)
//	_ = idx.Fill(ctx, data)
//	res, _ := idx.KProbe(10, q, 8)
package lshindex
