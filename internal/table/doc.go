// Package table implements the bucket table of one norm partition.
//
// A Table stores the partition's vectors in num_buckets insertion-ordered
// buckets and ranks buckets for a query by how many low code bits they
// share with the query's bucket:
//
//	sim(code, b) = U_p · cos(π(1−ε)(1 − matching/total))
//
// where matching counts equal bits among the lowest ⌈log2 num_buckets⌉ bits
// and total is the hash bit count. Tables are filled once and are read-only
// afterwards, so queries may run concurrently.
package table
