// Package builder turns a dataset into the per-partition layout a table set
// is filled from: vectors ranked by norm, split into norm partitions, scaled
// into the unit ball by each partition's largest norm, and hashed to buckets.
package builder
