// Package tableset implements one replica of the index: a shared
// Simple-LSH family plus one bucket table per norm partition.
//
// Approximate probes walk the per-partition bucket rankings column-major:
// the first-ranked bucket of every partition, then the second-ranked bucket
// of every partition, and so on.
package tableset
