// Package nrlsh provides an approximate maximum inner product search (MIPS)
// index built on norm-ranged locality-sensitive hashing.
//
// The dataset is sorted by Euclidean norm and cut into partitions of similar
// magnitude. Each partition is scaled into the unit ball by its largest norm,
// lifted onto the unit sphere one dimension up, and hashed with random
// hyperplanes. A query is hashed the same way; buckets are ranked by how
// many code bits they share with the query's bucket and visited best first.
// Several independently hashed replicas raise recall.
//
// # Quick Start
//
//	idx, _ := nrlsh.New[float32](4, 8, 16, 128, 1024, nrlsh.WithSeed(1))
//	_ = idx.Fill(ctx, vectors, false)
//
//	res, _ := idx.Probe(query, 3)            // best of the 3 top buckets per partition
//	if res.Found {
//	    fmt.Println(res.Item.ID, res.Stats)
//	}
//
// # Probe Family
//
//	Probe         best item in the probed buckets; first replica with a hit answers
//	ProbeApprox   first item with inner product above a threshold
//	KProbeApprox  up to k distinct items above a threshold, across all replicas
//	KProbe        the k best distinct items in the probed buckets of all replicas
//	FindMaxInner  exact MIPS over the first replica
//
// A probe that finds nothing is not an error: Result.Found is false and
// ListResult.Items is empty. Every result carries the work it performed as a
// stats.Snapshot.
//
// # Observability
//
// Logging uses log/slog through Logger (WithLogger, WithLogLevel). Metrics
// go to a MetricsCollector (WithMetricsCollector); BasicMetricsCollector
// keeps in-memory counters and the metrics/prom package exports to
// Prometheus.
//
// # Related packages
//
// lshindex answers Euclidean nearest neighbour queries with the same
// multi-probe scheme over any lsh.Family. The nrlsh command (cmd/nrlsh)
// benchmarks recall against work on synthetic or stored .fvecs datasets,
// read through dataset and blobstore.
package nrlsh
