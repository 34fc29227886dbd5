// Package stats tracks the work a probe performs.
//
// A Tracker counts comparisons (inner products or distances computed),
// buckets visited, partitions visited and tables (replicas) visited.
// Trackers are plain values with no synchronization: every call path owns
// its own Tracker and trackers are merged with Add at join points.
// Tracking is purely observational and never changes what a probe returns.
package stats
