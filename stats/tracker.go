package stats

import "fmt"

// Tracker accumulates probe counters.
// The zero value is ready to use.
type Tracker struct {
	comparisons int
	buckets     int
	partitions  int
	tables      int
}

// Comparison records one comparison.
func (t *Tracker) Comparison() { t.comparisons++ }

// AddComparisons records n comparisons.
func (t *Tracker) AddComparisons(n int) { t.comparisons += n }

// Bucket records one visited bucket.
func (t *Tracker) Bucket() { t.buckets++ }

// AddBuckets records n visited buckets.
func (t *Tracker) AddBuckets(n int) { t.buckets += n }

// Partition records one visited partition.
func (t *Tracker) Partition() { t.partitions++ }

// AddPartitions records n visited partitions.
func (t *Tracker) AddPartitions(n int) { t.partitions += n }

// Table records one visited table.
func (t *Tracker) Table() { t.tables++ }

// Add merges other into t.
func (t *Tracker) Add(other Tracker) {
	t.comparisons += other.comparisons
	t.buckets += other.buckets
	t.partitions += other.partitions
	t.tables += other.tables
}

// Snapshot returns the current counts.
func (t Tracker) Snapshot() Snapshot {
	return Snapshot{
		Comparisons: t.comparisons,
		Buckets:     t.buckets,
		Partitions:  t.partitions,
		Tables:      t.tables,
	}
}

// Snapshot is a read-only view of a Tracker.
type Snapshot struct {
	Comparisons int `json:"comparisons"`
	Buckets     int `json:"buckets"`
	Partitions  int `json:"partitions"`
	Tables      int `json:"tables"`
}

// Plus returns the element-wise sum of s and other.
func (s Snapshot) Plus(other Snapshot) Snapshot {
	return Snapshot{
		Comparisons: s.Comparisons + other.Comparisons,
		Buckets:     s.Buckets + other.Buckets,
		Partitions:  s.Partitions + other.Partitions,
		Tables:      s.Tables + other.Tables,
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("comparisons=%d buckets=%d partitions=%d tables=%d",
		s.Comparisons, s.Buckets, s.Partitions, s.Tables)
}
