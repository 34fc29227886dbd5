package tableset

import (
	"context"
	"fmt"
	"math/rand/v2"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/internal/builder"
	"github.com/arthurfeeney/nrlsh/internal/table"
	"github.com/arthurfeeney/nrlsh/internal/topk"
	"github.com/arthurfeeney/nrlsh/lsh"
	"github.com/arthurfeeney/nrlsh/model"
	"github.com/arthurfeeney/nrlsh/stats"
)

type rankKey struct {
	bucket int
	depth  int
}

// Scored is a stored item with its inner product against a query.
type Scored[F distance.Float] struct {
	Item  model.KV[F]
	Score F
}

// Better orders Scored by score, highest first.
func Better[F distance.Float](a, b Scored[F]) bool { return a.Score > b.Score }

// SameID reports whether a and b are the same dataset item.
func SameID[F distance.Float](a, b Scored[F]) bool { return a.Item.ID == b.Item.ID }

// Set is one replica: m partition tables sharing one hash family.
type Set[F distance.Float] struct {
	fam         *lsh.NormalizedSignHash[F]
	tables      []*table.Table[F]
	numBuckets  int
	normalizers []F
	rankings    *lru.Cache[rankKey, [][]int]
	filled      bool
}

// New creates an empty set of partitions tables with numBuckets buckets each.
// The hash family has bits hyperplanes over dim+1 dimensions and is drawn
// from rng. cacheSize > 0 keeps that many query-bucket rankings.
func New[F distance.Float](partitions, bits, dim, numBuckets int, rng *rand.Rand, cacheSize int) (*Set[F], error) {
	if partitions <= 0 {
		return nil, builder.ErrInvalidPartitions
	}
	if numBuckets <= 0 {
		return nil, lsh.ErrInvalidBuckets
	}
	fam, err := lsh.NewNormalizedSignHash[F](bits, dim, rng)
	if err != nil {
		return nil, err
	}

	s := &Set[F]{
		fam:        fam,
		tables:     make([]*table.Table[F], partitions),
		numBuckets: numBuckets,
	}
	for p := range s.tables {
		if s.tables[p], err = table.New[F](fam, numBuckets); err != nil {
			return nil, err
		}
	}

	if cacheSize > 0 {
		if s.rankings, err = lru.New[rankKey, [][]int](cacheSize); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Fill partitions, normalizes and hashes data, then fills every partition
// table. Tables are filled in parallel, at most concurrency at a time (no
// limit when concurrency ≤ 0).
func (s *Set[F]) Fill(ctx context.Context, data [][]F, storeNormalized bool, concurrency int) error {
	if s.filled {
		return table.ErrAlreadyFilled
	}

	layout, err := builder.Build(ctx, data, len(s.tables), s.numBuckets, s.fam, concurrency)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for p, tbl := range s.tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := tbl.Fill(layout.Normalized[p], layout.Buckets[p], layout.Partitions[p], layout.Normalizers[p], storeNormalized)
			if err != nil {
				return fmt.Errorf("tableset: partition %d: %w", p, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.normalizers = layout.Normalizers
	s.filled = true
	return nil
}

// RankAroundQuery returns, for every partition, the adj buckets ranked most
// promising around q's bucket.
func (s *Set[F]) RankAroundQuery(q []F, adj int) ([][]int, error) {
	if adj < 1 {
		return nil, ErrInvalidDepth
	}
	code, err := s.fam.BucketQuery(q, s.numBuckets)
	if err != nil {
		return nil, err
	}
	return s.rankingsFor(code, adj), nil
}

func (s *Set[F]) rankingsFor(code, adj int) [][]int {
	key := rankKey{bucket: code, depth: adj}
	if s.rankings != nil {
		if r, ok := s.rankings.Get(key); ok {
			return r
		}
	}

	r := make([][]int, len(s.tables))
	for p, tbl := range s.tables {
		r[p] = tbl.ProbeRanking(code, adj)
	}

	if s.rankings != nil {
		s.rankings.Add(key, r)
	}
	return r
}

// Probe returns the item with the largest inner product with q among the adj
// top-ranked buckets of every partition.
func (s *Set[F]) Probe(q []F, adj int) (model.KV[F], bool, stats.Tracker, error) {
	var (
		st    stats.Tracker
		best  model.KV[F]
		bestD F
		found bool
	)

	rankings, err := s.RankAroundQuery(q, adj)
	if err != nil {
		return best, false, st, err
	}

	for p, tbl := range s.tables {
		kv, ok, pst := tbl.Scan(rankings[p], q)
		st.Add(pst)
		st.Partition()
		if !ok {
			continue
		}
		if d := distance.Dot(q, kv.Vector); !found || d > bestD {
			best, bestD, found = kv, d, true
		}
	}
	return best, found, st, nil
}

// ProbeApprox walks the rankings column-major and returns the first item
// whose inner product with q exceeds threshold.
func (s *Set[F]) ProbeApprox(q []F, threshold F, adj int) (model.KV[F], bool, stats.Tracker, error) {
	var st stats.Tracker

	rankings, err := s.RankAroundQuery(q, adj)
	if err != nil {
		return model.KV[F]{}, false, st, err
	}

	for col := range rankings[0] {
		for p, tbl := range s.tables {
			kv, ok, pst := tbl.LookIn(rankings[p][col], q, threshold)
			st.Add(pst)
			if ok {
				st.AddPartitions(partitionsVisited(col, p, len(s.tables)))
				return kv, true, st, nil
			}
		}
	}
	st.AddPartitions(len(s.tables))
	return model.KV[F]{}, false, st, nil
}

// KProbeApprox walks the rankings column-major, collecting items whose inner
// product with q exceeds threshold until k are found. Fewer than k items
// (possibly none) are returned when the rankings run out.
func (s *Set[F]) KProbeApprox(k int, q []F, threshold F, adj int) ([]model.KV[F], stats.Tracker, error) {
	var st stats.Tracker
	if k < 1 {
		return nil, st, ErrInvalidK
	}

	rankings, err := s.RankAroundQuery(q, adj)
	if err != nil {
		return nil, st, err
	}

	var out []model.KV[F]
	for col := range rankings[0] {
		for p, tbl := range s.tables {
			items, pst := tbl.LookInUntil(rankings[p][col], q, threshold, k-len(out))
			st.Add(pst)
			out = append(out, items...)
			if len(out) == k {
				st.AddPartitions(partitionsVisited(col, p, len(s.tables)))
				return out, st, nil
			}
		}
	}
	st.AddPartitions(len(s.tables))
	return out, st, nil
}

// CollectTopK offers every item in the adj top-ranked buckets of every
// partition to tr, skipping ids tr already holds. tr may carry items from
// other replicas.
func (s *Set[F]) CollectTopK(q []F, adj int, tr *topk.Tracker[Scored[F]]) (stats.Tracker, error) {
	var st stats.Tracker

	rankings, err := s.RankAroundQuery(q, adj)
	if err != nil {
		return st, err
	}

	for col := range rankings[0] {
		for p, tbl := range s.tables {
			st.Bucket()
			for _, kv := range tbl.Bucket(rankings[p][col]) {
				st.Comparison()
				c := Scored[F]{Item: kv, Score: distance.Dot(q, kv.Vector)}
				if worst, ok := tr.Worst(); ok && tr.Full() && !Better(c, worst) {
					continue
				}
				tr.PushUnique(c, SameID[F])
			}
		}
	}
	st.AddPartitions(len(s.tables))
	return st, nil
}

// MIPS returns the stored item with the largest inner product with q by
// scanning every bucket of every partition.
func (s *Set[F]) MIPS(q []F) (model.KV[F], error) {
	var (
		best  model.KV[F]
		bestD F
		found bool
	)
	for _, tbl := range s.tables {
		kv, err := tbl.MIPS(q)
		if err != nil {
			return model.KV[F]{}, err
		}
		if d := distance.Dot(q, kv.Vector); !found || d > bestD {
			best, bestD, found = kv, d, true
		}
	}
	return best, nil
}

// Contains reports whether any partition holds q.
func (s *Set[F]) Contains(q []F) bool {
	for _, tbl := range s.tables {
		if tbl.Contains(q) {
			return true
		}
	}
	return false
}

// Diagnostics returns bucket statistics for every partition.
func (s *Set[F]) Diagnostics(ctx context.Context) ([]table.Diagnostics, error) {
	out := make([]table.Diagnostics, len(s.tables))
	for p, tbl := range s.tables {
		d, err := tbl.Diagnostics(ctx)
		if err != nil {
			return nil, fmt.Errorf("tableset: partition %d: %w", p, err)
		}
		out[p] = d
	}
	return out, nil
}

// Partitions returns the number of partition tables.
func (s *Set[F]) Partitions() int { return len(s.tables) }

// Table returns partition table i.
func (s *Set[F]) Table(i int) *table.Table[F] { return s.tables[i] }

// Normalizers returns a copy of the partition normalizers; nil before Fill.
func (s *Set[F]) Normalizers() []F {
	if s.normalizers == nil {
		return nil
	}
	return append([]F(nil), s.normalizers...)
}

// NumBuckets returns the bucket count of every table.
func (s *Set[F]) NumBuckets() int { return s.numBuckets }

// Family returns the shared hash family.
func (s *Set[F]) Family() *lsh.NormalizedSignHash[F] { return s.fam }

// Filled reports whether Fill has completed.
func (s *Set[F]) Filled() bool { return s.filled }

// partitionsVisited counts the distinct partitions touched when a
// column-major walk stops at partition p of column col.
func partitionsVisited(col, p, m int) int {
	if col == 0 {
		return p + 1
	}
	return m
}
