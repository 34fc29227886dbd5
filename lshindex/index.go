package lshindex

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/internal/topk"
	"github.com/arthurfeeney/nrlsh/lsh"
	"github.com/arthurfeeney/nrlsh/model"
	"github.com/arthurfeeney/nrlsh/stats"
)

type candidate[F distance.Float] struct {
	kv   model.KV[F]
	dist F
}

func nearer[F distance.Float](a, b candidate[F]) bool { return a.dist < b.dist }

func sameID[F distance.Float](a, b candidate[F]) bool { return a.kv.ID == b.kv.ID }

// Index is a multi-table LSH index answering Euclidean nearest neighbour
// queries. Table i is hashed with families[i].
//
// Fill must complete before any query. Queries are safe for concurrent use.
type Index[F distance.Float, H lsh.Family[F]] struct {
	families   []H
	tables     [][][]model.KV[F]
	numBuckets int
	bucketBits int
	dim        int
	size       int

	fillMu sync.Mutex
	filled atomic.Bool
}

// New creates an empty index with one table per family and numBuckets
// buckets per table.
func New[F distance.Float, H lsh.Family[F]](families []H, numBuckets int) (*Index[F, H], error) {
	if len(families) == 0 {
		return nil, ErrNoFamilies
	}
	if numBuckets <= 0 {
		return nil, lsh.ErrInvalidBuckets
	}
	dim := families[0].Dimension()
	for _, h := range families[1:] {
		if h.Dimension() != dim {
			return nil, ErrMixedDimensions
		}
	}

	return &Index[F, H]{
		families:   slices.Clone(families),
		numBuckets: numBuckets,
		bucketBits: lsh.BucketBits(numBuckets),
		dim:        dim,
	}, nil
}

// NewSign creates an index of tables tables hashed by independent SignHash
// families of bits hyperplanes. A nil rng uses a fresh source.
func NewSign[F distance.Float](tables, bits, dim, numBuckets int, rng *rand.Rand) (*Index[F, *lsh.SignHash[F]], error) {
	fams := make([]*lsh.SignHash[F], tables)
	for i := range fams {
		h, err := lsh.NewSignHash[F](bits, dim, rng)
		if err != nil {
			return nil, err
		}
		fams[i] = h
	}
	return New[F](fams, numBuckets)
}

// NewPStable creates an index of tables tables hashed by independent
// PStableHash families of bucket width width.
func NewPStable[F distance.Float](tables, dim int, width float64, numBuckets int, rng *rand.Rand) (*Index[F, *lsh.PStableHash[F]], error) {
	fams := make([]*lsh.PStableHash[F], tables)
	for i := range fams {
		h, err := lsh.NewPStableHash[F](dim, width, rng)
		if err != nil {
			return nil, err
		}
		fams[i] = h
	}
	return New[F](fams, numBuckets)
}

// Fill hashes data into every table; vector i gets id i. Tables are filled
// in parallel.
func (idx *Index[F, H]) Fill(ctx context.Context, data [][]F) error {
	idx.fillMu.Lock()
	defer idx.fillMu.Unlock()

	if idx.filled.Load() {
		return ErrAlreadyFilled
	}
	if len(data) == 0 {
		return ErrEmptyDataset
	}
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("lshindex: %d vectors exceed the id range", len(data))
	}
	for i, x := range data {
		if len(x) != idx.dim {
			return fmt.Errorf("lshindex: vector %d: %w", i, &lsh.DimensionMismatchError{Expected: idx.dim, Actual: len(x)})
		}
	}

	tables := make([][][]model.KV[F], len(idx.families))
	g, ctx := errgroup.WithContext(ctx)
	for t, h := range idx.families {
		g.Go(func() error {
			buckets := make([][]model.KV[F], idx.numBuckets)
			for i, x := range data {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				b, err := h.Bucket(x, idx.numBuckets)
				if err != nil {
					return fmt.Errorf("lshindex: table %d, vector %d: %w", t, i, err)
				}
				buckets[b] = append(buckets[b], model.KV[F]{Vector: x, ID: i})
			}
			tables[t] = buckets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	idx.tables = tables
	idx.size = len(data)
	idx.filled.Store(true)
	return nil
}

func (idx *Index[F, H]) checkQuery(q []F, adj int) error {
	if !idx.filled.Load() {
		return ErrNotFilled
	}
	if len(q) != idx.dim {
		return &lsh.DimensionMismatchError{Expected: idx.dim, Actual: len(q)}
	}
	if adj < 1 {
		return ErrInvalidDepth
	}
	return nil
}

// Rank returns the buckets of table t a probe of depth adj visits: q's
// bucket first, then its one- and two-bit flip neighbours that exist.
func (idx *Index[F, H]) Rank(q []F, t, adj int) ([]int, error) {
	b, err := idx.families[t].Bucket(q, idx.numBuckets)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, adj)
	for _, n := range lsh.FlipNeighbors2(b, idx.bucketBits) {
		if len(out) == adj {
			break
		}
		if n < idx.numBuckets {
			out = append(out, n)
		}
	}
	return out, nil
}

// walk calls visit for every item in the probed buckets of every table
// until visit returns false.
func (idx *Index[F, H]) walk(q []F, adj int, visit func(kv model.KV[F], dist F) bool) (stats.Tracker, error) {
	var st stats.Tracker
	for t, buckets := range idx.tables {
		st.Table()
		rank, err := idx.Rank(q, t, adj)
		if err != nil {
			return st, err
		}
		for _, b := range rank {
			st.Bucket()
			for _, kv := range buckets[b] {
				st.Comparison()
				if !visit(kv, distance.Distance(q, kv.Vector)) {
					return st, nil
				}
			}
		}
	}
	return st, nil
}

// Probe returns the item nearest to q among the probed buckets of every
// table.
func (idx *Index[F, H]) Probe(q []F, adj int) (model.Result[F], error) {
	if err := idx.checkQuery(q, adj); err != nil {
		return model.Result[F]{}, err
	}

	var (
		res  model.Result[F]
		best F
	)
	st, err := idx.walk(q, adj, func(kv model.KV[F], d F) bool {
		if !res.Found || d < best {
			res.Item, res.Found, best = kv, true, d
		}
		return true
	})
	res.Stats = st.Snapshot()
	return res, err
}

// KProbe returns the k distinct items nearest to q among the probed buckets
// of every table, nearest first.
func (idx *Index[F, H]) KProbe(k int, q []F, adj int) (model.ListResult[F], error) {
	if k < 1 {
		return model.ListResult[F]{}, ErrInvalidK
	}
	if err := idx.checkQuery(q, adj); err != nil {
		return model.ListResult[F]{}, err
	}

	tr := topk.New(min(k, idx.size), nearer[F])
	st, err := idx.walk(q, adj, func(kv model.KV[F], d F) bool {
		c := candidate[F]{kv: kv, dist: d}
		if worst, ok := tr.Worst(); ok && tr.Full() && !nearer(c, worst) {
			return true
		}
		tr.PushUnique(c, sameID[F])
		return true
	})

	best := tr.Best()
	out := make([]model.KV[F], len(best))
	for i, c := range best {
		out[i] = c.kv
	}
	return model.ListResult[F]{Items: out, Stats: st.Snapshot()}, err
}

// ProbeApprox returns the first item found within radius of q.
func (idx *Index[F, H]) ProbeApprox(q []F, radius F, adj int) (model.Result[F], error) {
	if err := idx.checkQuery(q, adj); err != nil {
		return model.Result[F]{}, err
	}

	var res model.Result[F]
	st, err := idx.walk(q, adj, func(kv model.KV[F], d F) bool {
		if d <= radius {
			res.Item, res.Found = kv, true
			return false
		}
		return true
	})
	res.Stats = st.Snapshot()
	return res, err
}

// KProbeApprox returns the first k distinct items found within radius of q,
// ordered from most distant to nearest. Fewer than k items are returned when
// the probed buckets run out.
func (idx *Index[F, H]) KProbeApprox(k int, q []F, radius F, adj int) (model.ListResult[F], error) {
	if k < 1 {
		return model.ListResult[F]{}, ErrInvalidK
	}
	if err := idx.checkQuery(q, adj); err != nil {
		return model.ListResult[F]{}, err
	}

	var (
		seen  = roaring.New()
		found []candidate[F]
	)
	st, err := idx.walk(q, adj, func(kv model.KV[F], d F) bool {
		if d <= radius && seen.CheckedAdd(uint32(kv.ID)) {
			found = append(found, candidate[F]{kv: kv, dist: d})
		}
		return len(found) < k
	})

	slices.SortStableFunc(found, func(a, b candidate[F]) int { return cmp.Compare(b.dist, a.dist) })
	out := make([]model.KV[F], len(found))
	for i, c := range found {
		out[i] = c.kv
	}
	return model.ListResult[F]{Items: out, Stats: st.Snapshot()}, err
}

// Contains reports whether q is stored. Every table holds the whole
// dataset, so only the first is searched.
func (idx *Index[F, H]) Contains(q []F) (bool, error) {
	if err := idx.checkQuery(q, 1); err != nil {
		return false, err
	}
	b, err := idx.families[0].Bucket(q, idx.numBuckets)
	if err != nil {
		return false, err
	}
	for _, kv := range idx.tables[0][b] {
		if distance.ApproxEqual(kv.Vector, q) {
			return true, nil
		}
	}
	return false, nil
}

// Tables returns the number of tables.
func (idx *Index[F, H]) Tables() int { return len(idx.families) }

// NumBuckets returns the number of buckets per table.
func (idx *Index[F, H]) NumBuckets() int { return idx.numBuckets }

// Dimension returns the vector dimension.
func (idx *Index[F, H]) Dimension() int { return idx.dim }

// Len returns the number of indexed vectors; 0 before Fill.
func (idx *Index[F, H]) Len() int {
	if !idx.filled.Load() {
		return 0
	}
	return idx.size
}
