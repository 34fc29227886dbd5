package table

import (
	"fmt"
	"math"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/internal/topk"
	"github.com/arthurfeeney/nrlsh/lsh"
	"github.com/arthurfeeney/nrlsh/model"
	"github.com/arthurfeeney/nrlsh/stats"
)

// epsilon keeps the ranking cosine away from cos(π).
const epsilon = 1e-3

// Hasher is the hash family a table is built with. Stored vectors go through
// Bucket; queries go through BucketQuery, which accepts any norm.
type Hasher[F distance.Float] interface {
	lsh.Family[F]
	BucketQuery(q []F, n int) (int, error)
}

// Table holds one partition's vectors.
type Table[F distance.Float] struct {
	fam             Hasher[F]
	buckets         [][]model.KV[F]
	numBuckets      int
	bucketBits      int
	normalizer      F
	storeNormalized bool
	filled          bool
	size            int
}

// New creates an empty table with numBuckets buckets.
func New[F distance.Float](fam Hasher[F], numBuckets int) (*Table[F], error) {
	if numBuckets <= 0 {
		return nil, lsh.ErrInvalidBuckets
	}
	return &Table[F]{
		fam:        fam,
		buckets:    make([][]model.KV[F], numBuckets),
		numBuckets: numBuckets,
		bucketBits: lsh.BucketBits(numBuckets),
		normalizer: 1,
	}, nil
}

// Fill inserts normalized[i] with id ids[i] into bucket buckets[i]. Unless
// storeNormalized is set, vectors are multiplied by up before storage so
// lookups return original-scale vectors.
func (t *Table[F]) Fill(normalized [][]F, buckets []int, ids []int, up F, storeNormalized bool) error {
	if t.filled {
		return ErrAlreadyFilled
	}
	if len(normalized) != len(buckets) || len(normalized) != len(ids) {
		return fmt.Errorf("%w: %d vectors, %d buckets, %d ids", ErrInvalidLayout, len(normalized), len(buckets), len(ids))
	}
	for i, b := range buckets {
		if b < 0 || b >= t.numBuckets {
			return fmt.Errorf("%w: bucket %d of vector %d not in [0, %d)", ErrInvalidLayout, b, ids[i], t.numBuckets)
		}
	}

	for i, x := range normalized {
		v := x
		if !storeNormalized {
			v = distance.Scale(x, up)
		}
		t.buckets[buckets[i]] = append(t.buckets[buckets[i]], model.KV[F]{Vector: v, ID: ids[i]})
	}

	t.normalizer = up
	t.storeNormalized = storeNormalized
	t.size = len(normalized)
	t.filled = true
	return nil
}

// Sim scores bucket other against the query bucket code. Higher is more
// promising.
func (t *Table[F]) Sim(code, other int) float64 {
	matching := float64(lsh.MatchingBits(code, other, t.bucketBits))
	ratio := min(1, matching/float64(t.fam.Bits()))
	return float64(t.normalizer) * math.Cos(math.Pi*(1-epsilon)*(1-ratio))
}

// ProbeRanking returns the depth buckets with the highest Sim to code, best
// first. Equal scores keep bucket order. depth is capped at NumBuckets.
func (t *Table[F]) ProbeRanking(code, depth int) []int {
	depth = min(depth, t.numBuckets)
	if depth < 1 {
		return nil
	}

	scores := make([]float64, t.numBuckets)
	for b := range scores {
		scores[b] = t.Sim(code, b)
	}

	tr := topk.New(depth, func(a, b int) bool { return scores[a] > scores[b] })
	for b := range scores {
		tr.Push(b)
	}
	return tr.Best()
}

// QueryBucket returns the bucket the query hashes to.
func (t *Table[F]) QueryBucket(q []F) (int, error) {
	return t.fam.BucketQuery(q, t.numBuckets)
}

// MIPS scans every bucket and returns the item with the largest inner
// product with q. The first item wins ties.
func (t *Table[F]) MIPS(q []F) (model.KV[F], error) {
	var (
		best  model.KV[F]
		bestD F
		found bool
	)
	for _, bucket := range t.buckets {
		for _, kv := range bucket {
			d := distance.Dot(q, kv.Vector)
			if !found || d > bestD {
				best, bestD, found = kv, d, true
			}
		}
	}
	if !found {
		return model.KV[F]{}, ErrEmptyTable
	}
	return best, nil
}

// Probe ranks buckets around q's bucket and returns the best inner product
// among the n top-ranked buckets. found is false when all of them are empty.
func (t *Table[F]) Probe(q []F, n int) (kv model.KV[F], found bool, st stats.Tracker, err error) {
	code, err := t.QueryBucket(q)
	if err != nil {
		return kv, false, st, err
	}
	kv, found, st = t.Scan(t.ProbeRanking(code, n), q)
	return kv, found, st, nil
}

// Scan returns the item with the largest inner product with q among the
// given buckets. The first item wins ties.
func (t *Table[F]) Scan(buckets []int, q []F) (kv model.KV[F], found bool, st stats.Tracker) {
	var bestD F
	for _, b := range buckets {
		st.Bucket()
		for _, cand := range t.buckets[b] {
			st.Comparison()
			d := distance.Dot(q, cand.Vector)
			if !found || d > bestD {
				kv, bestD, found = cand, d, true
			}
		}
	}
	return kv, found, st
}

// LookIn returns the first item of bucket whose inner product with q exceeds
// threshold.
func (t *Table[F]) LookIn(bucket int, q []F, threshold F) (model.KV[F], bool, stats.Tracker) {
	var st stats.Tracker
	st.Bucket()
	for _, kv := range t.buckets[bucket] {
		st.Comparison()
		if distance.Dot(q, kv.Vector) > threshold {
			return kv, true, st
		}
	}
	return model.KV[F]{}, false, st
}

// LookInUntil collects up to limit items of bucket whose inner product with
// q exceeds threshold, stopping as soon as limit is reached.
func (t *Table[F]) LookInUntil(bucket int, q []F, threshold F, limit int) ([]model.KV[F], stats.Tracker) {
	var (
		st  stats.Tracker
		out []model.KV[F]
	)
	st.Bucket()
	if limit < 1 {
		return nil, st
	}
	for _, kv := range t.buckets[bucket] {
		st.Comparison()
		if distance.Dot(q, kv.Vector) > threshold {
			out = append(out, kv)
			if len(out) == limit {
				break
			}
		}
	}
	return out, st
}

// TopKInBucket returns the k items of bucket with the largest inner product
// with q, best first.
func (t *Table[F]) TopKInBucket(k, bucket int, q []F) []model.KV[F] {
	items := t.buckets[bucket]
	dots := make([]F, len(items))
	for i, kv := range items {
		dots[i] = distance.Dot(q, kv.Vector)
	}

	idx := topk.Select(k, dots, func(a, b F) bool { return a > b })
	out := make([]model.KV[F], len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}

// Contains reports whether q is stored in the table. q is rescaled by the
// partition normalizer exactly as it would have been at build time, hashed,
// and compared against the single bucket it lands in.
func (t *Table[F]) Contains(q []F) bool {
	if !t.filled {
		return false
	}
	scaled := distance.Div(q, t.normalizer)
	if float64(distance.Norm(scaled)) > 1+lsh.LiftTolerance {
		return false
	}

	b, err := t.fam.Bucket(scaled, t.numBuckets)
	if err != nil {
		return false
	}

	target := q
	if t.storeNormalized {
		target = scaled
	}
	for _, kv := range t.buckets[b] {
		if distance.ApproxEqual(kv.Vector, target) {
			return true
		}
	}
	return false
}

// Bucket returns the items of bucket i. The slice must not be modified.
func (t *Table[F]) Bucket(i int) []model.KV[F] { return t.buckets[i] }

// NumBuckets returns the bucket count.
func (t *Table[F]) NumBuckets() int { return t.numBuckets }

// Normalizer returns U_p.
func (t *Table[F]) Normalizer() F { return t.normalizer }

// StoresNormalized reports whether vectors are kept at unit-ball scale.
func (t *Table[F]) StoresNormalized() bool { return t.storeNormalized }

// Len returns the number of stored vectors.
func (t *Table[F]) Len() int { return t.size }
