package nrlsh

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/internal/table"
	"github.com/arthurfeeney/nrlsh/internal/tableset"
	"github.com/arthurfeeney/nrlsh/internal/topk"
	"github.com/arthurfeeney/nrlsh/lsh"
	"github.com/arthurfeeney/nrlsh/model"
	"github.com/arthurfeeney/nrlsh/stats"
)

// BucketDiagnostics describes how one partition's vectors spread over its
// buckets.
type BucketDiagnostics = table.Diagnostics

// ReplicaDiagnostics holds the bucket diagnostics of every partition of one
// replica.
type ReplicaDiagnostics struct {
	Replica    int                 `json:"replica"`
	Partitions []BucketDiagnostics `json:"partitions"`
}

// Index is a norm-ranged LSH index for maximum inner product search made of
// independently hashed replicas of the same partitioned dataset.
//
// An Index is filled once. After Fill returns, every query method is safe
// for concurrent use.
type Index[F distance.Float] struct {
	replicas   []*tableset.Set[F]
	partitions int
	bits       int
	dim        int
	numBuckets int
	size       int
	opts       options

	fillMu sync.Mutex
	filled atomic.Bool
}

// New creates an empty index of replicas replicas. Each replica splits the
// data into partitions norm ranges and hashes them with bits hyperplanes
// into numBuckets buckets per partition.
func New[F distance.Float](replicas, partitions, bits, dim, numBuckets int, optFns ...Option) (*Index[F], error) {
	if replicas <= 0 {
		return nil, ErrInvalidReplicas
	}

	idx := &Index[F]{
		replicas:   make([]*tableset.Set[F], replicas),
		partitions: partitions,
		bits:       bits,
		dim:        dim,
		numBuckets: numBuckets,
		opts:       applyOptions(optFns),
	}
	if err := idx.resetReplicas(); err != nil {
		return nil, err
	}
	return idx, nil
}

// NewFromProbabilities sizes an index for n vectors from collision
// probabilities: p1 is the minimum probability that near vectors share a
// bucket and p2 the maximum probability that far vectors do. The bit count
// and replica count follow lsh.SizesFromProbabilities.
func NewFromProbabilities[F distance.Float](partitions, dim, numBuckets, n int, p1, p2 float64, optFns ...Option) (*Index[F], error) {
	bits, replicas, err := lsh.SizesFromProbabilities(n, p1, p2)
	if err != nil {
		return nil, err
	}
	return New[F](replicas, partitions, bits, dim, numBuckets, optFns...)
}

func (idx *Index[F]) resetReplicas() error {
	for i := range idx.replicas {
		var rng *rand.Rand
		if idx.opts.seeded {
			rng = lsh.NewRand(idx.opts.seed, uint64(i))
		}
		s, err := tableset.New[F](idx.partitions, idx.bits, idx.dim, idx.numBuckets, rng, idx.opts.rankingCache)
		if err != nil {
			return err
		}
		idx.replicas[i] = s
	}
	return nil
}

// Fill indexes data in every replica. Vector i gets id i. When
// storeNormalized is set, stored vectors stay scaled by their partition
// normalizer instead of being restored to their original scale.
//
// Fill fails with ErrTooFewVectors when len(data) is smaller than the
// partition count and with ErrAlreadyFilled on a second call. A failed Fill
// leaves the index empty.
func (idx *Index[F]) Fill(ctx context.Context, data [][]F, storeNormalized bool) (err error) {
	start := time.Now()
	defer func() {
		idx.opts.metricsCollector.RecordFill(len(data), time.Since(start), err)
		idx.opts.logger.LogFill(ctx, len(data), idx.partitions, len(idx.replicas), time.Since(start), err)
	}()

	idx.fillMu.Lock()
	defer idx.fillMu.Unlock()

	if idx.filled.Load() {
		return ErrAlreadyFilled
	}
	if len(data) < idx.partitions {
		return &TooFewVectorsError{Have: len(data), Want: idx.partitions}
	}
	// Ids are de-duplicated in a uint32 bitmap.
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("nrlsh: %d vectors exceed the id range", len(data))
	}
	for i, x := range data {
		if err := checkDim(idx.dim, len(x)); err != nil {
			return fmt.Errorf("nrlsh: vector %d: %w", i, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if idx.opts.concurrency > 0 {
		g.SetLimit(idx.opts.concurrency)
	}
	for i, r := range idx.replicas {
		g.Go(func() error {
			if err := r.Fill(gctx, data, storeNormalized, idx.opts.concurrency); err != nil {
				return fmt.Errorf("nrlsh: replica %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if rerr := idx.resetReplicas(); rerr != nil {
			return rerr
		}
		return err
	}

	idx.size = len(data)
	idx.filled.Store(true)
	return nil
}

func (idx *Index[F]) checkQuery(q []F, adj int) error {
	if !idx.filled.Load() {
		return ErrNotFilled
	}
	if err := checkDim(idx.dim, len(q)); err != nil {
		return err
	}
	if adj < 1 {
		return ErrInvalidDepth
	}
	return nil
}

func (idx *Index[F]) record(op string, start time.Time, found bool, snap stats.Snapshot, err error) {
	idx.opts.metricsCollector.RecordProbe(op, found, snap, time.Since(start), err)
	idx.opts.logger.LogProbe(context.Background(), op, found, snap, err)
}

// Probe returns the item with the largest inner product with q among the adj
// top-ranked buckets of every partition. Replicas are tried in order and the
// first replica that finds anything answers.
func (idx *Index[F]) Probe(q []F, adj int) (res model.Result[F], err error) {
	start := time.Now()
	defer func() { idx.record(OpProbe, start, res.Found, res.Stats, err) }()

	if err := idx.checkQuery(q, adj); err != nil {
		return res, err
	}

	var st stats.Tracker
	for _, r := range idx.replicas {
		st.Table()
		kv, ok, rst, err := r.Probe(q, adj)
		st.Add(rst)
		if err != nil {
			return model.Result[F]{Stats: st.Snapshot()}, err
		}
		if ok {
			return model.Result[F]{Item: kv, Found: true, Stats: st.Snapshot()}, nil
		}
	}
	return model.Result[F]{Stats: st.Snapshot()}, nil
}

// ProbeApprox returns the first item found whose inner product with q
// exceeds threshold, walking the adj top-ranked buckets of each partition
// column-major. Replicas are tried in order until one finds an item.
func (idx *Index[F]) ProbeApprox(q []F, threshold F, adj int) (res model.Result[F], err error) {
	start := time.Now()
	defer func() { idx.record(OpProbeApprox, start, res.Found, res.Stats, err) }()

	if err := idx.checkQuery(q, adj); err != nil {
		return res, err
	}

	var st stats.Tracker
	for _, r := range idx.replicas {
		st.Table()
		kv, ok, rst, err := r.ProbeApprox(q, threshold, adj)
		st.Add(rst)
		if err != nil {
			return model.Result[F]{Stats: st.Snapshot()}, err
		}
		if ok {
			return model.Result[F]{Item: kv, Found: true, Stats: st.Snapshot()}, nil
		}
	}
	return model.Result[F]{Stats: st.Snapshot()}, nil
}

// KProbeApprox collects up to k distinct items whose inner product with q
// exceeds threshold. Unlike Probe it keeps going through the replicas until
// k items are found or every replica has been probed; a partial list is a
// normal result.
func (idx *Index[F]) KProbeApprox(k int, q []F, threshold F, adj int) (res model.ListResult[F], err error) {
	start := time.Now()
	defer func() { idx.record(OpKProbeApprox, start, res.Found(), res.Stats, err) }()

	if k < 1 {
		return res, ErrInvalidK
	}
	if err := idx.checkQuery(q, adj); err != nil {
		return res, err
	}

	var (
		st   stats.Tracker
		seen = roaring.New()
		out  []model.KV[F]
	)
	for _, r := range idx.replicas {
		if len(out) >= k {
			break
		}
		st.Table()
		items, rst, err := r.KProbeApprox(k-len(out), q, threshold, adj)
		st.Add(rst)
		if err != nil {
			return model.ListResult[F]{Stats: st.Snapshot()}, err
		}
		for _, kv := range items {
			if seen.CheckedAdd(uint32(kv.ID)) {
				out = append(out, kv)
			}
		}
	}
	return model.ListResult[F]{Items: out, Stats: st.Snapshot()}, nil
}

// KProbe returns the k distinct items with the largest inner product with q
// among the adj top-ranked buckets of every partition of every replica,
// best first.
func (idx *Index[F]) KProbe(k int, q []F, adj int) (res model.ListResult[F], err error) {
	start := time.Now()
	defer func() { idx.record(OpKProbe, start, res.Found(), res.Stats, err) }()

	if k < 1 {
		return res, ErrInvalidK
	}
	if err := idx.checkQuery(q, adj); err != nil {
		return res, err
	}

	var st stats.Tracker
	tr := topk.New(min(k, idx.size), tableset.Better[F])
	for _, r := range idx.replicas {
		st.Table()
		rst, err := r.CollectTopK(q, adj, tr)
		st.Add(rst)
		if err != nil {
			return model.ListResult[F]{Stats: st.Snapshot()}, err
		}
	}

	best := tr.Best()
	out := make([]model.KV[F], len(best))
	for i, sc := range best {
		out[i] = sc.Item
	}
	return model.ListResult[F]{Items: out, Stats: st.Snapshot()}, nil
}

// FindMaxInner returns the stored item with the largest inner product with
// q by scanning every bucket of the first replica.
func (idx *Index[F]) FindMaxInner(q []F) (kv model.KV[F], err error) {
	start := time.Now()
	defer func() { idx.record(OpFindMaxInner, start, err == nil, stats.Snapshot{}, err) }()

	if err := idx.checkQuery(q, 1); err != nil {
		return kv, err
	}
	return idx.replicas[0].MIPS(q)
}

// Contains reports whether q is stored. Every replica holds the whole
// dataset, so only the first is searched.
func (idx *Index[F]) Contains(q []F) (found bool, err error) {
	start := time.Now()
	defer func() { idx.record(OpContains, start, found, stats.Snapshot{}, err) }()

	if err := idx.checkQuery(q, 1); err != nil {
		return false, err
	}
	return idx.replicas[0].Contains(q), nil
}

// Diagnostics reports bucket-size statistics for every partition of every
// replica.
func (idx *Index[F]) Diagnostics(ctx context.Context) ([]ReplicaDiagnostics, error) {
	if !idx.filled.Load() {
		return nil, ErrNotFilled
	}
	out := make([]ReplicaDiagnostics, len(idx.replicas))
	for i, r := range idx.replicas {
		d, err := r.Diagnostics(ctx)
		if err != nil {
			return nil, fmt.Errorf("nrlsh: replica %d: %w", i, err)
		}
		out[i] = ReplicaDiagnostics{Replica: i, Partitions: d}
	}
	return out, nil
}

// Normalizers returns the partition normalizers of replica i, smallest
// first. They are identical across replicas.
func (idx *Index[F]) Normalizers(i int) []F { return idx.replicas[i].Normalizers() }

// Replicas returns the number of replicas.
func (idx *Index[F]) Replicas() int { return len(idx.replicas) }

// Partitions returns the number of partitions per replica.
func (idx *Index[F]) Partitions() int { return idx.partitions }

// Bits returns the number of hash bits per replica.
func (idx *Index[F]) Bits() int { return idx.bits }

// Dimension returns the vector dimension.
func (idx *Index[F]) Dimension() int { return idx.dim }

// NumBuckets returns the number of buckets per partition.
func (idx *Index[F]) NumBuckets() int { return idx.numBuckets }

// Len returns the number of indexed vectors; 0 before Fill.
func (idx *Index[F]) Len() int {
	if !idx.filled.Load() {
		return 0
	}
	return idx.size
}

// Filled reports whether Fill has completed.
func (idx *Index[F]) Filled() bool { return idx.filled.Load() }
