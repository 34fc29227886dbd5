package topk

import "sort"

// Tracker holds at most k items ordered worst to best: items[0] is always the
// eviction candidate. It is not safe for concurrent use.
type Tracker[T any] struct {
	items  []T
	k      int
	better func(a, b T) bool
}

// New creates a Tracker of capacity k. better(a, b) reports whether a ranks
// strictly above b. New panics if k < 1.
func New[T any](k int, better func(a, b T) bool) *Tracker[T] {
	if k < 1 {
		panic("topk: k must be positive")
	}
	return &Tracker[T]{
		items:  make([]T, 0, k),
		k:      k,
		better: better,
	}
}

// Len returns the number of kept items.
func (t *Tracker[T]) Len() int { return len(t.items) }

// Cap returns k.
func (t *Tracker[T]) Cap() int { return t.k }

// Full reports whether k items are kept.
func (t *Tracker[T]) Full() bool { return len(t.items) == t.k }

// Worst returns the lowest-ranked kept item.
func (t *Tracker[T]) Worst() (T, bool) {
	if len(t.items) == 0 {
		var zero T
		return zero, false
	}
	return t.items[0], true
}

// Push offers x. When the tracker is full, x is rejected unless it beats the
// current worst, which is then evicted. Among equal items the earlier one
// ranks higher. Push reports whether x was kept.
func (t *Tracker[T]) Push(x T) bool {
	return t.push(x) >= 0
}

// PushUnique is Push with an identity check: if an item for which same
// returns true is already kept, x is dropped and that item's position is
// returned. Positions count from the worst item (0).
func (t *Tracker[T]) PushUnique(x T, same func(a, b T) bool) (pos int, inserted bool) {
	for i := range t.items {
		if same(t.items[i], x) {
			return i, false
		}
	}
	pos = t.push(x)
	return pos, pos >= 0
}

func (t *Tracker[T]) push(x T) int {
	full := len(t.items) == t.k
	if full && !t.better(x, t.items[0]) {
		return -1
	}

	// First position whose item is at least as good as x.
	p := sort.Search(len(t.items), func(i int) bool {
		return !t.better(x, t.items[i])
	})

	if full {
		copy(t.items[:p-1], t.items[1:p])
		t.items[p-1] = x
		return p - 1
	}

	t.items = append(t.items, x)
	copy(t.items[p+1:], t.items[p:len(t.items)-1])
	t.items[p] = x
	return p
}

// Best returns a copy of the kept items, best first.
func (t *Tracker[T]) Best() []T {
	out := make([]T, len(t.items))
	for i, v := range t.items {
		out[len(t.items)-1-i] = v
	}
	return out
}

// Reset empties the tracker, keeping its capacity.
func (t *Tracker[T]) Reset() {
	clear(t.items)
	t.items = t.items[:0]
}

// Select returns the indices of the k best items, best first. Ties keep
// index order. It returns nil when k < 1.
func Select[T any](k int, items []T, better func(a, b T) bool) []int {
	if k < 1 || len(items) == 0 {
		return nil
	}
	tr := New(min(k, len(items)), func(a, b int) bool {
		return better(items[a], items[b])
	})
	for i := range items {
		tr.Push(i)
	}
	return tr.Best()
}
