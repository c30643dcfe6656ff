package rank

import (
	"container/heap"

	"ProductRanker/internal/domain"
)

// outranks reports whether a places strictly higher than b in the final
// ranking: greater score wins, and equal scores go to the lexicographically
// smaller product id. Every ordering decision in this package goes through
// this comparison so eviction and the final sort agree.
func outranks(a, b domain.ScoredProduct) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ProductID < b.ProductID
}

// TopK keeps the K highest-ranked products seen so far. Internally a
// min-heap: the worst surviving entry sits at the root and is the first to
// be evicted, so memory never exceeds K entries.
type TopK struct {
	k int
	h scoreHeap
}

// NewTopK builds an empty collector with capacity k. k <= 0 collects nothing.
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{k: k, h: make(scoreHeap, 0, k)}
}

// Offer considers p for the ranking and reports whether it was retained.
// Below capacity every entry is accepted; at capacity p must outrank the
// current root, which it then replaces.
func (t *TopK) Offer(p domain.ScoredProduct) bool {
	if t.k == 0 {
		return false
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, p)
		return true
	}
	if !outranks(p, t.h[0]) {
		return false
	}
	t.h[0] = p
	heap.Fix(&t.h, 0)
	return true
}

// Len returns the number of retained entries.
func (t *TopK) Len() int {
	return len(t.h)
}

// Drain empties the collector and returns its entries best-first. The
// collector must not be reused afterwards.
func (t *TopK) Drain() []domain.ScoredProduct {
	out := make([]domain.ScoredProduct, len(t.h))
	for i := len(t.h) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.h).(domain.ScoredProduct)
	}
	return out
}

type scoreHeap []domain.ScoredProduct

func (h scoreHeap) Len() int { return len(h) }

// Less keeps the lowest-ranked entry at the root.
func (h scoreHeap) Less(i, j int) bool { return outranks(h[j], h[i]) }

func (h scoreHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoreHeap) Push(x any) { *h = append(*h, x.(domain.ScoredProduct)) }

func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}
