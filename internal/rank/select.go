package rank

import (
	"sort"

	"ProductRanker/internal/domain"
)

// SelectTopK scores every product and keeps the K best via the bounded heap:
// O(P log K) time, O(K) space regardless of how many distinct products the
// category holds.
func SelectTopK(stats map[string]*domain.ProductStats, k int) []domain.ScoredProduct {
	top := NewTopK(k)
	for id, st := range stats {
		top.Offer(domain.ScoredProduct{ProductID: id, Score: Score(*st)})
	}
	return top.Drain()
}

// SelectNaive sorts the entire scored set and truncates: O(P log P). Kept as
// the reference implementation for cross-checks and benchmarks; it must
// agree with SelectTopK on every input.
func SelectNaive(stats map[string]*domain.ProductStats, k int) []domain.ScoredProduct {
	if k < 0 {
		k = 0
	}

	scored := make([]domain.ScoredProduct, 0, len(stats))
	for id, st := range stats {
		scored = append(scored, domain.ScoredProduct{ProductID: id, Score: Score(*st)})
	}

	sort.Slice(scored, func(i, j int) bool { return outranks(scored[i], scored[j]) })

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// MergeCandidates re-ranks per-shard candidate sets (each already a bounded
// top-K) into the global top K by running the same bounded heap over their
// union. A product that lost a local tie-break in one shard can still win
// globally because every candidate is re-offered.
func MergeCandidates(k int, candidates ...[]domain.ScoredProduct) []domain.ScoredProduct {
	top := NewTopK(k)
	for _, set := range candidates {
		for _, p := range set {
			top.Offer(p)
		}
	}
	return top.Drain()
}
