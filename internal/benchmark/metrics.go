// Package benchmark compares two rankings of the same category, typically
// the bounded-heap selector against the naive full-sort reference. The
// metrics mirror the columns of the original evaluation suite.
package benchmark

import (
	"math"
	"sort"

	"ProductRanker/internal/domain"
)

// PrecisionAtK is the fraction of reference entries also present in the
// candidate ranking, position-blind.
func PrecisionAtK(reference, candidate []domain.ScoredProduct) float64 {
	if len(reference) == 0 {
		return 0
	}
	ref := idSet(reference)
	hits := 0
	for _, p := range candidate {
		if _, ok := ref[p.ProductID]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(reference))
}

// JaccardAtK is intersection over union of the two entry sets.
func JaccardAtK(reference, candidate []domain.ScoredProduct) float64 {
	if len(reference) == 0 && len(candidate) == 0 {
		return 1
	}
	ref := idSet(reference)
	inter := 0
	for _, p := range candidate {
		if _, ok := ref[p.ProductID]; ok {
			inter++
		}
	}
	union := len(reference) + len(candidate) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// NDCGAtK treats the reference scores as graded relevance and measures how
// well the candidate ordering preserves them, normalized by the reference's
// own (ideal) ordering. 1.0 means the candidate is as good as the reference.
func NDCGAtK(reference, candidate []domain.ScoredProduct) float64 {
	if len(reference) == 0 {
		return 0
	}

	gains := map[string]float64{}
	for _, p := range reference {
		gains[p.ProductID] = p.Score
	}

	dcg := 0.0
	for i, p := range candidate {
		dcg += gains[p.ProductID] / math.Log2(float64(i)+2)
	}

	ideal := 0.0
	for i, p := range reference {
		ideal += p.Score / math.Log2(float64(i)+2)
	}
	if ideal == 0 {
		return 0
	}
	return dcg / ideal
}

// SpearmanRho is the rank correlation over products present in both
// rankings. Fewer than two shared products gives no signal and returns 0.
func SpearmanRho(reference, candidate []domain.ScoredProduct) float64 {
	refRank := rankPositions(reference)
	candRank := rankPositions(candidate)

	shared := make([]string, 0, len(refRank))
	for id := range refRank {
		if _, ok := candRank[id]; ok {
			shared = append(shared, id)
		}
	}
	if len(shared) < 2 {
		return 0
	}
	sort.Strings(shared)

	n := float64(len(shared))
	var sumSq float64
	for _, id := range shared {
		d := float64(refRank[id] - candRank[id])
		sumSq += d * d
	}
	return 1 - (6*sumSq)/(n*(n*n-1))
}

func idSet(ranking []domain.ScoredProduct) map[string]struct{} {
	set := make(map[string]struct{}, len(ranking))
	for _, p := range ranking {
		set[p.ProductID] = struct{}{}
	}
	return set
}

func rankPositions(ranking []domain.ScoredProduct) map[string]int {
	positions := make(map[string]int, len(ranking))
	for i, p := range ranking {
		positions[p.ProductID] = i + 1
	}
	return positions
}
