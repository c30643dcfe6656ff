package rank

import (
	"math"

	"ProductRanker/internal/domain"
)

// Score computes mean_rating * ln(1 + review_count). The quality signal is
// bounded by the rating scale while the popularity signal grows
// sub-linearly, so a handful of lucky five-star reviews cannot outrank a
// well-reviewed popular product. Total for every aggregated product since
// Count >= 1 by construction.
func Score(s domain.ProductStats) float64 {
	mean := s.RatingSum / float64(s.Count)
	return mean * math.Log(1+float64(s.Count))
}
