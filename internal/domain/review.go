package domain

import (
	"errors"
	"time"
)

// Review is a single customer review as read from the dataset stream. Only
// the grouping key and the rating matter to the ranking core; every other
// field of the raw record is opaque and never decoded.
type Review struct {
	ProductID string  // parent-level product identifier (parent_asin)
	Rating    float64 // star rating, valid range [1, 5]
}

// ProductStats accumulates review volume and rating mass for one product.
// Owned by the aggregator while a pass is running; read-only afterwards.
type ProductStats struct {
	Count     int64
	RatingSum float64
}

// ScoredProduct is an immutable (product, score) pair produced by the scorer.
type ScoredProduct struct {
	ProductID string
	Score     float64
}

// SkipReason classifies why a record was rejected during aggregation.
type SkipReason string

const (
	SkipBadRating      SkipReason = "rating_out_of_range"
	SkipMissingProduct SkipReason = "missing_product_id"
	SkipUnparseable    SkipReason = "unparseable"
)

// SkipReport summarizes records rejected under the skip policy. The zero
// value is ready to use.
type SkipReport struct {
	Total   int64
	Reasons map[SkipReason]int64
}

// Add counts one rejected record.
func (r *SkipReport) Add(reason SkipReason) {
	if r.Reasons == nil {
		r.Reasons = map[SkipReason]int64{}
	}
	r.Reasons[reason]++
	r.Total++
}

// Merge folds another report into this one (used when shards are combined).
func (r *SkipReport) Merge(other SkipReport) {
	for reason, n := range other.Reasons {
		if r.Reasons == nil {
			r.Reasons = map[SkipReason]int64{}
		}
		r.Reasons[reason] += n
	}
	r.Total += other.Total
}

// Ranking is the final artifact of one pipeline run: the top-K products of a
// category in descending score order, plus the pass summary.
type Ranking struct {
	Category    string
	Entries     []ScoredProduct // descending score, ascending product id among ties
	Products    int64           // distinct products aggregated
	Reviews     int64           // valid reviews aggregated
	Skipped     SkipReport
	GeneratedAt time.Time
}

var (
	// ErrMalformedRecord marks a review that failed validation or decoding.
	ErrMalformedRecord = errors.New("malformed review record")

	// ErrInvalidConfiguration marks parameters rejected before any stream
	// consumption begins.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
