package rank

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ProductRanker/internal/domain"
	"ProductRanker/internal/ports"
)

// Policy decides what happens to a malformed record.
type Policy string

const (
	// PolicySkip counts the record and continues the pass (default): one bad
	// line must not abort a multi-gigabyte stream.
	PolicySkip Policy = "skip"
	// PolicyAbort terminates the pass; no ranking is produced.
	PolicyAbort Policy = "abort"
)

// ParsePolicy maps a configuration string to a Policy. The empty string
// selects PolicySkip.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case "":
		return PolicySkip, nil
	case PolicySkip, PolicyAbort:
		return Policy(value), nil
	default:
		return "", fmt.Errorf("%w: unknown malformed-record policy %q", domain.ErrInvalidConfiguration, value)
	}
}

// Aggregator folds a single-pass review stream into per-product statistics.
// Memory grows with distinct products, never with review volume. Not safe
// for concurrent use; sharded runs give each shard its own Aggregator and
// merge afterwards.
type Aggregator struct {
	policy  Policy
	stats   map[string]*domain.ProductStats
	skips   domain.SkipReport
	reviews int64
}

// NewAggregator builds an empty accumulator with the given policy.
func NewAggregator(policy Policy) *Aggregator {
	if policy == "" {
		policy = PolicySkip
	}
	return &Aggregator{policy: policy, stats: map[string]*domain.ProductStats{}}
}

// Observe folds one record into the accumulator. Invalid records follow the
// policy: nil error under skip, a wrapped domain.ErrMalformedRecord under
// abort. O(1) amortized.
func (a *Aggregator) Observe(rec domain.Review) error {
	if rec.ProductID == "" {
		return a.reject(domain.SkipMissingProduct)
	}
	if rec.Rating < 1 || rec.Rating > 5 || rec.Rating != rec.Rating {
		return a.reject(domain.SkipBadRating)
	}

	st, ok := a.stats[rec.ProductID]
	if !ok {
		st = &domain.ProductStats{}
		a.stats[rec.ProductID] = st
	}
	st.Count++
	st.RatingSum += rec.Rating
	a.reviews++
	return nil
}

// Consume drains the source until io.EOF, applying the policy to records the
// source itself could not decode. On abort the already-accumulated map is
// discarded by the caller; nothing partial is ever exposed.
func (a *Aggregator) Consume(ctx context.Context, src ports.ReviewSource) error {
	for {
		rec, err := src.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, domain.ErrMalformedRecord):
			if rejErr := a.reject(domain.SkipUnparseable); rejErr != nil {
				return rejErr
			}
		case err != nil:
			return fmt.Errorf("read review: %w", err)
		default:
			if obsErr := a.Observe(rec); obsErr != nil {
				return obsErr
			}
		}
	}
}

// Stats hands the completed mapping over; read-only from here on.
func (a *Aggregator) Stats() map[string]*domain.ProductStats {
	return a.stats
}

// Skips reports the records rejected so far.
func (a *Aggregator) Skips() domain.SkipReport {
	return a.skips
}

// Reviews returns the number of valid records aggregated.
func (a *Aggregator) Reviews() int64 {
	return a.reviews
}

func (a *Aggregator) reject(reason domain.SkipReason) error {
	if a.policy == PolicyAbort {
		return fmt.Errorf("%w: %s", domain.ErrMalformedRecord, reason)
	}
	a.skips.Add(reason)
	return nil
}

// MergeStats sums partial per-product statistics produced by independent
// shards. Addition per key is commutative and associative, so merge order
// cannot change the result and no update is lost.
func MergeStats(parts ...map[string]*domain.ProductStats) map[string]*domain.ProductStats {
	merged := map[string]*domain.ProductStats{}
	for _, part := range parts {
		for id, st := range part {
			acc, ok := merged[id]
			if !ok {
				acc = &domain.ProductStats{}
				merged[id] = acc
			}
			acc.Count += st.Count
			acc.RatingSum += st.RatingSum
		}
	}
	return merged
}
