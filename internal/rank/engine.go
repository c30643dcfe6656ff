package rank

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ProductRanker/internal/domain"
	"ProductRanker/internal/ports"
)

// Engine executes one aggregate-score-select pass over a review stream. No
// state survives between runs; every run carries its own accumulators.
type Engine struct {
	k       int
	policy  Policy
	workers int
	logger  *slog.Logger
}

// NewEngine validates the ranking parameters before any stream is touched.
// K must be non-negative (K = 0 legitimately yields an empty ranking) and
// workers controls the selection fan-out; values below 1 mean sequential.
func NewEngine(k int, policy Policy, workers int, logger *slog.Logger) (*Engine, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: top-k must be non-negative, got %d", domain.ErrInvalidConfiguration, k)
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicySkip
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{k: k, policy: policy, workers: workers, logger: logger}, nil
}

// Run consumes the source once and returns the completed ranking. On any
// error the ranking is zero-valued: an aborted pass never exposes partially
// accumulated statistics.
func (e *Engine) Run(ctx context.Context, category string, src ports.ReviewSource) (domain.Ranking, error) {
	agg := NewAggregator(e.policy)
	if err := agg.Consume(ctx, src); err != nil {
		return domain.Ranking{}, fmt.Errorf("aggregate %s: %w", category, err)
	}
	return e.finish(category, agg.Stats(), agg.Reviews(), agg.Skips()), nil
}

// RunSharded aggregates the given shard sources concurrently, merges the
// partial maps exactly, and then selects. The aggregation step is
// commutative per key, so shard order never changes the result.
func (e *Engine) RunSharded(ctx context.Context, category string, shards []ports.ReviewSource) (domain.Ranking, error) {
	if len(shards) == 0 {
		return e.finish(category, nil, 0, domain.SkipReport{}), nil
	}
	if len(shards) == 1 {
		return e.Run(ctx, category, shards[0])
	}

	aggs := make([]*Aggregator, len(shards))
	errs := make([]error, len(shards))

	var wg sync.WaitGroup
	for i, src := range shards {
		wg.Add(1)
		go func(i int, src ports.ReviewSource) {
			defer wg.Done()
			aggs[i] = NewAggregator(e.policy)
			errs[i] = aggs[i].Consume(ctx, src)
		}(i, src)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return domain.Ranking{}, fmt.Errorf("aggregate %s: %w", category, err)
		}
	}

	parts := make([]map[string]*domain.ProductStats, len(aggs))
	var reviews int64
	var skips domain.SkipReport
	for i, agg := range aggs {
		parts[i] = agg.Stats()
		reviews += agg.Reviews()
		skips.Merge(agg.Skips())
	}

	return e.finish(category, MergeStats(parts...), reviews, skips), nil
}

func (e *Engine) finish(category string, stats map[string]*domain.ProductStats, reviews int64, skips domain.SkipReport) domain.Ranking {
	entries := e.selectTop(stats)

	ranking := domain.Ranking{
		Category:    category,
		Entries:     entries,
		Products:    int64(len(stats)),
		Reviews:     reviews,
		Skipped:     skips,
		GeneratedAt: time.Now().UTC(),
	}

	e.logger.Info("ranking complete",
		"category", category,
		"products", ranking.Products,
		"reviews", ranking.Reviews,
		"skipped", skips.Total,
		"entries", len(entries))
	return ranking
}

// selectTop fans selection out over e.workers partitions of the stats map,
// each keeping its own K candidates, and re-ranks the union. With one worker
// it degenerates to a plain bounded-heap pass.
func (e *Engine) selectTop(stats map[string]*domain.ProductStats) []domain.ScoredProduct {
	if e.workers <= 1 || len(stats) <= e.k {
		return SelectTopK(stats, e.k)
	}

	parts := make([]map[string]*domain.ProductStats, e.workers)
	for i := range parts {
		parts[i] = map[string]*domain.ProductStats{}
	}
	i := 0
	for id, st := range stats {
		parts[i%e.workers][id] = st
		i++
	}

	candidates := make([][]domain.ScoredProduct, e.workers)
	var wg sync.WaitGroup
	for w := range parts {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			candidates[w] = SelectTopK(parts[w], e.k)
		}(w)
	}
	wg.Wait()

	return MergeCandidates(e.k, candidates...)
}
