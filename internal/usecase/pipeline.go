package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ProductRanker/internal/benchmark"
	"ProductRanker/internal/domain"
	"ProductRanker/internal/infrastructure/dataset"
	"ProductRanker/internal/ports"
	"ProductRanker/internal/rank"
)

// PipelineDeps wires all driven adapters into the ranking workflow.
type PipelineDeps struct {
	Opener     ports.SourceOpener
	Engine     *rank.Engine
	Repository ports.RankingRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the category-ranking workflow: open the review stream,
// run the engine, persist, notify.
type Pipeline struct {
	opener     ports.SourceOpener
	engine     *rank.Engine
	repository ports.RankingRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		opener:     deps.Opener,
		engine:     deps.Engine,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     logger,
	}
}

// RankCategory performs one full pass for a category and returns the
// ranking it produced.
func (p *Pipeline) RankCategory(ctx context.Context, category string) (domain.Ranking, error) {
	src, err := p.opener.Open(ctx, category)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("open category %s: %w", category, err)
	}

	ranking, runErr := p.engine.Run(ctx, category, src)
	if closeErr := src.Close(); closeErr != nil {
		p.logger.Warn("close review source", "category", category, "error", closeErr)
	}
	if runErr != nil {
		return domain.Ranking{}, runErr
	}

	if ranking.Skipped.Total > 0 {
		p.logger.Warn("malformed records skipped",
			"category", category,
			"count", ranking.Skipped.Total,
			"reasons", ranking.Skipped.Reasons)
	}

	if p.repository != nil {
		p.logDrift(ctx, category, ranking)
		if err := p.repository.SaveRanking(ctx, ranking); err != nil {
			return domain.Ranking{}, fmt.Errorf("persist ranking %s: %w", category, err)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, buildDigestMessage(ranking)); err != nil {
			return domain.Ranking{}, fmt.Errorf("publish digest %s: %w", category, err)
		}
	}

	return ranking, nil
}

// RankAll validates every configured category up front (fail fast, before
// any stream is opened) and then ranks them in order.
func (p *Pipeline) RankAll(ctx context.Context, categories []string) error {
	for _, category := range categories {
		if !dataset.IsCategory(category) {
			return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidConfiguration, category)
		}
	}

	for _, category := range categories {
		if _, err := p.RankCategory(ctx, category); err != nil {
			return err
		}
	}
	return nil
}

// logDrift compares the fresh ranking against the previously stored one for
// the category, so a run that reshuffles the leaderboard shows up in the logs
// before the old ranking is overwritten. Failure to load the previous run is
// not fatal; the save still proceeds.
func (p *Pipeline) logDrift(ctx context.Context, category string, ranking domain.Ranking) {
	previous, err := p.repository.LatestRanking(ctx, category)
	if err != nil {
		p.logger.Warn("load previous ranking", "category", category, "error", err)
		return
	}
	if len(previous.Entries) == 0 {
		return
	}

	p.logger.Info("ranking drift",
		"category", category,
		"jaccard", benchmark.JaccardAtK(previous.Entries, ranking.Entries),
		"spearman", benchmark.SpearmanRho(previous.Entries, ranking.Entries),
		"previous_generated_at", previous.GeneratedAt)
}

func buildDigestMessage(ranking domain.Ranking) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top-%d products in %s\n", len(ranking.Entries), ranking.Category)
	fmt.Fprintf(&b, "score = mean rating * ln(1 + reviews)\n\n")

	for i, entry := range ranking.Entries {
		fmt.Fprintf(&b, "%3d. %s  score=%.4f\n", i+1, entry.ProductID, entry.Score)
	}

	fmt.Fprintf(&b, "\n%d products, %d reviews", ranking.Products, ranking.Reviews)
	if ranking.Skipped.Total > 0 {
		fmt.Fprintf(&b, ", %d malformed records skipped", ranking.Skipped.Total)
	}
	return b.String()
}
