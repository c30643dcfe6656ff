package ports

import (
	"context"
	"time"

	"ProductRanker/internal/domain"
)

// ReviewSource streams review records one at a time: single pass, not
// restartable. Next returns io.EOF once the stream is exhausted. A record
// that cannot be decoded yields an error wrapping domain.ErrMalformedRecord;
// the stream stays usable and the following call advances past it.
type ReviewSource interface {
	Next(ctx context.Context) (domain.Review, error)
	Close() error
}

// SourceOpener opens the review stream for a category.
type SourceOpener interface {
	Open(ctx context.Context, category string) (ReviewSource, error)
}

// RankingRepository persists completed rankings for history and serving.
// LatestRanking returns a zero-entry ranking when the category has never
// been ranked before.
type RankingRepository interface {
	SaveRanking(ctx context.Context, ranking domain.Ranking) error
	LatestRanking(ctx context.Context, category string) (domain.Ranking, error)
}

// Notifier publishes ranking digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
