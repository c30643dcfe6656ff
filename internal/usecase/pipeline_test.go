package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ProductRanker/internal/domain"
	"ProductRanker/internal/logging"
	"ProductRanker/internal/ports"
	"ProductRanker/internal/rank"
)

type stubSource struct {
	reviews []domain.Review
	pos     int
	closed  bool
}

func (s *stubSource) Next(ctx context.Context) (domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return domain.Review{}, err
	}
	if s.pos >= len(s.reviews) {
		return domain.Review{}, io.EOF
	}
	rec := s.reviews[s.pos]
	s.pos++
	return rec, nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

type stubOpener struct {
	source *stubSource
	err    error
}

func (o *stubOpener) Open(context.Context, string) (ports.ReviewSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.source, nil
}

type stubRepository struct {
	saved       []domain.Ranking
	latest      domain.Ranking
	latestCalls int
	err         error
}

func (r *stubRepository) SaveRanking(_ context.Context, ranking domain.Ranking) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, ranking)
	return nil
}

func (r *stubRepository) LatestRanking(_ context.Context, category string) (domain.Ranking, error) {
	r.latestCalls++
	return r.latest, nil
}

type stubNotifier struct {
	digests []string
}

func (n *stubNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return nil
}

func newTestPipeline(t *testing.T, src *stubSource, repo *stubRepository, notifier *stubNotifier) *Pipeline {
	t.Helper()

	engine, err := rank.NewEngine(2, rank.PolicySkip, 1, logging.New("error"))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	deps := PipelineDeps{
		Opener: &stubOpener{source: src},
		Engine: engine,
		Logger: logging.New("error"),
	}
	if repo != nil {
		deps.Repository = repo
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return NewPipeline(deps)
}

func TestRankCategoryPersistsAndNotifies(t *testing.T) {
	t.Parallel()

	src := &stubSource{reviews: []domain.Review{
		{ProductID: "A", Rating: 5},
		{ProductID: "A", Rating: 5},
		{ProductID: "B", Rating: 1},
	}}
	repo := &stubRepository{}
	notifier := &stubNotifier{}

	pipeline := newTestPipeline(t, src, repo, notifier)
	ranking, err := pipeline.RankCategory(context.Background(), "Toys_and_Games")
	if err != nil {
		t.Fatalf("RankCategory error: %v", err)
	}

	if !src.closed {
		t.Fatal("review source was not closed")
	}
	if len(repo.saved) != 1 || repo.saved[0].Category != "Toys_and_Games" {
		t.Fatalf("ranking was not persisted: %+v", repo.saved)
	}
	if len(notifier.digests) != 1 {
		t.Fatalf("expected one digest, got %d", len(notifier.digests))
	}
	if !strings.Contains(notifier.digests[0], "A") {
		t.Fatalf("digest missing top product: %q", notifier.digests[0])
	}
	if len(ranking.Entries) != 2 || ranking.Entries[0].ProductID != "A" {
		t.Fatalf("unexpected ranking %+v", ranking.Entries)
	}
}

func TestRankCategoryChecksPreviousRanking(t *testing.T) {
	t.Parallel()

	src := &stubSource{reviews: []domain.Review{
		{ProductID: "A", Rating: 5},
		{ProductID: "B", Rating: 4},
	}}
	repo := &stubRepository{latest: domain.Ranking{
		Category: "Software",
		Entries:  []domain.ScoredProduct{{ProductID: "B", Score: 2.1}},
	}}

	pipeline := newTestPipeline(t, src, repo, nil)
	if _, err := pipeline.RankCategory(context.Background(), "Software"); err != nil {
		t.Fatalf("RankCategory error: %v", err)
	}

	if repo.latestCalls != 1 {
		t.Fatalf("previous ranking loaded %d times, want 1", repo.latestCalls)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("new ranking was not saved: %+v", repo.saved)
	}
}

func TestRankCategoryOpenFailure(t *testing.T) {
	t.Parallel()

	engine, err := rank.NewEngine(2, rank.PolicySkip, 1, logging.New("error"))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	wantErr := errors.New("no such file")
	pipeline := NewPipeline(PipelineDeps{
		Opener: &stubOpener{err: wantErr},
		Engine: engine,
		Logger: logging.New("error"),
	})

	if _, err := pipeline.RankCategory(context.Background(), "Software"); !errors.Is(err, wantErr) {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestRankCategoryRepositoryFailure(t *testing.T) {
	t.Parallel()

	src := &stubSource{reviews: []domain.Review{{ProductID: "A", Rating: 5}}}
	repo := &stubRepository{err: errors.New("db down")}

	pipeline := newTestPipeline(t, src, repo, nil)
	if _, err := pipeline.RankCategory(context.Background(), "Software"); err == nil {
		t.Fatal("expected persistence error to propagate")
	}
}

func TestRankAllRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	src := &stubSource{}
	pipeline := newTestPipeline(t, src, nil, nil)

	err := pipeline.RankAll(context.Background(), []string{"Electronics", "Not_Real"})
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid-configuration error, got %v", err)
	}
	if src.pos != 0 {
		t.Fatal("no stream may be consumed when validation fails")
	}
}

func TestBuildDigestMessage(t *testing.T) {
	t.Parallel()

	ranking := domain.Ranking{
		Category: "Gift_Cards",
		Entries: []domain.ScoredProduct{
			{ProductID: "B001", Score: 5.4931},
			{ProductID: "B002", Score: 1.7918},
		},
		Products: 2,
		Reviews:  7,
	}
	ranking.Skipped.Add(domain.SkipBadRating)

	digest := buildDigestMessage(ranking)
	for _, want := range []string{"Gift_Cards", "B001", "5.4931", "1 malformed"} {
		if !strings.Contains(digest, want) {
			t.Fatalf("digest missing %q:\n%s", want, digest)
		}
	}
}
