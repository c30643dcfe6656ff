package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ProductRanker/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PRODUCT_RANKER_CONFIG", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("PRODUCT_RANKER_TOP_K", "")
	t.Setenv("PRODUCT_RANKER_CATEGORIES", "")
	t.Setenv("PRODUCT_RANKER_DATA_DIR", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg := Load()
	if cfg.Ranking.TopK != 10 {
		t.Fatalf("expected default topK 10, got %d", cfg.Ranking.TopK)
	}
	if cfg.Ranking.MalformedPolicy != "skip" {
		t.Fatalf("expected default policy skip, got %q", cfg.Ranking.MalformedPolicy)
	}
	if cfg.Dataset.Dir != "dataset/amazon_reviews" {
		t.Fatalf("unexpected default dataset dir %q", cfg.Dataset.Dir)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0] != "Electronics" {
		t.Fatalf("unexpected default categories %v", cfg.Categories)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	raw := `
logging:
  level: debug
ranking:
  topK: 25
  malformedPolicy: abort
  shards: 4
dataset:
  dir: /data/reviews
categories:
  - Gift_Cards
  - Software
scheduler:
  cronExpression: "0 6 * * *"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PRODUCT_RANKER_CONFIG", path)
	t.Setenv("PRODUCT_RANKER_TOP_K", "")
	t.Setenv("PRODUCT_RANKER_CATEGORIES", "")
	t.Setenv("PRODUCT_RANKER_DATA_DIR", "")

	cfg := Load()
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug logging, got %q", cfg.Logging.Level)
	}
	if cfg.Ranking.TopK != 25 || cfg.Ranking.MalformedPolicy != "abort" || cfg.Ranking.Shards != 4 {
		t.Fatalf("unexpected ranking config %+v", cfg.Ranking)
	}
	if cfg.Dataset.Dir != "/data/reviews" {
		t.Fatalf("unexpected dataset dir %q", cfg.Dataset.Dir)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[0] != "Gift_Cards" {
		t.Fatalf("unexpected categories %v", cfg.Categories)
	}
	if cfg.Scheduler.CronExpression != "0 6 * * *" {
		t.Fatalf("unexpected cron expression %q", cfg.Scheduler.CronExpression)
	}
}

func TestLoadFromFileKeepsExplicitZeroTopK(t *testing.T) {
	raw := `
ranking:
  topK: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PRODUCT_RANKER_CONFIG", path)
	t.Setenv("PRODUCT_RANKER_TOP_K", "")
	t.Setenv("PRODUCT_RANKER_CATEGORIES", "")
	t.Setenv("PRODUCT_RANKER_DATA_DIR", "")

	cfg := Load()
	if cfg.Ranking.TopK != 0 {
		t.Fatalf("explicit topK 0 must not revert to the default, got %d", cfg.Ranking.TopK)
	}
	// Zero is a legal value: the engine produces an empty ranking, not an
	// error, so validation must accept it.
	if err := cfg.Validate(); err != nil {
		t.Fatalf("topK 0 must validate, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PRODUCT_RANKER_CONFIG", "")
	t.Setenv("DATABASE_DSN", "postgres://rank:secret@db:5432/rankings")
	t.Setenv("PRODUCT_RANKER_TOP_K", "3")
	t.Setenv("PRODUCT_RANKER_CATEGORIES", "Gift_Cards, Digital_Music")
	t.Setenv("PRODUCT_RANKER_DATA_DIR", "/mnt/reviews")

	cfg := Load()
	if cfg.Database.DSN != "postgres://rank:secret@db:5432/rankings" {
		t.Fatalf("unexpected DSN %q", cfg.Database.DSN)
	}
	if cfg.Ranking.TopK != 3 {
		t.Fatalf("expected topK 3, got %d", cfg.Ranking.TopK)
	}
	want := []string{"Gift_Cards", "Digital_Music"}
	if len(cfg.Categories) != 2 || cfg.Categories[0] != want[0] || cfg.Categories[1] != want[1] {
		t.Fatalf("unexpected categories %v", cfg.Categories)
	}
	if cfg.Dataset.Dir != "/mnt/reviews" {
		t.Fatalf("unexpected dataset dir %q", cfg.Dataset.Dir)
	}
}

func TestValidateRejectsBadRanking(t *testing.T) {
	t.Parallel()

	base := defaultConfig()

	negative := base
	negative.Ranking.TopK = -1
	if err := negative.Validate(); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("negative topK: expected invalid-configuration error, got %v", err)
	}

	policy := base
	policy.Ranking.MalformedPolicy = "ignore"
	if err := policy.Validate(); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("unknown policy: expected invalid-configuration error, got %v", err)
	}

	shards := base
	shards.Ranking.Shards = 0
	if err := shards.Validate(); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("zero shards: expected invalid-configuration error, got %v", err)
	}

	empty := base
	empty.Categories = nil
	if err := empty.Validate(); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("no categories: expected invalid-configuration error, got %v", err)
	}
}
