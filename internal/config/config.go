package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ProductRanker/internal/domain"
	"ProductRanker/internal/rank"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "PRODUCT_RANKER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	topKEnv           = "PRODUCT_RANKER_TOP_K"
	dataDirEnv        = "PRODUCT_RANKER_DATA_DIR"
	categoriesEnv     = "PRODUCT_RANKER_CATEGORIES"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Dataset       DatasetConfig      `yaml:"dataset"`
	Ranking       RankingConfig      `yaml:"ranking"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Categories    []string           `yaml:"categories"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// DatasetConfig locates the local review dataset and its upstream origin.
type DatasetConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"baseUrl"`
}

// RankingConfig carries the core engine parameters for a run.
type RankingConfig struct {
	TopK            int    `yaml:"topK"`
	MalformedPolicy string `yaml:"malformedPolicy"`
	Shards          int    `yaml:"shards"`
}

// SchedulerConfig defines when ranking runs should repeat. An empty cron
// expression means a single run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send digests.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. Validation is a separate step so callers fail fast before any
// review stream is opened.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
				if k := explicitTopK(raw); k != nil {
					cfg.Ranking.TopK = *k
				}
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate rejects parameters the engine would refuse, before any work
// starts.
func (c Config) Validate() error {
	if c.Ranking.TopK < 0 {
		return fmt.Errorf("%w: ranking.topK must be non-negative, got %d", domain.ErrInvalidConfiguration, c.Ranking.TopK)
	}
	if _, err := rank.ParsePolicy(c.Ranking.MalformedPolicy); err != nil {
		return err
	}
	if c.Ranking.Shards < 1 {
		return fmt.Errorf("%w: ranking.shards must be at least 1, got %d", domain.ErrInvalidConfiguration, c.Ranking.Shards)
	}
	if c.Dataset.Dir == "" {
		return fmt.Errorf("%w: dataset.dir is required", domain.ErrInvalidConfiguration)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", domain.ErrInvalidConfiguration)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(dataDirEnv); v != "" {
		c.Dataset.Dir = v
	}

	if v := os.Getenv(topKEnv); v != "" {
		if k, err := strconv.Atoi(v); err != nil {
			log.Printf("config: invalid %s=%q: %v (keeping %d)", topKEnv, v, err, c.Ranking.TopK)
		} else {
			c.Ranking.TopK = k
		}
	}

	if v := os.Getenv(categoriesEnv); v != "" {
		var categories []string
		for _, cat := range strings.Split(v, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				categories = append(categories, cat)
			}
		}
		if len(categories) > 0 {
			c.Categories = categories
		}
	}
}

// explicitTopK reports the ranking.topK value only when the document sets
// it at all. Zero is a legal value (an empty ranking), so presence has to be
// distinguished from the int zero value the merge would otherwise discard.
func explicitTopK(raw []byte) *int {
	var probe struct {
		Ranking struct {
			TopK *int `yaml:"topK"`
		} `yaml:"ranking"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	return probe.Ranking.TopK
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Dataset.Dir != "" {
		base.Dataset.Dir = override.Dataset.Dir
	}
	if override.Dataset.BaseURL != "" {
		base.Dataset.BaseURL = override.Dataset.BaseURL
	}

	if override.Ranking.MalformedPolicy != "" {
		base.Ranking.MalformedPolicy = override.Ranking.MalformedPolicy
	}
	if override.Ranking.Shards != 0 {
		base.Ranking.Shards = override.Ranking.Shards
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		Dataset: DatasetConfig{
			Dir:     "dataset/amazon_reviews",
			BaseURL: "https://huggingface.co/datasets/McAuley-Lab/Amazon-Reviews-2023",
		},
		Ranking: RankingConfig{
			TopK:            10,
			MalformedPolicy: string(rank.PolicySkip),
			Shards:          1,
		},
		Scheduler:  SchedulerConfig{CronExpression: "", Timezone: defaultTimezone, location: tz},
		Categories: []string{"Electronics"},
	}
}
