package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"ProductRanker/internal/config"
	"ProductRanker/internal/infrastructure/dataset"
	"ProductRanker/internal/infrastructure/jsonl"
	"ProductRanker/internal/infrastructure/scheduler"
	"ProductRanker/internal/infrastructure/storage"
	"ProductRanker/internal/infrastructure/telegram"
	"ProductRanker/internal/logging"
	"ProductRanker/internal/ports"
	"ProductRanker/internal/rank"
	"ProductRanker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	pipeline   *usecase.Pipeline
	downloader *dataset.Downloader
	driver     ports.Scheduler
	db         *sql.DB
	logger     *slog.Logger
}

// New builds a runnable application instance. Configuration must already be
// validated; engine construction re-checks the ranking parameters anyway.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	policy, err := rank.ParsePolicy(cfg.Ranking.MalformedPolicy)
	if err != nil {
		return nil, err
	}

	engine, err := rank.NewEngine(cfg.Ranking.TopK, policy, cfg.Ranking.Shards,
		baseLogger.With("component", "engine"))
	if err != nil {
		return nil, err
	}

	app := &Application{
		cfg:    cfg,
		logger: baseLogger,
		downloader: dataset.NewDownloader(nil, cfg.Dataset.BaseURL,
			baseLogger.With("component", "downloader")),
	}

	var repository ports.RankingRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		app.db = db
		repository = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID)
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Opener:     jsonl.NewFileOpener(cfg.Dataset.Dir),
		Engine:     engine,
		Repository: repository,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	if cfg.Scheduler.CronExpression != "" {
		app.driver = scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	}

	return app, nil
}

// Download fetches the review files for every configured category into the
// local dataset layout. Files that already exist are re-downloaded; the
// upstream snapshots change and a stale file silently skews the ranking.
func (a *Application) Download(ctx context.Context) error {
	for _, category := range a.cfg.Categories {
		if _, err := a.downloader.FetchReviews(ctx, category, a.cfg.Dataset.Dir); err != nil {
			return fmt.Errorf("download %s: %w", category, err)
		}
	}
	return nil
}

// Run executes one ranking pass over the configured categories. With a cron
// expression configured it keeps re-running on schedule until ctx is
// cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.pipeline.RankAll(ctx, a.cfg.Categories); err != nil {
		return err
	}

	if a.driver == nil {
		return nil
	}

	sched := usecase.NewScheduler(a.driver, a.pipeline, a.cfg.Categories)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler running", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
