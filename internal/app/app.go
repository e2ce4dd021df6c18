package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/jakobng/showtimes/internal/cache"
	"github.com/jakobng/showtimes/internal/config"
	"github.com/jakobng/showtimes/internal/enrich"
	"github.com/jakobng/showtimes/internal/infrastructure/notify"
	"github.com/jakobng/showtimes/internal/infrastructure/storage"
	"github.com/jakobng/showtimes/internal/infrastructure/tmdb"
	"github.com/jakobng/showtimes/internal/infrastructure/venues"
	"github.com/jakobng/showtimes/internal/logging"
	"github.com/jakobng/showtimes/internal/normalize"
	"github.com/jakobng/showtimes/internal/ports"
	"github.com/jakobng/showtimes/internal/scraper"
	"github.com/jakobng/showtimes/internal/usecase"
)

// Application wires configs to the pipeline and its collaborators.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
	store    *cache.Store
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := scraper.NewRegistry()
	registry.Register(venues.NewHomeMCRScraper(nil))
	registry.Register(venues.NewSavoyScraper(nil))

	sources, err := scraper.BindSources(registry, cfg.Venues)
	if err != nil {
		return nil, fmt.Errorf("bind sources: %w", err)
	}

	store := cache.NewStore(cfg.Output.CachePath)
	if err := store.Load(); err != nil {
		// A broken cache only costs lookups; the run proceeds cold.
		baseLogger.Error("cache load failed, starting with empty cache", "error", err)
	}
	if cfg.TMDB.RefreshNegatives {
		dropped := store.DropNegatives()
		baseLogger.Info("negative cache entries dropped for retry", "count", dropped)
	}

	var enricher *enrich.Enricher
	if cfg.TMDB.APIKey != "" {
		enricher = enrich.New(
			tmdb.New(cfg.TMDB),
			store,
			logging.Component(baseLogger, "enrich"),
			enrich.Options{
				Parallelism:    cfg.TMDB.Parallelism,
				ScoreThreshold: cfg.TMDB.ScoreThreshold,
			},
		)
	} else {
		baseLogger.Warn("no TMDB api key configured; metadata enrichment disabled")
	}

	var datasetStore ports.DatasetStore
	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		datasetStore = storage.NewPostgresRepository(db)
	} else {
		datasetStore = storage.NewFileStore(cfg.Output.DatasetPath)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:     sources,
		Normalizer:  normalize.New(cfg.Run.Location()),
		Enricher:    enricher,
		Cache:       store,
		Store:       datasetStore,
		Notifier:    notify.NewReportLogger(logging.Component(baseLogger, "report")),
		Logger:      logging.Component(baseLogger, "pipeline"),
		Concurrency: cfg.Run.Concurrency,
		Timeout:     cfg.Run.TimeoutDuration(),
		Location:    cfg.Run.Location(),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		db:       db,
		store:    store,
	}, nil
}

// Run performs a single aggregation run.
func (a *Application) Run(ctx context.Context) error {
	defer a.Close()

	report, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if report.HasFailures {
		a.logger.Warn("run finished with source failures", "failed", len(report.Failures()))
	}
	return nil
}

// Close releases held resources.
func (a *Application) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
