package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-study/internal/api"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/domain/stats"
	"github.com/phrazzld/scry-study/internal/events"
	"github.com/phrazzld/scry-study/internal/platform/memory"
	"github.com/phrazzld/scry-study/internal/platform/metrics"
	"github.com/phrazzld/scry-study/internal/platform/sqldb"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const driverMemory = "memory"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory driver.
	db *sql.DB

	cardStore    store.CardStore
	deckStore    store.DeckStore
	sessionStore store.SessionStore
	reviewLog    store.ReviewLog

	registry     *prometheus.Registry
	studyService study.StudyService
	cardService  service.CardService
}

// newApplication wires stores, scheduler, events and services from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.openStores(ctx); err != nil {
		return nil, err
	}

	params := srs.NewParams(cfg.SRS)
	scheduler, err := srs.NewScheduler(params)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	if cfg.Server.MetricsEnabled {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		emitter.RegisterHandler(metrics.New(app.registry))
	}

	tz := stats.ParseTimezone(cfg.Study.Timezone)
	app.studyService, err = study.NewStudyService(
		app.cardStore,
		app.deckStore,
		app.sessionStore,
		app.reviewLog,
		scheduler,
		study.WithLogger(logger),
		study.WithEmitter(emitter),
		study.WithAggregator(stats.NewAggregator(tz)),
		study.WithDefaultReviewLimit(cfg.Study.DefaultReviewLimit),
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	app.cardService, err = service.NewCardService(app.cardStore, app.deckStore, study.SystemClock{}.Now, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	logger.Info("application initialized",
		slog.Bool("metrics_enabled", cfg.Server.MetricsEnabled),
		slog.Float64("min_ease", params.MinEase),
		slog.Float64("max_ease", params.MaxEase))
	return app, nil
}

// openStores selects the store implementation for the configured driver.
func (app *application) openStores(ctx context.Context) error {
	cfg := app.config.Database

	if cfg.Driver == driverMemory {
		reviews := memory.NewReviewLog()
		app.cardStore = memory.NewCardStore(reviews, app.logger)
		app.deckStore = memory.NewDeckStore()
		app.sessionStore = memory.NewSessionStore()
		app.reviewLog = reviews
		app.logger.Warn("using in-memory stores; study data is lost on exit")
		return nil
	}

	db, dialect, err := sqldb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	app.db = db

	if cfg.AutoMigrate {
		migrator, err := sqldb.NewMigrator(db, dialect, app.logger)
		if err != nil {
			app.cleanup()
			return err
		}
		if err := migrator.Up(ctx); err != nil {
			app.cleanup()
			return err
		}
	}

	stores := sqldb.NewStores(db, dialect, app.logger)
	app.cardStore = stores.Cards
	app.deckStore = stores.Decks
	app.sessionStore = stores.Sessions
	app.reviewLog = stores.Reviews

	app.logger.Info("database connection established", slog.String("dialect", string(dialect)))
	return nil
}

// router builds the HTTP handler for the application.
func (app *application) router() http.Handler {
	cfg := api.RouterConfig{
		Study:  app.studyService,
		Cards:  app.cardService,
		Logger: app.logger,
		Ready:  app.ready,
	}
	if app.registry != nil {
		cfg.Metrics = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})
	}
	return api.NewRouter(cfg)
}

// ready reports whether the database is reachable.
func (app *application) ready(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.router()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}
}
