package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/matchpulse/ingest/external/fightapi"
	"github.com/matchpulse/ingest/external/footballapi"
	"github.com/matchpulse/ingest/internal/config"
	"github.com/matchpulse/ingest/internal/domain/backfill"
	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
	cacherepo "github.com/matchpulse/ingest/internal/infrastructure/repository/cache"
	"github.com/matchpulse/ingest/internal/infrastructure/repository/memory"
	"github.com/matchpulse/ingest/internal/infrastructure/repository/postgres"
	"github.com/matchpulse/ingest/internal/interfaces/httpapi"
	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/platform/quota"
	"github.com/matchpulse/ingest/internal/platform/resilience"
	"github.com/matchpulse/ingest/internal/usecase"
)

// Application bundles everything the entrypoint needs to run and to shut
// down cleanly.
type Application struct {
	Server *http.Server
	DB     *sqlx.DB
	Jobs   *usecase.JobRunner
}

func NewApplication(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		db          *sqlx.DB
		eventRepo   event.Repository
		outcomeRepo backfill.Repository
		rawRepo     rawdata.Repository
		quotaStore  quota.Store
	)

	if cfg.DBURL == "" {
		logger.Warn("DB_URL empty, using in-memory repositories")
		eventRepo = memory.NewEventRepository()
		outcomeRepo = memory.NewBackfillRepository()
		rawRepo = memory.NewRawDataRepository()
		quotaStore = memory.NewQuotaStore()
	} else {
		var err error
		db, err = openDB(cfg)
		if err != nil {
			return nil, err
		}
		eventRepo = postgres.NewEventRepository(db)
		outcomeRepo = postgres.NewBackfillRepository(db)
		rawRepo = postgres.NewRawDataRepository(db)
		quotaStore = postgres.NewQuotaRepository(db)
	}

	// Status derives backfill progress from group counts on every call. A
	// short TTL keeps repeated operator polls off the store.
	eventRepo = cacherepo.NewEventRepository(eventRepo, 30*time.Second)

	footballGovernor := quota.NewGovernor(quota.GovernorConfig{
		Provider:       "football-api",
		Ceiling:        cfg.FootballDailyCeiling,
		Window:         quota.WindowDaily,
		CallsPerSecond: cfg.FootballCallsPerSecond,
		Burst:          cfg.FootballBurst,
		Store:          quotaStore,
		Logger:         logger,
	})
	fightGovernor := quota.NewGovernor(quota.GovernorConfig{
		Provider:       "fight-api",
		Ceiling:        cfg.FightMonthlyCeiling,
		Window:         quota.WindowMonthly,
		CallsPerSecond: cfg.FightCallsPerSecond,
		Burst:          cfg.FightBurst,
		Store:          quotaStore,
		Logger:         logger,
	})
	if err := footballGovernor.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate football quota: %w", err)
	}
	if err := fightGovernor.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate fight quota: %w", err)
	}

	footballClient := footballapi.NewClient(footballapi.ClientConfig{
		BaseURL:  cfg.FootballAPIBaseURL,
		APIKey:   cfg.FootballAPIKey,
		Timeout:  cfg.FootballAPITimeout,
		Logger:   logger,
		Governor: footballGovernor,
		Breaker: resilience.BreakerConfig{
			Enabled:          cfg.FootballCircuitEnabled,
			FailureThreshold: cfg.FootballCircuitFailureCount,
			OpenTimeout:      cfg.FootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballCircuitHalfOpenMaxReq,
		},
	})
	fightClient := fightapi.NewClient(fightapi.ClientConfig{
		BaseURL:         cfg.FightAPIBaseURL,
		APIKey:          cfg.FightAPIKey,
		Timeout:         cfg.FightAPITimeout,
		Threshold:       cfg.FightFallbackThreshold,
		KnownEventDates: cfg.FightKnownEventDates,
		Logger:          logger,
		Governor:        fightGovernor,
		Breaker: resilience.BreakerConfig{
			Enabled:          cfg.FightCircuitEnabled,
			FailureThreshold: cfg.FightCircuitFailureCount,
			OpenTimeout:      cfg.FightCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FightCircuitHalfOpenMaxReq,
		},
	})

	ingestion := usecase.NewIngestionService(eventRepo, rawRepo, logger)
	backfillSvc := usecase.NewBackfillService(
		usecase.BackfillConfig{
			Competitions:   cfg.BackfillCompetitions,
			Seasons:        cfg.BackfillSeasons,
			PacingInterval: cfg.BackfillPacingInterval,
		},
		footballClient,
		ingestion,
		eventRepo,
		outcomeRepo,
		footballGovernor,
		logger,
	)
	liveSyncSvc := usecase.NewLiveSyncService(
		usecase.LiveSyncConfig{
			Window:    cfg.LiveSyncWindow,
			MaxProbes: cfg.LiveSyncMaxProbes,
		},
		eventRepo,
		footballClient,
		footballGovernor,
		logger,
	)
	fightSyncSvc := usecase.NewFightSyncService(fightClient, ingestion, fightGovernor, logger)

	jobs, err := usecase.NewJobRunner(logger)
	if err != nil {
		closeDB(db, logger)
		return nil, fmt.Errorf("create job runner: %w", err)
	}

	handler := httpapi.NewHandler(backfillSvc, liveSyncSvc, fightSyncSvc, jobs, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		jobs.Release()
		closeDB(db, logger)
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		Server: server,
		DB:     db,
		Jobs:   jobs,
	}, nil
}

// Close releases background workers and the database pool. The HTTP server
// is shut down by the entrypoint before Close is called.
func (a *Application) Close(logger *logging.Logger) {
	if a == nil {
		return
	}
	if a.Jobs != nil {
		a.Jobs.Release()
	}
	closeDB(a.DB, logger)
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinaryResult)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}

func closeDB(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := db.Close(); err != nil {
		logger.Error("close db", "error", err)
	}
}
