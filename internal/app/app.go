package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"github.com/yudhapane/fpl-oracle/external/fplapi"
	"github.com/yudhapane/fpl-oracle/external/oddsfeed"
	"github.com/yudhapane/fpl-oracle/external/statsnap"
	"github.com/yudhapane/fpl-oracle/internal/config"
	"github.com/yudhapane/fpl-oracle/internal/domain/rawdata"
	"github.com/yudhapane/fpl-oracle/internal/domain/scoring"
	"github.com/yudhapane/fpl-oracle/internal/domain/transfer"
	"github.com/yudhapane/fpl-oracle/internal/infrastructure/repository/postgres"
	"github.com/yudhapane/fpl-oracle/internal/interfaces/httpapi"
	"github.com/yudhapane/fpl-oracle/internal/platform/cache"
	"github.com/yudhapane/fpl-oracle/internal/platform/logging"
	"github.com/yudhapane/fpl-oracle/internal/platform/resilience"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

// NewHTTPServer wires the full dependency graph and returns the API server
// plus a cleanup releasing whatever resources were opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store := cache.NewStore()

	provider := fplapi.NewClient(fplapi.ClientConfig{
		BaseURL:    cfg.FPLBaseURL,
		Timeout:    cfg.FPLTimeout,
		MaxRetries: cfg.FPLMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
	})

	var (
		db       *sqlx.DB
		archiver rawdata.Archiver
	)
	if cfg.ArchiveEnabled {
		opened, err := otelsqlx.Connect("postgres", cfg.DBURL,
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect archive database: %w", err)
		}
		db = opened
		archiver = postgres.NewRawPayloadRepository(db)
		logger.Info("raw payload archive enabled", "database", dbNameFromURL(cfg.DBURL))
	}

	snapshotSvc := usecase.NewSnapshotService(provider, store, archiver, logger, usecase.SnapshotServiceConfig{
		StaticTTL: cfg.StaticCacheTTL,
		LiveTTL:   cfg.LiveCacheTTL,
		FormEpoch: cfg.FormRefreshInterval,
	})

	var csProvider usecase.CleanSheetProbabilityProvider
	if cfg.StatsnapEnabled {
		csProvider = statsnap.NewClient(statsnap.ClientConfig{
			BaseURL: cfg.StatsnapBaseURL,
			Timeout: cfg.StatsnapTimeout,
			Logger:  logger,
		})
	}

	var goalProvider usecase.GoalProbabilityProvider
	if cfg.OddsfeedEnabled {
		goalProvider = oddsfeed.NewClient(oddsfeed.ClientConfig{
			BaseURL: cfg.OddsfeedBaseURL,
			Timeout: cfg.OddsfeedTimeout,
			Logger:  logger,
		})
	}

	predictionSvc := usecase.NewPredictionService(
		snapshotSvc,
		store,
		scoring.DefaultCoefficients(),
		csProvider,
		goalProvider,
		logger,
		usecase.PredictionServiceConfig{
			MetricsTTL: cfg.MetricsCacheTTL,
			LiveTTL:    cfg.LiveCacheTTL,
		},
	)

	transferSvc := usecase.NewTransferService(
		snapshotSvc,
		predictionSvc,
		transfer.DefaultRules(),
		logger,
		usecase.TransferServiceConfig{Workers: cfg.TransferWorkers},
	)

	handler := httpapi.NewHandler(snapshotSvc, predictionSvc, transferSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func() error {
		if db != nil {
			return db.Close()
		}
		return nil
	}

	return server, cleanup, nil
}
