package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/config"
	"github.com/moedb/moedb-engine/pkg/database"
	"github.com/moedb/moedb-engine/pkg/handlers"
	"github.com/moedb/moedb-engine/pkg/ingest"
	"github.com/moedb/moedb-engine/pkg/llm"
	"github.com/moedb/moedb-engine/pkg/middleware"
	"github.com/moedb/moedb-engine/pkg/repositories"
	"github.com/moedb/moedb-engine/pkg/retry"
	"github.com/moedb/moedb-engine/pkg/scrape"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("oracle_provider", cfg.Oracle.Provider),
		zap.String("oracle_model", cfg.Oracle.Model),
		zap.String("database", cfg.Database.Database))

	ctx := context.Background()

	db, err := connectWithRetry(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	mux, err := buildRoutes(cfg, db, logger)
	if err != nil {
		logger.Fatal("Failed to build routes", zap.Error(err))
	}

	handler := middleware.CORS()(middleware.RequestLogger(logger)(mux))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting moedb-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// connectWithRetry rides out database restarts during deploys instead of
// crash-looping on startup.
func connectWithRetry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	return retry.DoWithResult(ctx, &retry.Config{
		MaxRetries:   5,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
	}, func() (*database.DB, error) {
		db, err := database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.URL(),
			MaxConnections: cfg.Database.MaxConnections,
		})
		if err != nil {
			logger.Warn("Database connection failed, retrying", zap.Error(err))
			return nil, err
		}
		return db, nil
	})
}

func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return database.RunMigrations(sqlDB, migrationsPath, logger)
}

func buildRoutes(cfg *config.Config, db *database.DB, logger *zap.Logger) (*http.ServeMux, error) {
	works := repositories.NewWorkRepository(db)
	characters := repositories.NewCharacterRepository(db)
	votes := repositories.NewVoteRepository(db)
	comments := repositories.NewCommentRepository(db)
	snapshots := repositories.NewSnapshotRepository(db)
	claims := repositories.NewClaimRepository(db)

	oracle, err := llm.NewOracle(&cfg.Oracle, logger)
	if err != nil {
		return nil, err
	}

	fetcher, err := scrape.NewClient(&scrape.ClientConfig{
		Endpoint:      cfg.Harvest.Endpoint,
		APIKey:        cfg.Harvest.APIKey,
		WaitForMillis: cfg.Harvest.WaitForMillis,
		Timeout:       time.Duration(cfg.Harvest.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}

	sources, err := scrape.LoadSources(cfg.Harvest.SourcesFile)
	if err != nil {
		return nil, err
	}

	harvester, err := scrape.NewHarvester(fetcher, sources,
		time.Duration(cfg.Harvest.TimeoutSeconds)*time.Second, logger)
	if err != nil {
		return nil, err
	}

	matcher := ingest.NewMatcher(works, logger)
	disambiguator := ingest.NewDisambiguator(oracle, logger)
	extractor := ingest.NewExtractor(oracle, logger)
	orchestrator := ingest.NewOrchestrator(
		matcher, disambiguator, harvester, extractor,
		works, characters, snapshots, claims,
		ingest.Config{
			DuplicateConfidenceThreshold: cfg.Ingest.DuplicateConfidenceThreshold,
			HarvestCharBudget:            cfg.Ingest.HarvestCharBudget,
			ClaimTTL:                     time.Duration(cfg.Ingest.ClaimTTLMinutes) * time.Minute,
		},
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewIngestHandler(matcher, disambiguator, orchestrator, logger).RegisterRoutes(mux)
	handlers.NewWorksHandler(works, characters, logger).RegisterRoutes(mux)
	handlers.NewVotesHandler(votes, logger).RegisterRoutes(mux)
	handlers.NewCommentsHandler(comments, logger).RegisterRoutes(mux)

	return mux, nil
}
