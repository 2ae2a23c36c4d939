// Command server runs the portfolio stress-testing and risk-analytics
// engine: an HTTP API over the scenario, Monte Carlo, backtest, risk and
// diversification services.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akentari/vigil/internal/config"
	"github.com/akentari/vigil/internal/database"
	"github.com/akentari/vigil/internal/modules/diversification"
	diversificationhandlers "github.com/akentari/vigil/internal/modules/diversification/handlers"
	"github.com/akentari/vigil/internal/modules/history"
	historyhandlers "github.com/akentari/vigil/internal/modules/history/handlers"
	"github.com/akentari/vigil/internal/modules/portfolio"
	portfoliohandlers "github.com/akentari/vigil/internal/modules/portfolio/handlers"
	"github.com/akentari/vigil/internal/modules/risk"
	riskhandlers "github.com/akentari/vigil/internal/modules/risk/handlers"
	"github.com/akentari/vigil/internal/modules/stress"
	stresshandlers "github.com/akentari/vigil/internal/modules/stress/handlers"
	"github.com/akentari/vigil/internal/reliability"
	"github.com/akentari/vigil/internal/server"
	"github.com/akentari/vigil/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)
	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("Starting vigil")

	// Storage
	archiveDB, err := database.Open(filepath.Join(cfg.DataDir, "archive.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open archive database")
	}
	defer archiveDB.Close()

	resultsDB, err := database.Open(filepath.Join(cfg.DataDir, "results.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer resultsDB.Close()

	repo, err := history.NewRepository(archiveDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init price history repository")
	}
	archive := history.NewArchive(repo, log)
	if err := archive.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load price archive")
	}

	journal, err := stress.NewJournal(resultsDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init result journal")
	}

	// Services
	registry := portfolio.NewRegistry(log)
	riskSvc := risk.NewService(registry, archive, cfg.RiskFreeRate, log)
	divSvc := diversification.NewService(registry, riskSvc, cfg.MaxConcentration, log)
	cache := stress.NewCache(cfg.CacheTTL, log)
	stressSvc := stress.NewService(registry, archive, riskSvc, divSvc, cache, journal, cfg.MonteCarloWorkers, log)

	// Scheduled jobs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		removed := cache.Prune()
		stats := cache.Stats()
		log.Info().Int("removed", removed).Int("entries", stats["entry_count"]).Msg("Pruned stress-test cache")
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache pruning")
	}

	if cfg.Snapshot.Enabled {
		s3Client, err := reliability.NewS3Client(context.Background(), cfg.Snapshot)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create snapshot client")
		}
		snapshots := reliability.NewSnapshotService(s3Client, cfg.DataDir, cfg.Snapshot.Prefix, cfg.Snapshot.KeepCount, log)
		if _, err := scheduler.AddFunc("0 3 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := snapshots.CreateAndUploadSnapshot(ctx); err != nil {
				log.Error().Err(err).Msg("Nightly snapshot failed")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule snapshots")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP surface
	srv := server.New(cfg.Port, log,
		portfoliohandlers.NewHandler(registry, log),
		historyhandlers.NewHandler(archive, log),
		riskhandlers.NewHandler(riskSvc, registry, log),
		diversificationhandlers.NewHandler(divSvc, log),
		stresshandlers.NewHandler(stressSvc, log),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown did not complete cleanly")
		}
	}
}
