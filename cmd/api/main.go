package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dvloznov/posto-dashboard/internal/api"
	"github.com/dvloznov/posto-dashboard/internal/app"
	"github.com/dvloznov/posto-dashboard/internal/config"
	"github.com/dvloznov/posto-dashboard/internal/jobs"
	"github.com/dvloznov/posto-dashboard/internal/jobs/inmemory"
	"github.com/dvloznov/posto-dashboard/internal/logger"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to an optional config file")
		port       = flag.String("port", "", "HTTP server port (overrides server.port)")
	)
	flag.Parse()

	// Amounts go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	ctx := logger.WithContext(context.Background(), log)

	rt, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build dashboard service")
	}
	defer rt.Close()

	// An unreachable source at startup is not fatal; POST /api/reload retries.
	if err := rt.Service.Reload(ctx); err != nil {
		log.Error().Err(err).Msg("Initial load failed")
	}

	jobStore := inmemory.NewStore()
	var (
		publisher jobs.Publisher
		jobQueue  *inmemory.Queue
	)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if rt.Storage != nil {
		jobQueue = inmemory.NewQueue(inmemory.Options{
			BufferSize: cfg.Jobs.BufferSize,
			Workers:    cfg.Jobs.Workers,
			MaxRetries: cfg.Jobs.MaxRetries,
		}, jobStore)
		if err := jobQueue.Start(workerCtx, rt.Service.RunExportJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to start job queue")
		}
		publisher = jobQueue
	}

	handler := api.NewRouter(api.Deps{
		Service:   rt.Service,
		JobStore:  jobStore,
		Publisher: publisher,
		Log:       log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("source", rt.Source.Name()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if jobQueue != nil {
		if err := jobQueue.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping job queue")
		}
		cancelWorker()
		if err := jobQueue.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close job queue")
		}
	}

	log.Info().Msg("Server exited")
}
