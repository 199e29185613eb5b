package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/bistpulse/config"
	"github.com/guttosm/bistpulse/internal/app"
	"github.com/guttosm/bistpulse/internal/export"
	"github.com/guttosm/bistpulse/internal/fetch"
	"github.com/guttosm/bistpulse/internal/logger"
	"github.com/guttosm/bistpulse/internal/pipeline"
	"github.com/guttosm/bistpulse/internal/scheduler"
	"github.com/guttosm/bistpulse/internal/storage"
	"github.com/guttosm/bistpulse/internal/tickers"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runExtract performs one full extraction for the given window and writes
// the run files plus the database rows. Returns the pipeline error, if any.
func runExtract(ctx context.Context, cfg config.Config, rng, interval string) error {
	db, err := app.InitSQLite(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repo := storage.NewPricesRepository(db)
	client := fetch.NewClient(time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second)
	exporter := export.NewFileExporter(cfg.Output.Dir, cfg.Output.Prefix)

	runner := pipeline.NewRunner(
		client,
		exporter,
		repo,
		tickers.BIST100(),
		time.Duration(cfg.Fetch.SleepMinMS)*time.Millisecond,
		time.Duration(cfg.Fetch.SleepMaxMS)*time.Millisecond,
	)

	res, err := runner.Run(ctx, pipeline.Params{Range: rng, Interval: interval})
	if res != nil {
		logger.L().Info().
			Str("run_id", res.Run.ID).
			Int("requested", res.Stats.Requested).
			Int("succeeded", res.Stats.Succeeded).
			Int("failed", res.Stats.Failed()).
			Int("rows", res.Run.RowCount).
			Str("csv", res.Export.CSVPath).
			Str("xlsx", res.Export.XLSXPath).
			Msg("extraction finished")
	}
	return err
}

// main is the entry point of the bistpulse application.
//
// Modes (selected via --mode flag):
//   - extract:  Downloads BIST100 bars, writes CSV/XLSX files, and upserts into SQLite.
//   - serve:    Starts the REST API exposing summaries over the stored bars.
//   - schedule: Runs extract on a cron schedule until interrupted.
//
// Flags:
//   - --mode:         Execution mode ("extract", "serve", or "schedule"). Default: "extract".
//   - --range:        Lookback window, e.g. "60d", "1y", "max". Default: "60d".
//   - --interval:     Bar interval, e.g. "1d", "30m". Default: "30m".
//   - --db-path:      SQLite file path. Defaults to value from config (DB_PATH).
//   - --out-dir:      Directory for run files. Defaults to value from config (OUT_DIR).
//   - --prefix:       Run file name prefix. Defaults to value from config (OUTPUT_PREFIX).
//   - --sleep-min-ms: Minimum pause between symbols. Defaults to SLEEP_MIN_MS.
//   - --sleep-max-ms: Maximum pause between symbols. Defaults to SLEEP_MAX_MS.
//   - --port:         Port for serve mode. Defaults to SERVER_PORT.
//   - --cron:         Cron spec (with seconds) for schedule mode. Default: daily at 18:30.
func main() {
	ctx := context.Background()

	config.LoadConfig()

	logger.Init()

	mode := flag.String("mode", "extract", "Mode: extract, serve, or schedule")
	rng := flag.String("range", "60d", "Lookback window (e.g. 60d, 1y, max)")
	interval := flag.String("interval", "30m", "Bar interval (e.g. 1d, 30m)")
	dbPath := flag.String("db-path", config.AppConfig.Database.Path, "SQLite file path")
	outDir := flag.String("out-dir", config.AppConfig.Output.Dir, "Directory for CSV/XLSX output")
	prefix := flag.String("prefix", config.AppConfig.Output.Prefix, "Run file name prefix")
	sleepMin := flag.Int("sleep-min-ms", config.AppConfig.Fetch.SleepMinMS, "Minimum pause between symbols (ms)")
	sleepMax := flag.Int("sleep-max-ms", config.AppConfig.Fetch.SleepMaxMS, "Maximum pause between symbols (ms)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for serve mode")
	cronSpec := flag.String("cron", "0 30 18 * * *", "Cron spec for schedule mode (six fields, with seconds)")
	flag.Parse()

	// Flags override config for this invocation.
	config.AppConfig.Database.Path = *dbPath
	config.AppConfig.Output.Dir = *outDir
	config.AppConfig.Output.Prefix = *prefix
	config.AppConfig.Fetch.SleepMinMS = *sleepMin
	config.AppConfig.Fetch.SleepMaxMS = *sleepMax

	switch *mode {
	case "extract":
		if *rng == "" || *interval == "" {
			logger.L().Fatal().Msg("--range and --interval must not be empty")
		}
		logger.L().Info().Str("range", *rng).Str("interval", *interval).Msg("running extraction")

		if err := runExtract(ctx, config.AppConfig, *rng, *interval); err != nil {
			logger.L().Fatal().Err(err).Msg("extraction failed")
		}
		logger.L().Info().Msg("extraction completed successfully")

	case "serve":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "schedule":
		logger.L().Info().Str("cron", *cronSpec).Msg("starting scheduled extraction")

		cfg := config.AppConfig
		sched := scheduler.New(ctx)
		err := sched.Register(*cronSpec, func(jobCtx context.Context) error {
			return runExtract(jobCtx, cfg, *rng, *interval)
		})
		if err != nil {
			logger.L().Fatal().Err(err).Msg("invalid cron spec")
		}
		sched.Start()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		sched.Stop()
		logger.L().Info().Msg("scheduler exited gracefully")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
