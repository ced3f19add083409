/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env / environment, then apply command-line flags
  2. Build the zap logger
  3. Open the store (SQLite or PostgreSQL)
  4. Create calculator, API handler and router
  5. Start the period-close job if scheduled
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  -env     .env file to load (default: .env if present)
  -port    HTTP server port (APP_PORT, default: 8080)
  -driver  sqlite or postgres (DB_DRIVER, default: sqlite)
  -db      SQLite database path (DB_PATH, default: payroll.db)
           Use ":memory:" for in-memory database
  -dsn     PostgreSQL DSN (DATABASE_URL)

OTHER ENVIRONMENT:
  LOG_LEVEL, CORS_ORIGINS, REPORT_CRON, REPORT_PERIOD, EXPORT_DIR

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the period-close job
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/payroll.db"
  ./server -db=":memory:" -port=3000
  ./server -driver=postgres -dsn="postgres://localhost/payroll?sslmode=disable"

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/logger"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/scheduler"
	"github.com/warp/payroll-engine/store/postgres"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	// Flags
	envFile := flag.String("env", "", "Path to .env file")
	port := flag.Int("port", 0, "HTTP server port (overrides APP_PORT)")
	driver := flag.String("driver", "", "Storage driver: sqlite or postgres (overrides DB_DRIVER)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(logger.New(cfg.Log.Level))
	defer log.Sync()

	// Initialize store
	store, err := openStore(cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer store.Close()

	// Initialize handler
	calc := payroll.NewCalculator(store, payroll.WithLogger(logger.Named(log, "payroll")))
	handler := api.NewHandler(store, calc, logger.Named(log, "api"))

	// Period-close job
	if cfg.Reporting.CronSchedule != "" {
		closer := scheduler.NewPeriodCloser(
			payroll.NewCalculator(store, payroll.WithLogger(logger.Named(log, "payroll")), payroll.WithSkipFailures()),
			scheduler.Options{Kind: cfg.Reporting.Period, ExportDir: cfg.Reporting.ExportDir},
			logger.Named(log, "scheduler"),
		)
		if err := closer.Start(cfg.Reporting.CronSchedule); err != nil {
			log.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer closer.Stop()
		handler.Closer = closer
	}

	// Create router
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("driver", cfg.Database.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped")
}

func openStore(cfg config.DatabaseConfig) (payroll.Store, error) {
	if cfg.Driver == config.DriverPostgres {
		s, err := postgres.New(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
