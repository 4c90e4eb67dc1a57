// Command worker runs C8, the Worker/Scheduler: it consumes the dxf,
// gcode, drilling, and zip queues and drives each job through C2–C6.
// Wiring mirrors smilemakc-mbflow's cmd/server/main.go — config load,
// structured logger, bun/pgdriver connection, signal-driven graceful
// shutdown — retargeted from an HTTP server's ListenAndServe/Shutdown
// pair onto the worker's blocking Run/context-cancel pair.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/config"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/logging"
	"github.com/furnicam/furnicam/internal/queue"
	"github.com/furnicam/furnicam/internal/settings"
	"github.com/furnicam/furnicam/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info("starting furnicam worker")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.URL)))
	sqldb.SetMaxOpenConns(cfg.Database.MaxConnections)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxConnLifetime)
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := db.NewCreateTable().Model((*jobs.Job)(nil)).IfNotExists().Exec(ctx); err != nil {
		logger.Error("create jobs table failed", "error", err)
		os.Exit(1)
	}
	repo := jobs.NewBunRepository(db)

	q, err := queue.New(cfg.Redis)
	if err != nil {
		logger.Error("connect to redis failed", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	store, err := artifact.New(ctx, cfg.Storage)
	if err != nil {
		logger.Error("connect to object store failed", "error", err)
		os.Exit(1)
	}

	w := worker.New(q, repo, store, logger, settings.FactorySettings{})

	runErr := make(chan error, 1)
	go func() {
		runErr <- w.Run(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-runErr:
		if err != nil {
			logger.Error("worker loop exited with error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received, finishing in-flight job", "signal", sig.String())
		cancel()
		<-runErr
		logger.Info("worker stopped")
	}
}
