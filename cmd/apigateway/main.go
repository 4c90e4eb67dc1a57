// Command apigateway runs C10, the Pipeline API: it exposes
// submit_dxf/submit_gcode/submit_drilling/submit_zip, get_job, and
// get_artifact_download over HTTP for the external API-gateway
// collaborator to call. Wiring mirrors cmd/worker's — config load,
// structured logger, bun/pgdriver connection, Redis queue, object
// store, signal-driven graceful shutdown — retargeted onto gin's
// ListenAndServe/Shutdown pair via internal/pipeline.Server.
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
	"github.com/furnicam/furnicam/internal/pipeline"
	"github.com/furnicam/furnicam/internal/queue"
	"github.com/furnicam/furnicam/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info("starting furnicam pipeline API")

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

	svc := pipeline.New(repo, q, store, settings.FactorySettings{}, logger)
	server := pipeline.NewServer(svc, logger, cfg.Server.Port, cfg.Server.ShutdownTimeout)

	runErr := make(chan error, 1)
	go func() {
		runErr <- server.Run(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-runErr:
		if err != nil {
			logger.Error("pipeline API exited with error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received, draining in-flight requests", "signal", sig.String())
		cancel()
		<-runErr
		logger.Info("pipeline API stopped")
	}
}
