package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/videolabel-backend/internal/data/db"
	"github.com/yungbote/videolabel-backend/internal/modules/sync"
	"github.com/yungbote/videolabel-backend/internal/observability"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/envutil"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

func main() {
	// Logger
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "videolabel-sync",
		Environment: envutil.Str("APP_ENV", "development"),
		Version:     envutil.Str("APP_VERSION", "dev"),
	})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOtel(sctx)
	}()

	// Postgres
	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}

	// Desired state
	cfgPath := envutil.Str("SYNC_CONFIG", "sync.yaml")
	cfg, err := sync.LoadRunnerConfig(cfgPath)
	if err != nil {
		log.Fatal("runner config load failed", "error", err)
	}
	docs, err := cfg.LoadDocuments()
	if err != nil {
		log.Fatal("desired-state documents load failed", "error", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = sync.WorkersFromEnv()
	}

	deps := sync.BuildDeps(pg.DB(), log)
	pipeline := sync.NewPipeline(pg.DB(), deps.Journal, workers, log)
	syncers := sync.BuildSyncers(docs, deps)

	log.Info("starting sync run",
		"batch_id", pipeline.BatchID().String(),
		"kinds", len(syncers),
		"workers", workers)
	report := pipeline.Run(ctx, syncers)

	// Global admins hold the admin role on every non-archived project; the
	// desired-state documents never have to spell those assignments out.
	if granted, err := deps.RoleSvc.SyncAdminRoles(dbctx.Context{Ctx: ctx}); err != nil {
		log.Error("admin role sync failed", "error", err)
	} else if granted > 0 {
		log.Info("implicit admin roles granted", "count", granted)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Error("report encode failed", "error", err)
	} else {
		fmt.Println(string(out))
	}

	if !report.Clean() {
		log.Error("sync run finished with failures")
		os.Exit(1)
	}
	log.Info("sync run clean")
}
