package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/zerostrike/internal/api"
	"github.com/mr1hm/zerostrike/internal/config"
	internalgrpc "github.com/mr1hm/zerostrike/internal/grpc"
	"github.com/mr1hm/zerostrike/internal/ingestion"
	"github.com/mr1hm/zerostrike/internal/logging"
	"github.com/mr1hm/zerostrike/internal/repository"
	"github.com/mr1hm/zerostrike/internal/risk"
	"github.com/mr1hm/zerostrike/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "upstream", cfg.Upstream.URL)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	data, err := seed.Load()
	if err != nil {
		logging.Fatalf("Failed to load seed data: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Layer updates fan out to gRPC stream subscribers
	broadcaster := internalgrpc.NewBroadcaster()
	store := ingestion.NewStore(broadcaster)

	var source ingestion.Source = ingestion.NewAPIClient(cfg.Upstream.URL, cfg.Upstream.Timeout)
	var engine *ingestion.EngineSource
	if cfg.Upstream.URL == "" && cfg.Engine.Enabled {
		engineCfg := risk.DefaultConfig()
		engineCfg.ResolutionDeg = cfg.Engine.ResolutionDeg
		engineCfg.HorizonHours = cfg.Engine.HorizonHours
		engineCfg.ThreatThreshold = cfg.Engine.Threshold

		engine = ingestion.NewEngineSource(
			risk.NewEngine(engineCfg, risk.NewSyntheticProvider(cfg.Engine.Seed), risk.ValenciaBBox, risk.ValenciaLand),
			data.Drones,
		)
		source = engine
		slog.Info("using built-in risk engine", "resolution_deg", engineCfg.ResolutionDeg, "horizon_hours", engineCfg.HorizonHours)
	}

	mgr := ingestion.NewManager(cfg, source, store, db, db)
	if err := mgr.WarmStart(ctx); err != nil {
		logging.Fatalf("Failed to initialize store: %v", err)
	}
	if err := mgr.Start(ctx); err != nil {
		logging.Fatalf("Failed to start ingestion: %v", err)
	}

	grpcServer := internalgrpc.NewServer(store, data, broadcaster)
	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(store, data, db)
	if engine != nil {
		handler.WithRoutes(engine)
	}
	router := api.NewRouter(handler, cfg.Server.RateLimitRPS)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close() // Close all streams gracefully
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
