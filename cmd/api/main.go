package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/bootstrap"
	"github.com/BruksfildServices01/opsdesk/internal/config"
	dbpkg "github.com/BruksfildServices01/opsdesk/internal/db"
	"github.com/BruksfildServices01/opsdesk/internal/infra/memory"
	"github.com/BruksfildServices01/opsdesk/internal/infra/repository"
	"github.com/BruksfildServices01/opsdesk/internal/logger"
	"github.com/BruksfildServices01/opsdesk/internal/notify"
	"github.com/BruksfildServices01/opsdesk/internal/routes"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// STORE
	// ======================================================
	var gw *store.Gateway
	switch cfg.StoreDriver {
	case config.DriverMemory:
		zl.Warn("using in-memory store; data is lost on restart")
		gw = memory.NewGateway()
	default:
		db, err := dbpkg.NewDB(cfg, zl)
		if err != nil {
			return err
		}
		gw = repository.NewGateway(db, cfg.StoreTimeout, zl)
	}

	// ======================================================
	// NOTIFICATIONS
	// ======================================================
	var bus notify.Bus = notify.NewHub(32)
	if cfg.RedisURL != "" {
		client, err := notify.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		bus = notify.NewRedisBus(client, zl)
	}

	policy, err := notify.ParseBroadcastPolicy(cfg.BroadcastPolicy)
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(cfg.NotifyQueueSize, cfg.NotifyWorkers, cfg.NotifyTimeout, zl)
	engine := notify.NewEngine(gw, dispatcher, bus, policy, zl)
	recorder := audit.NewRecorder(gw.AuditLogs, zl, engine)

	if cfg.BootstrapAdminUsername != "" {
		if _, err := bootstrap.EnsureAdmin(ctx, gw, recorder, cfg.EmailDomain,
			cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword, zl); err != nil {
			return err
		}
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	closing := make(chan struct{})
	routes.RegisterRoutes(r, routes.Deps{
		Gateway:  gw,
		Recorder: recorder,
		Engine:   engine,
		Bus:      bus,
		Config:   cfg,
		Log:      zl,
		Closing:  closing,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// event streams never go idle, so Shutdown would wait on them forever
	srv.RegisterOnShutdown(func() { close(closing) })

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server running", zap.String("addr", cfg.Addr()), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}

	// Shutdown may have used up shutdownCtx
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDrain()
	if err := dispatcher.Close(drainCtx); err != nil {
		zl.Warn("notification queue not drained", zap.Error(err))
	}
	return nil
}
