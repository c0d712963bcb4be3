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

	"github.com/Changwoon-overview/Socialtalk/internal/app"
	"github.com/Changwoon-overview/Socialtalk/internal/config"
	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"
	"github.com/Changwoon-overview/Socialtalk/internal/infra/queue"
	"github.com/Changwoon-overview/Socialtalk/internal/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	components, err := app.Build(cfg, reg)
	if err != nil {
		slog.Error("failed to initialize dispatch core", "error", err)
		os.Exit(1)
	}
	defer components.Close()

	// Async intake needs Redis; without it only synchronous dispatch is served.
	var enqueuer notification.Enqueuer
	if cfg.Redis.Address != "" {
		asynqClient := queue.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		defer asynqClient.Close()
		enqueuer = queue.NewEnqueuer(asynqClient)
		slog.Info("asynq client initialized", "redis", cfg.Redis.Address)
	}

	// Service
	notificationService := notification.NewService(components.Dispatcher, components.Store, components.Log, enqueuer)

	// Handler
	notificationHandler := notification.NewHandler(notificationService)

	// Router
	r := router.New(cfg, notificationHandler, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	// Synchronous dispatch may wait on two channel calls per recipient.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}
