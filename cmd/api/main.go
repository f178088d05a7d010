package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/atencion-digital/tramites-bot/internal/actions"
	"github.com/atencion-digital/tramites-bot/internal/api/router"
	"github.com/atencion-digital/tramites-bot/internal/catalog"
	"github.com/atencion-digital/tramites-bot/internal/citizens"
	appconfig "github.com/atencion-digital/tramites-bot/internal/config"
	"github.com/atencion-digital/tramites-bot/internal/conversation"
	"github.com/atencion-digital/tramites-bot/internal/directory"
	"github.com/atencion-digital/tramites-bot/internal/faq"
	"github.com/atencion-digital/tramites-bot/internal/observability/metrics"
	"github.com/atencion-digital/tramites-bot/internal/tickets"
	"github.com/atencion-digital/tramites-bot/internal/turnos"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

func main() {
	// Load .env if present; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting tramites-bot server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	actionMetrics := metrics.NewActionMetrics(registry)
	directoryMetrics := metrics.NewDirectoryMetrics(registry)

	// Conversation core talks to this same API over HTTP, the way the
	// dialogue engine's action server does in production.
	directoryClient := directory.NewClient(
		cfg.DirectoryBaseURL,
		cfg.DirectoryAPIKey,
		cfg.DirectoryTimeout,
		logger.With("component", "directory"),
		directoryMetrics,
	)

	sessionStore := conversation.NewSessionStore(redisClient, cfg.SessionTTL)
	validator := conversation.NewFormValidator(directoryClient, logger.With("component", "validator"))
	orchestrator := conversation.NewOrchestrator(directoryClient, logger.With("component", "orchestrator"), actionMetrics)
	faqTable := faq.NewTable(faq.DefaultEntries())

	actionsHandler := actions.NewHandler(
		sessionStore,
		validator,
		orchestrator,
		faqTable,
		actionMetrics,
		logger.With("component", "actions"),
	)

	routerCfg := &router.Config{
		Logger:             logger,
		CitizensHandler:    citizens.NewHandler(citizens.NewPostgresRepository(pool), logger),
		CatalogHandler:     catalog.NewHandler(catalog.NewPostgresRepository(pool), logger),
		TicketsHandler:     tickets.NewHandler(tickets.NewPostgresRepository(pool), logger),
		TurnosHandler:      turnos.NewHandler(turnos.NewPostgresRepository(pool), logger),
		ActionsHandler:     actionsHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		WebhookRateLimit:   5,
		WebhookBurst:       10,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
