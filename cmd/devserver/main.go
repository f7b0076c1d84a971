package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/openpress/quill/internal/config"
	"github.com/openpress/quill/internal/devserver"
)

func main() {
	cfg, err := config.LoadDevServer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting Quill fixture API server", zap.String("env", cfg.Env))

	// Accounts live in memory unless a database URL is configured
	var accounts devserver.AccountStore
	if cfg.DatabaseURL != "" {
		pg, err := devserver.NewPostgresAccountStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pg.Close()
		logger.Info("Connected to PostgreSQL")
		accounts = pg
	} else {
		accounts = devserver.NewMemoryAccountStore()
	}

	// Refresh-token revocation is optional
	var denylist *devserver.Denylist
	if cfg.RedisURL != "" {
		denylist, err = devserver.NewDenylist(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer denylist.Close()
		logger.Info("Connected to Redis")
	}

	srv := devserver.NewServer(cfg, accounts, denylist, logger)

	if err := srv.SeedDemo(context.Background()); err != nil {
		logger.Warn("Failed to seed demo data", zap.Error(err))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
