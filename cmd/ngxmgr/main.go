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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go_ngxmgr/internal/api"
	"go_ngxmgr/internal/app"
	"go_ngxmgr/internal/config"
	"go_ngxmgr/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	iniPath := flag.String("config", os.Getenv("NGXMGR_CONFIG"), "path to INI config file (env overrides INI)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := loadConfig(*iniPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)
	logger.Info("✓ Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect MySQL and Redis, wire components
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close connections")
		}
	}()

	// 3. Background workers
	if cfg.HealthWorker.Enabled {
		worker := a.HealthWorker()
		worker.Start()
		defer worker.Stop()
	}
	if cfg.CertScanner.Enabled {
		scanner := a.Scanner()
		if err := scanner.Start(ctx); err != nil {
			logger.Fatalf("Failed to start certificate scanner: %v", err)
		}
		defer scanner.Stop()
		go func() {
			if _, err := scanner.Scan(ctx); err != nil {
				logger.WithError(err).Error("Initial certificate scan failed")
			}
		}()
	}

	// 4. HTTP API
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(a.APIDeps()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("✓ Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
}

func loadConfig(iniPath string) (*config.Config, error) {
	if iniPath != "" {
		return config.LoadFromINI(iniPath)
	}
	return config.Load()
}
