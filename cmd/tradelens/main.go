package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"tradelens/internal/cli"
	apphttp "tradelens/internal/http"
	"tradelens/internal/ingest"
	"tradelens/internal/session"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	sess := session.New(session.Config{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	})

	// Optionally preload a dataset so the dashboard is useful on first paint.
	if cfg.DataPath != "" {
		info, err := sess.LoadFile(cfg.DataPath, ingest.Options{Encoding: cfg.Encoding()})
		if err != nil {
			logger.Error("Failed to load startup dataset", "path", cfg.DataPath, "error", err)
			os.Exit(1)
		}
		logger.Info("Startup dataset loaded",
			"path", cfg.DataPath,
			"variant", string(info.Variant),
			"records", info.Records)
	}

	srv := apphttp.NewServer(":"+cfg.Port, sess, apphttp.Options{
		TopNDefault:    cfg.TopNDefault,
		TopNMax:        cfg.TopNMax,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting tradelens server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
