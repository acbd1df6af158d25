package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"daybrief/internal/api"
	"daybrief/internal/config"
	"daybrief/internal/logging"
	"daybrief/pkg/daybrief"
)

func main() {
	var dataDir string
	var port int
	var host string
	var devMode bool

	flag.StringVar(&dataDir, "data-dir", "", "Directory for database, archive and logs")
	flag.IntVar(&port, "port", 8000, "Port to run the server on")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to bind the server to")
	flag.BoolVar(&devMode, "dev", false, "Development mode (bypasses the manual refresh quota)")
	flag.Parse()

	if dataDir != "" {
		config.SetRuntimeDataDir(dataDir)
	}
	config.SetRuntimePort(port)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to resolve configuration", "err", err)
		os.Exit(1)
	}
	if devMode {
		cfg.DevMode = true
	}

	logger, writer, err := logging.NewLogger(cfg.LogDir, slog.LevelInfo)
	if err != nil {
		slog.Error("failed to initialize logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	core, err := daybrief.OpenWithOptions(daybrief.Options{
		DBPath:          cfg.DBPath,
		ArchivePath:     cfg.ArchivePath,
		Logger:          logger,
		Language:        cfg.Language,
		Country:         cfg.Country,
		Models:          cfg.Models,
		NewsAPIKey:      cfg.NewsAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		DevMode:         cfg.DevMode,
	})
	if err != nil {
		logger.Error("failed to initialize core", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close core", "err", err)
		}
	}()

	var scheduler *cron.Cron
	if !cfg.ScheduleDisabled {
		scheduler = startScheduler(core, logger)
		defer scheduler.Stop()
	} else {
		logger.Info("scheduled generation disabled")
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(core, api.Options{Logger: logger, AdminAllowlist: cfg.AdminAllowlist}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", addr, "data_dir", cfg.DataDir, "dev_mode", cfg.DevMode)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}

// startScheduler wires the evening generation passes: the primary pass at
// 23:00 exchange-local, then three checkpoints that only fill gaps.
func startScheduler(core *daybrief.Core, logger *slog.Logger) *cron.Cron {
	scheduler := cron.New(cron.WithLocation(daybrief.ExchangeLocation()))

	mustAdd := func(spec string, job func()) {
		if _, err := scheduler.AddFunc(spec, job); err != nil {
			logger.Error("failed to register cron entry", "spec", spec, "err", err)
			os.Exit(1)
		}
	}

	mustAdd("0 23 * * *", func() {
		if err := core.RunScheduledPrimary(context.Background()); err != nil {
			logger.Warn("primary generation pass failed", "err", err)
		}
	})
	for _, spec := range []string{"15 23 * * *", "30 23 * * *", "45 23 * * *"} {
		mustAdd(spec, func() {
			if err := core.RunScheduledCheckpoint(context.Background()); err != nil {
				logger.Warn("checkpoint generation pass failed", "err", err)
			}
		})
	}

	scheduler.Start()
	logger.Info("scheduler started", "zone", daybrief.ExchangeLocation().String())
	return scheduler
}
