// API server entry point for SafeSpeak.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/safespeak/internal/application/moderation"
	"github.com/turtacn/safespeak/internal/config"
	"github.com/turtacn/safespeak/internal/infrastructure/monitoring/logging"
	monPrometheus "github.com/turtacn/safespeak/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/safespeak/internal/intelligence/riskanalyzer"
	httpserver "github.com/turtacn/safespeak/internal/interfaces/http"
)

// Version is injected at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting safespeak api server",
		logging.String("version", Version),
		logging.Int("port", cfg.Server.Port),
		logging.String("model", cfg.Provider.Model),
	)

	var collector monPrometheus.MetricsCollector
	var metrics *monPrometheus.AppMetrics
	if cfg.Metrics.Enabled {
		collector, err = monPrometheus.NewMetricsCollector(monPrometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			logger.Error("metrics initialization failed", logging.Err(err))
			os.Exit(1)
		}
		metrics = monPrometheus.NewAppMetrics(collector)
	}

	backend, err := riskanalyzer.NewGeminiBackend(&riskanalyzer.GeminiConfig{
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.Model,
		BaseURL: cfg.Provider.BaseURL,
		Timeout: cfg.Provider.Timeout,
	}, logger)
	if err != nil {
		logger.Error("provider backend initialization failed", logging.Err(err))
		os.Exit(1)
	}

	analyzer, err := riskanalyzer.NewAnalyzer(backend, logger)
	if err != nil {
		logger.Error("analyzer initialization failed", logging.Err(err))
		os.Exit(1)
	}

	service, err := moderation.NewService(analyzer, metrics, logger)
	if err != nil {
		logger.Error("moderation service initialization failed", logging.Err(err))
		os.Exit(1)
	}

	server, err := httpserver.NewServer(httpserver.Options{
		Config:    cfg,
		Service:   service,
		Collector: collector,
		Metrics:   metrics,
		Logger:    logger,
		Version:   Version,
	})
	if err != nil {
		logger.Error("server initialization failed", logging.Err(err))
		os.Exit(1)
	}

	// Hot-reload the log level on config file changes.
	if *configPath != "" {
		config.Watch(*configPath, func(updated *config.Config) {
			logger.Info("configuration file changed",
				logging.String("log_level", updated.Log.Level),
			)
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", logging.Err(err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			logger.Error("graceful shutdown failed", logging.Err(err))
			os.Exit(1)
		}
	}
	logger.Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
