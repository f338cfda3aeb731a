package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"powertree/local-app/src/pkg/adapter"
	"powertree/local-app/src/pkg/cli"
	"powertree/local-app/src/pkg/config"
	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/metrics"
	"powertree/local-app/src/pkg/session"
	"powertree/local-app/src/pkg/storage"
)

// bootstrap loads the configuration, wires logger, storage, data manager,
// session manager and adapters, runs the given scripts and then the
// interactive prompt, and shuts everything down in reverse order.
func bootstrap(scripts []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up channel to receive interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Load configuration
	if err := config.ConfigLoad(configPath); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := config.ConfigGet()

	levelName := cfg.LogLevel
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	logger, err := log.NewLogger(cfg, level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to close logger:", err)
		}
	}()

	logger.Info(ctx, "Application started", log.Fields{"config": cfg})

	store, err := storage.NewStorage(cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize storage", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(ctx, "Failed to close storage", log.Fields{"error": err})
		}
	}()

	logger.Info(ctx, "Storage initialized", nil)

	registry := metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(ctx, cfg.MetricsAddr, registry, logger)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "Failed to stop metrics server", log.Fields{"error": err})
			}
		}()
	}

	dataManager, err := data.NewDataManager(store, cfg, registry, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize data manager", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize data manager: %w", err)
	}

	logger.Info(ctx, "Data manager initialized", nil)

	sessionManager := session.NewSessionManager(dataManager, logger)
	defer sessionManager.Stop()

	adapterManager, err := adapter.NewAdapterManager(sessionManager, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize adapter manager", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize adapter manager: %w", err)
	}
	defer adapterManager.Shutdown()

	cliAdapter, err := adapter.NewCLIAdapter(adapterManager, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize CLI adapter", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize CLI adapter: %w", err)
	}
	if err := adapterManager.AdapterAdd(cliAdapter); err != nil {
		return fmt.Errorf("failed to start CLI adapter: %w", err)
	}

	cliInstance, err := cli.NewCLI(cliAdapter, cfg, os.Stdout, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize CLI", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize CLI: %w", err)
	}

	logger.Info(ctx, "CLI instance created", nil)

	// Set up graceful shutdown
	go func() {
		select {
		case <-sigChan:
			logger.Info(ctx, "Received interrupt signal. Shutting down...", nil)
			fmt.Println("\nReceived interrupt signal. Shutting down...")
			cliInstance.Stop()
			cancel()
		case <-ctx.Done():
		}
	}()

	for _, script := range scripts {
		err := cliInstance.ExecuteScript(ctx, script)
		if errors.Is(err, session.ErrExit) {
			fmt.Println("Goodbye!")
			return nil
		}
		if err != nil {
			logger.Error(ctx, "Script failed", log.Fields{"file": script, "error": err})
			return fmt.Errorf("failed to run script %s: %w", script, err)
		}
	}

	if err := cliInstance.Run(ctx); err != nil {
		logger.Error(ctx, "CLI error", log.Fields{"error": err})
		return fmt.Errorf("CLI error: %w", err)
	}

	logger.Info(ctx, "Application shutting down", nil)
	fmt.Println("Goodbye!")
	return nil
}

func startMetricsServer(ctx context.Context, addr string, registry *metrics.Registry, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Metrics server failed", log.Fields{"addr": addr, "error": err})
		}
	}()
	logger.Info(ctx, "Metrics server listening", log.Fields{"addr": addr})
	return srv
}
