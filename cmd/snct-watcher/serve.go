package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"snct-watcher/internal/catalog"
	"snct-watcher/internal/config"
	"snct-watcher/internal/dispatcher"
	"snct-watcher/internal/fetcher"
	"snct-watcher/internal/server"
	"snct-watcher/internal/upstream"
	"snct-watcher/internal/version"
)

const shutdownTimeout = 10 * time.Second

// bookingTimeZone is the booking service's local time zone, used for the
// search window and slot timestamps.
const bookingTimeZone = "Europe/Luxembourg"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the watcher",
	Long: `Start the watcher.

The process will:
  - Fetch the site and vehicle-type catalogs from the booking service
  - Refresh slot availability for every category once per interval
  - Serve the REST API and the WebSocket subscribe stream

It runs until interrupted (Ctrl+C) or it receives SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "path to config file (optional, defaults apply)")
	serveCmd.Flags().BoolP("debug", "d", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level, debug)
	slog.SetDefault(logger)

	logger.Info("starting snct-watcher",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
	)

	loc, err := time.LoadLocation(bookingTimeZone)
	if err != nil {
		logger.Warn("time zone unavailable, falling back to UTC", "zone", bookingTimeZone, "err", err)
		loc = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	clientOpts := []upstream.ClientOption{
		upstream.WithTimeout(cfg.Upstream.Timeout.Duration()),
		upstream.WithLogger(logger),
	}
	if cfg.Upstream.InsecureSkipVerify {
		clientOpts = append(clientOpts, upstream.WithInsecureTLS())
	}
	client := upstream.NewClient(cfg.Upstream.BaseURL, clientOpts...)

	cat := catalog.New()
	disp := dispatcher.New(cat, loc, logger)

	fetchCfg := fetcher.Config{
		Interval:    cfg.Fetcher.Interval.Duration(),
		Concurrency: cfg.Fetcher.Concurrency,
		Timeout:     cfg.Upstream.Timeout.Duration(),
		Window:      cfg.Fetcher.Window.Duration(),
	}
	fetch := fetcher.New(fetchCfg, client, cat, disp, loc, logger)

	srvCfg := server.Config{
		BindAddress: cfg.Server.BindAddress,
		Port:        cfg.Server.Port,
		AllowOrigin: cfg.Server.AllowOrigin,
	}
	srv := server.New(srvCfg, cat, disp, loc, logger)

	// The first refresh cycle runs synchronously inside Start; a failure
	// delays readiness but never kills the process.
	if err := fetch.Start(ctx); err != nil {
		return fmt.Errorf("start fetcher: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	logger.Info("snct-watcher running",
		"addr", fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port),
		"interval", cfg.Fetcher.Interval.Duration(),
	)

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := fetch.Stop(shutdownCtx); err != nil {
		logger.Warn("fetcher stop timed out", "err", err)
	}
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("server stop failed", "err", err)
	}

	logger.Info("snct-watcher stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadAndValidate(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string, debug bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
