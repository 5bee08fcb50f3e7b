package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakya146/termscan/internal/config"
	"github.com/sakya146/termscan/internal/log"
	"github.com/sakya146/termscan/internal/model"
	"github.com/sakya146/termscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site state and on-demand scans over HTTP",
		Long: `Serve starts a local HTTP API over the site state store.

Endpoints:
  GET    /api/hosts                  List known hosts
  GET    /api/hosts/{host}           Full stored state for a host
  GET    /api/hosts/{host}/report    Rendered stored report
  POST   /api/hosts/{host}/suppress  Silence notices for a host
  DELETE /api/hosts/{host}/suppress  Re-enable notices
  POST   /api/scan                   Scan a URL ({"url": "https://..."})

The server binds to localhost by default; it is a management API, not a
public surface.

Examples:
  termscan serve
  termscan serve --listen 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("listen", config.DefaultListenAddress,
		"Address to bind the HTTP server to")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each page fetch")
	cmd.Flags().Bool("no-snapshots", false,
		"Skip capturing markdown snapshots during API-triggered scans")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .termscan in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = config.XDGDataDir()

	var err error
	if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.NoSnapshots, err = cmd.Flags().GetBool("no-snapshots"); err != nil {
		return err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return err
	}
	cfg.ResolveCredentials()

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runServe(ctx, cfg, logger)
}

// runServe starts the HTTP API and blocks until shutdown.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st := openStore(cfg, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()
	for _, host := range cfg.SiteConfigs.SuppressedHosts() {
		st.Suppress(ctx, host)
	}

	client := newAnalysisClient(cfg, logger)
	if !client.Configured() {
		logger.Warn("no API key configured, POST /api/scan will detect links but not analyze")
	}

	scanner := server.ScannerFunc(func(ctx context.Context, pageURL string) (*model.ScanReport, error) {
		p, err := buildPipeline(cfg, st, client, siteConfigForURL(cfg, pageURL), logger)
		if err != nil {
			return nil, err
		}
		scanReport, err := model.NewScanReport(pageURL)
		if err != nil {
			return nil, err
		}
		if err := p.Execute(ctx, scanReport); err != nil {
			return nil, err
		}
		return scanReport, nil
	})

	srv := server.New(st, scanner, server.WithLogger(logger))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Listening on http://%s\n", cfg.ListenAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}
