package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakya146/termscan/internal/analysis"
	"github.com/sakya146/termscan/internal/config"
	"github.com/sakya146/termscan/internal/fetcher"
	"github.com/sakya146/termscan/internal/log"
	"github.com/sakya146/termscan/internal/model"
	"github.com/sakya146/termscan/internal/pipeline"
	"github.com/sakya146/termscan/internal/report"
	"github.com/sakya146/termscan/internal/snapshot"
	"github.com/sakya146/termscan/internal/store"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [page-url]",
		Short: "Scan a page for legal documents and analyze them",
		Long: `Scan fetches a page, finds its Terms & Conditions and Privacy Policy
links, and sends each detected document to the remote analysis service.

The scan reports per-document risk (hidden fees, data sharing, strict
cancellation terms) and an overall risk level. Detected links and scan
results are remembered per host across runs.

Examples:
  # Scan a single page
  termscan scan https://shop.example.com/

  # Scan multiple pages concurrently
  termscan scan https://a.example.com/ https://b.example.com/

  # Output a Markdown report to a file
  termscan scan --markdown -o report.md https://shop.example.com/

  # Detect links only, without snapshots or persistent state
  termscan scan --no-snapshots --no-store https://shop.example.com/

Configuration file (.termscan) example:
  apiKey: "bu_live_..."
  analyzerId: "legal-risk-v2"
  sites:
    shop.example.com:
      cookie: "consent=accepted"
      headers:
        Accept-Language: "en"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each page fetch")
	cmd.Flags().Duration("analysis-timeout", config.DefaultAnalysisTimeout,
		"Timeout for each remote analyzer run")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address for page fetches (e.g., 127.0.0.1:1080)")
	cmd.Flags().Bool("no-snapshots", false,
		"Skip capturing markdown snapshots of detected documents")
	cmd.Flags().Bool("no-store", false,
		"Do not persist site state between runs")

	// Credentials
	cmd.Flags().String("api-key", "",
		"Analysis service API key (overrides config file and TERMSCAN_API_KEY)")
	cmd.Flags().String("analyzer", "",
		"Analyzer ID to run (overrides config file and TERMSCAN_ANALYZER_ID)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .termscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report")
	cmd.Flags().Bool("html", false,
		"Output HTML report")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runScan(ctx, cfg, logger)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.AnalysisTimeout, err = cmd.Flags().GetDuration("analysis-timeout")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.SOCKSProxy, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.NoSnapshots, err = cmd.Flags().GetBool("no-snapshots")
	if err != nil {
		return nil, err
	}

	cfg.NoStore, err = cmd.Flags().GetBool("no-store")
	if err != nil {
		return nil, err
	}

	cfg.APIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}

	cfg.AnalyzerID, err = cmd.Flags().GetString("analyzer")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}

	// Credentials resolve flag > config file > environment.
	cfg.ResolveCredentials()

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.HTMLReport, err = cmd.Flags().GetBool("html")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.DBDir = config.XDGDataDir()

	// Get positional arguments (page URLs)
	cfg.Targets = args

	return cfg, nil
}

// loadSiteConfigs loads the YAML config file into cfg.SiteConfigs.
// If the user explicitly specified a config file path, a missing file is
// an error. Otherwise a missing file yields an empty config.
func loadSiteConfigs(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		loaded, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.SiteConfigs = loaded
		return nil
	}

	if explicitConfigPath {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.SiteConfigs = &config.File{
		Sites: make(map[string]config.SiteConfig),
	}
	return nil
}

// openStore opens the persistent site state store, degrading to in-memory
// state when the database cannot be opened. A broken database must not
// block scanning; it only costs cross-run memory.
func openStore(cfg *config.Config, logger *slog.Logger) *store.Store {
	if cfg.NoStore {
		return store.New(store.NewMemoryBackend(), store.WithLogger(logger))
	}

	backend, err := store.OpenSQLite(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open site state database, state will not persist",
			"dir", cfg.DBDir,
			"error", err,
		)
		return store.New(store.NewMemoryBackend(), store.WithLogger(logger))
	}

	logger.Info("site state database opened", "path", backend.Path())
	return store.New(backend, store.WithLogger(logger))
}

// newFetcher builds a fetcher for the given host's site config.
func newFetcher(cfg *config.Config, siteConfig config.SiteConfig) (*fetcher.Fetcher, error) {
	opts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	}
	if cfg.SOCKSProxy != "" {
		opts = append(opts, fetcher.WithSOCKSProxy(cfg.SOCKSProxy))
	}
	if siteConfig.Cookie != "" {
		opts = append(opts, fetcher.WithCookie(siteConfig.Cookie))
	}
	if len(siteConfig.Headers) > 0 {
		opts = append(opts, fetcher.WithHeaders(siteConfig.Headers))
	}
	return fetcher.New(opts...)
}

// newAnalysisClient builds the analysis service client from config.
func newAnalysisClient(cfg *config.Config, logger *slog.Logger) *analysis.Client {
	return analysis.NewClient(cfg.APIKey, cfg.AnalyzerID,
		analysis.WithBaseURL(cfg.AnalysisBaseURL),
		analysis.WithLogger(logger),
	)
}

// siteConfigForURL returns the merged site config for a target URL's host.
func siteConfigForURL(cfg *config.Config, rawURL string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// buildPipeline assembles the scan pipeline for one target.
func buildPipeline(cfg *config.Config, st *store.Store, client *analysis.Client, siteConfig config.SiteConfig, logger *slog.Logger) (*pipeline.Pipeline, error) {
	f, err := newFetcher(cfg, siteConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	var snapshotter *snapshot.Snapshotter
	if !cfg.NoSnapshots {
		snapshotter = snapshot.New()
	}

	return pipeline.DefaultPipeline(f, st, client, snapshotter,
		pipeline.WithLogger(logger),
	), nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"snapshots", !cfg.NoSnapshots,
	)

	st := openStore(cfg, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	client := newAnalysisClient(cfg, logger)
	if !client.Configured() {
		fmt.Fprintln(os.Stderr, "No API key configured: links will be detected but not analyzed.")
		fmt.Fprintln(os.Stderr, "Set TERMSCAN_API_KEY and TERMSCAN_ANALYZER_ID, or run 'termscan init'.")
	}

	// Apply config-file suppressions before scanning so results reflect them.
	for _, host := range cfg.SiteConfigs.SuppressedHosts() {
		st.Suppress(ctx, host)
	}

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, st, client, logger)
	}

	return runSequentialScan(ctx, cfg, st, client, logger)
}

// runSequentialScan scans targets one at a time, applying per-site config.
func runSequentialScan(ctx context.Context, cfg *config.Config, st *store.Store, client *analysis.Client, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		siteConfig := siteConfigForURL(cfg, target)

		p, err := buildPipeline(cfg, st, client, siteConfig, logger)
		if err != nil {
			return err
		}

		scanReport, err := model.NewScanReport(target)
		if err != nil {
			return err
		}

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, st *store.Store, client *analysis.Client, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Batch mode shares one pipeline config; per-site cookies and headers
	// only apply in sequential mode.
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs (cookies, headers) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	var siteConfig config.SiteConfig
	if cfg.SiteConfigs != nil {
		siteConfig = cfg.SiteConfigs.Defaults
	}
	sharedPipeline, err := buildPipeline(cfg, st, client, siteConfig, logger)
	if err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return sharedPipeline },
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(cfg.Targets), scanReport.URL)

		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.URL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may quote document content; keep them owner-readable.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Best effort close on output file
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output, report.WithSnapshots(true))
	case cfg.HTMLReport:
		writer = report.NewHTMLWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(scanReport)
	return err
}
