package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakya146/termscan/internal/classifier"
	"github.com/sakya146/termscan/internal/config"
	"github.com/sakya146/termscan/internal/log"
	"github.com/sakya146/termscan/internal/model"
	"github.com/sakya146/termscan/internal/notify"
	"github.com/sakya146/termscan/internal/store"
	"github.com/sakya146/termscan/internal/watcher"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <page-url>",
		Short: "Watch a page until legal document links appear",
		Long: `Watch fetches a page and waits for Terms & Conditions or Privacy Policy
links to appear, re-checking once after a short delay and then polling
for content changes. Client-rendered pages often attach their footer
links only after the initial load; watch catches those.

When links are found, a detection notice is shown (once per host) and
the links are recorded in the site state store.

Examples:
  # Watch with the default 2 minute limit
  termscan watch https://app.example.com/

  # Watch with a custom poll interval and limit
  termscan watch --interval 5s --watch-timeout 10m https://app.example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each page fetch")
	cmd.Flags().Duration("interval", config.DefaultWatchInterval,
		"Poll interval for re-fetching the page")
	cmd.Flags().Duration("watch-timeout", config.DefaultWatchTimeout,
		"Maximum total time to wait for links")
	cmd.Flags().Duration("fallback-delay", config.DefaultFallbackDelay,
		"Delay before the one-shot re-check after an empty first pass")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address for page fetches")
	cmd.Flags().Bool("no-store", false,
		"Do not persist site state between runs")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .termscan in current or home directory)")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	var err error
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.WatchInterval, err = cmd.Flags().GetDuration("interval"); err != nil {
		return err
	}
	if cfg.WatchTimeout, err = cmd.Flags().GetDuration("watch-timeout"); err != nil {
		return err
	}
	if cfg.FallbackDelay, err = cmd.Flags().GetDuration("fallback-delay"); err != nil {
		return err
	}
	if cfg.SOCKSProxy, err = cmd.Flags().GetString("proxy"); err != nil {
		return err
	}
	if cfg.NoStore, err = cmd.Flags().GetBool("no-store"); err != nil {
		return err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runWatch(ctx, cfg, logger)
}

// runWatch waits for legal document links on the target page.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	target := cfg.Targets[0]
	pageURL, err := url.Parse(target)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Hostname() == "" {
		return fmt.Errorf("invalid page URL %q (want absolute http or https)", target)
	}
	host := pageURL.Hostname()

	st := openStore(cfg, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()
	for _, suppressed := range cfg.SiteConfigs.SuppressedHosts() {
		st.Suppress(ctx, suppressed)
	}

	f, err := newFetcher(cfg, siteConfigForURL(cfg, target))
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	watchCtx, cancel := context.WithTimeout(ctx, cfg.WatchTimeout)
	defer cancel()

	fmt.Printf("Watching %s for legal document links...\n", target)

	// The initial fetch seeds the change detector so polling only fires
	// on content that differs from what the first classification saw.
	initialPage, err := f.Fetch(watchCtx, target)
	var initialHash string
	if err != nil {
		logger.Warn("initial fetch failed, polling will classify from scratch", "error", err)
	} else {
		initialHash = initialPage.Hash
	}

	classify := func(ctx context.Context) (model.DetectionResult, error) {
		page, err := f.Fetch(ctx, target)
		if err != nil {
			return model.DetectionResult{}, err
		}
		base, err := url.Parse(page.URL)
		if err != nil {
			return model.DetectionResult{}, err
		}
		return classifier.ClassifyPage(bytes.NewReader(page.Body), base)
	}

	fetchPage := func(ctx context.Context) (*model.Page, error) {
		return f.Fetch(ctx, target)
	}
	source := watcher.NewPollSource(watchCtx, fetchPage, cfg.WatchInterval, initialHash, logger)
	w := watcher.New(source, classify,
		watcher.WithFallbackDelay(cfg.FallbackDelay),
		watcher.WithLogger(logger),
	)

	result, err := w.Run(watchCtx)
	if err != nil && result.Empty() {
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Println("No legal document links appeared before the watch limit.")
			return nil
		}
		return err
	}

	merged := st.RecordDetection(ctx, host, result)

	presenter := notify.NewPresenter(notify.NewWriterSink(os.Stdout), st,
		notify.WithDisplayDuration(cfg.BannerDuration),
		notify.WithLogger(logger),
	)
	defer presenter.Stop()
	presenter.Present(ctx, merged, host, store.SearchResultsPage(pageURL))

	fmt.Println("Detected links:")
	for _, t := range merged.Targets() {
		fmt.Printf("  %-20s %s\n", t.Label+":", t.URL)
	}
	fmt.Printf("\nRun 'termscan scan %s' to analyze them.\n", target)

	return nil
}
