package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These match the behavior of the termscan defaults documented in the README
// and are chosen for ordinary clearnet sites.
const (
	// DefaultTimeout is the per-request timeout for fetching pages and
	// documents. 30 seconds covers slow origin servers without stalling
	// the scan indefinitely.
	DefaultTimeout = 30 * time.Second

	// DefaultAnalysisTimeout is the timeout for one remote analyzer run.
	// Analysis involves the service fetching and reading the document
	// itself, so it needs far more headroom than a plain page fetch.
	DefaultAnalysisTimeout = 120 * time.Second

	// DefaultBatchSize of 4 concurrent scans balances throughput with
	// politeness toward the analysis service's rate limits.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "termscan"

	// DefaultUserAgent identifies termscan in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "termscan/1.0 (+https://github.com/sakya146/termscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultWatchInterval is how often the watch command re-fetches the
	// page while waiting for legal document links to appear.
	DefaultWatchInterval = 2 * time.Second

	// DefaultWatchTimeout bounds the total time the watch command waits
	// for links before giving up.
	DefaultWatchTimeout = 2 * time.Minute

	// DefaultFallbackDelay is the one-shot re-check delay used when the
	// initial classification of a page finds nothing. Client-rendered
	// footers usually appear well within this window.
	DefaultFallbackDelay = 2 * time.Second

	// DefaultBannerDuration is how long the detection notice stays up
	// before it is dismissed.
	DefaultBannerDuration = 4 * time.Second

	// DefaultAnalysisBaseURL is the analysis service endpoint.
	DefaultAnalysisBaseURL = "https://api.browser-use.com"

	// DefaultListenAddress is the address the serve command binds to.
	DefaultListenAddress = "127.0.0.1:8453"

	// EnvAPIKey is the environment variable consulted for the analysis
	// service API key when the config file does not provide one.
	EnvAPIKey = "TERMSCAN_API_KEY"

	// EnvAnalyzerID is the environment variable consulted for the analyzer
	// ID when the config file does not provide one.
	EnvAnalyzerID = "TERMSCAN_ANALYZER_ID"
)

// Config holds all configuration options for termscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScanConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Targets is the list of page URLs to scan.
	// Must contain at least one http or https URL.
	Targets []string

	// APIKey authenticates requests to the analysis service.
	// Resolved from the config file, then the TERMSCAN_API_KEY environment
	// variable. Scanning without it detects links but skips analysis.
	APIKey string

	// AnalyzerID selects which analyzer the service runs for each document.
	AnalyzerID string

	// AnalysisBaseURL is the analysis service endpoint. Overridable for
	// testing against a local stub.
	AnalysisBaseURL string

	// Timeout is the per-request timeout for page and document fetches.
	Timeout time.Duration

	// AnalysisTimeout is the timeout for one remote analyzer run.
	AnalysisTimeout time.Duration

	// BatchSize is the number of concurrent scans when processing multiple targets.
	// Higher values increase throughput but may hit service rate limits.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .termscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	// This is populated by LoadConfigFile and used during scanning.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport and HTMLReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. Mutually exclusive with JSONReport and HTMLReport.
	MarkdownReport bool

	// HTMLReport enables HTML report output instead of human-readable format.
	// Mutually exclusive with JSONReport and MarkdownReport.
	HTMLReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite site state database.
	// When empty, the XDG data directory is used. State carries detected
	// links, notification flags, and stored scan results across runs.
	DBDir string

	// NoStore disables persistent site state entirely. Detection and
	// analysis still run, but nothing is remembered between invocations.
	NoStore bool

	// NoSnapshots disables capturing markdown snapshots of the detected
	// documents during scans.
	NoSnapshots bool

	// SOCKSProxy is an optional SOCKS5 proxy address in "host:port" format.
	// All page and document fetches are routed through it when set.
	SOCKSProxy string

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps service operators identify scanner traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// WatchInterval is how often the watch command re-fetches the page
	// while waiting for legal document links to appear.
	WatchInterval time.Duration

	// WatchTimeout bounds the total time the watch command waits for links.
	WatchTimeout time.Duration

	// FallbackDelay is the one-shot re-check delay after an empty initial
	// classification.
	FallbackDelay time.Duration

	// BannerDuration is how long the detection notice stays visible.
	BannerDuration time.Duration

	// ListenAddress is the bind address for the serve command.
	ListenAddress string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, intervals).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		AnalysisBaseURL: DefaultAnalysisBaseURL,
		Timeout:         DefaultTimeout,
		AnalysisTimeout: DefaultAnalysisTimeout,
		BatchSize:       DefaultBatchSize,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
		WatchInterval:   DefaultWatchInterval,
		WatchTimeout:    DefaultWatchTimeout,
		FallbackDelay:   DefaultFallbackDelay,
		BannerDuration:  DefaultBannerDuration,
		ListenAddress:   DefaultListenAddress,
	}
}

// XDGDataDir returns the XDG data directory for termscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/termscan
// On macOS: ~/Library/Application Support/termscan
// On Windows: %LOCALAPPDATA%\termscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for termscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/termscan
// On macOS: ~/Library/Application Support/termscan
// On Windows: %APPDATA%\termscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to scan
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// Report formats are mutually exclusive
	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.MarkdownReport, c.HTMLReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.WatchInterval <= 0 {
		return ErrInvalidWatchInterval
	}

	if c.FallbackDelay < 0 {
		return ErrInvalidFallbackDelay
	}

	return nil
}
