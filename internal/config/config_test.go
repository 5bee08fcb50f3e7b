package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests that defaults are sensible.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()

	if c.Timeout != DefaultTimeout {
		t.Errorf("unexpected timeout: %v", c.Timeout)
	}
	if c.AnalysisTimeout != DefaultAnalysisTimeout {
		t.Errorf("unexpected analysis timeout: %v", c.AnalysisTimeout)
	}
	if c.BatchSize != DefaultBatchSize {
		t.Errorf("unexpected batch size: %d", c.BatchSize)
	}
	if c.AnalysisBaseURL != DefaultAnalysisBaseURL {
		t.Errorf("unexpected analysis base URL: %q", c.AnalysisBaseURL)
	}
	if c.FallbackDelay != 2*time.Second {
		t.Errorf("unexpected fallback delay: %v", c.FallbackDelay)
	}
	if c.BannerDuration != 4*time.Second {
		t.Errorf("unexpected banner duration: %v", c.BannerDuration)
	}
	if c.MaxBodySize != 5*1024*1024 {
		t.Errorf("unexpected max body size: %d", c.MaxBodySize)
	}
}

// TestConfigValidate tests configuration validation rules.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.Targets = []string{"https://example.com/"}
		return c
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config passes",
			mutate:  func(_ *Config) {},
			wantErr: nil,
		},
		{
			name:    "no targets",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative batch size",
			mutate:  func(c *Config) { c.BatchSize = -1 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name: "json and markdown conflict",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name: "markdown and html conflict",
			mutate: func(c *Config) {
				c.MarkdownReport = true
				c.HTMLReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "single format is fine",
			mutate:  func(c *Config) { c.HTMLReport = true },
			wantErr: nil,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "zero watch interval",
			mutate:  func(c *Config) { c.WatchInterval = 0 },
			wantErr: ErrInvalidWatchInterval,
		},
		{
			name:    "negative fallback delay",
			mutate:  func(c *Config) { c.FallbackDelay = -time.Second },
			wantErr: ErrInvalidFallbackDelay,
		},
		{
			name:    "zero fallback delay is fine",
			mutate:  func(c *Config) { c.FallbackDelay = 0 },
			wantErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tc.mutate(c)

			err := c.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and credentials", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".termscan")
		content := `apiKey: test-key
analyzerId: analyzer-42
defaults:
  headers:
    Accept-Language: en
sites:
  shop.example.com:
    cookie: "consent=yes"
    suppressed: true
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		if cf.APIKey != "test-key" {
			t.Errorf("unexpected api key: %q", cf.APIKey)
		}
		if cf.AnalyzerID != "analyzer-42" {
			t.Errorf("unexpected analyzer id: %q", cf.AnalyzerID)
		}

		sc := cf.GetSiteConfig("shop.example.com")
		if sc.Cookie != "consent=yes" {
			t.Errorf("unexpected cookie: %q", sc.Cookie)
		}
		if !sc.Suppressed {
			t.Error("expected suppressed site")
		}
		if sc.Headers["Accept-Language"] != "en" {
			t.Error("defaults should merge into site config")
		}

		other := cf.GetSiteConfig("other.example.com")
		if other.Cookie != "" || other.Suppressed {
			t.Error("unknown host should get defaults only")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".termscan")
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestSuppressedHosts tests listing suppressed hosts from the config file.
func TestSuppressedHosts(t *testing.T) {
	t.Parallel()

	cf := &File{
		Sites: map[string]SiteConfig{
			"a.example.com": {Suppressed: true},
			"b.example.com": {Cookie: "x=y"},
			"c.example.com": {Suppressed: true},
		},
	}

	hosts := cf.SuppressedHosts()
	if len(hosts) != 2 {
		t.Fatalf("expected 2 suppressed hosts, got %v", hosts)
	}
}

// TestFindConfigFile tests config file discovery.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("missing explicit path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestResolveCredentials tests API key and analyzer ID resolution order.
func TestResolveCredentials(t *testing.T) {
	t.Run("flag value wins over file and env", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-key")

		c := NewConfig()
		c.APIKey = "flag-key"
		c.SiteConfigs = &File{APIKey: "file-key"}
		c.ResolveCredentials()

		if c.APIKey != "flag-key" {
			t.Errorf("unexpected api key: %q", c.APIKey)
		}
	})

	t.Run("file value wins over env", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-key")

		c := NewConfig()
		c.SiteConfigs = &File{APIKey: "file-key", AnalyzerID: "file-analyzer"}
		c.ResolveCredentials()

		if c.APIKey != "file-key" {
			t.Errorf("unexpected api key: %q", c.APIKey)
		}
		if c.AnalyzerID != "file-analyzer" {
			t.Errorf("unexpected analyzer id: %q", c.AnalyzerID)
		}
	})

	t.Run("env fills the gaps", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-key")
		t.Setenv(EnvAnalyzerID, "env-analyzer")

		c := NewConfig()
		c.ResolveCredentials()

		if c.APIKey != "env-key" {
			t.Errorf("unexpected api key: %q", c.APIKey)
		}
		if c.AnalyzerID != "env-analyzer" {
			t.Errorf("unexpected analyzer id: %q", c.AnalyzerID)
		}
	})
}
