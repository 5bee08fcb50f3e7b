package config

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing fetch behavior per site, e.g. for sites that
// gate their legal pages behind a consent cookie.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when fetching this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Suppressed disables detection notices for this host. The host is
	// still scanned on request; it just never produces a banner.
	Suppressed bool `yaml:"suppressed,omitempty"`
}

// File represents the structure of the .termscan configuration file.
type File struct {
	// APIKey authenticates requests to the analysis service.
	APIKey string `yaml:"apiKey,omitempty"`

	// AnalyzerID selects which analyzer the service runs.
	AnalyzerID string `yaml:"analyzerId,omitempty"`

	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without a scheme (e.g., "shop.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if siteConfig.Suppressed {
			result.Suppressed = true
		}
	}

	return result
}

// SuppressedHosts returns the hosts marked suppressed in the config file,
// in no particular order.
func (cf *File) SuppressedHosts() []string {
	var hosts []string
	for host, sc := range cf.Sites {
		if sc.Suppressed {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
