// Package config provides configuration structures and utilities for termscan.
// It defines the scan options built from CLI flags, the YAML configuration
// file with per-site overrides, and credential resolution for the remote
// analysis service.
package config
