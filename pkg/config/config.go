// Package config provides configuration management for gnoccur.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Environment Variables
//
// Use GNOCCUR_ prefix with underscores for nesting:
//
//	GNOCCUR_PROVIDER=worms
//	GNOCCUR_JOBS_NUMBER=8
//	GNOCCUR_LOCAL_REF_ENABLED=true
//	GNOCCUR_LOG_LEVEL=info
package config

import (
	"runtime"
)

// Provider names accepted by the resolution engine.
const (
	ProviderWoRMS = "worms"
	ProviderGBIF  = "gbif"
)

// WoRMSMaxJobs caps the worker pool for the WoRMS provider. The registry's
// REST API degrades with more concurrent clients.
const WoRMSMaxJobs = 3

// Config represents the complete gnoccur configuration.
type Config struct {
	// Provider selects the taxonomic backbone: "worms" or "gbif".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// JobsNumber is the number of concurrent workers for remote lookups.
	// Zero means use all available threads. The WoRMS provider is capped
	// at WoRMSMaxJobs regardless of this setting.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// LocalRef configures the optional local reference index.
	LocalRef LocalRefConfig `mapstructure:"local_ref" yaml:"local_ref"`

	// SkipSpeciesAssays lists assay names for which species-rank matching
	// is suppressed. Lineages from these assays are trimmed to genus
	// before any lookup.
	SkipSpeciesAssays []string `mapstructure:"skip_species_assays" yaml:"skip_species_assays"`

	// Retry controls backoff behavior for transient backbone failures.
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`

	// RequestTimeoutMs is the per-call timeout for remote backbone
	// requests, in milliseconds.
	RequestTimeoutMs int `mapstructure:"request_timeout_ms" yaml:"request_timeout_ms"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// LocalRefConfig configures the local pre-resolved reference dataset.
// The index is consulted before any remote call (WoRMS provider only).
type LocalRefConfig struct {
	// Enabled toggles the local reference index.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path points at the reference dataset. Supported formats: TSV/CSV
	// with scientificName, scientificNameID and taxonRank columns, or an
	// SQLite file with a `taxa` table.
	Path string `mapstructure:"path" yaml:"path"`
}

// RetryConfig contains backoff settings for transient API failures.
type RetryConfig struct {
	// MaxAttempts is the total number of tries per request, including
	// the first one.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// BaseDelayMs is the initial backoff delay in milliseconds.
	BaseDelayMs int `mapstructure:"base_delay_ms" yaml:"base_delay_ms"`

	// MaxDelayMs caps the backoff delay in milliseconds.
	MaxDelayMs int `mapstructure:"max_delay_ms" yaml:"max_delay_ms"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Level sets verbosity: "debug", "info", "warn", "error".
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "json" or "text".
	Format string `mapstructure:"format" yaml:"format"`

	// Destination is "file", "stdout" or "stderr".
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with default values. The result is always valid.
func New() *Config {
	return &Config{
		Provider:   ProviderWoRMS,
		JobsNumber: runtime.NumCPU(),
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelayMs: 1000,
			MaxDelayMs:  30_000,
		},
		RequestTimeoutMs: 15_000,
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			Destination: "file",
		},
	}
}

// Jobs returns the effective worker-pool size for the configured provider.
func (c *Config) Jobs() int {
	jobs := c.JobsNumber
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}
	if c.Provider == ProviderWoRMS && jobs > WoRMSMaxJobs {
		jobs = WoRMSMaxJobs
	}
	return jobs
}
