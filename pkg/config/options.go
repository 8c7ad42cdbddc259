package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptProvider sets the taxonomic backbone provider.
// Valid values: "worms", "gbif".
func OptProvider(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Provider", s) {
			c.Provider = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for remote lookups.
// Zero means use all available threads.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidNonNegInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptLocalRefEnabled toggles the local reference index.
func OptLocalRefEnabled(b bool) Option {
	return func(c *Config) {
		c.LocalRef.Enabled = b
	}
}

// OptLocalRefPath sets the path to the local reference dataset.
func OptLocalRefPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Local Reference Path", s) {
			c.LocalRef.Path = s
		}
	}
}

// OptSkipSpeciesAssays sets assay names with species-rank matching disabled.
func OptSkipSpeciesAssays(ss []string) Option {
	var assays []string
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			assays = append(assays, s)
		}
	}
	return func(c *Config) {
		if len(assays) > 0 {
			c.SkipSpeciesAssays = assays
		}
	}
}

// OptRetryMaxAttempts sets the total number of tries per remote request.
func OptRetryMaxAttempts(i int) Option {
	return func(c *Config) {
		if isValidInt("Retry Max Attempts", i) {
			c.Retry.MaxAttempts = i
		}
	}
}

// OptRetryBaseDelayMs sets the initial backoff delay in milliseconds.
func OptRetryBaseDelayMs(i int) Option {
	return func(c *Config) {
		if isValidInt("Retry Base Delay", i) {
			c.Retry.BaseDelayMs = i
		}
	}
}

// OptRetryMaxDelayMs caps the backoff delay in milliseconds.
func OptRetryMaxDelayMs(i int) Option {
	return func(c *Config) {
		if isValidInt("Retry Max Delay", i) {
			c.Retry.MaxDelayMs = i
		}
	}
}

// OptRequestTimeoutMs sets the per-call timeout for remote requests.
func OptRequestTimeoutMs(i int) Option {
	return func(c *Config) {
		if isValidInt("Request Timeout", i) {
			c.RequestTimeoutMs = i
		}
	}
}

// OptLogLevel sets logging verbosity.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stdout", "stderr".
func OptLogDestination(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptHomeDir sets the home directory used for config, cache and logs.
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
