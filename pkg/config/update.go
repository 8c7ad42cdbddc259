package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Provider
	if s != "" {
		res = append(res, OptProvider(s))
	}
	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}

	if c.LocalRef.Enabled {
		res = append(res, OptLocalRefEnabled(true))
	}
	s = c.LocalRef.Path
	if s != "" {
		res = append(res, OptLocalRefPath(s))
	}

	if len(c.SkipSpeciesAssays) > 0 {
		res = append(res, OptSkipSpeciesAssays(c.SkipSpeciesAssays))
	}

	i = c.Retry.MaxAttempts
	if i > 0 {
		res = append(res, OptRetryMaxAttempts(i))
	}
	i = c.Retry.BaseDelayMs
	if i > 0 {
		res = append(res, OptRetryBaseDelayMs(i))
	}
	i = c.Retry.MaxDelayMs
	if i > 0 {
		res = append(res, OptRetryMaxDelayMs(i))
	}
	i = c.RequestTimeoutMs
	if i > 0 {
		res = append(res, OptRequestTimeoutMs(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidNonNegInt(name string, i int) bool {
	res := i >= 0
	if !res {
		gn.Warn("<em>%s</em> cannot be negative, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Provider":        {ProviderWoRMS: s, ProviderGBIF: s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stdout": s, "stderr": s},
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
