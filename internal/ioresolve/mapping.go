package ioresolve

import (
	"os"
	"sort"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnoccur/pkg/taxon"
)

// Mapping is the sidecar document written next to the merged occurrence
// table. It records every distinct lineage key and its resolution
// outcome, so a run can be audited without replaying it.
type Mapping struct {
	RunID     string              `json:"runId"`
	Provider  string              `json:"provider"`
	CreatedAt string              `json:"createdAt"`
	Stats     MappingStats        `json:"stats"`
	Results   []taxon.MatchResult `json:"results"`
}

// MappingStats is the counters subset persisted with the mapping.
type MappingStats struct {
	Rows           int    `json:"rows"`
	DistinctKeys   int    `json:"distinctKeys"`
	ShortCircuited int    `json:"shortCircuited"`
	LocalHits      int    `json:"localHits"`
	RemoteCalls    int    `json:"remoteCalls"`
	Resolved       int    `json:"resolved"`
	Unresolved     int    `json:"unresolved"`
	Duration       string `json:"duration"`
}

// WriteMapping serializes the run's key-to-result mapping as pretty
// JSON, results sorted by key for stable diffs.
func WriteMapping(
	path string,
	stats Stats,
	results map[string]taxon.MatchResult,
) error {
	sorted := make([]taxon.MatchResult, 0, len(results))
	for _, res := range results {
		sorted = append(sorted, res)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	doc := Mapping{
		RunID:     stats.RunID,
		Provider:  stats.Provider,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Stats: MappingStats{
			Rows:           stats.Rows,
			DistinctKeys:   stats.DistinctKeys,
			ShortCircuited: stats.ShortCircuited,
			LocalHits:      stats.LocalHits,
			RemoteCalls:    stats.RemoteCalls,
			Resolved:       stats.Resolved,
			Unresolved:     stats.Unresolved,
			Duration:       gnfmt.TimeString(stats.Duration.Seconds()),
		},
		Results: sorted,
	}

	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(doc)
	if err != nil {
		return MappingWriteError(path, err)
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return MappingWriteError(path, err)
	}
	return nil
}
