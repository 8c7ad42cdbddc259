// Package taxon defines the results and contracts of taxonomic backbone
// resolution: match results, the source adapter capability, the local
// reference index, and the run-scoped result cache.
package taxon

import (
	"context"

	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/gnames/gnuuid"
)

// MatchType classifies how a lineage was matched against a backbone.
type MatchType string

const (
	Exact           MatchType = "exact"
	Fuzzy           MatchType = "fuzzy"
	AcceptedSynonym MatchType = "accepted-synonym"
	NoMatch         MatchType = "no-match"
)

// Source identifies where a match result came from.
type Source string

const (
	SourceLocal Source = "local"
	SourceWoRMS Source = "worms"
	SourceGBIF  Source = "gbif"
)

// Placeholder identity attached to occurrence rows whose lineage could
// not be resolved. The LSID points at the WoRMS "incertae sedis" record,
// so every downstream record carries a populated, queryable reference.
const (
	UnresolvedName = "incertae sedis"
	UnresolvedID   = "urn:lsid:marinespecies.org:taxname:12"
)

// MatchResult is the terminal outcome of resolving one canonical lineage
// key. Values are a pure function of the key, so concurrent recomputation
// is wasteful but never incorrect.
type MatchResult struct {
	// Key is the canonical lineage key the result belongs to.
	Key string `json:"key"`

	// KeyID is a deterministic UUID v5 fingerprint of the key.
	KeyID string `json:"keyId"`

	// ScientificName is the accepted name returned by the backbone.
	ScientificName string `json:"scientificName"`

	// ScientificNameID is the backbone's stable identifier: an LSID for
	// WoRMS, a species-page URL for GBIF.
	ScientificNameID string `json:"scientificNameID"`

	// Rank is the matched rank, lower case ("species", "genus", ...).
	Rank string `json:"taxonRank,omitempty"`

	// Match classifies the match.
	Match MatchType `json:"matchType"`

	// Source names the stage that produced the result.
	Source Source `json:"source"`

	// Classification holds higher-rank names keyed by rank, when the
	// backbone provides them.
	Classification map[string]string `json:"classification,omitempty"`

	// FailureCause records why resolution failed for no-match results.
	FailureCause string `json:"failureCause,omitempty"`
}

// Resolved reports whether the result carries a backbone identity.
func (m MatchResult) Resolved() bool {
	return m.Match != NoMatch
}

// Resolver is the source adapter capability: resolve one lineage query
// to one match result. Implementations walk the lineage from its finest
// remaining rank toward coarser ranks until a match is found or ranks
// are exhausted. Transient network failures are retried internally;
// exhausted retries yield a no-match result, not an error. Only input
// errors (empty lineage) surface as errors.
type Resolver interface {
	Resolve(ctx context.Context, q lineage.Query) (MatchResult, error)
}

// LocalIndex is an exact-match shortcut consulted before remote calls.
// Lookup takes a case-normalized, whitespace-trimmed scientific name.
type LocalIndex interface {
	Lookup(name string) (MatchResult, bool)
}

// KeyID returns the deterministic UUID v5 fingerprint for a canonical
// lineage key.
func KeyID(key string) string {
	return gnuuid.New(key).String()
}

// Unresolved creates the placeholder result for a key that could not be
// resolved.
func Unresolved(key string, src Source, cause string) MatchResult {
	return MatchResult{
		Key:              key,
		KeyID:            KeyID(key),
		ScientificName:   UnresolvedName,
		ScientificNameID: UnresolvedID,
		Match:            NoMatch,
		Source:           src,
		FailureCause:     cause,
	}
}
