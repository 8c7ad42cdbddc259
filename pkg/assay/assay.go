// Package assay provides configuration and validation for metabarcoding
// assay metadata.
//
// This package defines the schema for assays.yaml, which users provide to
// describe the assays present in their occurrence table: the target gene,
// the expected taxonomic rank depth of the classifier output, and whether
// species-rank matching should be suppressed for the assay.
package assay

import (
	"github.com/gnames/gnoccur/pkg/lineage"
)

// Assays loads assay metadata from its configured location.
type Assays interface {
	Load() (*AssaysConfig, error)
}

// AssaysConfig represents the complete assays.yaml configuration file.
type AssaysConfig struct {
	// Assays is the list of assays described in the file.
	Assays []Assay `yaml:"assays"`

	// Warnings holds non-fatal validation warnings (not serialized).
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	AssayName string // name of the assay
	Field     string // field name that has the issue
	Message   string // description of the issue
}

// Assay describes one metabarcoding assay.
type Assay struct {
	// Name matches the assay_name column of the occurrence table.
	Name string `yaml:"name"`

	// TargetGene is the marker gene the assay amplifies (16S, 18S,
	// COI, ...). Informational only.
	TargetGene string `yaml:"target_gene,omitempty"`

	// RankDepth is the number of ranks the assay's classifier emits for
	// a fully classified ASV. The species-skip policy only trims
	// lineages that reach this depth. Zero means the standard seven
	// Darwin Core ranks.
	RankDepth int `yaml:"rank_depth,omitempty"`

	// SkipSpeciesMatch disables species-rank matching for the assay.
	SkipSpeciesMatch bool `yaml:"skip_species_match,omitempty"`
}

// SkipPolicy builds the rank policy from assay metadata plus any assay
// names supplied directly through configuration. Config-level names are
// merged with the yaml flags; assay rank depths are carried over.
func (c *AssaysConfig) SkipPolicy(extraAssays []string) lineage.SkipPolicy {
	names := make([]string, 0, len(extraAssays))
	names = append(names, extraAssays...)
	for _, a := range c.Assays {
		if a.SkipSpeciesMatch {
			names = append(names, a.Name)
		}
	}

	policy := lineage.NewSkipPolicy(names)
	for _, a := range c.Assays {
		policy.SetDepth(a.Name, a.RankDepth)
	}
	return policy
}

// Validate checks assay entries and records non-fatal warnings on the
// config. Empty names and duplicates are reported, not rejected.
func (c *AssaysConfig) Validate() {
	seen := make(map[string]struct{}, len(c.Assays))
	for _, a := range c.Assays {
		if a.Name == "" {
			c.Warnings = append(c.Warnings, ValidationWarning{
				Field:   "name",
				Message: "assay entry without a name is ignored by the policy",
			})
			continue
		}
		if _, ok := seen[a.Name]; ok {
			c.Warnings = append(c.Warnings, ValidationWarning{
				AssayName: a.Name,
				Field:     "name",
				Message:   "duplicate assay entry, the first one wins",
			})
		}
		seen[a.Name] = struct{}{}
		if a.RankDepth < 0 {
			c.Warnings = append(c.Warnings, ValidationWarning{
				AssayName: a.Name,
				Field:     "rank_depth",
				Message:   "negative rank depth is ignored",
			})
		}
	}
}
