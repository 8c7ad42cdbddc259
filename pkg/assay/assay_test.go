package assay_test

import (
	"testing"

	"github.com/gnames/gnoccur/pkg/assay"
	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/stretchr/testify/assert"
)

func TestSkipPolicy(t *testing.T) {
	cfg := &assay.AssaysConfig{
		Assays: []assay.Assay{
			{Name: "ssu16sv4v5", TargetGene: "16S", SkipSpeciesMatch: true},
			{Name: "ssu18sv9", TargetGene: "18S", RankDepth: 5, SkipSpeciesMatch: true},
			{Name: "coi", TargetGene: "COI"},
		},
	}

	policy := cfg.SkipPolicy([]string{"extra_assay"})

	assert.True(t, policy.Skips("ssu16sv4v5"))
	assert.True(t, policy.Skips("ssu18sv9"))
	assert.True(t, policy.Skips("extra_assay"))
	assert.False(t, policy.Skips("coi"))

	// rank depth carried to the policy: a 5-name lineage is full depth
	// for ssu18sv9 and gets trimmed
	q := policy.Filter(lineage.Parse("Eukaryota;Dinophyceae;Gymnodiniales;Gymnodiniaceae;Gymnodinium", "ssu18sv9"))
	assert.True(t, q.SpeciesTrimmed)
}

func TestValidate(t *testing.T) {
	cfg := &assay.AssaysConfig{
		Assays: []assay.Assay{
			{Name: "coi"},
			{Name: "coi"},
			{Name: ""},
			{Name: "bad_depth", RankDepth: -1},
		},
	}

	cfg.Validate()

	assert.Len(t, cfg.Warnings, 3)
}
