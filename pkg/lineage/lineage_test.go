package lineage_test

import (
	"testing"

	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		verbatim string
		names    []string
	}{
		{
			name:     "full lineage",
			verbatim: "Animalia;Chordata;Mammalia;Primates;Hominidae;Homo;Homo sapiens",
			names: []string{
				"Animalia", "Chordata", "Mammalia", "Primates",
				"Hominidae", "Homo", "Homo sapiens",
			},
		},
		{
			name:     "underscores become spaces",
			verbatim: "Eukaryota;Chlorophyta;Mamiellophyceae;Ostreococcus_lucimarinus",
			names: []string{
				"Eukaryota", "Chlorophyta", "Mamiellophyceae",
				"Ostreococcus lucimarinus",
			},
		},
		{
			name:     "unassigned segments dropped",
			verbatim: "Eukaryota;unassigned;Dinophyceae;Unassigned",
			names:    []string{"Eukaryota", "Dinophyceae"},
		},
		{
			name:     "sp qualifier removed",
			verbatim: "Animalia;Cnidaria;Anthozoa;Acropora sp.",
			names:    []string{"Animalia", "Cnidaria", "Anthozoa", "Acropora"},
		},
		{
			name:     "spp qualifier removed",
			verbatim: "Animalia;Mollusca;Mytilus spp.",
			names:    []string{"Animalia", "Mollusca", "Mytilus"},
		},
		{
			name:     "digits stripped",
			verbatim: "Bacteria;Proteobacteria;SAR11 clade2",
			names:    []string{"Bacteria", "Proteobacteria", "SAR clade"},
		},
		{
			name:     "short names dropped",
			verbatim: "Animalia;X;Chordata",
			names:    []string{"Animalia", "Chordata"},
		},
		{
			name:     "empty string",
			verbatim: "",
			names:    nil,
		},
		{
			name:     "only separators",
			verbatim: " ; ;; ",
			names:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := lineage.Parse(tt.verbatim, "assay1")
			assert.Equal(t, tt.names, q.Names)
			assert.Equal(t, tt.verbatim, q.Verbatim)
		})
	}
}

func TestQueryAccessors(t *testing.T) {
	q := lineage.Parse("Animalia;Chordata;Mammalia", "a")
	assert.False(t, q.Empty())
	assert.Equal(t, "Mammalia", q.Finest())
	assert.Equal(t, "Animalia;Chordata;Mammalia", q.Cleaned())

	empty := lineage.Parse("", "a")
	assert.True(t, empty.Empty())
	assert.Equal(t, "", empty.Finest())
}

func TestKey(t *testing.T) {
	q := lineage.Parse("Animalia;Chordata;Homo sapiens", "a")
	assert.Equal(t, "animalia;chordata;homo sapiens", q.Key())

	trimmed := q
	trimmed.Names = q.Names[:2]
	trimmed.SpeciesTrimmed = true
	assert.Equal(t, "animalia;chordata|nosp", trimmed.Key())

	// same names resolved under different policy outcomes never collide
	assert.NotEqual(t, q.Key(), trimmed.Key())
}

func TestKingdomOnly(t *testing.T) {
	assert.True(t, lineage.Parse("Eukaryota", "a").KingdomOnly("Eukaryota"))
	assert.True(t, lineage.Parse("eukaryota;unassigned", "a").KingdomOnly("Eukaryota"))
	assert.False(t, lineage.Parse("Bacteria", "a").KingdomOnly("Eukaryota"))
	assert.False(t, lineage.Parse("Eukaryota;Dinophyceae", "a").KingdomOnly("Eukaryota"))
}
