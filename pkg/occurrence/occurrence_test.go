package occurrence_test

import (
	"testing"

	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/gnames/gnoccur/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homoLineage = "Animalia;Chordata;Mammalia;Primates;Hominidae;Homo;Homo sapiens"

func result(key, name, id, rank string, mt taxon.MatchType) taxon.MatchResult {
	return taxon.MatchResult{
		Key:              key,
		KeyID:            taxon.KeyID(key),
		ScientificName:   name,
		ScientificNameID: id,
		Rank:             rank,
		Match:            mt,
		Source:           taxon.SourceWoRMS,
	}
}

func TestMergeAttachesIdentity(t *testing.T) {
	policy := lineage.NewSkipPolicy(nil)
	q := policy.Filter(lineage.Parse(homoLineage, "coi"))

	rows := []occurrence.Row{
		{ASVID: "asv1", SampleID: "s1", Assay: "coi", Verbatim: homoLineage},
		{ASVID: "asv1", SampleID: "s2", Assay: "coi", Verbatim: homoLineage},
	}
	results := map[string]taxon.MatchResult{
		q.Key(): result(q.Key(), "Homo sapiens",
			"urn:lsid:marinespecies.org:taxname:1455977", "species", taxon.Exact),
	}

	stats := occurrence.Merge(rows, results, policy, "WoRMS")

	assert.Equal(t, occurrence.Stats{Rows: 2, Resolved: 2}, stats)
	for _, row := range rows {
		assert.Equal(t, "Homo sapiens", row.ScientificName)
		assert.Equal(t, "urn:lsid:marinespecies.org:taxname:1455977", row.ScientificNameID)
		assert.Equal(t, "species", row.TaxonRank)
		assert.Equal(t, "WoRMS", row.NameAccordingTo)
		assert.Equal(t, "match type: exact; source: worms", row.TaxonomicRemarks)
		assert.Equal(t, q.Cleaned(), row.CleanedTaxonomy)
	}
}

func TestMergeUsesPolicyKey(t *testing.T) {
	policy := lineage.NewSkipPolicy([]string{"skip"})
	trimmed := policy.Filter(lineage.Parse(homoLineage, "skip"))
	require.True(t, trimmed.SpeciesTrimmed)

	rows := []occurrence.Row{
		{ASVID: "asv1", Assay: "skip", Verbatim: homoLineage},
	}
	results := map[string]taxon.MatchResult{
		trimmed.Key(): result(trimmed.Key(), "Homo",
			"urn:lsid:marinespecies.org:taxname:404775", "genus", taxon.Exact),
	}

	stats := occurrence.Merge(rows, results, policy, "WoRMS")

	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, "genus", rows[0].TaxonRank)
	assert.Equal(t, "Homo", rows[0].ScientificName)
}

func TestMergePlaceholderForUnresolved(t *testing.T) {
	policy := lineage.NewSkipPolicy(nil)
	q := policy.Filter(lineage.Parse("Eukaryota;Fakeplankton", "a"))

	rows := []occurrence.Row{
		{ASVID: "asv1", Assay: "a", Verbatim: "Eukaryota;Fakeplankton"},
		{ASVID: "asv2", Assay: "a", Verbatim: ""},
	}
	results := map[string]taxon.MatchResult{
		q.Key(): taxon.Unresolved(q.Key(), taxon.SourceWoRMS, "ranks exhausted"),
	}

	stats := occurrence.Merge(rows, results, policy, "WoRMS")

	assert.Equal(t, occurrence.Stats{Rows: 2, Unresolved: 2}, stats)
	for _, row := range rows {
		assert.Equal(t, taxon.UnresolvedName, row.ScientificName)
		assert.Equal(t, taxon.UnresolvedID, row.ScientificNameID)
		assert.NotEmpty(t, row.TaxonomicRemarks)
	}
}

func TestMergeEveryRowGetsIdentity(t *testing.T) {
	policy := lineage.NewSkipPolicy(nil)

	// no results at all: rows still end with a populated identity
	rows := []occurrence.Row{
		{ASVID: "asv1", Assay: "a", Verbatim: "Animalia;Mollusca"},
	}
	stats := occurrence.Merge(rows, nil, policy, "GBIF")

	assert.Equal(t, 1, stats.Unresolved)
	assert.Equal(t, taxon.UnresolvedName, rows[0].ScientificName)
	assert.Equal(t, taxon.UnresolvedID, rows[0].ScientificNameID)
}
