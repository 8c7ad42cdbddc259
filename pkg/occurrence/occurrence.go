// Package occurrence defines the occurrence row entity and the
// merge/reconciler that fans resolved taxonomic identities back onto
// every row sharing a lineage. This is a pure package - no I/O.
package occurrence

import (
	"fmt"

	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/gnames/gnoccur/pkg/taxon"
)

// Row is one ASV-in-sample occurrence record. Identity fields come from
// the ingested occurrence table; taxonomy fields are attached by Merge
// and are empty before it runs.
type Row struct {
	// ASVID identifies the amplicon sequence variant.
	ASVID string

	// SampleID identifies the sample/event the ASV was observed in.
	SampleID string

	// Assay is the name of the assay that produced the observation.
	Assay string

	// Verbatim is the raw lineage string for the ASV.
	Verbatim string

	// ReadCount is the number of reads supporting the occurrence.
	ReadCount int

	// Fields below are attached by Merge.

	ScientificName   string
	ScientificNameID string
	TaxonRank        string
	NameAccordingTo  string
	TaxonomicRemarks string
	CleanedTaxonomy  string
}

// Stats summarizes a merge pass.
type Stats struct {
	Rows       int
	Resolved   int
	Unresolved int
}

// Merge attaches a taxonomic identity to every row. Each row's lineage
// is re-parsed and policy-filtered the same way the dispatcher prepared
// its queries, so the row's canonical key lands on the cached result.
// Rows whose key resolved to no-match, and rows whose lineage never
// produced a query (empty or kingdom-only Eukaryota), receive the
// incertae sedis placeholder. No row is ever left without an identity.
func Merge(
	rows []Row,
	results map[string]taxon.MatchResult,
	policy lineage.SkipPolicy,
	accordingTo string,
) Stats {
	stats := Stats{Rows: len(rows)}

	for i := range rows {
		q := lineage.Parse(rows[i].Verbatim, rows[i].Assay)
		q = policy.Filter(q)

		res, ok := results[q.Key()]
		if !ok || q.Empty() {
			res = taxon.Unresolved(q.Key(), "", "no resolution attempted")
		}

		attach(&rows[i], q, res, accordingTo)
		if res.Resolved() {
			stats.Resolved++
		} else {
			stats.Unresolved++
		}
	}

	return stats
}

func attach(row *Row, q lineage.Query, res taxon.MatchResult, accordingTo string) {
	row.ScientificName = res.ScientificName
	row.ScientificNameID = res.ScientificNameID
	row.TaxonRank = res.Rank
	row.NameAccordingTo = accordingTo
	row.CleanedTaxonomy = q.Cleaned()
	row.TaxonomicRemarks = Remarks(res)
}

// Remarks renders the match type and source into the occurrence remark
// field consumed by downstream writers.
func Remarks(res taxon.MatchResult) string {
	s := fmt.Sprintf("match type: %s", res.Match)
	if res.Source != "" {
		s += fmt.Sprintf("; source: %s", res.Source)
	}
	if res.FailureCause != "" {
		s += fmt.Sprintf("; cause: %s", res.FailureCause)
	}
	return s
}
