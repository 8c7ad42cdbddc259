package lineage

// SkipPolicy holds assay names for which species-rank matching is
// disabled, plus the expected full rank depth per assay when known.
type SkipPolicy struct {
	assays map[string]struct{}
	depth  map[string]int
}

// NewSkipPolicy creates a policy from a list of assay names.
func NewSkipPolicy(assays []string) SkipPolicy {
	p := SkipPolicy{
		assays: make(map[string]struct{}, len(assays)),
		depth:  make(map[string]int),
	}
	for _, a := range assays {
		p.assays[a] = struct{}{}
	}
	return p
}

// SetDepth records the expected full rank depth for an assay. A lineage
// from a skip-policy assay is only trimmed when it reaches this depth:
// shorter lineages already lack a species entry.
func (p SkipPolicy) SetDepth(assay string, depth int) {
	if depth > 0 {
		p.depth[assay] = depth
	}
}

// Skips reports whether species-rank matching is disabled for the assay.
func (p SkipPolicy) Skips(assay string) bool {
	_, ok := p.assays[assay]
	return ok
}

// Filter removes the species-rank entry from the query when its assay is
// in the skip set and the lineage reaches the assay's full depth. It must
// run before canonical-key computation so the key encodes the policy
// outcome. Filter is pure: the input query is not modified.
func (p SkipPolicy) Filter(q Query) Query {
	if !p.Skips(q.Assay) || q.Empty() {
		return q
	}

	fullDepth, ok := p.depth[q.Assay]
	if !ok || fullDepth <= 0 {
		fullDepth = len(Ranks)
	}
	if len(q.Names) < fullDepth {
		return q
	}

	res := q
	res.Names = q.Names[:len(q.Names)-1]
	res.SpeciesTrimmed = true
	return res
}
