// Package lineage converts raw semicolon-delimited taxonomy strings from
// eDNA metabarcoding into clean, policy-aware queries for backbone
// resolution. This is a pure package - no I/O.
package lineage

import (
	"strings"
	"unicode"
)

// Ranks lists the standard Darwin Core ranks from coarsest to finest.
var Ranks = []string{
	"kingdom", "phylum", "class", "order", "family", "genus", "species",
}

// Query is one distinct lineage to resolve against a taxonomic backbone.
// Names are ordered coarsest to finest. A Query is created once per
// distinct (lineage, policy-outcome) pair and discarded after merge.
type Query struct {
	// Assay is the name of the assay that produced the lineage.
	Assay string

	// Verbatim is the raw lineage string as it appeared in the
	// occurrence table.
	Verbatim string

	// Names holds the cleaned taxon names, coarsest first.
	Names []string

	// SpeciesTrimmed is true when the rank policy removed the finest
	// rank before key computation.
	SpeciesTrimmed bool
}

// Parse cleans a verbatim lineage string and returns a Query.
//
// Cleaning rules: underscores, dashes and slashes become spaces; empty
// segments and "unassigned" (any case) are dropped; " sp." and " spp."
// qualifiers are removed; digits are removed; whitespace is collapsed;
// names shorter than two runes are dropped.
func Parse(verbatim, assay string) Query {
	q := Query{Assay: assay, Verbatim: verbatim}

	cleaned := strings.NewReplacer("_", " ", "-", " ", "/", " ").
		Replace(verbatim)

	for _, name := range strings.Split(cleaned, ";") {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, "unassigned") {
			continue
		}

		name = strings.ReplaceAll(name, " sp.", "")
		name = strings.ReplaceAll(name, " spp.", "")
		name = stripDigits(name)
		name = collapseSpaces(name)

		if len([]rune(name)) < 2 {
			continue
		}
		q.Names = append(q.Names, name)
	}

	return q
}

// Empty reports whether the query has no usable names left.
func (q Query) Empty() bool {
	return len(q.Names) == 0
}

// Finest returns the most specific remaining name, or an empty string.
func (q Query) Finest() string {
	if q.Empty() {
		return ""
	}
	return q.Names[len(q.Names)-1]
}

// Cleaned returns the cleaned lineage string, names joined by semicolons.
// This is the string recorded on merged occurrence rows.
func (q Query) Cleaned() string {
	return strings.Join(q.Names, ";")
}

// Key returns the canonical cache key for the query: case-normalized
// names joined by semicolons, with a marker when the species rank was
// stripped by policy. The marker keeps trimmed and untrimmed variants of
// the same raw lineage from colliding in the cache.
func (q Query) Key() string {
	names := make([]string, len(q.Names))
	for i, n := range q.Names {
		names[i] = strings.ToLower(n)
	}
	key := strings.Join(names, ";")
	if q.SpeciesTrimmed {
		key += "|nosp"
	}
	return key
}

// KingdomOnly reports whether the lineage consists of a single
// kingdom-level name equal to the given kingdom (case-insensitive).
func (q Query) KingdomOnly(kingdom string) bool {
	return len(q.Names) == 1 && strings.EqualFold(q.Names[0], kingdom)
}

func stripDigits(s string) string {
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseSpaces(s string) string {
	if !strings.Contains(s, "  ") {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(s), " ")
}
