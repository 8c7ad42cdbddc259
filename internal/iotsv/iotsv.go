// Package iotsv reads and writes occurrence tables as tab-separated
// files. It is the interface boundary to the ingestion and serialization
// stages of the wider pipeline: only the columns the resolution engine
// needs are interpreted, everything else is the concern of upstream and
// downstream tooling.
package iotsv

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/gnames/gnoccur/pkg/occurrence"
)

// Column headers recognized on input. Matching is case-insensitive;
// the first header found wins.
var (
	asvCols      = []string{"asv_id", "featureid", "feature_id"}
	sampleCols   = []string{"samp_name", "sample_id", "eventid"}
	assayCols    = []string{"assay_name", "assay"}
	verbatimCols = []string{"verbatimidentification", "taxonomy", "lineage"}
	readsCols    = []string{"organismquantity", "reads", "read_count"}
)

// Read loads occurrence rows from a TSV file. asv_id, assay_name and
// verbatimIdentification columns are required.
func Read(path string) ([]occurrence.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, ReadError(path, err)
	}
	if len(records) == 0 {
		return nil, FormatError(path, "file has no header row")
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	asvCol, ok := findCol(cols, asvCols)
	if !ok {
		return nil, FormatError(path, "missing asv_id column")
	}
	assayCol, ok := findCol(cols, assayCols)
	if !ok {
		return nil, FormatError(path, "missing assay_name column")
	}
	verbatimCol, ok := findCol(cols, verbatimCols)
	if !ok {
		return nil, FormatError(path, "missing verbatimIdentification column")
	}
	sampleCol, hasSample := findCol(cols, sampleCols)
	readsCol, hasReads := findCol(cols, readsCols)

	rows := make([]occurrence.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := occurrence.Row{
			ASVID:    field(rec, asvCol),
			Assay:    field(rec, assayCol),
			Verbatim: field(rec, verbatimCol),
		}
		if hasSample {
			row.SampleID = field(rec, sampleCol)
		}
		if hasReads {
			row.ReadCount, _ = strconv.Atoi(field(rec, readsCol))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write serializes merged occurrence rows, identity columns first, then
// the attached taxonomy.
func Write(path string, rows []occurrence.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return WriteError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := []string{
		"asv_id", "samp_name", "assay_name", "organismQuantity",
		"verbatimIdentification", "cleanedTaxonomy",
		"scientificName", "scientificNameID", "taxonRank",
		"nameAccordingTo", "taxonomicRemarks",
	}
	if err = w.Write(header); err != nil {
		return WriteError(path, err)
	}

	for _, row := range rows {
		rec := []string{
			row.ASVID, row.SampleID, row.Assay,
			strconv.Itoa(row.ReadCount),
			row.Verbatim, row.CleanedTaxonomy,
			row.ScientificName, row.ScientificNameID, row.TaxonRank,
			row.NameAccordingTo, row.TaxonomicRemarks,
		}
		if err = w.Write(rec); err != nil {
			return WriteError(path, err)
		}
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return WriteError(path, err)
	}
	return nil
}

func findCol(cols map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if i, ok := cols[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
