// Package iolocal builds the optional local reference index: an
// in-memory, exact-match map of pre-resolved taxonomy built once per run
// from a bundled dataset. Used with the WoRMS provider only; a hit here
// replaces a remote call.
package iolocal

import (
	"context"
	"database/sql"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/taxon"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGo)
)

// entry is one pre-resolved taxon from the reference dataset.
type entry struct {
	scientificName   string
	scientificNameID string
	rank             string
}

// Index is the in-memory exact-match shortcut. Once built it is
// read-only for the remainder of the run.
type Index struct {
	entries map[string]entry
}

var _ taxon.LocalIndex = (*Index)(nil)

// New loads the reference dataset named by the configuration. The format
// is chosen by extension: .sqlite/.db loads a `taxa` table, anything
// else is parsed as delimited text with a header row. An unreadable file
// while the index is enabled is a configuration error - it surfaces
// before any parallel work starts.
func New(ctx context.Context, cfg *config.Config) (*Index, error) {
	path := cfg.LocalRef.Path

	var entries map[string]entry
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		entries, err = loadSQLite(ctx, path)
	default:
		entries, err = loadDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Built local reference index",
		"path", path, "taxa", len(entries))
	return &Index{entries: entries}, nil
}

// Lookup finds a pre-resolved taxon by exact, case-normalized name
// match. No fuzzy logic.
func (x *Index) Lookup(name string) (taxon.MatchResult, bool) {
	e, ok := x.entries[normalize(name)]
	if !ok {
		return taxon.MatchResult{}, false
	}
	return taxon.MatchResult{
		ScientificName:   e.scientificName,
		ScientificNameID: e.scientificNameID,
		Rank:             strings.ToLower(e.rank),
		Match:            taxon.Exact,
		Source:           taxon.SourceLocal,
	}, true
}

// Len returns the number of indexed taxa.
func (x *Index) Len() int {
	return len(x.entries)
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// loadDelimited reads a TSV or CSV reference file. Required columns:
// scientificName, scientificNameID; taxonRank is optional. Column order
// is free, matching is by header name.
func loadDelimited(path string) (map[string]entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1

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
	nameCol, ok := cols["scientificname"]
	if !ok {
		return nil, FormatError(path, "missing scientificName column")
	}
	idCol, ok := cols["scientificnameid"]
	if !ok {
		return nil, FormatError(path, "missing scientificNameID column")
	}
	rankCol, hasRank := cols["taxonrank"]

	entries := make(map[string]entry, len(records)-1)
	for _, rec := range records[1:] {
		if nameCol >= len(rec) || idCol >= len(rec) {
			continue
		}
		name := strings.TrimSpace(rec[nameCol])
		id := strings.TrimSpace(rec[idCol])
		if name == "" || id == "" {
			continue
		}
		e := entry{scientificName: name, scientificNameID: id}
		if hasRank && rankCol < len(rec) {
			e.rank = strings.TrimSpace(rec[rankCol])
		}
		entries[normalize(name)] = e
	}
	return entries, nil
}

// loadSQLite reads the reference from a `taxa` table with
// scientific_name, scientific_name_id and rank columns.
func loadSQLite(ctx context.Context, path string) (map[string]entry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, ReadError(path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ReadError(path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"SELECT scientific_name, scientific_name_id, rank FROM taxa",
	)
	if err != nil {
		return nil, FormatError(path, err.Error())
	}
	defer rows.Close()

	entries := make(map[string]entry)
	for rows.Next() {
		var e entry
		var rank sql.NullString
		err = rows.Scan(&e.scientificName, &e.scientificNameID, &rank)
		if err != nil {
			return nil, FormatError(path, err.Error())
		}
		e.rank = rank.String
		if e.scientificName == "" || e.scientificNameID == "" {
			continue
		}
		entries[normalize(e.scientificName)] = e
	}
	if err = rows.Err(); err != nil {
		return nil, ReadError(path, err)
	}
	return entries, nil
}
