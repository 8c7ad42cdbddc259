package ioworms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnames/gnoccur/internal/ioworms"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/gnames/gnoccur/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record map[string]any

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptRetryMaxAttempts(3),
		config.OptRetryBaseDelayMs(1),
		config.OptRetryMaxDelayMs(1),
	})
	return cfg
}

// newServer fakes AphiaRecordsByName: responses maps a queried name to
// its records; unknown names get 204.
func newServer(t *testing.T, responses map[string][]record) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			name, err := url.PathUnescape(
				r.URL.Path[len("/AphiaRecordsByName/"):],
			)
			require.NoError(t, err)

			records, ok := responses[name]
			if !ok {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(records))
		},
	))
}

func TestResolveExactSpecies(t *testing.T) {
	srv := newServer(t, map[string][]record{
		"Mytilus edulis": {{
			"AphiaID":        140480,
			"scientificname": "Mytilus edulis",
			"lsid":           "urn:lsid:marinespecies.org:taxname:140480",
			"status":         "accepted",
			"rank":           "Species",
			"kingdom":        "Animalia",
			"phylum":         "Mollusca",
			"genus":          "Mytilus",
		}},
	})
	defer srv.Close()

	client := ioworms.New(testConfig(), ioworms.WithBaseURL(srv.URL))
	q := lineage.Parse("Animalia;Mollusca;Bivalvia;Mytilida;Mytilidae;Mytilus;Mytilus edulis", "coi")

	res, err := client.Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "Mytilus edulis", res.ScientificName)
	assert.Equal(t, "urn:lsid:marinespecies.org:taxname:140480", res.ScientificNameID)
	assert.Equal(t, "species", res.Rank)
	assert.Equal(t, taxon.Exact, res.Match)
	assert.Equal(t, taxon.SourceWoRMS, res.Source)
	assert.Equal(t, "Animalia", res.Classification["kingdom"])
	assert.Equal(t, q.Key(), res.Key)
}

func TestResolveFallsBackToCoarserRank(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			name, _ := url.PathUnescape(
				r.URL.Path[len("/AphiaRecordsByName/"):],
			)
			requested = append(requested, name)
			if name != "Mytilidae" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			_ = json.NewEncoder(w).Encode([]record{{
				"AphiaID":        211,
				"scientificname": "Mytilidae",
				"lsid":           "urn:lsid:marinespecies.org:taxname:211",
				"status":         "accepted",
				"rank":           "Family",
			}})
		},
	))
	defer srv.Close()

	client := ioworms.New(testConfig(), ioworms.WithBaseURL(srv.URL))
	q := lineage.Parse("Animalia;Mollusca;Mytilidae;Notamussel;Notamussel fakeus", "coi")

	res, err := client.Resolve(context.Background(), q)
	require.NoError(t, err)

	// finest names first, then the family that matched
	assert.Equal(t,
		[]string{"Notamussel fakeus", "Notamussel", "Mytilidae"},
		requested,
	)
	assert.Equal(t, "family", res.Rank)
	assert.Equal(t, taxon.Exact, res.Match)
}

func TestResolveNoMatchAtAnyRank(t *testing.T) {
	srv := newServer(t, nil)
	defer srv.Close()

	client := ioworms.New(testConfig(), ioworms.WithBaseURL(srv.URL))
	q := lineage.Parse("Madeuposia;Fakeia", "coi")

	res, err := client.Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, taxon.NoMatch, res.Match)
	assert.Equal(t, taxon.UnresolvedName, res.ScientificName)
	assert.Equal(t, taxon.UnresolvedID, res.ScientificNameID)
	assert.Equal(t, "no match at any rank", res.FailureCause)
}

func TestResolveSynonymFollowsValidTaxon(t *testing.T) {
	srv := newServer(t, map[string][]record{
		"Cancer pagurus oldname": {{
			"AphiaID":        999,
			"scientificname": "Cancer pagurus oldname",
			"lsid":           "urn:lsid:marinespecies.org:taxname:999",
			"status":         "unaccepted",
			"rank":           "Species",
			"valid_AphiaID":  107276,
			"valid_name":     "Cancer pagurus",
		}},
	})
	defer srv.Close()

	client := ioworms.New(testConfig(), ioworms.WithBaseURL(srv.URL))
	q := lineage.Query{
		Assay: "coi",
		Names: []string{"Animalia", "Cancer pagurus oldname"},
	}

	res, err := client.Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, taxon.AcceptedSynonym, res.Match)
	assert.Equal(t, "Cancer pagurus", res.ScientificName)
	assert.Equal(t, "urn:lsid:marinespecies.org:taxname:107276", res.ScientificNameID)
}

func TestResolveRetriesThrottle(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_ = json.NewEncoder(w).Encode([]record{{
				"AphiaID":        140480,
				"scientificname": "Mytilus edulis",
				"lsid":           "urn:lsid:marinespecies.org:taxname:140480",
				"status":         "accepted",
				"rank":           "Species",
			}})
		},
	))
	defer srv.Close()

	client := ioworms.New(
		testConfig(),
		ioworms.WithBaseURL(srv.URL),
		ioworms.WithSleeper(noSleep),
	)
	q := lineage.Query{Assay: "coi", Names: []string{"Mytilus edulis"}}

	res, err := client.Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, taxon.Exact, res.Match)
	// throttled twice, succeeded on the third call, no extra call after
	assert.Equal(t, int32(3), calls.Load())
}

func TestResolveExhaustedRetriesDowngradeToNoMatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	))
	defer srv.Close()

	client := ioworms.New(
		testConfig(),
		ioworms.WithBaseURL(srv.URL),
		ioworms.WithSleeper(noSleep),
	)
	q := lineage.Query{Assay: "coi", Names: []string{"Mytilus"}}

	res, err := client.Resolve(context.Background(), q)
	require.NoError(t, err, "transient failures never abort the run")

	assert.Equal(t, taxon.NoMatch, res.Match)
	assert.Contains(t, res.FailureCause, "503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestResolveEmptyLineageIsInputError(t *testing.T) {
	client := ioworms.New(testConfig())
	_, err := client.Resolve(context.Background(), lineage.Query{Assay: "coi"})
	require.Error(t, err)
}
