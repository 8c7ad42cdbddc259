// Package ioworms resolves lineages against the World Register of Marine
// Species (WoRMS) REST API.
package ioworms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gnames/gnoccur/internal/iohttp"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/gnames/gnoccur/pkg/taxon"
)

const defaultBaseURL = "https://www.marinespecies.org/rest"

// aphiaRecord models one record of an AphiaRecordsByName response.
type aphiaRecord struct {
	AphiaID        int    `json:"AphiaID"`
	ScientificName string `json:"scientificname"`
	LSID           string `json:"lsid"`
	Status         string `json:"status"`
	Rank           string `json:"rank"`
	ValidAphiaID   int    `json:"valid_AphiaID"`
	ValidName      string `json:"valid_name"`
	Kingdom        string `json:"kingdom"`
	Phylum         string `json:"phylum"`
	Class          string `json:"class"`
	Order          string `json:"order"`
	Family         string `json:"family"`
	Genus          string `json:"genus"`
}

// Client resolves lineage queries against WoRMS.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      iohttp.RetryPolicy
}

var _ taxon.Resolver = (*Client)(nil)

// Option customizes the client.
type Option func(*Client)

// WithBaseURL overrides the WoRMS REST endpoint (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how backoff waits are performed (used in tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.retry.Sleeper = sleeper
	}
}

// New creates a WoRMS client configured from cfg.
func New(cfg *config.Config, opts ...Option) *Client {
	timeout := time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry: iohttp.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
			MaxDelay:    time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Resolve walks the lineage from its finest remaining rank toward coarser
// ranks until WoRMS returns a match or ranks are exhausted. Transient API
// failures are retried with backoff; when retries run out the failure is
// recorded on a no-match result and the run continues. An empty lineage
// is an input error.
func (c *Client) Resolve(
	ctx context.Context,
	q lineage.Query,
) (taxon.MatchResult, error) {
	if q.Empty() {
		return taxon.MatchResult{}, EmptyLineageError(q.Assay)
	}

	var lastCause string
	for i := len(q.Names) - 1; i >= 0; i-- {
		name := q.Names[i]

		records, err := c.recordsByName(ctx, name)
		if err != nil {
			lastCause = err.Error()
			slog.Warn("WoRMS lookup failed",
				"name", name, "error", err)
			continue
		}
		if len(records) == 0 {
			continue
		}

		rec, matchType := pickRecord(records, name)
		return c.toResult(q, rec, matchType), nil
	}

	if lastCause == "" {
		lastCause = "no match at any rank"
	}
	return taxon.Unresolved(q.Key(), taxon.SourceWoRMS, lastCause), nil
}

// recordsByName fetches AphiaRecordsByName for one name, retrying
// transient failures. An empty slice means WoRMS knows no such name.
func (c *Client) recordsByName(
	ctx context.Context,
	name string,
) ([]aphiaRecord, error) {
	endpoint := fmt.Sprintf(
		"%s/AphiaRecordsByName/%s?like=false&marine_only=false",
		c.baseURL, url.PathEscape(name),
	)

	var records []aphiaRecord
	err := c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodGet, endpoint, nil,
		)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		// WoRMS answers 204 when a name is unknown
		if resp.StatusCode == http.StatusNoContent {
			records = nil
			return nil
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return &iohttp.StatusError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(body)),
			}
		}
		return json.Unmarshal(body, &records)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// pickRecord selects one record from a multi-candidate response. An
// accepted-status record wins; otherwise the first record pointing at a
// valid taxon is taken as an accepted synonym; otherwise the first
// record in the provider's own ordering.
func pickRecord(records []aphiaRecord, queried string) (aphiaRecord, taxon.MatchType) {
	for _, rec := range records {
		if rec.Status == "accepted" {
			return rec, directMatchType(rec.ScientificName, queried)
		}
	}
	for _, rec := range records {
		if rec.ValidAphiaID > 0 && rec.ValidName != "" {
			return rec, taxon.AcceptedSynonym
		}
	}
	rec := records[0]
	return rec, directMatchType(rec.ScientificName, queried)
}

func directMatchType(matched, queried string) taxon.MatchType {
	if strings.EqualFold(matched, queried) {
		return taxon.Exact
	}
	return taxon.Fuzzy
}

func (c *Client) toResult(
	q lineage.Query,
	rec aphiaRecord,
	matchType taxon.MatchType,
) taxon.MatchResult {
	name := rec.ScientificName
	id := rec.LSID
	if matchType == taxon.AcceptedSynonym {
		name = rec.ValidName
		id = fmt.Sprintf(
			"urn:lsid:marinespecies.org:taxname:%d", rec.ValidAphiaID,
		)
	}
	if id == "" {
		id = fmt.Sprintf(
			"urn:lsid:marinespecies.org:taxname:%d", rec.AphiaID,
		)
	}

	return taxon.MatchResult{
		Key:              q.Key(),
		KeyID:            taxon.KeyID(q.Key()),
		ScientificName:   name,
		ScientificNameID: id,
		Rank:             strings.ToLower(rec.Rank),
		Match:            matchType,
		Source:           taxon.SourceWoRMS,
		Classification:   classification(rec),
	}
}

func classification(rec aphiaRecord) map[string]string {
	ranks := map[string]string{
		"kingdom": rec.Kingdom,
		"phylum":  rec.Phylum,
		"class":   rec.Class,
		"order":   rec.Order,
		"family":  rec.Family,
		"genus":   rec.Genus,
	}
	res := make(map[string]string)
	for rank, name := range ranks {
		if name != "" {
			res[rank] = name
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}
