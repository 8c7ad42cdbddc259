// Package iogbif resolves lineages against the GBIF backbone taxonomy
// through the species/match API.
package iogbif

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

const defaultBaseURL = "https://api.gbif.org/v1"

// matchResponse models the species/match payload.
type matchResponse struct {
	UsageKey         int64  `json:"usageKey"`
	AcceptedUsageKey int64  `json:"acceptedUsageKey"`
	ScientificName   string `json:"scientificName"`
	CanonicalName    string `json:"canonicalName"`
	Rank             string `json:"rank"`
	Status           string `json:"status"`
	Confidence       int    `json:"confidence"`
	MatchType        string `json:"matchType"`
	Synonym          bool   `json:"synonym"`
	Kingdom          string `json:"kingdom"`
	Phylum           string `json:"phylum"`
	Class            string `json:"class"`
	Order            string `json:"order"`
	Family           string `json:"family"`
	Genus            string `json:"genus"`
}

// Client resolves lineage queries against the GBIF backbone.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      iohttp.RetryPolicy
}

var _ taxon.Resolver = (*Client)(nil)

// Option customizes the client.
type Option func(*Client)

// WithBaseURL overrides the GBIF API endpoint (used in tests).
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

// New creates a GBIF client configured from cfg.
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
// ranks until GBIF returns a usable match or ranks are exhausted. Strict
// matching is requested so rank fallback stays under this adapter's
// control. Transient API failures are retried with backoff; when retries
// run out the failure is recorded on a no-match result and the run
// continues. An empty lineage is an input error.
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

		match, err := c.speciesMatch(ctx, name)
		if err != nil {
			lastCause = err.Error()
			slog.Warn("GBIF lookup failed",
				"name", name, "error", err)
			continue
		}
		if match.MatchType == "NONE" || match.UsageKey == 0 {
			continue
		}

		return c.toResult(q, match, name), nil
	}

	if lastCause == "" {
		lastCause = "no match at any rank"
	}
	return taxon.Unresolved(q.Key(), taxon.SourceGBIF, lastCause), nil
}

// speciesMatch calls the species/match endpoint for one name, retrying
// transient failures. GBIF answers 200 with matchType NONE for unknown
// names, so only transport and server errors surface here.
func (c *Client) speciesMatch(
	ctx context.Context,
	name string,
) (matchResponse, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("strict", "true")
	endpoint := fmt.Sprintf(
		"%s/species/match?%s", c.baseURL, params.Encode(),
	)

	var match matchResponse
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
		return json.Unmarshal(body, &match)
	})
	if err != nil {
		return matchResponse{}, err
	}
	return match, nil
}

// toResult converts a GBIF match into a MatchResult. A synonym points at
// its accepted usage; the identifier is the GBIF species page URL, the
// closest analog of a stable resolvable identifier the facility offers.
func (c *Client) toResult(
	q lineage.Query,
	match matchResponse,
	queried string,
) taxon.MatchResult {
	matchType := taxon.Exact
	switch {
	case match.Synonym && match.AcceptedUsageKey > 0:
		matchType = taxon.AcceptedSynonym
	case match.MatchType == "FUZZY":
		matchType = taxon.Fuzzy
	}

	key := match.UsageKey
	if matchType == taxon.AcceptedSynonym {
		key = match.AcceptedUsageKey
	}

	name := match.CanonicalName
	if name == "" {
		name = match.ScientificName
	}

	return taxon.MatchResult{
		Key:              q.Key(),
		KeyID:            taxon.KeyID(q.Key()),
		ScientificName:   name,
		ScientificNameID: fmt.Sprintf("https://www.gbif.org/species/%d", key),
		Rank:             strings.ToLower(match.Rank),
		Match:            matchType,
		Source:           taxon.SourceGBIF,
		Classification:   classification(match),
	}
}

func classification(match matchResponse) map[string]string {
	ranks := map[string]string{
		"kingdom": match.Kingdom,
		"phylum":  match.Phylum,
		"class":   match.Class,
		"order":   match.Order,
		"family":  match.Family,
		"genus":   match.Genus,
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
