// Package ioresolve orchestrates the parallel resolution run: it derives
// distinct lineage queries from occurrence rows, fans them out to a
// worker pool backed by a source adapter, and collects results in the
// run-scoped cache. Workers never write occurrence rows; the merge stage
// runs strictly after the pool drains.
package ioresolve

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/lineage"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/gnames/gnoccur/pkg/parserpool"
	"github.com/gnames/gnoccur/pkg/taxon"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Lineages consisting of this single kingdom name carry no usable
// signal and are short-circuited before dispatch.
const uninformativeKingdom = "Eukaryota"

// Stats accumulates counters over one resolution run.
type Stats struct {
	RunID          string
	Provider       string
	Rows           int
	DistinctKeys   int
	ShortCircuited int
	LocalHits      int
	RemoteCalls    int
	Resolved       int
	Unresolved     int
	Duration       time.Duration
}

// Engine runs the dispatch stage. One Engine serves one run.
type Engine struct {
	cfg      *config.Config
	source   taxon.Resolver
	cache    *taxon.Cache
	local    taxon.LocalIndex
	parser   parserpool.Pool
	policy   lineage.SkipPolicy
	progress bool

	localHits   atomic.Int64
	remoteCalls atomic.Int64
	stats       Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocalIndex attaches a local reference index. It is consulted
// before any remote call.
func WithLocalIndex(idx taxon.LocalIndex) Option {
	return func(e *Engine) {
		e.local = idx
	}
}

// WithParserPool attaches a parser pool for name canonicalization
// before lookups.
func WithParserPool(p parserpool.Pool) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// WithPolicy sets the species-rank skip policy applied to every lineage
// before key computation.
func WithPolicy(p lineage.SkipPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithProgress toggles the terminal progress bar.
func WithProgress(on bool) Option {
	return func(e *Engine) {
		e.progress = on
	}
}

// New creates an Engine for one resolution run.
func New(cfg *config.Config, source taxon.Resolver, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		source: source,
		cache:  taxon.NewCache(),
		policy: lineage.NewSkipPolicy(cfg.SkipSpeciesAssays),
	}
	e.stats.RunID = uuid.NewString()
	e.stats.Provider = cfg.Provider
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Queries derives the distinct, policy-filtered lineage queries from
// occurrence rows. Empty lineages and single-name Eukaryota lineages
// are short-circuited here: they never reach the worker pool and get
// the placeholder identity during merge.
func (e *Engine) Queries(rows []occurrence.Row) []lineage.Query {
	e.stats.Rows = len(rows)

	seen := make(map[string]struct{}, len(rows))
	skipped := make(map[string]struct{})
	var queries []lineage.Query

	for _, row := range rows {
		q := e.policy.Filter(lineage.Parse(row.Verbatim, row.Assay))
		key := q.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if q.Empty() || q.KingdomOnly(uninformativeKingdom) {
			skipped[key] = struct{}{}
			continue
		}
		queries = append(queries, q)
	}

	e.stats.DistinctKeys = len(queries)
	e.stats.ShortCircuited = len(skipped)

	slog.Info("Prepared lineage queries",
		"rows", len(rows),
		"distinct", len(queries),
		"short_circuited", len(skipped),
	)
	return queries
}

// ResolveAll resolves every query through the worker pool and returns
// the completed key-to-result map. It blocks until all workers drain;
// on the first worker error the pool is cancelled and the error
// returned. A panicking worker poisons only its own key.
func (e *Engine) ResolveAll(
	ctx context.Context,
	queries []lineage.Query,
) (map[string]taxon.MatchResult, error) {
	start := time.Now()

	var bar *pb.ProgressBar
	if e.progress {
		bar = pb.Full.Start(len(queries))
		bar.Set("prefix", "Resolving lineages: ")
		bar.Set(pb.CleanOnFinish, true)
	}

	chIn := make(chan lineage.Query)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		for _, q := range queries {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			case chIn <- q:
			}
		}
		return nil
	})

	for range e.cfg.Jobs() {
		g.Go(func() error {
			return e.worker(gCtx, chIn, bar)
		})
	}

	err := g.Wait()
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	results := e.cache.All()
	e.stats.LocalHits = int(e.localHits.Load())
	e.stats.RemoteCalls = int(e.remoteCalls.Load())
	e.stats.Resolved, e.stats.Unresolved = 0, 0
	for _, res := range results {
		if res.Resolved() {
			e.stats.Resolved++
		} else {
			e.stats.Unresolved++
		}
	}
	e.stats.Duration = time.Since(start)

	slog.Info("Resolution run finished",
		"run_id", e.stats.RunID,
		"provider", e.stats.Provider,
		"resolved", e.stats.Resolved,
		"unresolved", e.stats.Unresolved,
		"local_hits", e.stats.LocalHits,
		"remote_calls", e.stats.RemoteCalls,
	)
	return results, nil
}

// Stats returns the counters of the run. Valid after ResolveAll.
func (e *Engine) Stats() Stats {
	return e.stats
}

func (e *Engine) worker(
	ctx context.Context,
	chIn <-chan lineage.Query,
	bar *pb.ProgressBar,
) error {
	for q := range chIn {
		select {
		case <-ctx.Done():
			for range chIn {
			}
			return ctx.Err()
		default:
		}

		if err := e.resolveOne(ctx, q); err != nil {
			return err
		}
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

// resolveOne resolves a single query, first through the local index,
// then through the source adapter. The result lands in the cache under
// the query's canonical key. Claim keeps concurrent duplicates from
// hitting the backbone twice.
func (e *Engine) resolveOne(ctx context.Context, q lineage.Query) (err error) {
	key := q.Key()
	if !e.cache.Claim(key) {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Resolution worker panicked",
				"key", key, "panic", r)
			e.cache.Set(taxon.Unresolved(
				key,
				taxon.Source(e.cfg.Provider),
				fmt.Sprintf("worker panic: %v", r),
			))
			err = nil
		}
	}()

	cq := e.canonicalize(q)

	if e.local != nil && e.cfg.Provider == config.ProviderWoRMS {
		if res, ok := e.local.Lookup(cq.Finest()); ok {
			res.Key = key
			res.KeyID = taxon.KeyID(key)
			e.cache.Set(res)
			e.localHits.Add(1)
			return nil
		}
	}

	e.remoteCalls.Add(1)
	res, err := e.source.Resolve(ctx, cq)
	if err != nil {
		return err
	}
	res.Key = key
	res.KeyID = taxon.KeyID(key)
	e.cache.Set(res)
	return nil
}

// canonicalize rewrites the query's names into their canonical simple
// forms. The original query's key is kept by the caller, so
// canonicalization never changes cache identity.
func (e *Engine) canonicalize(q lineage.Query) lineage.Query {
	if e.parser == nil {
		return q
	}
	names := make([]string, len(q.Names))
	for i, n := range q.Names {
		names[i] = e.parser.Canonical(n)
	}
	res := q
	res.Names = names
	return res
}
