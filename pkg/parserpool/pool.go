// Package parserpool provides a pool of gnparser instances for concurrent
// canonicalization of scientific names. This is a pure package - parsing
// is computation, not I/O.
package parserpool

import (
	"runtime"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
)

// Pool provides a pool of gnparser instances shared by resolution
// workers. Classifier output often carries authorship, qualifiers or
// annotations that backbone APIs reject; Canonical strips them down to
// the canonical name form before lookup.
type Pool interface {
	// Canonical returns the simple canonical form of a scientific name.
	// Names gnparser cannot parse are returned unchanged. This method is
	// safe for concurrent use.
	Canonical(name string) string

	// Close shuts down the parser pool and releases resources.
	// After calling Close, the pool should not be used.
	Close()
}

type poolImpl struct {
	ch       chan gnparser.GNparser
	poolSize int
}

// NewPool creates a new parser pool with the specified number of workers.
// If jobsNum is 0, it defaults to runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	poolSize := jobsNum
	if poolSize == 0 {
		poolSize = runtime.NumCPU()
	}

	cfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Zoological),
	)
	ch := gnparser.NewPool(cfg, poolSize)

	return &poolImpl{
		ch:       ch,
		poolSize: poolSize,
	}
}

// Canonical retrieves a parser from the pool, parses the name, returns
// the parser, and reports the canonical simple form.
func (p *poolImpl) Canonical(name string) string {
	parser := <-p.ch
	res := parser.ParseName(name)
	p.ch <- parser

	if res.Parsed && res.Canonical != nil {
		return res.Canonical.Simple
	}
	return name
}

// Close shuts down the parser pool, draining any remaining parsers.
func (p *poolImpl) Close() {
	if p.ch != nil {
		close(p.ch)
		for range p.ch {
		}
	}
}
