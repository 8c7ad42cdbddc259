/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/internal/ioassay"
	"github.com/gnames/gnoccur/internal/iogbif"
	"github.com/gnames/gnoccur/internal/iolocal"
	"github.com/gnames/gnoccur/internal/ioresolve"
	"github.com/gnames/gnoccur/internal/iotsv"
	"github.com/gnames/gnoccur/internal/ioworms"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/errcode"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/gnames/gnoccur/pkg/parserpool"
	"github.com/gnames/gnoccur/pkg/taxon"
	"github.com/spf13/cobra"
)

// getResolveCmd returns the resolve command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getResolveCmd() *cobra.Command {
	var (
		output      string
		mapping     string
		provider    string
		jobs        int
		localRef    string
		skipSpecies []string
		noProgress  bool
	)

	resolveCmd := &cobra.Command{
		Use:   "resolve <occurrence-table.tsv>",
		Short: "Resolve occurrence lineages against a taxonomic backbone",
		Long: `Resolve the verbatim taxonomy of every occurrence row against
WoRMS or the GBIF Backbone Taxonomy.

This command:
  1. Reads a tab-separated occurrence table
  2. Cleans lineages and applies the species-skip rank policy
  3. Resolves distinct lineages in parallel with retries
  4. Merges backbone identities back onto every row
  5. Writes the merged table and an auditable lineage mapping

Assay metadata (target gene, rank depth, species-skip flags) is read
from ~/.config/gnoccur/assays.yaml.

Examples:
  # Resolve against WoRMS (default provider)
  gnoccur resolve occurrence.tsv

  # Resolve against the GBIF backbone with 8 workers
  gnoccur resolve occurrence.tsv -p gbif -j 8

  # Use a local reference index to skip remote calls
  gnoccur resolve occurrence.tsv --local-ref reference.tsv

  # Suppress species matching for an assay
  gnoccur resolve occurrence.tsv --skip-species ssu16sv4v5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runResolve(
				cmd, args[0], output, mapping, provider,
				jobs, localRef, skipSpecies, noProgress,
			)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	resolveCmd.Flags().StringVarP(
		&output, "output", "o", "",
		"merged table path (default <input>-resolved.tsv)",
	)
	resolveCmd.Flags().StringVarP(
		&mapping, "mapping", "m", "",
		"lineage mapping path (default <input>-mapping.json)",
	)
	resolveCmd.Flags().StringVarP(
		&provider, "provider", "p", "",
		"taxonomic backbone: worms or gbif",
	)
	resolveCmd.Flags().IntVarP(
		&jobs, "jobs", "j", 0,
		"number of concurrent lookup workers",
	)
	resolveCmd.Flags().StringVar(
		&localRef, "local-ref", "",
		"local reference index (TSV/CSV/SQLite, worms only)",
	)
	resolveCmd.Flags().StringSliceVar(
		&skipSpecies, "skip-species", []string{},
		"assay names with species-rank matching suppressed",
	)
	resolveCmd.Flags().BoolVar(
		&noProgress, "no-progress", false,
		"disable the progress bar",
	)

	return resolveCmd
}

func runResolve(
	cmd *cobra.Command,
	input string,
	output string,
	mapping string,
	provider string,
	jobs int,
	localRef string,
	skipSpecies []string,
	noProgress bool,
) error {
	ctx := context.Background()

	// Build options from explicitly set flags
	var resolveOpts []config.Option
	if cmd.Flags().Changed("provider") {
		resolveOpts = append(resolveOpts, config.OptProvider(provider))
	}
	if cmd.Flags().Changed("jobs") {
		resolveOpts = append(resolveOpts, config.OptJobsNumber(jobs))
	}
	if cmd.Flags().Changed("local-ref") {
		resolveOpts = append(resolveOpts,
			config.OptLocalRefEnabled(true),
			config.OptLocalRefPath(localRef),
		)
	}
	if cmd.Flags().Changed("skip-species") {
		resolveOpts = append(resolveOpts,
			config.OptSkipSpeciesAssays(
				append(cfg.SkipSpeciesAssays, skipSpecies...),
			),
		)
	}
	if len(resolveOpts) > 0 {
		cfg.Update(resolveOpts)
	}

	if output == "" {
		output = derivePath(input, "-resolved.tsv")
	}
	if mapping == "" {
		mapping = derivePath(input, "-mapping.json")
	}

	source, accordingTo, err := newSource(cfg)
	if err != nil {
		return err
	}

	assaysCfg, err := ioassay.New(cfg).Load()
	if err != nil {
		return err
	}
	policy := assaysCfg.SkipPolicy(cfg.SkipSpeciesAssays)

	engineOpts := []ioresolve.Option{
		ioresolve.WithPolicy(policy),
		ioresolve.WithProgress(!noProgress),
	}

	// The local index only short-cuts WoRMS lookups; its identifiers are
	// WoRMS LSIDs and must not leak into GBIF output.
	if cfg.LocalRef.Enabled && cfg.Provider == config.ProviderWoRMS {
		idx, err := iolocal.New(ctx, cfg)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, ioresolve.WithLocalIndex(idx))
	}

	rows, err := iotsv.Read(input)
	if err != nil {
		return err
	}
	gn.Info("Read <em>%d</em> occurrence rows from <em>%s</em>",
		len(rows), input)

	pool := parserpool.NewPool(cfg.Jobs())
	defer pool.Close()
	engineOpts = append(engineOpts, ioresolve.WithParserPool(pool))

	engine := ioresolve.New(cfg, source, engineOpts...)
	queries := engine.Queries(rows)
	results, err := engine.ResolveAll(ctx, queries)
	if err != nil {
		return err
	}

	mergeStats := occurrence.Merge(rows, results, policy, accordingTo)
	gn.Info("Merged identities: <em>%d</em> rows resolved, <em>%d</em> placeholders",
		mergeStats.Resolved, mergeStats.Unresolved)

	if err = iotsv.Write(output, rows); err != nil {
		return err
	}
	gn.Info("Wrote merged occurrence table to <em>%s</em>", output)

	stats := engine.Stats()
	if err = ioresolve.WriteMapping(mapping, stats, results); err != nil {
		return err
	}
	gn.Info("Wrote lineage mapping to <em>%s</em>", mapping)

	fmt.Println(stats.Summary(results))
	return nil
}

// newSource creates the source adapter for the configured provider and
// the nameAccordingTo attribution written on merged rows.
func newSource(cfg *config.Config) (taxon.Resolver, string, error) {
	switch cfg.Provider {
	case config.ProviderWoRMS:
		return ioworms.New(cfg), "World Register of Marine Species (WoRMS)", nil
	case config.ProviderGBIF:
		return iogbif.New(cfg), "GBIF Backbone Taxonomy", nil
	default:
		err := &gn.Error{
			Code: errcode.BadProviderError,
			Msg: fmt.Sprintf(`<err>Unknown provider <em>%s</em>.</err>
   Supported providers are <em>worms</em> and <em>gbif</em>.`, cfg.Provider),
			Err: errors.New("unknown provider"),
		}
		return nil, "", err
	}
}

// derivePath replaces the input's extension with the given suffix.
func derivePath(input, suffix string) string {
	base := strings.TrimSuffix(input, ".tsv")
	base = strings.TrimSuffix(base, ".txt")
	return base + suffix
}
