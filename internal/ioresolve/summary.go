package ioresolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnoccur/pkg/taxon"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Unresolved keys shown in the review table before the list is elided.
const maxUnresolvedRows = 20

// Summary renders the run report: counters, duration and a review table
// of unresolved lineages with their failure causes.
func (s Stats) Summary(results map[string]taxon.MatchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s, provider %s\n", s.RunID, s.Provider)
	fmt.Fprintf(&b, "Occurrence rows:    %s\n", humanize.Comma(int64(s.Rows)))
	fmt.Fprintf(&b, "Distinct lineages:  %s\n",
		humanize.Comma(int64(s.DistinctKeys)))
	fmt.Fprintf(&b, "Short-circuited:    %s\n",
		humanize.Comma(int64(s.ShortCircuited)))
	fmt.Fprintf(&b, "Local index hits:   %s\n",
		humanize.Comma(int64(s.LocalHits)))
	fmt.Fprintf(&b, "Remote lookups:     %s\n",
		humanize.Comma(int64(s.RemoteCalls)))
	fmt.Fprintf(&b, "Resolved:           %s\n",
		humanize.Comma(int64(s.Resolved)))
	fmt.Fprintf(&b, "Unresolved:         %s\n",
		humanize.Comma(int64(s.Unresolved)))
	fmt.Fprintf(&b, "Duration:           %s\n",
		gnfmt.TimeString(s.Duration.Seconds()))

	unresolved := unresolvedKeys(results)
	if len(unresolved) == 0 {
		return b.String()
	}

	b.WriteString("\nUnresolved lineages:\n")
	b.WriteString(unresolvedTable(unresolved, results))
	b.WriteString("\n")
	if len(unresolved) > maxUnresolvedRows {
		fmt.Fprintf(&b, "... and %s more\n",
			humanize.Comma(int64(len(unresolved)-maxUnresolvedRows)))
	}
	return b.String()
}

func unresolvedKeys(results map[string]taxon.MatchResult) []string {
	var keys []string
	for key, res := range results {
		if !res.Resolved() {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func unresolvedTable(
	keys []string,
	results map[string]taxon.MatchResult,
) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Lineage", "Cause"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, WidthMax: 60},
		{Number: 2, Align: text.AlignLeft, WidthMax: 40},
	})

	for i, key := range keys {
		if i == maxUnresolvedRows {
			break
		}
		tw.AppendRow(table.Row{key, results[key].FailureCause})
	}
	return tw.Render()
}
