package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/pdxkit/clausewitz/extract"
	"github.com/pdxkit/clausewitz/script"
)

// candidate is one searchable name with where it came from.
type candidate struct {
	Name   string
	Path   string
	Detail string
}

type match struct {
	candidate
	Distance int
}

func (c *cli) findCmd() *cobra.Command {
	var kindName string
	var limit int
	var count bool
	cmd := &cobra.Command{
		Use:   "find PATTERN PATH...",
		Short: "Fuzzy search variant and unit names",
		Long: `Searches equipment variant names and unit names for PATTERN with
case-insensitive fuzzy matching. Matches are ranked by edit distance.`,
		Example: `  clausewitz find "panzer" history/units
  clausewitz find --kind names "bismark" common/units/names_ships`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var only []extract.Kind
			switch strings.ToLower(kindName) {
			case "":
				only = []extract.Kind{extract.KindEquipment, extract.KindDesigns, extract.KindNames}
			case "equipment":
				only = []extract.Kind{extract.KindEquipment, extract.KindDesigns}
			case "names":
				only = []extract.Kind{extract.KindNames}
			default:
				return fmt.Errorf("unknown kind %q (want equipment or names)", kindName)
			}

			batch, err := c.load(cmd.Context(), args[1:], script.DefaultConfig())
			if err != nil {
				return err
			}
			c.reportFailed(batch)

			results, _ := c.extractBatch(cmd.Context(), batch, "", nil)
			var pool []candidate
			for _, e := range results {
				if slices.Contains(only, e.Kind) {
					pool = append(pool, candidates(e)...)
				}
			}

			matches := rank(args[0], pool)
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			if count {
				fmt.Fprintln(cmd.OutOrStdout(), len(matches))
				return nil
			}
			printMatches(cmd.OutOrStdout(), matches)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindName, "kind", "k", "", "search only equipment or names")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum matches (0 for all)")
	cmd.Flags().BoolVar(&count, "count", false, "print only the match count")
	return cmd
}

// candidates lists the searchable names of one extraction result.
func candidates(e extracted) []candidate {
	if e.Result == nil {
		return nil
	}
	var out []candidate
	switch v := e.Result.Value.(type) {
	case map[string]*extract.Variant:
		for _, name := range slices.Sorted(maps.Keys(v)) {
			out = append(out, candidate{Name: name, Path: e.Path, Detail: v[name].Type})
		}
	case map[string]map[string]*extract.Variant:
		for _, tag := range slices.Sorted(maps.Keys(v)) {
			for _, name := range slices.Sorted(maps.Keys(v[tag])) {
				if v[tag][name].Name != name {
					continue
				}
				out = append(out, candidate{Name: name, Path: e.Path, Detail: tag + " " + v[tag][name].Type})
			}
		}
	case []extract.NameRecord:
		for _, n := range v {
			out = append(out, candidate{Name: n.Name, Path: e.Path, Detail: n.Category + " " + n.Group})
		}
	}
	return out
}

// rank returns the candidates matching pattern, best first.
func rank(pattern string, pool []candidate) []match {
	names := make([]string, len(pool))
	for i, c := range pool {
		names[i] = c.Name
	}
	ranks := fuzzy.RankFindFold(pattern, names)
	sort.Stable(ranks)

	out := make([]match, len(ranks))
	for i, r := range ranks {
		out[i] = match{candidate: pool[r.OriginalIndex], Distance: r.Distance}
	}
	return out
}

func printMatches(w io.Writer, matches []match) {
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, strings.TrimSpace(m.Detail), m.Path)
	}
}
