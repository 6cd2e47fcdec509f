package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdxkit/clausewitz"
	"github.com/pdxkit/clausewitz/cmd/internal/cliutil"
	"github.com/pdxkit/clausewitz/extract"
	"github.com/pdxkit/clausewitz/internal/cache"
	"github.com/pdxkit/clausewitz/script"
)

// extracted is the extraction outcome for one file.
type extracted struct {
	Path   string          `json:"path" yaml:"path"`
	Hash   string          `json:"-" yaml:"-"`
	Kind   extract.Kind    `json:"kind" yaml:"kind"`
	Result *extract.Result `json:"result,omitempty" yaml:"result,omitempty"`
	// Cached holds the stored JSON of a cache hit in place of Result.
	Cached any `json:"cached,omitempty" yaml:"cached,omitempty"`
}

func (c *cli) extractCmd() *cobra.Command {
	var kindName, format, output, cachePath string
	cmd := &cobra.Command{
		Use:   "extract PATH...",
		Short: "Extract typed records from files",
		Long: `Extracts typed records from each file. The record kind is detected
from the file path (history/states, map/strategicregions, colors.txt,
common/units/names*, history/units) unless --kind is given. Files of no
known kind are skipped.

With --cache (or CLAUSEWITZ_CACHE), results are memoized by file content
hash and path in a SQLite database.`,
		Example: `  clausewitz extract testdata/game
  clausewitz extract --kind state --format yaml history/states
  clausewitz extract --cache ~/.cache/clausewitz.db game/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cliutil.CheckFormat(format, cliutil.FormatJSON, cliutil.FormatYAML); err != nil {
				return err
			}
			forced, err := parseKindFlag(kindName)
			if err != nil {
				return err
			}
			if cachePath == "" {
				cachePath = c.cfg.CachePath
			}

			batch, err := c.load(cmd.Context(), args, script.DefaultConfig())
			if err != nil {
				return err
			}

			var memo *cache.Cache
			if cachePath != "" {
				memo, err = cache.Open(cachePath, c.logger)
				if err != nil {
					return err
				}
				defer memo.Close()
			}

			results, failed := c.extractBatch(cmd.Context(), batch, forced, memo)

			w, closeFn, err := cliutil.GetOutput(output)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := cliutil.Encode(w, format, results); err != nil {
				return err
			}

			if c.reportFailed(batch) {
				return exitStatus(exitSyntax)
			}
			if failed > 0 || len(batch.Failed()) > 0 {
				return exitStatus(exitError)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindName, "kind", "k", "", fmt.Sprintf("record kind %v (default: detect from path)", extract.Kinds()))
	cmd.Flags().StringVarP(&format, "format", "f", cliutil.FormatJSON, "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&cachePath, "cache", "", "memoize results in this SQLite file")
	return cmd
}

func parseKindFlag(name string) (extract.Kind, error) {
	if name == "" {
		return "", nil
	}
	return extract.ParseKind(name)
}

// extractBatch runs the matching extractor on every parsed file of
// batch. Extraction errors are printed to stderr and counted.
func (c *cli) extractBatch(ctx context.Context, batch *clausewitz.Batch, forced extract.Kind, memo *cache.Cache) ([]extracted, int) {
	var out []extracted
	failed := 0
	for _, f := range batch.Files {
		if f.Document == nil {
			continue
		}
		kind, ok := kindFor(forced, f.Path)
		if !ok {
			if c.logger != nil {
				c.logger.Debug("skipping file of unknown kind", slog.String("path", f.Path))
			}
			continue
		}
		e := extracted{Path: f.Path, Hash: f.Hash, Kind: kind}

		if memo != nil {
			if v, ok := c.cached(ctx, memo, f.Path, f.Hash, kind); ok {
				e.Cached = v
				out = append(out, e)
				continue
			}
		}

		res, err := extract.Run(kind, f.Document, c.extractOpts()...)
		if err != nil {
			failed++
			var xe *script.ExtractError
			if errors.As(err, &xe) {
				fmt.Fprintln(os.Stderr, xe.Error())
			} else {
				fmt.Fprintf(os.Stderr, "%s: %v\n", f.Path, err)
			}
			continue
		}
		e.Result = res
		out = append(out, e)

		if memo != nil {
			c.remember(ctx, memo, f.Path, f.Hash, res)
		}
	}
	return out, failed
}

func (c *cli) cached(ctx context.Context, memo *cache.Cache, path, hash string, kind extract.Kind) (any, bool) {
	data, ok, err := memo.Get(ctx, hash, string(kind), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache lookup: %v\n", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cached result for %s is corrupt: %v\n", path, err)
		return nil, false
	}
	return v, true
}

func (c *cli) remember(ctx context.Context, memo *cache.Cache, path, hash string, res *extract.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: encode result: %v\n", err)
		return
	}
	if err := memo.Put(ctx, hash, string(res.Kind), path, data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache store: %v\n", err)
	}
}
