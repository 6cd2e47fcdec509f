package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pdxkit/clausewitz"
	"github.com/pdxkit/clausewitz/extract"
	"github.com/pdxkit/clausewitz/script"
)

// buildSource combines directory arguments (walked recursively for .txt
// files) and file arguments (taken as given) into one source.
func buildSource(paths []string) (clausewitz.Source, error) {
	var sources []clausewitz.Source
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		src, err := clausewitz.DirTree(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(files) > 0 {
		sources = append(sources, clausewitz.Files(files...))
	}
	if len(sources) == 0 {
		return nil, clausewitz.ErrNoSources
	}
	if len(sources) == 1 {
		return sources[0], nil
	}
	return clausewitz.Multi(sources...), nil
}

func (c *cli) load(ctx context.Context, paths []string, dc script.DiagnosticConfig) (*clausewitz.Batch, error) {
	src, err := buildSource(paths)
	if err != nil {
		return nil, err
	}
	opts := []clausewitz.Option{
		clausewitz.WithConcurrency(c.cfg.Workers),
		clausewitz.WithDiagnosticConfig(dc),
	}
	if c.logger != nil {
		opts = append(opts, clausewitz.WithLogger(c.logger))
	}
	return clausewitz.Load(ctx, src, opts...)
}

func (c *cli) extractOpts() []extract.Option {
	if c.logger == nil {
		return nil
	}
	return []extract.Option{extract.WithLogger(c.logger)}
}

// kindFor returns the forced kind when set, otherwise the kind detected
// from the file path.
func kindFor(forced extract.Kind, path string) (extract.Kind, bool) {
	if forced != "" {
		return forced, true
	}
	return extract.DetectKind(path)
}

// reportFailed prints load failures to stderr and reports whether any
// of them was a syntax error.
func (c *cli) reportFailed(batch *clausewitz.Batch) bool {
	syntax := false
	for _, f := range batch.Failed() {
		fmt.Fprintf(os.Stderr, "%s: %v\n", f.Path, f.Err)
		if errors.Is(f.Err, script.ErrSyntax) {
			syntax = true
		}
	}
	if n := len(batch.Failed()); n > 0 && c.logger != nil {
		c.logger.Warn("files failed", slog.Int("count", n))
	}
	return syntax
}
