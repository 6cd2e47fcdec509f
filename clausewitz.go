// Package clausewitz parses Clausewitz engine script files, the
// brace-delimited key = value format of strategy-game data and mod
// files, and feeds them to the typed record extractors in package extract.
//
// Single files are parsed with Parse or ParseFile. Whole game or mod
// directories are parsed in parallel with Load:
//
//	src, err := clausewitz.DirTree("/games/hoi4/history/states")
//	if err != nil {
//	    return err
//	}
//	batch, err := clausewitz.Load(ctx, src, clausewitz.WithLogger(slog.Default()))
//	if err != nil {
//	    return err
//	}
//	for _, f := range batch.Files {
//	    if f.Err != nil {
//	        continue // syntax error, reported on the file
//	    }
//	    rec, diags, err := extract.State(f.Document)
//	    ...
//	}
package clausewitz

import (
	"errors"
	"log/slog"
	"runtime"

	"github.com/pdxkit/clausewitz/script"
)

// ErrNoSources is returned when Load is called without a source.
var ErrNoSources = errors.New("no script sources provided")

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, variants, files).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// Option configures Parse, ParseFile and Load.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	filename    string
	diagConfig  script.DiagnosticConfig
	concurrency int
}

func newConfig(opts []Option) config {
	cfg := config{
		diagConfig:  script.DefaultConfig(),
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}
	return cfg
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithFilename sets the name used to annotate diagnostics and errors
// from Parse. ParseFile and Load use the file path.
func WithFilename(name string) Option {
	return func(c *config) { c.filename = name }
}

// WithDiagnosticConfig sets which diagnostics are reported.
// The default is script.DefaultConfig().
func WithDiagnosticConfig(dc script.DiagnosticConfig) Option {
	return func(c *config) { c.diagConfig = dc }
}

// WithConcurrency bounds the number of files Load parses at once.
// The default is runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}
