package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pdxkit/clausewitz"
	"github.com/pdxkit/clausewitz/cmd/internal/cliutil"
	"github.com/pdxkit/clausewitz/extract"
	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

type lintConfig struct {
	level  string
	failOn string
	ignore []string
	format string
	kind   string
}

type lintResult struct {
	Diagnostics []script.Diagnostic `json:"diagnostics,omitempty"`
	Summary     lintSummary         `json:"summary"`
	ExitCode    int                 `json:"-"`
}

type lintSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	Files      int            `json:"files"`
	Failed     int            `json:"failed"`
}

func (c *cli) lintCmd() *cobra.Command {
	cfg := lintConfig{
		level:  "warning",
		failOn: "error",
		format: "text",
	}
	cmd := &cobra.Command{
		Use:   "lint PATH...",
		Short: "Check files for issues",
		Long: `Parses files, runs the extractor matching each file's kind and
reports lexer, parser and extraction diagnostics.

Severity levels:
  0 = fatal     File could not be parsed
  1 = error     A record or value was dropped
  2 = warning   Recovered, result may differ from intent
  3 = info      Informational notice

Exit status is 2 when a file has a syntax error, 1 when a diagnostic is
at or above --fail-on, 0 otherwise.`,
		Example: `  clausewitz lint game/
  clausewitz lint --level info history/states
  clausewitz lint --fail-on warning --ignore "victory-*" history/states
  clausewitz lint --format json common/countries/colors.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cliutil.CheckFormat(cfg.format, "text", cliutil.FormatJSON); err != nil {
				return err
			}
			dc, err := cfg.diagnosticConfig()
			if err != nil {
				return err
			}
			forced, err := parseKindFlag(cfg.kind)
			if err != nil {
				return err
			}

			batch, err := c.load(cmd.Context(), args, dc)
			if err != nil {
				return err
			}
			result := c.runLint(batch, dc, forced)

			out := cmd.OutOrStdout()
			if cfg.format == cliutil.FormatJSON {
				if err := cliutil.Encode(out, cliutil.FormatJSON, result); err != nil {
					return err
				}
			} else {
				printLintText(out, result)
			}
			if result.ExitCode != exitOK {
				return exitStatus(result.ExitCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.level, "level", cfg.level, "report diagnostics at this severity or worse")
	cmd.Flags().StringVar(&cfg.failOn, "fail-on", cfg.failOn, "exit 1 on a diagnostic at this severity or worse")
	cmd.Flags().StringArrayVar(&cfg.ignore, "ignore", nil, `ignore codes (repeatable, globs like "victory-*")`)
	cmd.Flags().StringVar(&cfg.format, "format", cfg.format, "output format: text or json")
	cmd.Flags().StringVarP(&cfg.kind, "kind", "k", "", "record kind (default: detect from path)")
	return cmd
}

func (cfg lintConfig) diagnosticConfig() (script.DiagnosticConfig, error) {
	level, err := script.ParseSeverity(cfg.level)
	if err != nil {
		return script.DiagnosticConfig{}, fmt.Errorf("--level: %w", err)
	}
	failOn, err := script.ParseSeverity(cfg.failOn)
	if err != nil {
		return script.DiagnosticConfig{}, fmt.Errorf("--fail-on: %w", err)
	}
	return script.DiagnosticConfig{
		Level:  level,
		FailAt: failOn,
		Ignore: cfg.ignore,
	}, nil
}

func (c *cli) runLint(batch *clausewitz.Batch, dc script.DiagnosticConfig, forced extract.Kind) *lintResult {
	result := &lintResult{
		Summary: lintSummary{
			BySeverity: make(map[string]int),
			Files:      len(batch.Files),
			Failed:     len(batch.Failed()),
		},
	}

	diags := batch.Diagnostics()
	syntax := false
	for _, f := range batch.Failed() {
		if errors.Is(f.Err, script.ErrSyntax) {
			syntax = true
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", f.Path, f.Err)
	}

	for _, f := range batch.Files {
		if f.Document == nil {
			continue
		}
		kind, ok := kindFor(forced, f.Path)
		if !ok {
			continue
		}
		res, err := extract.Run(kind, f.Document, c.extractOpts()...)
		if err != nil {
			diags = append(diags, script.Diagnostic{
				Severity: script.SeverityError,
				Code:     types.DiagExtractFailed,
				Phase:    types.PhaseExtract,
				Message:  err.Error(),
				File:     f.Path,
			})
			continue
		}
		diags = append(diags, res.Diagnostics...)
	}

	result.Diagnostics = dc.Filter(diags)
	slices.SortStableFunc(result.Diagnostics, func(a, b script.Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Column, b.Column),
		)
	})

	failing := false
	for _, d := range result.Diagnostics {
		result.Summary.Total++
		result.Summary.BySeverity[d.Severity.String()]++
		if dc.ShouldFail(d.Severity) {
			failing = true
		}
	}

	switch {
	case syntax:
		result.ExitCode = exitSyntax
	case failing || result.Summary.Failed > 0:
		result.ExitCode = exitError
	default:
		result.ExitCode = exitOK
	}
	return result
}

func printLintText(w io.Writer, result *lintResult) {
	for _, d := range result.Diagnostics {
		fmt.Fprintf(w, "%s (%s)\n", d, d.Code)
	}
	if result.Summary.Total == 0 {
		fmt.Fprintf(w, "%d files, no issues\n", result.Summary.Files)
		return
	}
	fmt.Fprintf(w, "\n%d files, %d issues", result.Summary.Files, result.Summary.Total)
	for _, sev := range []script.Severity{script.SeverityFatal, script.SeverityError, script.SeverityWarning, script.SeverityInfo} {
		if n := result.Summary.BySeverity[sev.String()]; n > 0 {
			fmt.Fprintf(w, ", %d %s", n, sev)
		}
	}
	fmt.Fprintln(w)
}
