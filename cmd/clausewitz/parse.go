package main

import (
	"github.com/spf13/cobra"

	"github.com/pdxkit/clausewitz"
	"github.com/pdxkit/clausewitz/cmd/internal/cliutil"
	"github.com/pdxkit/clausewitz/script"
)

func (c *cli) parseCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "parse PATH...",
		Short: "Dump the generic tree of each file",
		Long: `Parses files (directories are walked for .txt files) and writes
the generic tree of each as JSON or YAML. Files with syntax errors are
reported on stderr and the command exits with status 2.`,
		Example: `  clausewitz parse history/states/42-Berlin.txt
  clausewitz parse --format yaml common/countries/colors.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cliutil.CheckFormat(format, cliutil.FormatJSON, cliutil.FormatYAML); err != nil {
				return err
			}
			batch, err := c.load(cmd.Context(), args, script.DefaultConfig())
			if err != nil {
				return err
			}

			var parsed []clausewitz.FileResult
			for _, f := range batch.Files {
				if f.Document != nil {
					parsed = append(parsed, f)
				}
			}

			w, closeFn, err := cliutil.GetOutput(output)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := cliutil.Encode(w, format, parsed); err != nil {
				return err
			}
			if c.reportFailed(batch) {
				return exitStatus(exitSyntax)
			}
			if len(batch.Failed()) > 0 {
				return exitStatus(exitError)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", cliutil.FormatJSON, "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
