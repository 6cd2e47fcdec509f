// Command clausewitz parses, lints and extracts records from Clausewitz
// script files in a game or mod directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdxkit/clausewitz"
	"github.com/pdxkit/clausewitz/cmd/internal/cliutil"
	"github.com/pdxkit/clausewitz/internal/config"
)

// Exit codes.
const (
	exitOK     = 0 // success
	exitError  = 1 // user error, processing failure, or failing diagnostic
	exitSyntax = 2 // at least one file could not be parsed
)

// exitStatus carries a non-zero exit code out of a command without an
// error message of its own.
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

type cli struct {
	verbose int
	envFile string
	workers int

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(&cli{})
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var status exitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	cliutil.PrintError("%v", err)
	return exitError
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "clausewitz",
		Short:         "Parse and extract records from Clausewitz script files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().CountVarP(&c.verbose, "verbose", "v", "debug logging (-vv for trace)")
	root.PersistentFlags().StringVar(&c.envFile, "env", "", "read settings from this .env file")
	root.PersistentFlags().IntVarP(&c.workers, "workers", "j", 0, "files parsed in parallel (default CLAUSEWITZ_WORKERS or CPU count)")

	root.AddCommand(
		c.parseCmd(),
		c.extractCmd(),
		c.lintCmd(),
		c.findCmd(),
		c.ingestCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup() error {
	var files []string
	if c.envFile != "" {
		files = append(files, c.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.workers > 0 {
		cfg.Workers = c.workers
	}
	c.cfg = cfg
	c.logger = c.setupLogger()
	return nil
}

func (c *cli) setupLogger() *slog.Logger {
	if c.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.verbose >= 2 {
		level = clausewitz.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version := "(devel)"
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clausewitz %s\n", version)
			return nil
		},
	}
}
