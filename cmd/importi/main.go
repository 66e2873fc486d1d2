// Package main provides the entry point for the importi CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/importi/pkg/project"
	"github.com/gnana997/importi/pkg/report"
	"github.com/gnana997/importi/pkg/util"
)

const version = "0.1.0-dev"

// usageError is returned when a command gets the wrong number of
// arguments. run prints its usage line to stdout.
type usageError struct {
	usage string
}

func (e *usageError) Error() string {
	return e.usage
}

// exactArgs accepts exactly n positional arguments and reports usage
// otherwise.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{usage: usage}
		}
		return nil
	}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stdout, ue.usage)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "importi <project_folder>",
		Short: "Find exported intrafaces, types and components that nothing imports",
		Long: `importi scans <project_folder>/src for .ts and .tsx files, collects the
exported intraface/type declarations and the component files, and reports
every name that no import statement in the project mentions.

The report is written to <project_folder>/unused_intrafaces.txt.

Commands:
  watch     Rescan whenever a source file changes
  serve     Start an MCP server on stdio
  version   Print version

A project folder named like a command (watch, serve, version, help) must
be given as a path, e.g. ./watch.`,
		Args:              exactArgs(1, "Usage: importi <project_folder>"),
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], configPath, stdout, stderr)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default <project_folder>/.importi.yaml)")
	flags.String("match-mode", "substring", "how names are matched against imports: substring, exact, word")
	flags.String("parse-mode", "line", "how imports are read: line, statement")
	flags.String("format", "text", "report format: text, json, yaml")
	flags.Bool("summary", false, "print a summary table to stdout")
	flags.StringSlice("exclude", nil, "doublestar patterns (relative to src/) to skip")
	flags.Int("workers", 0, "extraction workers (0 = based on CPU count)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")

	cmd.AddCommand(
		newWatchCommand(&configPath, stdout, stderr),
		newServeCommand(&configPath, stderr),
		newVersionCommand(stdout),
	)

	return cmd
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(stdout, "importi %s\n", version)
		},
	}
}

// runScan scans projectDir once and writes the report.
func runScan(cmd *cobra.Command, projectDir, configPath string, stdout, stderr io.Writer) error {
	if err := project.Validate(projectDir); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, configSearchDir(projectDir), configPath)
	if err != nil {
		return err
	}
	logger := util.NewLogger(cfg.LoggerConfig(stderr))

	svc := project.NewService(nil, logger)
	scan, path, err := svc.Run(cmd.Context(), projectDir, cfg.ScanOptions(), cfg.ReportFormat())
	if err != nil {
		return err
	}

	if cfg.Summary {
		if err := report.Summary(stdout, scan.Result, scan.Stats); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", path)
	}
	return nil
}
