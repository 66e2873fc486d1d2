package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/importi/pkg/indexer"
	"github.com/gnana997/importi/pkg/project"
	"github.com/gnana997/importi/pkg/report"
	"github.com/gnana997/importi/pkg/util"
)

func newWatchCommand(configPath *string, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <project_folder>",
		Short: "Rescan and rewrite the report whenever a source file changes",
		Long: `Scans <project_folder> once, writes the report, then watches
<project_folder>/src and repeats the scan after every batch of changes.
Stops on SIGINT or SIGTERM.`,
		Args: exactArgs(1, "Usage: importi watch <project_folder>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			projectDir := args[0]
			if err := project.Validate(projectDir); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, configSearchDir(projectDir), *configPath)
			if err != nil {
				return err
			}
			return runWatch(ctx, projectDir, cfg, stdout, util.NewLogger(cfg.LoggerConfig(stderr)))
		},
	}

	cmd.Flags().Int("debounce", indexer.DefaultWatchOptions().DebounceMs, "milliseconds to wait for more changes before rescanning")

	return cmd
}

// runWatch writes the report, then rewrites it after every change under
// <projectDir>/src until ctx is done. The first scan fails fast; later scan
// errors are logged and the watch goes on.
func runWatch(ctx context.Context, projectDir string, cfg *Config, stdout io.Writer, logger *slog.Logger) error {
	cache, err := indexer.NewResultCache(indexer.DefaultResultCacheConfig(), logger)
	if err != nil {
		return err
	}

	svc := project.NewService(cache, logger)
	opts := cfg.ScanOptions()
	format := cfg.ReportFormat()
	srcDir := project.SourceDir(projectDir)

	rescan := func(ctx context.Context) error {
		scan, path, err := svc.Run(ctx, projectDir, opts, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d unused intrafaces, %d unused components\n",
			path, len(scan.Result.UnusedExports), len(scan.Result.UnusedComponents))
		if cfg.Summary {
			return report.Summary(stdout, scan.Result, scan.Stats)
		}
		return nil
	}

	if err := rescan(ctx); err != nil {
		return err
	}

	onChange := func(ctx context.Context, events []indexer.WatchEvent) {
		for _, ev := range events {
			if strings.Contains(ev.Op, "REMOVE") || strings.Contains(ev.Op, "RENAME") {
				cache.InvalidateFile(filepath.Join(srcDir, filepath.FromSlash(ev.FilePath)))
			}
		}
		logger.Info("Changes detected", "files", len(events))

		if err := rescan(ctx); err != nil {
			if indexer.IsCancelled(err) {
				return
			}
			logger.Error("Rescan failed", "error", err)
		}
	}

	watcher, err := indexer.NewFileWatcher(cfg.WatchOptions(), onChange, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx, srcDir); err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()

	stats := cache.GetStats()
	logger.Info("Watch stopped",
		"cached_files", stats.Entries,
		"hit_rate", stats.HitRate)
	return nil
}
