package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gnana997/importi/pkg/indexer"
	mcpserver "github.com/gnana997/importi/pkg/mcp"
	"github.com/gnana997/importi/pkg/mcplog"
	"github.com/gnana997/importi/pkg/project"
	"github.com/gnana997/importi/pkg/util"
)

func newServeCommand(configPath *string, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an MCP server on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  find_unused       unused intrafaces/types and components of a project
  list_imports      import specifiers per file
  list_exports      exported declarations
  list_components   component candidates, filtered by keyword
  get_component     files and usage of one component`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectFlag, _ := cmd.Flags().GetString("project")

			cfg, err := loadConfig(cmd, configSearchDir(projectFlag), *configPath)
			if err != nil {
				return err
			}
			if cfg.Serve.Project != "" {
				if err := project.Validate(cfg.Serve.Project); err != nil {
					return err
				}
			}

			// stdout carries the protocol; logs stay on stderr.
			logger := util.NewLogger(cfg.LoggerConfig(stderr))

			cache, err := indexer.NewResultCache(indexer.DefaultResultCacheConfig(), logger)
			if err != nil {
				return err
			}

			callLog, err := mcplog.NewLogger(cfg.Serve.LogFile)
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
			}

			srv := mcpserver.NewServer(
				project.NewService(cache, logger),
				mcpserver.Config{
					DefaultProject: cfg.Serve.Project,
					Options:        cfg.ScanOptions(),
				},
				callLog,
			)

			logger.Info("MCP server starting", "project", cfg.Serve.Project, "log_file", cfg.Serve.LogFile)
			return srv.ServeStdio()
		},
	}

	cmd.Flags().String("log-file", "", "append a JSON line per tool call to this file")
	cmd.Flags().String("project", "", "default project folder for tool calls")

	return cmd
}
