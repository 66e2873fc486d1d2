package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/importi/pkg/mcplog"
	"github.com/gnana997/importi/pkg/project"
)

const serverVersion = "0.1.0-dev"

// Config holds server-wide defaults that tool arguments may override.
type Config struct {
	// DefaultProject is used when a call omits the project argument.
	DefaultProject string

	// Options are the scan options applied to every call.
	Options project.Options
}

// Server implements the MCP server for importi, exposing project scans as
// tools.
type Server struct {
	mcpServer *server.MCPServer
	service   *project.Service
	config    Config
	logger    *mcplog.Logger // nil disables call logging
}

// NewServer creates a new MCP server backed by svc. callLog may be nil.
func NewServer(svc *project.Service, config Config, callLog *mcplog.Logger) *Server {
	if svc == nil {
		svc = project.NewService(nil, slog.Default())
	}
	s := &Server{service: svc, config: config, logger: callLog}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("importi", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: findUnusedTool(), Handler: s.handleFindUnused},
		server.ServerTool{Tool: listImportsTool(), Handler: s.handleListImports},
		server.ServerTool{Tool: listExportsTool(), Handler: s.handleListExports},
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
		server.ServerTool{Tool: getComponentTool(), Handler: s.handleGetComponent},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
