package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/importi/pkg/mcplog"
)

// loggingMiddleware records every tool call through the server's call log.
// NewServer only installs it when the log is non-nil.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			var errStr *string
			if err != nil {
				msg := err.Error()
				errStr = &msg
			}

			_ = s.logger.Write(mcplog.Entry{
				Ts:            start.UTC().Format(time.RFC3339),
				Tool:          req.Params.Name,
				Project:       req.GetString("project", s.config.DefaultProject),
				Params:        mcplog.SanitizeParams(req.GetArguments(), "project"),
				DurationMs:    mcplog.Now().Sub(start).Milliseconds(),
				ResponseBytes: mcplog.ResponseBytes(result),
				ToolError:     result != nil && result.IsError,
				Error:         errStr,
			})

			return result, err
		}
	}
}
