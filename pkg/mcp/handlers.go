package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/importi/pkg/catalog"
	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/indexer"
	"github.com/gnana997/importi/pkg/project"
	"github.com/gnana997/importi/pkg/report"
	"github.com/gnana997/importi/pkg/usage"
)

type findUnusedResponse struct {
	Project          string   `json:"project"`
	UnusedExports    []string `json:"unused_intrafaces"`
	UnusedComponents []string `json:"unused_components"`
	FilesScanned     int      `json:"files_scanned"`
	ReportPath       string   `json:"report_path,omitempty"`
}

type componentResponse struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
	Used  bool     `json:"used"`
}

func (s *Server) handleFindUnused(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, errResult := s.projectDir(req)
	if errResult != nil {
		return errResult, nil
	}
	opts, err := s.options(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		scan *project.Scan
		path string
	)
	if req.GetBool("write_report", false) {
		scan, path, err = s.service.Run(ctx, dir, opts, report.FormatText)
	} else {
		scan, err = s.service.FindUnused(ctx, dir, opts)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	return jsonResult(findUnusedResponse{
		Project:          dir,
		UnusedExports:    scan.Result.UnusedExports,
		UnusedComponents: scan.Result.UnusedComponents,
		FilesScanned:     scan.Stats.FilesIndexed,
		ReportPath:       path,
	})
}

func (s *Server) handleListImports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, errResult := s.index(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(index.ImportsInOrder())
}

func (s *Server) handleListExports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, errResult := s.index(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(index.ExportsInOrder())
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, errResult := s.index(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	qs := catalog.NewQueryService(&catalog.Catalog{
		Extension:  catalog.DefaultExtension,
		Components: index.Components,
	})
	return jsonResult(qs.ListComponents(req.GetString("keyword", "")))
}

func (s *Server) handleGetComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	index, errResult := s.index(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	qs := catalog.NewQueryService(&catalog.Catalog{
		Extension:  catalog.DefaultExtension,
		Components: index.Components,
	})
	if _, ok := qs.GetComponent(name); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("component not found: %s", name)), nil
	}

	match, err := usage.MatcherFor(s.config.Options.MatchMode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(componentResponse{
		Name:  name,
		Files: qs.Files(name),
		Used:  len(usage.FindUnused([]string{name}, index.UsageSurface(), match)) == 0,
	})
}

// --- helpers ---

// projectDir resolves the project argument against the server default.
func (s *Server) projectDir(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	dir := req.GetString("project", s.config.DefaultProject)
	if dir == "" {
		return "", mcp.NewToolResultError("project is required")
	}
	if err := project.Validate(dir); err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return dir, nil
}

// options applies the call's mode arguments on top of the server options.
func (s *Server) options(req mcp.CallToolRequest) (project.Options, error) {
	opts := s.config.Options

	if v := req.GetString("match_mode", ""); v != "" {
		mode, err := usage.ParseMatchMode(v)
		if err != nil {
			return opts, err
		}
		opts.MatchMode = mode
	}
	if v := req.GetString("parse_mode", ""); v != "" {
		mode, err := extractor.ParseParseMode(v)
		if err != nil {
			return opts, err
		}
		opts.ParseMode = mode
	}

	return opts, nil
}

func (s *Server) index(ctx context.Context, req mcp.CallToolRequest) (*indexer.ProjectIndex, *mcp.CallToolResult) {
	dir, errResult := s.projectDir(req)
	if errResult != nil {
		return nil, errResult
	}
	opts, err := s.options(req)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	index, _, err := s.service.Index(ctx, dir, opts)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err))
	}
	return index, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
