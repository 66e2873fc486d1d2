package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/importi/pkg/mcplog"
	"github.com/gnana997/importi/pkg/project"
	"github.com/gnana997/importi/pkg/util"
)

// --- helpers ---

// testProject creates a small project folder and returns its path.
func testProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"models/user.ts":        "export intraface User { id: string }\nexport type Role = {\n",
		"models/point.ts":       "export intraface Point { x: number }\n",
		"app.ts":                "import { Point } from './models/point';\nimport { UserProfile } from './profile';\n",
		"components/Button.tsx": "export const Button = () => null;\n",
		"components/Card.tsx":   "import { Button } from './Button';\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, "src", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func testServer(t *testing.T) *Server {
	t.Helper()
	svc := project.NewService(nil, util.NewDiscardLogger())
	return NewServer(svc, Config{DefaultProject: testProject(t)}, nil)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "find_unused":
		handler = s.handleFindUnused
	case "list_imports":
		handler = s.handleListImports
	case "list_exports":
		handler = s.handleListExports
	case "list_components":
		handler = s.handleListComponents
	case "get_component":
		handler = s.handleGetComponent
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- find_unused ---

func TestHandleFindUnused_Defaults(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_unused", nil))
	assert.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	// "User" is a substring of "UserProfile".
	assert.Equal(t, []any{"Role"}, resp["unused_intrafaces"])
	assert.Equal(t, []any{"Card"}, resp["unused_components"])
	assert.Equal(t, float64(5), resp["files_scanned"])
	assert.NotContains(t, resp, "report_path")
}

func TestHandleFindUnused_ExactMode(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_unused", map[string]any{"match_mode": "exact"}))
	assert.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, []any{"User", "Role"}, resp["unused_intrafaces"])
}

func TestHandleFindUnused_InvalidMode(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_unused", map[string]any{"match_mode": "fuzzy"}))
	assert.True(t, result.IsError)
}

func TestHandleFindUnused_WriteReport(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_unused", map[string]any{"write_report": true}))
	assert.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	path, ok := resp["report_path"].(string)
	require.True(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Unused intrafaces:\nRole\n\nUnused components:\nCard\n", string(data))
}

func TestHandleFindUnused_MissingProject(t *testing.T) {
	s := NewServer(project.NewService(nil, util.NewDiscardLogger()), Config{}, nil)
	result := callTool(t, s, makeRequest("find_unused", nil))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "project is required")
}

func TestHandleFindUnused_NoSourceDir(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_unused", map[string]any{"project": t.TempDir()}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "scan failed")
}

// --- list_imports ---

func TestHandleListImports(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("list_imports", nil))
	assert.False(t, result.IsError)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &records))
	require.Len(t, records, 5)
	assert.Equal(t, "app.ts", records[0]["file"])
	assert.Equal(t, []any{"Point", "UserProfile"}, records[0]["names"])
}

// --- list_exports ---

func TestHandleListExports(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("list_exports", nil))
	assert.False(t, result.IsError)

	var decls []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &decls))
	require.Len(t, decls, 3)
	assert.Equal(t, "Point", decls[0]["name"])
	assert.Equal(t, "User", decls[1]["name"])
	assert.Equal(t, "interface", decls[1]["kind"])
	assert.Equal(t, "Role", decls[2]["name"])
	assert.Equal(t, float64(2), decls[2]["line"])
}

// --- list_components ---

func TestHandleListComponents_NoFilter(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("list_components", nil))

	var comps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &comps))
	require.Len(t, comps, 2)
	assert.Equal(t, "Button", comps[0]["name"])
}

func TestHandleListComponents_ByKeyword(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("list_components", map[string]any{"keyword": "CARD"}))

	var comps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &comps))
	require.Len(t, comps, 1)
	assert.Equal(t, "components/Card.tsx", comps[0]["file"])
}

// --- get_component ---

func TestHandleGetComponent(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_component", map[string]any{"name": "Button"}))
	assert.False(t, result.IsError)

	var comp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &comp))
	assert.Equal(t, []any{"components/Button.tsx"}, comp["files"])
	assert.Equal(t, true, comp["used"])
}

func TestHandleGetComponent_Unused(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_component", map[string]any{"name": "Card"}))

	var comp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &comp))
	assert.Equal(t, false, comp["used"])
}

func TestHandleGetComponent_NotFound(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_component", map[string]any{"name": "Dialog"}))
	assert.True(t, result.IsError)
}

func TestHandleGetComponent_MissingName(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_component", nil))
	assert.True(t, result.IsError)
}

// --- middleware ---

func TestLoggingMiddleware(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.jsonl")
	callLog, err := mcplog.NewLogger(logPath)
	require.NoError(t, err)

	dir := testProject(t)
	s := NewServer(project.NewService(nil, util.NewDiscardLogger()), Config{DefaultProject: dir}, callLog)

	handler := s.loggingMiddleware()(s.handleFindUnused)
	_, err = handler(context.Background(), makeRequest("find_unused", map[string]any{"match_mode": "exact"}))
	require.NoError(t, err)
	_, err = handler(context.Background(), makeRequest("find_unused", map[string]any{"match_mode": "fuzzy"}))
	require.NoError(t, err)
	require.NoError(t, callLog.Close())

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()

	var entries []mcplog.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e mcplog.Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}

	require.Len(t, entries, 2)
	assert.Equal(t, "find_unused", entries[0].Tool)
	assert.Equal(t, dir, entries[0].Project)
	assert.Equal(t, "exact", entries[0].Params["match_mode"])
	assert.False(t, entries[0].ToolError)
	assert.Greater(t, entries[0].ResponseBytes, 0)
	assert.True(t, entries[1].ToolError)
	assert.Nil(t, entries[1].Error)
}
