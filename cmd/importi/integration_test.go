package main

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryPath is set by TestMain after building the binary.
var binaryPath string

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	// Build the binary once for all integration tests.
	tmp, err := os.MkdirTemp("", "importi-integration-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmp, "importi")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmp)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// --- helpers ---

func skipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run integration tests")
	}
}

// startServer launches importi serve as a subprocess and returns an
// initialized MCP client.
func startServer(t *testing.T, args ...string) *client.Client {
	t.Helper()

	c, err := client.NewStdioMCPClient(binaryPath, nil, append([]string{"serve"}, args...)...)
	require.NoError(t, err, "failed to start MCP server")

	t.Cleanup(func() {
		c.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "importi-integration-test",
		Version: "1.0.0",
	}

	result, err := c.Initialize(ctx, initReq)
	require.NoError(t, err, "failed to initialize MCP session")
	assert.Equal(t, "importi", result.ServerInfo.Name)

	return c
}

func callToolHelper(t *testing.T, c *client.Client, toolName string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	if args != nil {
		req.Params.Arguments = args
	}

	result, err := c.CallTool(ctx, req)
	require.NoError(t, err, "CallTool(%s) failed", toolName)
	return result
}

func extractJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected content in result")
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- integration tests ---

func TestIntegration_ListTools(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)

	toolNames := make([]string, len(tools.Tools))
	for i, tool := range tools.Tools {
		toolNames[i] = tool.Name
	}

	for _, name := range []string{"find_unused", "list_imports", "list_exports", "list_components", "get_component"} {
		assert.Contains(t, toolNames, name, "missing tool: %s", name)
	}
}

func TestIntegration_FindUnused(t *testing.T) {
	skipIfNotIntegration(t)
	dir := writeProject(t, map[string]string{
		"types.ts":   "export intraface Point { x: number }\nexport type Size = {\n",
		"app.ts":     "import { Point } from './types';\n",
		"Button.tsx": "",
	})
	c := startServer(t, "--project", dir)

	t.Run("default project", func(t *testing.T) {
		result := callToolHelper(t, c, "find_unused", nil)
		assert.False(t, result.IsError)

		var resp map[string]any
		require.NoError(t, json.Unmarshal([]byte(extractJSON(t, result)), &resp))
		assert.Equal(t, []any{"Size"}, resp["unused_intrafaces"])
		assert.Equal(t, []any{"Button"}, resp["unused_components"])
	})

	t.Run("explicit missing project", func(t *testing.T) {
		result := callToolHelper(t, c, "find_unused", map[string]any{
			"project": filepath.Join(dir, "missing"),
		})
		assert.True(t, result.IsError)
	})
}

func TestIntegration_CallLog(t *testing.T) {
	skipIfNotIntegration(t)
	dir := writeProject(t, map[string]string{"types.ts": "export type Size = {\n"})
	logFile := filepath.Join(t.TempDir(), "calls.jsonl")
	c := startServer(t, "--project", dir, "--log-file", logFile)

	result := callToolHelper(t, c, "list_exports", nil)
	assert.False(t, result.IsError)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logFile)
		return err == nil && len(data) > 0
	}, 5*time.Second, 50*time.Millisecond)
}
