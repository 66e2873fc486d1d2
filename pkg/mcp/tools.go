package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/usage"
)

const projectParamDesc = "Project folder; its src/ directory is scanned. Defaults to the server's --project."

func findUnusedTool() mcp.Tool {
	return mcp.NewTool("find_unused",
		mcp.WithDescription("Lists exported intraface/type declarations and component files that no import in the project references."),
		mcp.WithString("project", mcp.Description(projectParamDesc)),
		mcp.WithString("match_mode",
			mcp.Description("How declared names are compared with import specifiers."),
			mcp.Enum(string(usage.MatchSubstring), string(usage.MatchExact), string(usage.MatchWord)),
		),
		mcp.WithString("parse_mode",
			mcp.Description("How import statements are read."),
			mcp.Enum(string(extractor.ParseModeLine), string(extractor.ParseModeStatement)),
		),
		mcp.WithBoolean("write_report",
			mcp.Description("Also write unused_intrafaces.txt into the project folder."),
		),
	)
}

func listImportsTool() mcp.Tool {
	return mcp.NewTool("list_imports",
		mcp.WithDescription("Returns the import specifiers of every scanned file, in discovery order."),
		mcp.WithString("project", mcp.Description(projectParamDesc)),
		mcp.WithString("parse_mode",
			mcp.Description("How import statements are read."),
			mcp.Enum(string(extractor.ParseModeLine), string(extractor.ParseModeStatement)),
		),
	)
}

func listExportsTool() mcp.Tool {
	return mcp.NewTool("list_exports",
		mcp.WithDescription("Returns the exported intraface/type declarations found in .ts files."),
		mcp.WithString("project", mcp.Description(projectParamDesc)),
	)
}

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("Returns component candidates (.tsx file stems), optionally filtered by keyword."),
		mcp.WithString("project", mcp.Description(projectParamDesc)),
		mcp.WithString("keyword", mcp.Description("Case-insensitive filter on component name or file path.")),
	)
}

func getComponentTool() mcp.Tool {
	return mcp.NewTool("get_component",
		mcp.WithDescription("Returns the files declaring a component name and whether any import uses it."),
		mcp.WithString("project", mcp.Description(projectParamDesc)),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component name (file stem).")),
	)
}
