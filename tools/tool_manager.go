package tools

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/athapong/adfconv/util"
)

// Toolset is a group of tools that ENABLE_TOOLS can select.
type Toolset struct {
	Name string
	Desc string
}

// Toolsets lists every toolset.
var Toolsets = []Toolset{
	{"tool_manager", "Tool management"},
	{"conversion", "ADF, HTML and Markdown conversion: adf_to_markdown, markdown_to_adf, adf_to_html, html_to_adf"},
	{"document", "ADF validation, round trip verification and comparison: adf_validate, adf_verify_roundtrip, adf_compare"},
	{"confluence", "Confluence pages as Markdown: confluence_get_page, confluence_create_page, confluence_update_page, confluence_compare_versions"},
	{"jira", "Jira issue descriptions as Markdown: jira_get_issue, jira_create_issue, jira_update_issue"},
}

func RegisterToolManagerTool(s *server.MCPServer) {
	tool := mcp.NewTool("tool_manager",
		mcp.WithDescription("Manage MCP tools - enable or disable tools"),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action to perform: list, enable, disable")),
		mcp.WithString("tool_name", mcp.Description("Tool name to enable/disable")),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(toolManagerHandler)))
}

func toolManagerHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	action, ok := arguments["action"].(string)
	if !ok {
		return mcp.NewToolResultError("action must be a string"), nil
	}

	enableTools := os.Getenv("ENABLE_TOOLS")
	toolList := strings.Split(enableTools, ",")

	switch action {
	case "list":
		response := "Available tools:\n"
		allEnabled := enableTools == ""

		for _, t := range Toolsets {
			status := "disabled"
			if allEnabled || slices.Contains(toolList, t.Name) {
				status = "enabled"
			}
			response += fmt.Sprintf("- %s (%s) [%s]\n", t.Name, t.Desc, status)
		}
		response += "\n"

		response += "Currently enabled tools:\n"
		if allEnabled {
			response += "All tools are enabled (ENABLE_TOOLS is empty)\n"
		} else {
			for _, tool := range toolList {
				if tool != "" {
					response += fmt.Sprintf("- %s\n", tool)
				}
			}
		}
		response += "\nChanges take effect when the server restarts.\n"
		return mcp.NewToolResultText(response), nil

	case "enable", "disable":
		toolName, ok := arguments["tool_name"].(string)
		if !ok || toolName == "" {
			return mcp.NewToolResultError("tool_name is required for enable/disable actions"), nil
		}
		if !slices.ContainsFunc(Toolsets, func(t Toolset) bool { return t.Name == toolName }) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown tool: %s", toolName)), nil
		}

		if enableTools == "" {
			toolList = []string{}
		}

		if action == "enable" {
			if !slices.Contains(toolList, toolName) {
				toolList = append(toolList, toolName)
			}
		} else {
			toolList = slices.DeleteFunc(toolList, func(s string) bool { return s == toolName })
		}

		os.Setenv("ENABLE_TOOLS", strings.Join(toolList, ","))

		return mcp.NewToolResultText(fmt.Sprintf("Successfully %sd tool: %s", action, toolName)), nil

	default:
		return mcp.NewToolResultError("Invalid action. Use 'list', 'enable', or 'disable'"), nil
	}
}
