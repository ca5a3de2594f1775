package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/convert"
	"github.com/athapong/adfconv/util"
)

// RegisterDocumentTools registers validation, round trip verification and
// comparison tools.
func RegisterDocumentTools(s *server.MCPServer, opts ...convert.Option) {
	c := newConverters(opts...)

	validateTool := mcp.NewTool("adf_validate",
		mcp.WithDescription("Validate an ADF JSON document and return its normalized form"),
		mcp.WithString("adf", mcp.Required(), mcp.Description("ADF document as JSON")),
		mcp.WithBoolean("lenient", mcp.Description("Drop attributes the schema does not know instead of rejecting them")),
	)
	s.AddTool(validateTool, util.ErrorGuard(util.AdaptLegacyHandler(c.validateHandler)))

	verifyTool := mcp.NewTool("adf_verify_roundtrip",
		mcp.WithDescription("Convert an ADF document to HTML or Markdown and back, and report whether it survives unchanged"),
		mcp.WithString("adf", mcp.Required(), mcp.Description("ADF document as JSON")),
		mcp.WithString("via", mcp.Description("Intermediate format: html, markdown or both (default both)")),
		mcp.WithBoolean("lenient", mcp.Description("Accept ADF as served by Jira or Confluence, dropping editor-only attributes")),
	)
	s.AddTool(verifyTool, util.ErrorGuard(util.AdaptLegacyHandler(c.verifyHandler)))

	compareTool := mcp.NewTool("adf_compare",
		mcp.WithDescription("Compare two ADF documents, showing text and structure changes"),
		mcp.WithString("left", mcp.Required(), mcp.Description("Original ADF document as JSON")),
		mcp.WithString("right", mcp.Required(), mcp.Description("Changed ADF document as JSON")),
		mcp.WithBoolean("lenient", mcp.Description("Accept ADF as served by Jira or Confluence, dropping editor-only attributes")),
	)
	s.AddTool(compareTool, util.ErrorGuard(util.AdaptLegacyHandler(c.compareHandler)))
}

func (c *converters) validateHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	raw, ok := arguments["adf"].(string)
	if !ok || raw == "" {
		return mcp.NewToolResultError("adf must be a non-empty string"), nil
	}
	doc, err := adf.ParseString(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid JSON: %v", err)), nil
	}

	var opts []adf.Option
	if lenient, _ := arguments["lenient"].(bool); lenient {
		opts = append(opts, adf.WithLenientAttributes())
	}
	valid, err := adf.Validate(doc, opts...)
	if err != nil {
		var verr *adf.ValidationError
		if errors.As(err, &verr) {
			report := map[string]interface{}{
				"valid":  false,
				"code":   verr.Code,
				"path":   verr.Path.String(),
				"type":   verr.Type,
				"name":   verr.Name,
				"detail": verr.Detail,
			}
			data, _ := json.MarshalIndent(report, "", "  ")
			return mcp.NewToolResultText(string(data)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	counts := adf.CountTypes(valid)
	var result strings.Builder
	result.WriteString("Document is valid.\n")
	result.WriteString(fmt.Sprintf("Nodes: %d blocks, %d text runs, %d raw\n\n",
		len(valid.Content), counts[adf.TypeText], counts[adf.TypeRaw]))
	data, err := adf.MarshalIndent(valid)
	if err != nil {
		return nil, err
	}
	result.Write(data)
	return mcp.NewToolResultText(result.String()), nil
}

func (c *converters) verifyHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	doc, errResult := c.adfArgument(arguments, "adf")
	if errResult != nil {
		return errResult, nil
	}

	via, _ := arguments["via"].(string)
	formats := []convert.Format{convert.FormatHTML, convert.FormatMarkdown}
	switch strings.ToLower(via) {
	case "", "both":
	case string(convert.FormatHTML):
		formats = formats[:1]
	case string(convert.FormatMarkdown), "md":
		formats = formats[1:]
	default:
		return mcp.NewToolResultError("via must be html, markdown or both"), nil
	}

	var result strings.Builder
	for _, f := range formats {
		report, err := c.conv.Verify(doc, f)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("round trip via %s failed: %v", f, err)), nil
		}
		if report.Equal {
			result.WriteString(fmt.Sprintf("Via %s: unchanged\n\n", f))
			continue
		}
		result.WriteString(fmt.Sprintf("Via %s: %d changes\n", f, report.Changes))
		result.WriteString("=================\n")
		result.WriteString(report.Diff)
		result.WriteString("\n")
	}
	return mcp.NewToolResultText(strings.TrimRight(result.String(), "\n")), nil
}

func (c *converters) compareHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	left, errResult := c.adfArgument(arguments, "left")
	if errResult != nil {
		return errResult, nil
	}
	right, errResult := c.adfArgument(arguments, "right")
	if errResult != nil {
		return errResult, nil
	}

	cmp, err := c.conv.Compare(left, right)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if cmp.Equal {
		return mcp.NewToolResultText("Documents are identical"), nil
	}

	var comparison strings.Builder
	comparison.WriteString("Text Changes:\n")
	comparison.WriteString("=================\n")
	if cmp.LeftText == cmp.RightText {
		comparison.WriteString("(text unchanged)\n")
	} else {
		comparison.WriteString(cmp.TextDiff)
	}
	comparison.WriteString("\nStructure Changes:\n")
	comparison.WriteString("=================\n")
	comparison.WriteString(cmp.TreeDiff)
	return mcp.NewToolResultText(comparison.String()), nil
}
