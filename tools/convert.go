package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/adf/atlassian"
	"github.com/athapong/adfconv/pkg/convert"
	"github.com/athapong/adfconv/util"
)

// converters holds the converters shared by the tool handlers.
type converters struct {
	conv       *convert.Converter
	sanitizing *convert.Converter
}

func newConverters(opts ...convert.Option) *converters {
	sanitizing := append(append([]convert.Option{}, opts...), convert.WithSanitizedHTML())
	return &converters{
		conv:       convert.New(opts...),
		sanitizing: convert.New(sanitizing...),
	}
}

// RegisterConversionTools registers the format conversion tools.
func RegisterConversionTools(s *server.MCPServer, opts ...convert.Option) {
	c := newConverters(opts...)

	toMarkdownTool := mcp.NewTool("adf_to_markdown",
		mcp.WithDescription("Convert an Atlassian Document Format (ADF) JSON document to Markdown. Features Markdown cannot express are kept as embedded HTML so the result converts back losslessly."),
		mcp.WithString("adf", mcp.Required(), mcp.Description("ADF document as JSON")),
		mcp.WithBoolean("lenient", mcp.Description("Accept ADF as served by Jira or Confluence, dropping editor-only attributes")),
	)
	s.AddTool(toMarkdownTool, util.ErrorGuard(util.AdaptLegacyHandler(c.adfToMarkdownHandler)))

	fromMarkdownTool := mcp.NewTool("markdown_to_adf",
		mcp.WithDescription("Convert Markdown (CommonMark with GFM tables, strikethrough and task lists) to an ADF JSON document"),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown text")),
	)
	s.AddTool(fromMarkdownTool, util.ErrorGuard(util.AdaptLegacyHandler(c.markdownToADFHandler)))

	toHTMLTool := mcp.NewTool("adf_to_html",
		mcp.WithDescription("Render an ADF JSON document as HTML"),
		mcp.WithString("adf", mcp.Required(), mcp.Description("ADF document as JSON")),
		mcp.WithBoolean("lenient", mcp.Description("Accept ADF as served by Jira or Confluence, dropping editor-only attributes")),
	)
	s.AddTool(toHTMLTool, util.ErrorGuard(util.AdaptLegacyHandler(c.adfToHTMLHandler)))

	fromHTMLTool := mcp.NewTool("html_to_adf",
		mcp.WithDescription("Convert HTML to an ADF JSON document. Unknown elements are kept as raw nodes."),
		mcp.WithString("html", mcp.Required(), mcp.Description("HTML markup")),
		mcp.WithBoolean("sanitize", mcp.Description("Repair markup from third-party sources before conversion (nested anchors, paragraphs around blocks, ragged tables)")),
	)
	s.AddTool(fromHTMLTool, util.ErrorGuard(util.AdaptLegacyHandler(c.htmlToADFHandler)))
}

func (c *converters) adfToMarkdownHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	doc, errResult := c.adfArgument(arguments, "adf")
	if errResult != nil {
		return errResult, nil
	}
	md, err := c.conv.ADFToMarkdown(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to convert to markdown: %v", err)), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (c *converters) markdownToADFHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	text, ok := arguments["markdown"].(string)
	if !ok {
		return mcp.NewToolResultError("markdown must be a string"), nil
	}
	doc, err := c.conv.MarkdownToADF(text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to convert markdown: %v", err)), nil
	}
	return jsonResult(doc)
}

func (c *converters) adfToHTMLHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	doc, errResult := c.adfArgument(arguments, "adf")
	if errResult != nil {
		return errResult, nil
	}
	html, err := c.conv.ADFToHTML(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render HTML: %v", err)), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (c *converters) htmlToADFHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	src, ok := arguments["html"].(string)
	if !ok {
		return mcp.NewToolResultError("html must be a string"), nil
	}
	conv := c.conv
	if sanitize, _ := arguments["sanitize"].(bool); sanitize {
		conv = c.sanitizing
	}
	doc, err := conv.HTMLToADF(src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to convert HTML: %v", err)), nil
	}
	return jsonResult(doc)
}

// adfArgument decodes and validates the ADF document in arguments[key]. On
// failure it returns the error result to send back.
func (c *converters) adfArgument(arguments map[string]interface{}, key string) (*adf.Node, *mcp.CallToolResult) {
	raw, ok := arguments[key].(string)
	if !ok || raw == "" {
		return nil, mcp.NewToolResultError(key + " must be a non-empty string")
	}

	var (
		doc *adf.Node
		err error
	)
	if lenient, _ := arguments["lenient"].(bool); lenient {
		doc, err = atlassian.Unmarshal([]byte(raw))
	} else {
		doc, err = c.conv.ParseADF([]byte(raw))
	}
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid %s document: %v", key, err))
	}
	return doc, nil
}

func jsonResult(doc *adf.Node) (*mcp.CallToolResult, error) {
	data, err := adf.MarshalIndent(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode ADF: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
