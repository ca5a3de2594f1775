package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterADFPrompts(s *server.MCPServer) {
	prompt := mcp.NewPrompt("adf_markdown_authoring",
		mcp.WithPromptDescription("Write Markdown that converts cleanly to Atlassian Document Format"),
		mcp.WithArgument("topic", mcp.ArgumentDescription("What the document is about")),
		mcp.WithArgument("target", mcp.ArgumentDescription("Where the document will be published, for example Jira or Confluence")),
	)
	s.AddPrompt(prompt, adfMarkdownAuthoringHandler)
}

const authoringGuide = `Write the document in Markdown. It will be converted to Atlassian Document Format with the markdown_to_adf tool.

Plain Markdown is enough for headings, paragraphs, **bold**, *italic*, ~~strike~~, ` + "`code`" + `, links, block quotes, rules, fenced code blocks with a language, bullet and numbered lists, GFM task lists (- [ ] / - [x]) and GFM tables with a header row.

For features Markdown cannot express, embed this HTML on its own lines:
- Panel: <adf-panel data-panel-type="info|note|warning|success|error|tip"> ... </adf-panel>
- Expand: <details data-adf-type="expand"><summary>Title</summary> ... </details>
- Status: <adf-status data-text="Done" data-color="green"></adf-status>
- Mention: <adf-mention data-id="ACCOUNT_ID" data-text="@Name"></adf-mention>
- Date: <adf-date data-timestamp="MILLISECONDS"></adf-date>
- Underline, subscript, superscript: <u>..</u>, <sub>..</sub>, <sup>..</sup>

Every marker must carry all of its attributes; incomplete markers are rejected. Check the result with adf_verify_roundtrip before publishing.`

func adfMarkdownAuthoringHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := request.Params.Arguments["topic"]
	target := request.Params.Arguments["target"]
	if target == "" {
		target = "Confluence"
	}

	text := authoringGuide
	if topic != "" {
		text = fmt.Sprintf("Draft a %s page about %s.\n\n%s", target, topic, authoringGuide)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Markdown authoring guide for %s", target),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}
