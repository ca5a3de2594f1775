package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/adf/atlassian"
	"github.com/athapong/adfconv/pkg/convert"
	"github.com/athapong/adfconv/services"
	"github.com/athapong/adfconv/util"
)

// pageService is the part of the Confluence v2 page API the tools use.
type pageService interface {
	Get(ctx context.Context, pageID int, format string, draft bool, version int) (*models.PageScheme, *models.ResponseScheme, error)
	Create(ctx context.Context, payload *models.PageCreatePayloadScheme) (*models.PageScheme, *models.ResponseScheme, error)
	Update(ctx context.Context, pageID int, payload *models.PageUpdatePayloadScheme) (*models.PageScheme, *models.ResponseScheme, error)
}

type confluenceTools struct {
	conv  *convert.Converter
	pages func() (pageService, error)
}

func defaultPages() (pageService, error) {
	client, err := services.ConfluenceClient()
	if err != nil {
		return nil, err
	}
	return client.Page, nil
}

// RegisterConfluenceTool registers tools that read and write Confluence
// pages as Markdown.
func RegisterConfluenceTool(s *server.MCPServer, opts ...convert.Option) {
	t := &confluenceTools{conv: convert.New(opts...), pages: defaultPages}

	pageTool := mcp.NewTool("confluence_get_page",
		mcp.WithDescription("Get a Confluence page with its body converted to Markdown"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Confluence page ID")),
	)
	s.AddTool(pageTool, util.ErrorGuard(t.pageHandler))

	createPageTool := mcp.NewTool("confluence_create_page",
		mcp.WithDescription("Create a new Confluence page from Markdown"),
		mcp.WithString("space_id", mcp.Required(), mcp.Description("ID of the space where the page will be created")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the page")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Page body in Markdown")),
		mcp.WithString("parent_id", mcp.Description("ID of the parent page (optional)")),
	)
	s.AddTool(createPageTool, util.ErrorGuard(t.createPageHandler))

	updatePageTool := mcp.NewTool("confluence_update_page",
		mcp.WithDescription("Replace the body of an existing Confluence page with Markdown"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("ID of the page to update")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New page body in Markdown")),
		mcp.WithString("title", mcp.Description("New title of the page (optional)")),
	)
	s.AddTool(updatePageTool, util.ErrorGuard(t.updatePageHandler))

	compareTool := mcp.NewTool("confluence_compare_versions",
		mcp.WithDescription("Compare two versions of a Confluence page"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Confluence page ID")),
		mcp.WithString("source_version", mcp.Description("Source version number (default: previous version)")),
		mcp.WithString("target_version", mcp.Description("Target version number (default: latest)")),
	)
	s.AddTool(compareTool, util.ErrorGuard(t.compareHandler))
}

func (t *confluenceTools) pageHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := util.Arguments(request)
	pages, err := t.pages()
	if err != nil {
		return nil, err
	}

	pageID, err := pageIDArgument(arguments)
	if err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	// version -1 is the latest published version
	page, response, err := pages.Get(ctxWithTimeout, pageID, "atlas_doc_format", false, -1)
	if err != nil {
		return nil, apiError("failed to get page", response, err)
	}
	if page == nil {
		return nil, fmt.Errorf("no content returned for page ID: %d", pageID)
	}

	doc, err := pageDocument(page)
	if err != nil {
		return nil, err
	}
	md, err := t.conv.ADFToMarkdown(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert page body")
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Title: %s\n", page.Title))
	result.WriteString(fmt.Sprintf("ID: %s\n", page.ID))
	result.WriteString(fmt.Sprintf("Space ID: %s\n", page.SpaceID))
	result.WriteString(fmt.Sprintf("Status: %s\n", page.Status))
	if page.Version != nil {
		result.WriteString(fmt.Sprintf("Version: %d (Created: %v)\n", page.Version.Number, page.Version.CreatedAt))
	}
	result.WriteString("\nContent:\n")
	result.WriteString("----------------------------------------\n")
	result.WriteString(md)
	result.WriteString("----------------------------------------\n")

	return mcp.NewToolResultText(result.String()), nil
}

func (t *confluenceTools) createPageHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := util.Arguments(request)
	pages, err := t.pages()
	if err != nil {
		return nil, err
	}

	spaceID, ok := arguments["space_id"].(string)
	if !ok || spaceID == "" {
		return nil, errors.New("space_id argument is required")
	}
	title, ok := arguments["title"].(string)
	if !ok || title == "" {
		return nil, errors.New("title argument is required")
	}
	content, ok := arguments["content"].(string)
	if !ok {
		return nil, errors.New("content argument is required")
	}

	body, err := t.markdownBody(content)
	if err != nil {
		return nil, err
	}

	payload := &models.PageCreatePayloadScheme{
		SpaceID: spaceID,
		Status:  "current",
		Title:   title,
		Body:    body,
	}
	if parentID, ok := arguments["parent_id"].(string); ok {
		payload.ParentID = parentID
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	page, response, err := pages.Create(ctxWithTimeout, payload)
	if err != nil {
		return nil, apiError("failed to create page", response, err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Page created successfully!\nTitle: %s\nID: %s\nStatus: %s\nVersion: %d",
		page.Title, page.ID, page.Status, versionNumber(page))), nil
}

func (t *confluenceTools) updatePageHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := util.Arguments(request)
	pages, err := t.pages()
	if err != nil {
		return nil, err
	}

	pageID, err := pageIDArgument(arguments)
	if err != nil {
		return nil, err
	}
	content, ok := arguments["content"].(string)
	if !ok {
		return nil, errors.New("content argument is required")
	}

	body, err := t.markdownBody(content)
	if err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	// The current version is needed for optimistic locking.
	page, response, err := pages.Get(ctxWithTimeout, pageID, "atlas_doc_format", false, -1)
	if err != nil {
		return nil, apiError("failed to get current page", response, err)
	}

	spaceID, _ := strconv.Atoi(page.SpaceID)
	next := versionNumber(page) + 1
	payload := &models.PageUpdatePayloadScheme{
		ID:      pageID,
		SpaceID: spaceID,
		Status:  "current",
		Title:   page.Title,
		Body:    body,
		Version: &models.PageUpdatePayloadVersionScheme{
			Number:  next,
			Message: fmt.Sprintf("Updated to version %d", next),
		},
	}
	if title, ok := arguments["title"].(string); ok && title != "" {
		payload.Title = title
	}

	updatedPage, response, err := pages.Update(ctxWithTimeout, pageID, payload)
	if err != nil {
		return nil, apiError("failed to update page", response, err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Page updated successfully!\nTitle: %s\nID: %s\nStatus: %s\nVersion: %d",
		updatedPage.Title, updatedPage.ID, updatedPage.Status, versionNumber(updatedPage))), nil
}

func (t *confluenceTools) compareHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := util.Arguments(request)
	pages, err := t.pages()
	if err != nil {
		return nil, err
	}

	pageID, err := pageIDArgument(arguments)
	if err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	latestPage, response, err := pages.Get(ctxWithTimeout, pageID, "atlas_doc_format", false, -1)
	if err != nil {
		return nil, apiError("failed to get latest version", response, err)
	}
	if latestPage == nil || latestPage.Version == nil {
		return nil, errors.New("failed to get page version information")
	}

	targetNum := latestPage.Version.Number
	sourceNum := targetNum - 1
	if v, ok := arguments["source_version"].(string); ok && v != "" {
		if num, err := strconv.Atoi(v); err == nil && num > 0 {
			sourceNum = num
		}
	}
	if v, ok := arguments["target_version"].(string); ok && v != "" {
		if num, err := strconv.Atoi(v); err == nil && num > 0 {
			targetNum = num
		}
	}
	if sourceNum <= 0 || targetNum <= 0 || sourceNum >= targetNum {
		return nil, fmt.Errorf("invalid version numbers: source=%d, target=%d", sourceNum, targetNum)
	}

	fetch := func(num int) (*models.PageScheme, *adf.Node, error) {
		page := latestPage
		if num != latestPage.Version.Number {
			p, response, err := pages.Get(ctxWithTimeout, pageID, "atlas_doc_format", false, num)
			if err != nil {
				return nil, nil, apiError(fmt.Sprintf("failed to get version %d", num), response, err)
			}
			page = p
		}
		doc, err := pageDocument(page)
		return page, doc, err
	}
	sourcePage, sourceDoc, err := fetch(sourceNum)
	if err != nil {
		return nil, err
	}
	targetPage, targetDoc, err := fetch(targetNum)
	if err != nil {
		return nil, err
	}

	cmp, err := t.conv.Compare(sourceDoc, targetDoc)
	if err != nil {
		return nil, err
	}

	var comparison strings.Builder
	comparison.WriteString(fmt.Sprintf("Comparing Page: %s (ID: %d)\n", targetPage.Title, pageID))
	comparison.WriteString(fmt.Sprintf("Comparing versions: %d → %d\n\n", sourceNum, targetNum))

	if sourcePage.Title != targetPage.Title {
		comparison.WriteString("Title Changes:\n")
		comparison.WriteString(fmt.Sprintf("- Version %d: %s\n", sourceNum, sourcePage.Title))
		comparison.WriteString(fmt.Sprintf("+ Version %d: %s\n\n", targetNum, targetPage.Title))
	} else {
		comparison.WriteString(fmt.Sprintf("Title: %s (unchanged)\n\n", sourcePage.Title))
	}

	comparison.WriteString("Content Changes:\n")
	comparison.WriteString("=================\n")
	switch {
	case cmp.Equal:
		comparison.WriteString("(no changes)\n")
	case cmp.LeftText == cmp.RightText:
		comparison.WriteString("(text unchanged, formatting or structure changed)\n")
		comparison.WriteString(cmp.TreeDiff)
	default:
		comparison.WriteString(cmp.TextDiff)
	}

	return mcp.NewToolResultText(comparison.String()), nil
}

// markdownBody converts Markdown into an atlas_doc_format page body.
func (t *confluenceTools) markdownBody(content string) (*models.PageBodyRepresentationScheme, error) {
	doc, err := t.conv.MarkdownToADF(content)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert markdown")
	}
	value, err := adf.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal ADF body")
	}
	return &models.PageBodyRepresentationScheme{
		Representation: "atlas_doc_format",
		Value:          string(value),
	}, nil
}

// pageDocument decodes the ADF body of a page. Pages without a body yield
// an empty document.
func pageDocument(page *models.PageScheme) (*adf.Node, error) {
	if page.Body == nil || page.Body.AtlasDocFormat == nil || page.Body.AtlasDocFormat.Value == "" {
		return adf.Doc(), nil
	}
	doc, err := atlassian.Unmarshal([]byte(page.Body.AtlasDocFormat.Value))
	if err != nil {
		return nil, errors.Wrapf(err, "page %s", page.ID)
	}
	return doc, nil
}

func pageIDArgument(arguments map[string]interface{}) (int, error) {
	pageID, ok := arguments["page_id"].(string)
	if !ok || pageID == "" {
		return 0, errors.New("page_id argument is required")
	}
	id, err := strconv.Atoi(pageID)
	if err != nil {
		return 0, errors.Wrap(err, "invalid page ID")
	}
	return id, nil
}

func versionNumber(page *models.PageScheme) int {
	if page == nil || page.Version == nil {
		return 0
	}
	return page.Version.Number
}

// apiError includes the response body of a failed Atlassian call.
func apiError(msg string, response *models.ResponseScheme, err error) error {
	if response != nil {
		return fmt.Errorf("%s: %s (endpoint: %s)", msg, response.Bytes.String(), response.Endpoint)
	}
	return errors.Wrap(err, msg)
}
