package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/adf/atlassian"
	"github.com/athapong/adfconv/pkg/convert"
)

func request(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func paragraphDoc(text string) string {
	return fmt.Sprintf(`{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":%q}]}]}`, text)
}

func confluencePage(t *testing.T, title string, version int, body string) *models.PageScheme {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":      "100",
		"title":   title,
		"spaceId": "42",
		"status":  "current",
		"version": map[string]interface{}{"number": version},
		"body": map[string]interface{}{
			"atlas_doc_format": map[string]interface{}{"representation": "atlas_doc_format", "value": body},
		},
	})
	require.NoError(t, err)
	var page models.PageScheme
	require.NoError(t, json.Unmarshal(raw, &page))
	return &page
}

type fakePages struct {
	versions map[int]*models.PageScheme
	latest   int
	created  *models.PageCreatePayloadScheme
	updated  *models.PageUpdatePayloadScheme
}

func (f *fakePages) Get(_ context.Context, _ int, _ string, _ bool, version int) (*models.PageScheme, *models.ResponseScheme, error) {
	if version == -1 {
		version = f.latest
	}
	page, ok := f.versions[version]
	if !ok {
		return nil, nil, errors.New("page version not found")
	}
	return page, nil, nil
}

func (f *fakePages) Create(_ context.Context, payload *models.PageCreatePayloadScheme) (*models.PageScheme, *models.ResponseScheme, error) {
	f.created = payload
	return &models.PageScheme{ID: "200", Title: payload.Title, Status: payload.Status}, nil, nil
}

func (f *fakePages) Update(_ context.Context, _ int, payload *models.PageUpdatePayloadScheme) (*models.PageScheme, *models.ResponseScheme, error) {
	f.updated = payload
	return &models.PageScheme{ID: "100", Title: payload.Title, Status: payload.Status}, nil, nil
}

func newConfluenceTools(f *fakePages) *confluenceTools {
	return &confluenceTools{
		conv:  convert.New(),
		pages: func() (pageService, error) { return f, nil },
	}
}

func TestConfluenceGetPageRendersMarkdown(t *testing.T) {
	f := &fakePages{latest: 3, versions: map[int]*models.PageScheme{}}
	f.versions[3] = confluencePage(t, "Release notes", 3, doc)

	res, err := newConfluenceTools(f).pageHandler(context.Background(), request(map[string]interface{}{"page_id": "100"}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "Title: Release notes")
	assert.Contains(t, out, "Version: 3")
	assert.Contains(t, out, "**hello**\n")
}

func TestConfluenceGetPageRejectsBadID(t *testing.T) {
	f := &fakePages{versions: map[int]*models.PageScheme{}}

	_, err := newConfluenceTools(f).pageHandler(context.Background(), request(map[string]interface{}{"page_id": "abc"}))
	assert.ErrorContains(t, err, "invalid page ID")

	_, err = newConfluenceTools(f).pageHandler(context.Background(), request(nil))
	assert.ErrorContains(t, err, "page_id argument is required")
}

func TestConfluenceCreatePageConvertsMarkdown(t *testing.T) {
	f := &fakePages{}

	res, err := newConfluenceTools(f).createPageHandler(context.Background(), request(map[string]interface{}{
		"space_id":  "42",
		"title":     "Plan",
		"content":   "# Plan\n\nShip **today**",
		"parent_id": "7",
	}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Page created successfully!")

	require.NotNil(t, f.created)
	assert.Equal(t, "7", f.created.ParentID)
	assert.Equal(t, "atlas_doc_format", f.created.Body.Representation)

	body, err := adf.ParseString(f.created.Body.Value)
	require.NoError(t, err)
	require.Len(t, body.Content, 2)
	assert.Equal(t, adf.TypeHeading, body.Content[0].Type)
}

func TestConfluenceUpdatePageBumpsVersion(t *testing.T) {
	f := &fakePages{latest: 3, versions: map[int]*models.PageScheme{}}
	f.versions[3] = confluencePage(t, "Release notes", 3, doc)

	res, err := newConfluenceTools(f).updatePageHandler(context.Background(), request(map[string]interface{}{
		"page_id": "100",
		"content": "updated",
	}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Page updated successfully!")

	require.NotNil(t, f.updated)
	assert.Equal(t, 4, f.updated.Version.Number)
	assert.Equal(t, 42, f.updated.SpaceID)
	assert.Equal(t, "Release notes", f.updated.Title)
	assert.Contains(t, f.updated.Body.Value, `"text":"updated"`)
}

func TestConfluenceCompareVersions(t *testing.T) {
	f := &fakePages{latest: 2, versions: map[int]*models.PageScheme{}}
	f.versions[1] = confluencePage(t, "Notes", 1, paragraphDoc("first draft"))
	f.versions[2] = confluencePage(t, "Notes", 2, paragraphDoc("final draft"))

	res, err := newConfluenceTools(f).compareHandler(context.Background(), request(map[string]interface{}{"page_id": "100"}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "Comparing versions: 1 → 2")
	assert.Contains(t, out, "Title: Notes (unchanged)")
	assert.Contains(t, out, "- first draft")
	assert.Contains(t, out, "+ final draft")

	_, err = newConfluenceTools(f).compareHandler(context.Background(), request(map[string]interface{}{
		"page_id":        "100",
		"source_version": "2",
		"target_version": "1",
	}))
	assert.ErrorContains(t, err, "invalid version numbers")
}

type fakeIssues struct {
	issue   *models.IssueScheme
	created *models.IssueScheme
	updated *models.IssueScheme
}

func (f *fakeIssues) Get(_ context.Context, key string, _, _ []string) (*models.IssueScheme, *models.ResponseScheme, error) {
	if f.issue == nil || f.issue.Key != key {
		return nil, nil, errors.New("issue does not exist")
	}
	return f.issue, nil, nil
}

func (f *fakeIssues) Create(_ context.Context, payload *models.IssueScheme, _ *models.CustomFields) (*models.IssueResponseScheme, *models.ResponseScheme, error) {
	f.created = payload
	return &models.IssueResponseScheme{ID: "10001", Key: "KP-9", Self: "https://example.atlassian.net/rest/api/3/issue/10001"}, nil, nil
}

func (f *fakeIssues) Update(_ context.Context, _ string, _ bool, payload *models.IssueScheme, _ *models.CustomFields, _ *models.UpdateOperations) (*models.ResponseScheme, error) {
	f.updated = payload
	return nil, nil
}

func newJiraTools(f *fakeIssues) *jiraTools {
	return &jiraTools{
		conv:   convert.New(),
		issues: func() (issueService, error) { return f, nil },
	}
}

func jiraIssue(t *testing.T, description string) *models.IssueScheme {
	t.Helper()
	raw := fmt.Sprintf(`{"key":"KP-1","fields":{"summary":"Fix login","status":{"name":"In Progress"},"description":%s,"subtasks":[{"key":"KP-2","fields":{"summary":"Add test"}}]}}`, description)
	var issue models.IssueScheme
	require.NoError(t, json.Unmarshal([]byte(raw), &issue))
	return &issue
}

func TestJiraGetIssueRendersDescription(t *testing.T) {
	f := &fakeIssues{issue: jiraIssue(t, doc)}

	res, err := newJiraTools(f).issueHandler(map[string]interface{}{"issue_key": "KP-1"})
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "Key: KP-1")
	assert.Contains(t, out, "Status: In Progress")
	assert.Contains(t, out, "Assignee: Unassigned")
	assert.Contains(t, out, "Description:\n**hello**\n")
	assert.Contains(t, out, "- KP-2: Add test")

	_, err = newJiraTools(f).issueHandler(map[string]interface{}{"issue_key": "KP-404"})
	assert.ErrorContains(t, err, "failed to get issue")
}

func TestJiraCreateIssueConvertsMarkdown(t *testing.T) {
	f := &fakeIssues{}

	res, err := newJiraTools(f).createIssueHandler(map[string]interface{}{
		"project_key": "KP",
		"summary":     "Crash on save",
		"description": "Steps:\n\n1. open\n2. save",
		"issue_type":  "Bug",
	})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Key: KP-9")

	require.NotNil(t, f.created)
	assert.Equal(t, "KP", f.created.Fields.Project.Key)
	assert.Equal(t, "Bug", f.created.Fields.IssueType.Name)

	description, err := atlassian.FromCommentNode(f.created.Fields.Description)
	require.NoError(t, err)
	require.Len(t, description.Content, 2)
	assert.Equal(t, adf.TypeOrderedList, description.Content[1].Type)
}

func TestJiraUpdateIssueOnlySetsGivenFields(t *testing.T) {
	f := &fakeIssues{}

	_, err := newJiraTools(f).updateIssueHandler(map[string]interface{}{"issue_key": "KP-1", "summary": "Renamed"})
	require.NoError(t, err)
	require.NotNil(t, f.updated)
	assert.Equal(t, "Renamed", f.updated.Fields.Summary)
	assert.Nil(t, f.updated.Fields.Description)

	_, err = newJiraTools(f).updateIssueHandler(map[string]interface{}{"issue_key": "KP-1", "description": "_new_ text"})
	require.NoError(t, err)
	require.NotNil(t, f.updated.Fields.Description)
	assert.Equal(t, "doc", f.updated.Fields.Description.Type)

	_, err = newJiraTools(f).updateIssueHandler(map[string]interface{}{})
	assert.ErrorContains(t, err, "issue_key argument is required")
}
