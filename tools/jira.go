package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/athapong/adfconv/pkg/adf/atlassian"
	"github.com/athapong/adfconv/pkg/convert"
	"github.com/athapong/adfconv/services"
	"github.com/athapong/adfconv/util"
)

// issueService is the part of the Jira v3 issue API the tools use.
type issueService interface {
	Get(ctx context.Context, issueKeyOrID string, fields, expand []string) (*models.IssueScheme, *models.ResponseScheme, error)
	Create(ctx context.Context, payload *models.IssueScheme, customFields *models.CustomFields) (*models.IssueResponseScheme, *models.ResponseScheme, error)
	Update(ctx context.Context, issueKeyOrID string, notify bool, payload *models.IssueScheme, customFields *models.CustomFields, operations *models.UpdateOperations) (*models.ResponseScheme, error)
}

type jiraTools struct {
	conv   *convert.Converter
	issues func() (issueService, error)
}

func defaultIssues() (issueService, error) {
	client, err := services.JiraClient()
	if err != nil {
		return nil, err
	}
	return client.Issue, nil
}

// RegisterJiraTool registers tools that read and write Jira issue
// descriptions as Markdown.
func RegisterJiraTool(s *server.MCPServer, opts ...convert.Option) {
	t := &jiraTools{conv: convert.New(opts...), issues: defaultIssues}

	jiraGetIssueTool := mcp.NewTool("jira_get_issue",
		mcp.WithDescription("Retrieve a Jira issue with its description converted to Markdown"),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("The unique identifier of the Jira issue (e.g., KP-2, PROJ-123)")),
	)
	s.AddTool(jiraGetIssueTool, util.ErrorGuard(util.AdaptLegacyHandler(t.issueHandler)))

	jiraCreateIssueTool := mcp.NewTool("jira_create_issue",
		mcp.WithDescription("Create a new Jira issue with a Markdown description. Returns the created issue's key, ID, and URL"),
		mcp.WithString("project_key", mcp.Required(), mcp.Description("Project identifier where the issue will be created (e.g., KP, PROJ)")),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Brief title or headline of the issue")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Description in Markdown")),
		mcp.WithString("issue_type", mcp.Required(), mcp.Description("Type of issue to create (common types: Bug, Task, Story, Epic)")),
	)
	s.AddTool(jiraCreateIssueTool, util.ErrorGuard(util.AdaptLegacyHandler(t.createIssueHandler)))

	jiraUpdateIssueTool := mcp.NewTool("jira_update_issue",
		mcp.WithDescription("Modify an existing Jira issue's summary or Markdown description. Only specified fields are changed"),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("The unique identifier of the issue to update (e.g., KP-2)")),
		mcp.WithString("summary", mcp.Description("New title for the issue (optional)")),
		mcp.WithString("description", mcp.Description("New description in Markdown (optional)")),
	)
	s.AddTool(jiraUpdateIssueTool, util.ErrorGuard(util.AdaptLegacyHandler(t.updateIssueHandler)))
}

func (t *jiraTools) issueHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issues, err := t.issues()
	if err != nil {
		return nil, err
	}

	issueKey, ok := arguments["issue_key"].(string)
	if !ok || issueKey == "" {
		return nil, errors.New("issue_key argument is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	issue, response, err := issues.Get(ctx, issueKey, []string{"*all"}, nil)
	if err != nil {
		return nil, apiError("failed to get issue", response, err)
	}
	if issue.Fields == nil {
		return nil, fmt.Errorf("issue %s has no fields", issueKey)
	}

	description := ""
	if issue.Fields.Description != nil {
		doc, err := atlassian.FromCommentNode(issue.Fields.Description)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read description")
		}
		if description, err = t.conv.ADFToMarkdown(doc); err != nil {
			return nil, errors.Wrap(err, "failed to convert description")
		}
	}

	status := "Unknown"
	if issue.Fields.Status != nil {
		status = issue.Fields.Status.Name
	}
	reporterName := "Unassigned"
	if issue.Fields.Reporter != nil {
		reporterName = issue.Fields.Reporter.DisplayName
	}
	assigneeName := "Unassigned"
	if issue.Fields.Assignee != nil {
		assigneeName = issue.Fields.Assignee.DisplayName
	}
	priorityName := "None"
	if issue.Fields.Priority != nil {
		priorityName = issue.Fields.Priority.Name
	}

	var subtasks strings.Builder
	for _, subTask := range issue.Fields.Subtasks {
		if subTask.Fields != nil {
			subtasks.WriteString(fmt.Sprintf("- %s: %s\n", subTask.Key, subTask.Fields.Summary))
		}
	}

	result := fmt.Sprintf(`Key: %s
Summary: %s
Status: %s
Reporter: %s
Assignee: %s
Priority: %s
Description:
%s`,
		issue.Key,
		issue.Fields.Summary,
		status,
		reporterName,
		assigneeName,
		priorityName,
		description,
	)
	if subtasks.Len() > 0 {
		result += "\nSubtasks:\n" + subtasks.String()
	}

	return mcp.NewToolResultText(result), nil
}

func (t *jiraTools) createIssueHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issues, err := t.issues()
	if err != nil {
		return nil, err
	}

	projectKey, ok := arguments["project_key"].(string)
	if !ok {
		return nil, errors.New("project_key argument is required")
	}
	summary, ok := arguments["summary"].(string)
	if !ok {
		return nil, errors.New("summary argument is required")
	}
	description, ok := arguments["description"].(string)
	if !ok {
		return nil, errors.New("description argument is required")
	}
	issueType, ok := arguments["issue_type"].(string)
	if !ok {
		return nil, errors.New("issue_type argument is required")
	}

	body, err := t.markdownDescription(description)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	payload := &models.IssueScheme{
		Fields: &models.IssueFieldsScheme{
			Summary:     summary,
			Project:     &models.ProjectScheme{Key: projectKey},
			Description: body,
			IssueType:   &models.IssueTypeScheme{Name: issueType},
		},
	}

	issue, response, err := issues.Create(ctx, payload, nil)
	if err != nil {
		return nil, apiError("failed to create issue", response, err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Issue created successfully!\nKey: %s\nID: %s\nURL: %s", issue.Key, issue.ID, issue.Self)), nil
}

func (t *jiraTools) updateIssueHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issues, err := t.issues()
	if err != nil {
		return nil, err
	}

	issueKey, ok := arguments["issue_key"].(string)
	if !ok || issueKey == "" {
		return nil, errors.New("issue_key argument is required")
	}

	payload := &models.IssueScheme{Fields: &models.IssueFieldsScheme{}}
	if summary, ok := arguments["summary"].(string); ok && summary != "" {
		payload.Fields.Summary = summary
	}
	if description, ok := arguments["description"].(string); ok && description != "" {
		body, err := t.markdownDescription(description)
		if err != nil {
			return nil, err
		}
		payload.Fields.Description = body
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	response, err := issues.Update(ctx, issueKey, true, payload, nil, nil)
	if err != nil {
		return nil, apiError("failed to update issue", response, err)
	}

	return mcp.NewToolResultText("Issue updated successfully!"), nil
}

// markdownDescription converts Markdown into an ADF issue description.
func (t *jiraTools) markdownDescription(text string) (*models.CommentNodeScheme, error) {
	doc, err := t.conv.MarkdownToADF(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert markdown")
	}
	return atlassian.ToCommentNode(doc), nil
}
