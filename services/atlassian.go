// Package services holds the shared Atlassian API clients.
package services

import (
	"os"
	"sync"

	confluence "github.com/ctreminiom/go-atlassian/confluence/v2"
	jira "github.com/ctreminiom/go-atlassian/jira/v3"
	"github.com/pkg/errors"
)

var (
	confluenceClient *confluence.Client
	confluenceErr    error
	confluenceOnce   sync.Once

	jiraClient *jira.Client
	jiraErr    error
	jiraOnce   sync.Once
)

// AtlassianConfig is read from ATLASSIAN_HOST, ATLASSIAN_EMAIL and
// ATLASSIAN_TOKEN.
type AtlassianConfig struct {
	Host  string
	Email string
	Token string
}

// LoadAtlassianConfig reads the Atlassian credentials from the environment.
func LoadAtlassianConfig() (AtlassianConfig, error) {
	cfg := AtlassianConfig{
		Host:  os.Getenv("ATLASSIAN_HOST"),
		Email: os.Getenv("ATLASSIAN_EMAIL"),
		Token: os.Getenv("ATLASSIAN_TOKEN"),
	}
	if cfg.Host == "" || cfg.Email == "" || cfg.Token == "" {
		return cfg, errors.New("ATLASSIAN_HOST, ATLASSIAN_EMAIL and ATLASSIAN_TOKEN must be set")
	}
	return cfg, nil
}

// ConfluenceClient returns the shared Confluence v2 client.
func ConfluenceClient() (*confluence.Client, error) {
	confluenceOnce.Do(func() {
		cfg, err := LoadAtlassianConfig()
		if err != nil {
			confluenceErr = err
			return
		}
		client, err := confluence.New(nil, cfg.Host)
		if err != nil {
			confluenceErr = errors.Wrap(err, "failed to create Confluence client")
			return
		}
		client.Auth.SetBasicAuth(cfg.Email, cfg.Token)
		confluenceClient = client
	})
	return confluenceClient, confluenceErr
}

// JiraClient returns the shared Jira v3 client. v3 carries issue text as ADF.
func JiraClient() (*jira.Client, error) {
	jiraOnce.Do(func() {
		cfg, err := LoadAtlassianConfig()
		if err != nil {
			jiraErr = err
			return
		}
		client, err := jira.New(nil, cfg.Host)
		if err != nil {
			jiraErr = errors.Wrap(err, "failed to create Jira client")
			return
		}
		client.Auth.SetBasicAuth(cfg.Email, cfg.Token)
		jiraClient = client
	})
	return jiraClient, jiraErr
}
