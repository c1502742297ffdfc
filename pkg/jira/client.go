// Package jira is a minimal read-only client for the Jira Cloud REST API.
//
// It covers exactly the three endpoints the dashboard needs: the project
// catalog, a project's fix versions, and the JQL issue search. Requests are
// authenticated with HTTP Basic credentials supplied once at construction;
// failures propagate immediately to the caller with no retry.
package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/fixboard/pkg/debug"
	"github.com/vanderheijden86/fixboard/pkg/metrics"
	"github.com/vanderheijden86/fixboard/pkg/model"
)

// Config carries the credentials and endpoint for a Jira site. All three
// values are read once from process configuration at startup; missing
// credentials surface as an authentication failure on the first call rather
// than a separate startup check.
type Config struct {
	BaseURL  string
	Username string
	APIToken string
}

// HTTPError is a non-2xx upstream response. ErrorMessages holds the
// structured `errorMessages` list from the response body when present.
type HTTPError struct {
	StatusCode    int
	Status        string
	ErrorMessages []string
}

func (e *HTTPError) Error() string {
	if len(e.ErrorMessages) > 0 {
		return fmt.Sprintf("jira: %s: %s", e.Status, strings.Join(e.ErrorMessages, ", "))
	}
	return fmt.Sprintf("jira: %s", e.Status)
}

// Client issues authenticated GET requests against a Jira site.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a client for the given site. The underlying transport
// keeps its defaults; a slow upstream stalls the caller.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

// get performs an authenticated GET against path (relative to the base URL)
// and decodes the JSON response body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	defer metrics.Timer(metrics.Fetch)()

	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	debug.Log("GET %s", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		// Jira error bodies are {"errorMessages": [...], "errors": {...}}.
		var payload struct {
			ErrorMessages []string `json:"errorMessages"`
		}
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil {
			httpErr.ErrorMessages = payload.ErrorMessages
		}
		return httpErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// Projects lists the project catalog in wire order. Use model.ProjectMap for
// the key -> name view.
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var payload []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/rest/api/3/project", nil, &payload); err != nil {
		return nil, err
	}
	projects := make([]model.Project, 0, len(payload))
	for _, p := range payload {
		projects = append(projects, model.Project{Key: p.Key, Name: p.Name})
	}
	return projects, nil
}

// Versions lists the fix version names of a project in wire order, unsorted.
func (c *Client) Versions(ctx context.Context, projectKey string) ([]string, error) {
	var payload []struct {
		Name string `json:"name"`
	}
	path := "/rest/api/3/project/" + url.PathEscape(projectKey) + "/versions"
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(payload))
	for _, v := range payload {
		names = append(names, v.Name)
	}
	return names, nil
}

// JQL returns the search predicate for one (project, version) pair.
func JQL(projectKey, versionName string) string {
	return fmt.Sprintf("project = %s AND fixVersion = %q", projectKey, versionName)
}

// SearchIssues fetches all issues matching one (project, version) pair with
// changelog and issue-link expansion. Relies on the endpoint's default page
// size; there is no pagination handling.
func (c *Client) SearchIssues(ctx context.Context, projectKey, versionName string) ([]Issue, error) {
	params := url.Values{}
	params.Set("jql", JQL(projectKey, versionName))
	params.Set("expand", "changelog,issuelinks")

	var payload struct {
		Issues []Issue `json:"issues"`
	}
	if err := c.get(ctx, "/rest/api/3/search", params, &payload); err != nil {
		return nil, err
	}
	if payload.Issues == nil {
		return []Issue{}, nil
	}
	return payload.Issues, nil
}
