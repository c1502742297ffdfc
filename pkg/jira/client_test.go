package jira

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(Config{
		BaseURL:  srv.URL,
		Username: "reporter@example.com",
		APIToken: "token-123",
	})
	return c, srv
}

func TestClientSendsBasicAuthAndAccept(t *testing.T) {
	var gotAuth, gotAccept string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	if _, err := c.Projects(context.Background()); err != nil {
		t.Fatal(err)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString(
		[]byte("reporter@example.com:token-123"))
	if gotAuth != wantAuth {
		t.Errorf("Authorization = %q, expected %q", gotAuth, wantAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, expected application/json", gotAccept)
	}
}

func TestProjects(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/project" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[
			{"key":"OPS","name":"Operations","id":"10001"},
			{"key":"WEB","name":"Web Platform","id":"10002"}
		]`))
	})
	defer srv.Close()

	projects, err := c.Projects(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].Key != "OPS" || projects[0].Name != "Operations" {
		t.Errorf("project 0 = %+v", projects[0])
	}
	if projects[1].Key != "WEB" || projects[1].Name != "Web Platform" {
		t.Errorf("project 1 = %+v", projects[1])
	}
}

func TestVersions(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/project/OPS/versions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"name":"1.0"},{"name":"2.0-beta"}]`))
	})
	defer srv.Close()

	versions, err := c.Versions(context.Background(), "OPS")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 || versions[0] != "1.0" || versions[1] != "2.0-beta" {
		t.Errorf("versions = %v", versions)
	}
}

func TestJQL(t *testing.T) {
	got := JQL("OPS", "1.0")
	want := `project = OPS AND fixVersion = "1.0"`
	if got != want {
		t.Errorf("JQL = %q, expected %q", got, want)
	}
}

func TestSearchIssues(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if got, want := q.Get("jql"), `project = OPS AND fixVersion = "1.0"`; got != want {
			t.Errorf("jql = %q, expected %q", got, want)
		}
		if got := q.Get("expand"); got != "changelog,issuelinks" {
			t.Errorf("expand = %q", got)
		}
		w.Write([]byte(`{"issues":[
			{"key":"OPS-1","fields":{"summary":"First","project":{"key":"OPS"}}},
			{"key":"OPS-2","fields":{"summary":"Second","project":{"key":"OPS"}}}
		]}`))
	})
	defer srv.Close()

	issues, err := c.SearchIssues(context.Background(), "OPS", "1.0")
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Key != "OPS-1" || issues[1].Key != "OPS-2" {
		t.Errorf("keys = %q, %q", issues[0].Key, issues[1].Key)
	}
	if got := string(issues[0].Fields["summary"]); got != `"First"` {
		t.Errorf("raw summary = %s", got)
	}
}

func TestSearchIssuesEmptyResult(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":0}`))
	})
	defer srv.Close()

	issues, err := c.SearchIssues(context.Background(), "OPS", "1.0")
	if err != nil {
		t.Fatal(err)
	}
	if issues == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %d", len(issues))
	}
}

func TestHTTPErrorWithMessages(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["The value 'NOPE' does not exist for the field 'project'."],"errors":{}}`))
	})
	defer srv.Close()

	_, err := c.SearchIssues(context.Background(), "NOPE", "1.0")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, expected 400", httpErr.StatusCode)
	}
	if len(httpErr.ErrorMessages) != 1 {
		t.Fatalf("ErrorMessages = %v", httpErr.ErrorMessages)
	}
	if httpErr.ErrorMessages[0] != "The value 'NOPE' does not exist for the field 'project'." {
		t.Errorf("message = %q", httpErr.ErrorMessages[0])
	}
}

func TestHTTPErrorWithoutBody(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer srv.Close()

	_, err := c.Projects(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, expected 401", httpErr.StatusCode)
	}
	if len(httpErr.ErrorMessages) != 0 {
		t.Errorf("ErrorMessages = %v, expected none", httpErr.ErrorMessages)
	}
}
