package hosting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePullRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 7, "html_url": "https://github.com/octocat/hello/pull/7"}`))
	}))
	defer server.Close()

	c := NewGitHubClient(WithBaseURL(server.URL), WithToken("tok"))
	pr, err := c.CreatePullRequest(context.Background(), PullRequestInput{
		Owner: "octocat",
		Repo:  "hello",
		Title: "agent: add greeting",
		Head:  "agent/tester/1",
		Body:  "Automated PR",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, pr.Number)
	assert.Equal(t, "https://github.com/octocat/hello/pull/7", pr.HTMLURL)
	assert.Equal(t, "/repos/octocat/hello/pulls", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "agent/tester/1", gotBody["head"])
	// Base defaults to main when unset.
	assert.Equal(t, "main", gotBody["base"])
}

func TestCreatePullRequest_ExplicitBase(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 1, "html_url": "u"}`))
	}))
	defer server.Close()

	c := NewGitHubClient(WithBaseURL(server.URL), WithToken("tok"))
	_, err := c.CreatePullRequest(context.Background(), PullRequestInput{
		Owner: "o", Repo: "r", Head: "h", Base: "develop",
	})
	require.NoError(t, err)
	assert.Equal(t, "develop", gotBody["base"])
}

func TestCreatePullRequest_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "Validation Failed"}`))
	}))
	defer server.Close()

	c := NewGitHubClient(WithBaseURL(server.URL), WithToken("tok"))
	_, err := c.CreatePullRequest(context.Background(), PullRequestInput{Owner: "o", Repo: "r", Head: "h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Validation Failed")
}

func TestCreatePullRequest_NoToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	c := NewGitHubClient()
	assert.False(t, c.HasToken())

	_, err := c.CreatePullRequest(context.Background(), PullRequestInput{Owner: "o", Repo: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestCreatePullRequest_MissingRepo(t *testing.T) {
	c := NewGitHubClient(WithToken("tok"))
	_, err := c.CreatePullRequest(context.Background(), PullRequestInput{})
	assert.Error(t, err)
}
