// Package hosting creates pull requests through the GitHub REST API.
// The API surface used is a single endpoint, so this is a plain HTTP
// client rather than a full SDK binding.
package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultAPIBaseURL is the public GitHub API endpoint. Overridable
// for GitHub Enterprise and for tests.
const DefaultAPIBaseURL = "https://api.github.com"

const requestTimeout = 30 * time.Second

// PullRequestInput describes the PR to open.
type PullRequestInput struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body"`
}

// PullRequest is the subset of the API response the pipeline uses.
type PullRequest struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// GitHubClient opens pull requests.
type GitHubClient struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// Option configures a GitHubClient.
type Option func(*GitHubClient)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(c *GitHubClient) { c.baseURL = url }
}

// WithToken sets the token explicitly instead of reading GITHUB_TOKEN.
func WithToken(token string) Option {
	return func(c *GitHubClient) { c.token = token }
}

// NewGitHubClient creates a client. The token defaults to the
// GITHUB_TOKEN environment variable.
func NewGitHubClient(opts ...Option) *GitHubClient {
	c := &GitHubClient{
		baseURL: DefaultAPIBaseURL,
		token:   os.Getenv("GITHUB_TOKEN"),
		httpc:   &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken reports whether a token is configured. Callers skip PR
// creation entirely when it is not, rather than failing the run.
func (c *GitHubClient) HasToken() bool { return c.token != "" }

// CreatePullRequest opens a PR and returns its number and URL.
func (c *GitHubClient) CreatePullRequest(ctx context.Context, in PullRequestInput) (*PullRequest, error) {
	if !c.HasToken() {
		return nil, fmt.Errorf("no GitHub token configured (set GITHUB_TOKEN)")
	}
	if in.Owner == "" || in.Repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	base := in.Base
	if base == "" {
		base = "main"
	}

	payload, err := json.Marshal(map[string]string{
		"title": in.Title,
		"head":  in.Head,
		"base":  base,
		"body":  in.Body,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls", c.baseURL, in.Owner, in.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create pull request: %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode pull request response: %w", err)
	}
	return &pr, nil
}
