package activities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfateev/autodev-temporal-go/internal/hosting"
)

func TestCreatePullRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "agent/tester/1", payload["head"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"number": 42, "html_url": "https://github.com/acme/widgets/pull/42"})
	}))
	defer srv.Close()

	a := NewHostingActivities(hosting.NewGitHubClient(
		hosting.WithBaseURL(srv.URL), hosting.WithToken("tok")))

	out, err := a.CreatePullRequest(context.Background(), CreatePullRequestInput{
		Owner: "acme", Repo: "widgets",
		Title: "tester: update readme",
		Head:  "agent/tester/1", Base: "main",
	})
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, 42, out.Number)
	assert.Equal(t, "https://github.com/acme/widgets/pull/42", out.URL)
}

func TestCreatePullRequest_NoTokenSkips(t *testing.T) {
	a := NewHostingActivities(hosting.NewGitHubClient(hosting.WithToken("")))

	out, err := a.CreatePullRequest(context.Background(), CreatePullRequestInput{
		Owner: "acme", Repo: "widgets", Head: "b", Base: "main",
	})
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Contains(t, out.Reason, "token")
}
