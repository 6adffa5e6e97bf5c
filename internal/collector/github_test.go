package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

// setupTestCollector creates a githubCollector pointed at a mock server.
func setupTestCollector(t *testing.T, handler http.Handler) (*githubCollector, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return &githubCollector{client: client, rateLimiter: NewRateLimiter()}, server
}

func TestFetchCommits(t *testing.T) {
	testCases := []struct {
		name         string
		handlerFunc  func(w http.ResponseWriter, r *http.Request)
		maxCount     int
		expectedSHAs []string
		expectError  bool
		expectedCode apperrors.ErrCode
	}{
		{
			name: "happy path maps commit metadata identity",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/repos/any-owner/any-repo/commits")
				fmt.Fprint(w, `[
					{"sha":"sha1","commit":{"message":"Initial commit\nDetails","author":{"name":"Alice","email":"a@example.com","date":"2025-06-01T12:00:00Z"}}},
					{"sha":"sha2","commit":{"message":"Bug fix","author":{"name":"Bob","email":"b@example.com","date":"2025-05-31T09:00:00Z"}}}
				]`)
			},
			expectedSHAs: []string{"sha1", "sha2"},
		},
		{
			name: "cap stops collection",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[{"sha":"sha1","commit":{"message":"a"}},{"sha":"sha2","commit":{"message":"b"}}]`)
			},
			maxCount:     1,
			expectedSHAs: []string{"sha1"},
		},
		{
			name: "empty repository returns no commits (409)",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"message":"Git Repository is empty."}`)
			},
			expectedSHAs: []string{},
		},
		{
			name: "API failure surfaces as upstream unavailable",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"Internal Server Error"}`)
			},
			expectError:  true,
			expectedCode: apperrors.ErrCodeUpstreamUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			coll, _ := setupTestCollector(t, http.HandlerFunc(tc.handlerFunc))

			raws, err := coll.FetchCommits(context.Background(), "any-owner", "any-repo", tc.maxCount)

			if tc.expectError {
				require.Error(t, err)
				appErr, ok := err.(*apperrors.AppError)
				require.True(t, ok)
				assert.Equal(t, tc.expectedCode, appErr.Code)
				return
			}
			require.NoError(t, err)
			require.Len(t, raws, len(tc.expectedSHAs))
			for i, sha := range tc.expectedSHAs {
				assert.Equal(t, sha, raws[i].SHA)
			}
		})
	}
}

func TestFetchCommitsMapsAuthorFields(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sha":"sha1","author":{"login":"alice-login"},"commit":{"message":"msg","author":{"name":"Alice Smith","email":"a@example.com","date":"2025-06-01T12:00:00Z"}}}]`)
	}
	coll, _ := setupTestCollector(t, http.HandlerFunc(handler))

	raws, err := coll.FetchCommits(context.Background(), "o", "r", 0)

	require.NoError(t, err)
	require.Len(t, raws, 1)
	// identity comes from the commit metadata, not the account login
	assert.Equal(t, "Alice Smith", raws[0].AuthorName)
	assert.Equal(t, "a@example.com", raws[0].AuthorEmail)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), raws[0].AuthorDate.UTC())
	assert.Equal(t, "msg", raws[0].Message)
}

func TestFetchIssues(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/any-owner/any-repo/issues")
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[
			{"id":11,"number":1,"title":"real issue","user":{"login":"alice"},"state":"open","created_at":"2024-01-01T10:00:00Z","comments":2},
			{"id":22,"number":2,"title":"a pr","user":{"login":"bob"},"state":"closed","created_at":"2024-01-02T10:00:00Z","closed_at":"2024-01-03T10:00:00Z","comments":0,"pull_request":{"url":"https://api.github.com/repos/o/r/pulls/2"}}
		]`)
	}
	coll, _ := setupTestCollector(t, http.HandlerFunc(handler))

	raws, err := coll.FetchIssues(context.Background(), "any-owner", "any-repo", "all", 0)

	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, int64(11), raws[0].ID)
	assert.Equal(t, "alice", raws[0].User)
	assert.Equal(t, "2024-01-01T10:00:00Z", raws[0].CreatedAt)
	assert.Empty(t, raws[0].ClosedAt)
	assert.Empty(t, raws[0].PullRequestURL, "plain issues carry no pull-request linkage")

	assert.Equal(t, "2024-01-03T10:00:00Z", raws[1].ClosedAt)
	assert.NotEmpty(t, raws[1].PullRequestURL, "pull requests keep their linkage for the normalizer to drop")
}

func TestFetchIssuesUpstreamError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}
	coll, _ := setupTestCollector(t, http.HandlerFunc(handler))

	raws, err := coll.FetchIssues(context.Background(), "o", "r", "all", 0)

	assert.Nil(t, raws)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, appErr.Code)
}
