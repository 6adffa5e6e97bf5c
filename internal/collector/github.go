package collector

import (
	"context"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

// perPage is the page size for list calls
const perPage = 100

// githubCollector implements Collector using the GitHub REST API
type githubCollector struct {
	client      *github.Client
	rateLimiter RateLimiter
}

// NewGitHubCollector creates a new GitHub collector
func NewGitHubCollector(token string) Collector {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &githubCollector{
		client:      github.NewClient(tc),
		rateLimiter: NewRateLimiter(),
	}
}

// FetchCommits retrieves raw commits for a repository in upstream
// pagination order, stopping once maxCount records are collected.
func (c *githubCollector) FetchCommits(ctx context.Context, owner, repo string, maxCount int) ([]*domain.RawCommit, error) {
	var all []*domain.RawCommit
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		commits, resp, err := c.client.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			// 409 means the repository has no commits at all
			if resp != nil && resp.StatusCode == 409 {
				return all, nil
			}
			return nil, apperrors.NewUpstreamError("failed to list commits for "+owner+"/"+repo, err)
		}
		c.updateRateLimitFromResponse(resp)

		for _, commit := range commits {
			all = append(all, rawCommit(commit))
			if maxCount > 0 && len(all) >= maxCount {
				return all, nil
			}
		}

		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// FetchIssues retrieves raw issues for a repository, pull requests
// included; the normalizer decides what to drop.
func (c *githubCollector) FetchIssues(ctx context.Context, owner, repo, state string, maxCount int) ([]*domain.RawIssue, error) {
	var all []*domain.RawIssue
	opts := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, apperrors.NewUpstreamError("failed to list issues for "+owner+"/"+repo, err)
		}
		c.updateRateLimitFromResponse(resp)

		for _, issue := range issues {
			all = append(all, rawIssue(issue))
			if maxCount > 0 && len(all) >= maxCount {
				return all, nil
			}
		}

		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// rawCommit maps an API commit into the upstream-shaped record. The
// author identity comes from the commit metadata, not the platform
// account, so commits by authors without an account keep their name.
func rawCommit(commit *github.RepositoryCommit) *domain.RawCommit {
	raw := &domain.RawCommit{
		SHA: commit.GetSHA(),
	}
	if inner := commit.GetCommit(); inner != nil {
		raw.Message = inner.GetMessage()
		if author := inner.GetAuthor(); author != nil {
			raw.AuthorName = author.GetName()
			raw.AuthorEmail = author.GetEmail()
			raw.AuthorDate = author.GetDate().Time
		}
	}
	return raw
}

func rawIssue(issue *github.Issue) *domain.RawIssue {
	raw := &domain.RawIssue{
		ID:       issue.GetID(),
		Number:   issue.GetNumber(),
		Title:    issue.GetTitle(),
		User:     issue.GetUser().GetLogin(),
		State:    issue.GetState(),
		Comments: issue.GetComments(),
	}
	if issue.CreatedAt != nil {
		raw.CreatedAt = issue.GetCreatedAt().Time.UTC().Format(time.RFC3339)
	}
	if issue.ClosedAt != nil {
		raw.ClosedAt = issue.GetClosedAt().Time.UTC().Format(time.RFC3339)
	}
	if issue.IsPullRequest() {
		raw.PullRequestURL = issue.GetPullRequestLinks().GetURL()
		if raw.PullRequestURL == "" {
			raw.PullRequestURL = issue.GetHTMLURL()
		}
	}
	return raw
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (c *githubCollector) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 {
		c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}
