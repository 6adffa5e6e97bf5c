// Package client provides a typed HTTP client for the repo-miner API.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kurihiro0119/repo-miner/internal/domain"
)

// Client is the API client for repo-miner
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetCommits retrieves the stored commit records for a repository
func (c *Client) GetCommits(owner, repo string) ([]domain.CommitRecord, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/commits", owner, repo)

	var response struct {
		Data []domain.CommitRecord `json:"data"`
	}
	if err := c.get(path, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetIssues retrieves the stored issue records for a repository
func (c *Client) GetIssues(owner, repo string) ([]domain.IssueRecord, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/issues", owner, repo)

	var response struct {
		Data []domain.IssueRecord `json:"data"`
	}
	if err := c.get(path, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetSummary retrieves the computed summary report for a repository
func (c *Client) GetSummary(owner, repo string) (*domain.SummaryReport, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/summary", owner, repo)

	var response struct {
		Data *domain.SummaryReport `json:"data"`
	}
	if err := c.get(path, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRuns retrieves recorded fetch runs for a repository
func (c *Client) GetRuns(owner, repo string) ([]*domain.FetchRun, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/runs", owner, repo)

	var response struct {
		Data []*domain.FetchRun `json:"data"`
	}
	if err := c.get(path, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// get performs a GET request and decodes the JSON response
func (c *Client) get(path string, out interface{}) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid request URL: %w", err)
	}

	resp, err := c.httpClient.Get(u)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Code != "" {
			return fmt.Errorf("API error %s: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
