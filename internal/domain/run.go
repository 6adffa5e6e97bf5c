package domain

import "time"

// FetchKind identifies what a fetch run retrieved
type FetchKind string

const (
	FetchKindCommits FetchKind = "commits"
	FetchKindIssues  FetchKind = "issues"
)

// FetchRun records a single fetch-and-normalize invocation against a
// repository, for bookkeeping in the storage layer.
type FetchRun struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	Repo       string    `json:"repo"`
	Kind       FetchKind `json:"kind"`
	Records    int       `json:"records"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
