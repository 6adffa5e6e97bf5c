package domain

import "time"

// RawCommit is the upstream-shaped commit as returned by the fetch
// collaborator, before normalization. Any upstream client implementation
// must populate exactly these fields; the normalizer never reaches into
// client-specific types.
type RawCommit struct {
	SHA         string
	AuthorName  string // may be empty
	AuthorEmail string // may be empty
	AuthorDate  time.Time
	Message     string // full message, possibly multi-line
}

// RawIssue is the upstream-shaped issue before normalization. CreatedAt
// and ClosedAt are carried as strings because upstream sources deliver
// heterogeneous date formats; the normalizer owns parsing them.
// A non-empty PullRequestURL marks the record as a pull request, which
// excludes it from issue normalization.
type RawIssue struct {
	ID             int64
	Number         int
	Title          string
	User           string
	State          string
	CreatedAt      string
	ClosedAt       string // empty for open issues
	Comments       int
	PullRequestURL string
}
