package collector

import (
	"context"

	"github.com/kurihiro0119/repo-miner/internal/domain"
)

// Collector is the fetch collaborator: it yields raw commit and issue
// records for a repository. Implementations own pagination and rate
// limiting; callers own normalization. Always injected explicitly, never
// looked up through ambient state.
type Collector interface {
	// FetchCommits retrieves up to maxCount raw commits for a repository
	// in upstream pagination order. maxCount <= 0 means no cap.
	FetchCommits(ctx context.Context, owner, repo string, maxCount int) ([]*domain.RawCommit, error)

	// FetchIssues retrieves up to maxCount raw issues (pull requests
	// included, marked by their linkage) filtered by state
	// ("open", "closed" or "all").
	FetchIssues(ctx context.Context, owner, repo, state string, maxCount int) ([]*domain.RawIssue, error)
}
