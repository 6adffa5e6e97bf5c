package storage

import (
	"context"

	"github.com/kurihiro0119/repo-miner/internal/domain"
)

// Storage is the abstract interface for the SQL mirror of fetched record
// sets. The CSV files remain the canonical persisted form; this layer
// backs the read-only API server and fetch-run bookkeeping.
type Storage interface {
	// Record operations. Save replaces any previously stored record with
	// the same identity for the repository.
	SaveCommits(ctx context.Context, owner, repo string, records []domain.CommitRecord) error
	SaveIssues(ctx context.Context, owner, repo string, records []domain.IssueRecord) error
	GetCommits(ctx context.Context, owner, repo string) ([]domain.CommitRecord, error)
	GetIssues(ctx context.Context, owner, repo string) ([]domain.IssueRecord, error)

	// Fetch-run bookkeeping
	SaveRun(ctx context.Context, run *domain.FetchRun) error
	GetRuns(ctx context.Context, owner, repo string) ([]*domain.FetchRun, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
