package csvfile

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-miner/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCommitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commits.csv")
	records := []domain.CommitRecord{
		{SHA: "sha1", Author: "Alice", Email: "a@example.com", Date: day(2025, 6, 1), Message: "Initial commit"},
		{SHA: "sha2", Author: "", Email: "", Date: day(2025, 5, 30), Message: "message, with comma and \"quotes\""},
	}

	require.NoError(t, WriteCommits(path, records))

	loaded, err := ReadCommits(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestIssueRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.csv")
	closed := day(2024, 10, 2)
	duration := 304
	records := []domain.IssueRecord{
		{ID: 11, Number: 1, Title: "open issue", User: "alice", State: domain.IssueStateOpen, CreatedAt: day(2023, 12, 3), Comments: 2},
		{ID: 22, Number: 2, Title: "closed issue", User: "bob", State: domain.IssueStateClosed, CreatedAt: day(2023, 12, 3), ClosedAt: &closed, OpenDurationDays: &duration, Comments: 5},
	}

	require.NoError(t, WriteIssues(path, records))

	loaded, err := ReadIssues(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	// absent fields stay absent across the round trip
	assert.Nil(t, loaded[0].ClosedAt)
	assert.Nil(t, loaded[0].OpenDurationDays)
}

func TestEmptyTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	commitsPath := filepath.Join(dir, "commits.csv")
	issuesPath := filepath.Join(dir, "issues.csv")

	require.NoError(t, WriteCommits(commitsPath, nil))
	require.NoError(t, WriteIssues(issuesPath, nil))

	commits, err := ReadCommits(commitsPath)
	require.NoError(t, err)
	assert.Empty(t, commits)

	issues, err := ReadIssues(issuesPath)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestWriteIssuesRendersSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.csv")
	closed := day(2024, 10, 2)
	duration := 304
	records := []domain.IssueRecord{
		{ID: 22, Number: 2, Title: "closed issue", User: "bob", State: domain.IssueStateClosed, CreatedAt: day(2023, 12, 3), ClosedAt: &closed, OpenDurationDays: &duration, Comments: 5},
	}

	require.NoError(t, WriteIssues(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, IssueHeader, rows[0])
	assert.Equal(t, []string{"22", "2", "closed issue", "bob", "closed", "2023-12-03", "2024-10-02", "304", "5"}, rows[1])
}

func TestReadRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.csv")
	require.NoError(t, os.WriteFile(path, []byte("sha,author,email,when,message\n"), 0o644))

	_, err := ReadCommits(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected column")
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadCommits(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
