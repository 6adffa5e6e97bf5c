package aggregator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

func commitBy(author string) domain.CommitRecord {
	return domain.CommitRecord{
		SHA:    author + "-sha",
		Author: author,
		Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func openIssue(id int64) domain.IssueRecord {
	return domain.IssueRecord{
		ID:        id,
		Number:    int(id),
		State:     domain.IssueStateOpen,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func closedIssue(id int64, durationDays int) domain.IssueRecord {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := created.AddDate(0, 0, durationDays)
	return domain.IssueRecord{
		ID:               id,
		Number:           int(id),
		State:            domain.IssueStateClosed,
		CreatedAt:        created,
		ClosedAt:         &closed,
		OpenDurationDays: &durationDays,
	}
}

func TestSummarizeTopCommitters(t *testing.T) {
	testCases := []struct {
		name     string
		authors  []string
		expected []domain.CommitterCount
	}{
		{
			name:    "counts grouped by author",
			authors: []string{"Alice", "Bob", "Alice"},
			expected: []domain.CommitterCount{
				{Author: "Alice", Commits: 2},
				{Author: "Bob", Commits: 1},
			},
		},
		{
			name:    "ties keep first-encounter order",
			authors: []string{"bob", "alice", "bob", "alice", "carol"},
			expected: []domain.CommitterCount{
				{Author: "bob", Commits: 2},
				{Author: "alice", Commits: 2},
				{Author: "carol", Commits: 1},
			},
		},
		{
			name:    "at most five groups",
			authors: []string{"a", "b", "c", "d", "e", "f"},
			expected: []domain.CommitterCount{
				{Author: "a", Commits: 1},
				{Author: "b", Commits: 1},
				{Author: "c", Commits: 1},
				{Author: "d", Commits: 1},
				{Author: "e", Commits: 1},
			},
		},
		{
			name:    "empty author string is its own group",
			authors: []string{"", "Alice", ""},
			expected: []domain.CommitterCount{
				{Author: "", Commits: 2},
				{Author: "Alice", Commits: 1},
			},
		},
		{
			name:     "no commits yields empty ranking",
			authors:  []string{},
			expected: []domain.CommitterCount{},
		},
	}

	issues := []domain.IssueRecord{openIssue(1)}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			commits := make([]domain.CommitRecord, 0, len(tc.authors))
			for _, author := range tc.authors {
				commits = append(commits, commitBy(author))
			}

			report, err := Summarize(commits, issues)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, report.TopCommitters)
		})
	}
}

func TestSummarizeCloseRate(t *testing.T) {
	commits := []domain.CommitRecord{commitBy("Alice")}
	issues := []domain.IssueRecord{
		closedIssue(1, 10),
		closedIssue(2, 5),
		openIssue(3),
	}

	report, err := Summarize(commits, issues)

	require.NoError(t, err)
	assert.InDelta(t, 0.67, report.IssueCloseRate, 1e-9) // 2/3 rounded to 2 decimals
}

func TestSummarizeZeroIssuesIsExplicitError(t *testing.T) {
	report, err := Summarize([]domain.CommitRecord{commitBy("Alice")}, nil)

	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, apperrors.IsEmptyInput(err))
}

func TestSummarizeAverageOpenDuration(t *testing.T) {
	t.Run("mean over closed issues only", func(t *testing.T) {
		issues := []domain.IssueRecord{
			closedIssue(1, 10),
			closedIssue(2, 5),
			openIssue(3),
		}

		report, err := Summarize(nil, issues)

		require.NoError(t, err)
		require.True(t, report.HasAverageOpenDuration())
		assert.InDelta(t, 7.5, report.AverageOpenDurationDays, 1e-9)
	})

	t.Run("no closed issues yields NaN sentinel, close rate stays defined", func(t *testing.T) {
		issues := []domain.IssueRecord{openIssue(1), openIssue(2)}

		report, err := Summarize(nil, issues)

		require.NoError(t, err)
		assert.False(t, report.HasAverageOpenDuration())
		assert.Equal(t, 0.0, report.IssueCloseRate)
	})
}

func TestSummarizeIsIdempotent(t *testing.T) {
	commits := []domain.CommitRecord{commitBy("Alice"), commitBy("Bob"), commitBy("Alice")}
	issues := []domain.IssueRecord{closedIssue(1, 304), openIssue(2)}

	first, err := Summarize(commits, issues)
	require.NoError(t, err)
	second, err := Summarize(commits, issues)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSummaryReportJSONRendersUndefinedAverageAsNull(t *testing.T) {
	issues := []domain.IssueRecord{openIssue(1)}

	report, err := Summarize(nil, issues)
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"average_open_duration_days":null`)

	var decoded domain.SummaryReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.HasAverageOpenDuration())
}
