// Package aggregator computes summary statistics over normalized commit
// and issue records.
package aggregator

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

// topCommitterLimit caps the ranked committer list
const topCommitterLimit = 5

// Summarize computes the summary report from the two normalized record
// sets. It is a pure single pass over immutable inputs: calling it twice
// on the same tables yields identical reports.
//
// The close rate over zero issues is an explicit error (division by zero
// is never silently mapped to 0), while an average open duration over
// zero closed issues is the NaN sentinel. The two policies differ on
// purpose: a summary without issues answers nothing, a summary without
// closed issues still has a meaningful close rate of 0.
func Summarize(commits []domain.CommitRecord, issues []domain.IssueRecord) (*domain.SummaryReport, error) {
	if len(issues) == 0 {
		return nil, apperrors.NewEmptyInputError("issue records")
	}

	closed := 0
	durations := make([]float64, 0, len(issues))
	for _, issue := range issues {
		if issue.State == domain.IssueStateClosed {
			closed++
		}
		if issue.OpenDurationDays != nil {
			durations = append(durations, float64(*issue.OpenDurationDays))
		}
	}

	closeRate, err := stats.Round(float64(closed)/float64(len(issues)), 2)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to round close rate", err)
	}

	avgDuration := math.NaN()
	if len(durations) > 0 {
		mean, err := stats.Mean(durations)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to compute mean open duration", err)
		}
		avgDuration, err = stats.Round(mean, 2)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to round mean open duration", err)
		}
	}

	return &domain.SummaryReport{
		TopCommitters:           topCommitters(commits),
		IssueCloseRate:          closeRate,
		AverageOpenDurationDays: avgDuration,
	}, nil
}

// topCommitters groups commits by the exact author string (case
// sensitive, empty string is its own group), counts occurrences and
// returns the top groups by count. Ties keep the order in which the
// authors were first encountered.
func topCommitters(commits []domain.CommitRecord) []domain.CommitterCount {
	counts := make(map[string]int, len(commits))
	ranked := make([]domain.CommitterCount, 0)

	for _, commit := range commits {
		if _, seen := counts[commit.Author]; !seen {
			ranked = append(ranked, domain.CommitterCount{Author: commit.Author})
		}
		counts[commit.Author]++
	}
	for i := range ranked {
		ranked[i].Commits = counts[ranked[i].Author]
	}

	// ranked is already in first-encounter order, so a stable sort
	// resolves ties the way the input did.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Commits > ranked[j].Commits
	})

	if len(ranked) > topCommitterLimit {
		ranked = ranked[:topCommitterLimit]
	}
	return ranked
}
