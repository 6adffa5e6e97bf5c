package normalizer

import (
	"fmt"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

// NormalizeIssues converts raw issues into IssueRecords. maxCount > 0
// bounds how many raw records are scanned, in upstream order; within that
// prefix, pull requests are dropped. The result is therefore at most
// maxCount long and may be shorter even when qualifying issues exist
// later in the sequence ("scan at most N", not "collect N").
//
// CreatedAt must parse against the accepted date grammars or the whole
// call fails. An absent ClosedAt leaves both ClosedAt and
// OpenDurationDays unset.
func NormalizeIssues(raws []*domain.RawIssue, maxCount int) ([]domain.IssueRecord, error) {
	scan := len(raws)
	if maxCount > 0 && maxCount < scan {
		scan = maxCount
	}

	records := make([]domain.IssueRecord, 0, scan)
	for _, raw := range raws[:scan] {
		if raw.PullRequestURL != "" {
			continue
		}
		if raw.ID == 0 {
			return nil, apperrors.NewMalformedRecordError("issue", fmt.Sprintf("issue #%d: id is missing", raw.Number))
		}

		created, err := ParseDay(raw.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("issue #%d: created_at: %w", raw.Number, err)
		}

		record := domain.IssueRecord{
			ID:        raw.ID,
			Number:    raw.Number,
			Title:     raw.Title,
			User:      raw.User,
			State:     domain.IssueState(raw.State),
			CreatedAt: created,
			Comments:  raw.Comments,
		}

		if raw.ClosedAt != "" {
			closed, err := ParseDay(raw.ClosedAt)
			if err != nil {
				return nil, fmt.Errorf("issue #%d: closed_at: %w", raw.Number, err)
			}
			// Both dates are truncated to calendar days, so the span is an
			// exact whole number of days; the conversion is a floor of the
			// elapsed duration, never a round.
			days := int(closed.Sub(created).Hours() / 24)
			record.ClosedAt = &closed
			record.OpenDurationDays = &days
		}

		records = append(records, record)
	}
	return records, nil
}
