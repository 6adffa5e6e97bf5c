package normalizer

import (
	"strings"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

// NormalizeCommits converts raw commits into CommitRecords, preserving
// upstream order. maxCount > 0 caps the result at min(maxCount, len(raws));
// records past the cap are never inspected. Missing author name or email
// is tolerated as an empty string, a missing sha is fatal.
func NormalizeCommits(raws []*domain.RawCommit, maxCount int) ([]domain.CommitRecord, error) {
	limit := len(raws)
	if maxCount > 0 && maxCount < limit {
		limit = maxCount
	}

	records := make([]domain.CommitRecord, 0, limit)
	for _, raw := range raws[:limit] {
		if raw.SHA == "" {
			return nil, apperrors.NewMalformedRecordError("commit", "sha is missing")
		}
		records = append(records, domain.CommitRecord{
			SHA:     raw.SHA,
			Author:  raw.AuthorName,
			Email:   raw.AuthorEmail,
			Date:    raw.AuthorDate,
			Message: firstLine(raw.Message),
		})
	}
	return records, nil
}

// firstLine strips everything after the first line break, dropping
// multi-line trailer/body text such as sign-off lines.
func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimSuffix(message, "\r")
}
