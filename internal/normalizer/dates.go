// Package normalizer turns raw upstream commit and issue records into the
// fixed tabular schema consumed by persistence and aggregation.
package normalizer

import (
	"time"

	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

// dateLayouts is the ordered list of accepted date grammars. Candidates
// are tried in sequence and the first match wins, which keeps parsing of
// mixed-format batches deterministic. Layouts with unpadded month/day
// components also accept zero-padded values, so "2006-1-2" covers both
// "2023-12-3" and "2023-12-03".
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// ParseDay parses a date/time string against the accepted grammars and
// truncates the result to a timezone-naive (UTC-anchored) calendar day.
func ParseDay(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperrors.NewUnparseableDateError(value)
}
