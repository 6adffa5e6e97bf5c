package normalizer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
)

func TestNormalizeCommits(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	raws := []*domain.RawCommit{
		{SHA: "sha1", AuthorName: "Alice", AuthorEmail: "a@example.com", AuthorDate: now, Message: "Initial commit\nDetails"},
		{SHA: "sha2", AuthorName: "Bob", AuthorEmail: "b@example.com", AuthorDate: now.AddDate(0, 0, -1), Message: "Bug fix"},
		{SHA: "sha3", AuthorName: "", AuthorEmail: "", AuthorDate: now.AddDate(0, 0, -2), Message: "first commit"},
	}

	testCases := []struct {
		name         string
		raws         []*domain.RawCommit
		maxCount     int
		expectedLen  int
		expectedSHAs []string
	}{
		{
			name:         "no cap returns all records in input order",
			raws:         raws,
			maxCount:     0,
			expectedLen:  3,
			expectedSHAs: []string{"sha1", "sha2", "sha3"},
		},
		{
			name:         "cap smaller than input truncates",
			raws:         raws,
			maxCount:     1,
			expectedLen:  1,
			expectedSHAs: []string{"sha1"},
		},
		{
			name:         "cap larger than input returns everything",
			raws:         raws,
			maxCount:     10,
			expectedLen:  3,
			expectedSHAs: []string{"sha1", "sha2", "sha3"},
		},
		{
			name:         "zero raw commits yields empty result, not an error",
			raws:         []*domain.RawCommit{},
			maxCount:     0,
			expectedLen:  0,
			expectedSHAs: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := NormalizeCommits(tc.raws, tc.maxCount)

			require.NoError(t, err)
			require.NotNil(t, records)
			assert.Len(t, records, tc.expectedLen)
			for i, sha := range tc.expectedSHAs {
				assert.Equal(t, sha, records[i].SHA)
			}
		})
	}
}

func TestNormalizeCommitsMessageFirstLineOnly(t *testing.T) {
	messages := []string{
		"Initial commit\nDetails follow\nmore details",
		"New line at end of file.\n\nSigned-off-by: Spaceghost <git@spacegho.st>",
		"windows line endings\r\nbody",
		"single line already",
		"",
	}

	raws := make([]*domain.RawCommit, 0, len(messages))
	for i, msg := range messages {
		raws = append(raws, &domain.RawCommit{SHA: string(rune('a' + i)), Message: msg})
	}

	records, err := NormalizeCommits(raws, 0)
	require.NoError(t, err)

	for _, r := range records {
		assert.NotContains(t, r.Message, "\n")
		assert.NotContains(t, r.Message, "\r")
	}
	assert.Equal(t, "Initial commit", records[0].Message)
	assert.Equal(t, "New line at end of file.", records[1].Message)
	assert.Equal(t, "windows line endings", records[2].Message)
	assert.Equal(t, "single line already", records[3].Message)
}

func TestNormalizeCommitsToleratesMissingAuthor(t *testing.T) {
	raws := []*domain.RawCommit{
		{SHA: "sha1", Message: "anonymous change"},
	}

	records, err := NormalizeCommits(raws, 0)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Author)
	assert.Equal(t, "", records[0].Email)
}

func TestNormalizeCommitsMissingSHAIsFatal(t *testing.T) {
	raws := []*domain.RawCommit{
		{SHA: "sha1", Message: "ok"},
		{SHA: "", Message: "no identity"},
	}

	records, err := NormalizeCommits(raws, 0)

	assert.Nil(t, records)
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedRecord(err))
	assert.True(t, strings.Contains(err.Error(), "sha"))
}

func TestNormalizeCommitsDoesNotInspectPastCap(t *testing.T) {
	// The record past the cap is malformed; normalization must not reach it.
	raws := []*domain.RawCommit{
		{SHA: "sha1", Message: "ok"},
		{SHA: "", Message: "never scanned"},
	}

	records, err := NormalizeCommits(raws, 1)

	require.NoError(t, err)
	assert.Len(t, records, 1)
}
