// Package csvfile reads and writes the persisted tabular form of commit
// and issue records: one CSV file per record set, header line matching
// the schema, dates rendered as YYYY-MM-DD.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
	"github.com/kurihiro0119/repo-miner/internal/normalizer"
)

// CommitHeader is the fixed column order of a commits file
var CommitHeader = []string{"sha", "author", "email", "date", "message"}

// IssueHeader is the fixed column order of an issues file.
// open_duration_days sits immediately after closed_at.
var IssueHeader = []string{"id", "number", "title", "user", "state", "created_at", "closed_at", "open_duration_days", "comments"}

// WriteCommits writes commit records to path, overwriting any existing
// file. Callers normalize first, so a failed run never leaves a partial
// table behind on the fetch path.
func WriteCommits(path string, records []domain.CommitRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SHA,
			r.Author,
			r.Email,
			r.Date.Format(domain.DateLayout),
			r.Message,
		})
	}
	return writeFile(path, CommitHeader, rows)
}

// WriteIssues writes issue records to path. Absent closed_at and
// open_duration_days render as empty cells.
func WriteIssues(path string, records []domain.IssueRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		closedAt := ""
		duration := ""
		if r.ClosedAt != nil {
			closedAt = r.ClosedAt.Format(domain.DateLayout)
		}
		if r.OpenDurationDays != nil {
			duration = strconv.Itoa(*r.OpenDurationDays)
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			strconv.Itoa(r.Number),
			r.Title,
			r.User,
			string(r.State),
			r.CreatedAt.Format(domain.DateLayout),
			closedAt,
			duration,
			strconv.Itoa(r.Comments),
		})
	}
	return writeFile(path, IssueHeader, rows)
}

// ReadCommits loads a commits file produced by WriteCommits
func ReadCommits(path string) ([]domain.CommitRecord, error) {
	rows, err := readFile(path, CommitHeader)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CommitRecord, 0, len(rows))
	for i, row := range rows {
		date, err := normalizer.ParseDay(row[3])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		records = append(records, domain.CommitRecord{
			SHA:     row[0],
			Author:  row[1],
			Email:   row[2],
			Date:    date,
			Message: row[4],
		})
	}
	return records, nil
}

// ReadIssues loads an issues file produced by WriteIssues
func ReadIssues(path string) ([]domain.IssueRecord, error) {
	rows, err := readFile(path, IssueHeader)
	if err != nil {
		return nil, err
	}

	records := make([]domain.IssueRecord, 0, len(rows))
	for i, row := range rows {
		record, err := issueFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func issueFromRow(row []string) (domain.IssueRecord, error) {
	var record domain.IssueRecord

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return record, apperrors.NewMalformedRecordError("issue", fmt.Sprintf("id %q is not an integer", row[0]))
	}
	number, err := strconv.Atoi(row[1])
	if err != nil {
		return record, apperrors.NewMalformedRecordError("issue", fmt.Sprintf("number %q is not an integer", row[1]))
	}
	createdAt, err := normalizer.ParseDay(row[5])
	if err != nil {
		return record, err
	}
	comments, err := strconv.Atoi(row[8])
	if err != nil {
		return record, apperrors.NewMalformedRecordError("issue", fmt.Sprintf("comments %q is not an integer", row[8]))
	}

	record = domain.IssueRecord{
		ID:        id,
		Number:    number,
		Title:     row[2],
		User:      row[3],
		State:     domain.IssueState(row[4]),
		CreatedAt: createdAt,
		Comments:  comments,
	}

	if row[6] != "" {
		closedAt, err := normalizer.ParseDay(row[6])
		if err != nil {
			return record, err
		}
		record.ClosedAt = &closedAt
	}
	if row[7] != "" {
		duration, err := strconv.Atoi(row[7])
		if err != nil {
			return record, apperrors.NewMalformedRecordError("issue", fmt.Sprintf("open_duration_days %q is not an integer", row[7]))
		}
		record.OpenDurationDays = &duration
	}
	return record, nil
}

func writeFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write rows to %s: %w", path, err)
	}
	// WriteAll flushes; surface any deferred write error before closing.
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

func readFile(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewMalformedRecordError("file", fmt.Sprintf("%s has no header line", path))
	}
	for i, name := range header {
		if rows[0][i] != name {
			return nil, apperrors.NewMalformedRecordError("file", fmt.Sprintf("%s: expected column %q, got %q", path, name, rows[0][i]))
		}
	}
	return rows[1:], nil
}
