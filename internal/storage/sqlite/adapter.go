package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/repo-miner/internal/domain"
	"github.com/kurihiro0119/repo-miner/internal/normalizer"
	"github.com/kurihiro0119/repo-miner/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS commits (
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		sha TEXT NOT NULL,
		author TEXT NOT NULL,
		email TEXT NOT NULL,
		date TEXT NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (owner, repo, sha)
	);

	CREATE INDEX IF NOT EXISTS idx_commits_owner_repo ON commits(owner, repo);

	CREATE TABLE IF NOT EXISTS issues (
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		id INTEGER NOT NULL,
		number INTEGER NOT NULL,
		title TEXT NOT NULL,
		username TEXT NOT NULL,
		state TEXT NOT NULL,
		created_at TEXT NOT NULL,
		closed_at TEXT,
		open_duration_days INTEGER,
		comments INTEGER NOT NULL,
		PRIMARY KEY (owner, repo, id)
	);

	CREATE INDEX IF NOT EXISTS idx_issues_owner_repo ON issues(owner, repo);
	CREATE INDEX IF NOT EXISTS idx_issues_state ON issues(state);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		kind TEXT NOT NULL,
		records INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_owner_repo ON runs(owner, repo);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveCommits replaces the stored commit set for a repository
func (s *sqliteStorage) SaveCommits(ctx context.Context, owner, repo string, records []domain.CommitRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commits WHERE owner = ? AND repo = ?`, owner, repo); err != nil {
		return fmt.Errorf("failed to clear commits for %s/%s: %w", owner, repo, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commits (owner, repo, ordinal, sha, author, email, date, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx, owner, repo, i, r.SHA, r.Author, r.Email, r.Date.Format(domain.DateLayout), r.Message)
		if err != nil {
			return fmt.Errorf("failed to save commit %s: %w", r.SHA, err)
		}
	}

	return tx.Commit()
}

// SaveIssues replaces the stored issue set for a repository
func (s *sqliteStorage) SaveIssues(ctx context.Context, owner, repo string, records []domain.IssueRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE owner = ? AND repo = ?`, owner, repo); err != nil {
		return fmt.Errorf("failed to clear issues for %s/%s: %w", owner, repo, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues (owner, repo, ordinal, id, number, title, username, state, created_at, closed_at, open_duration_days, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		var closedAt sql.NullString
		var duration sql.NullInt64
		if r.ClosedAt != nil {
			closedAt = sql.NullString{String: r.ClosedAt.Format(domain.DateLayout), Valid: true}
		}
		if r.OpenDurationDays != nil {
			duration = sql.NullInt64{Int64: int64(*r.OpenDurationDays), Valid: true}
		}
		_, err := stmt.ExecContext(ctx, owner, repo, i, r.ID, r.Number, r.Title, r.User, string(r.State),
			r.CreatedAt.Format(domain.DateLayout), closedAt, duration, r.Comments)
		if err != nil {
			return fmt.Errorf("failed to save issue #%d: %w", r.Number, err)
		}
	}

	return tx.Commit()
}

// GetCommits returns the stored commit set in fetch order
func (s *sqliteStorage) GetCommits(ctx context.Context, owner, repo string) ([]domain.CommitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sha, author, email, date, message
		FROM commits
		WHERE owner = ? AND repo = ?
		ORDER BY ordinal
	`, owner, repo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.CommitRecord, 0)
	for rows.Next() {
		var r domain.CommitRecord
		var date string
		if err := rows.Scan(&r.SHA, &r.Author, &r.Email, &date, &r.Message); err != nil {
			return nil, err
		}
		r.Date, err = normalizer.ParseDay(date)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", r.SHA, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetIssues returns the stored issue set in fetch order
func (s *sqliteStorage) GetIssues(ctx context.Context, owner, repo string) ([]domain.IssueRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, title, username, state, created_at, closed_at, open_duration_days, comments
		FROM issues
		WHERE owner = ? AND repo = ?
		ORDER BY ordinal
	`, owner, repo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.IssueRecord, 0)
	for rows.Next() {
		record, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanIssue(rows *sql.Rows) (domain.IssueRecord, error) {
	var r domain.IssueRecord
	var state, createdAt string
	var closedAt sql.NullString
	var duration sql.NullInt64

	if err := rows.Scan(&r.ID, &r.Number, &r.Title, &r.User, &state, &createdAt, &closedAt, &duration, &r.Comments); err != nil {
		return r, err
	}

	r.State = domain.IssueState(state)
	created, err := normalizer.ParseDay(createdAt)
	if err != nil {
		return r, fmt.Errorf("issue #%d: %w", r.Number, err)
	}
	r.CreatedAt = created

	if closedAt.Valid {
		closed, err := normalizer.ParseDay(closedAt.String)
		if err != nil {
			return r, fmt.Errorf("issue #%d: %w", r.Number, err)
		}
		r.ClosedAt = &closed
	}
	if duration.Valid {
		d := int(duration.Int64)
		r.OpenDurationDays = &d
	}
	return r, nil
}

// SaveRun records a fetch run
func (s *sqliteStorage) SaveRun(ctx context.Context, run *domain.FetchRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, owner, repo, kind, records, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Owner, run.Repo, string(run.Kind), run.Records, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRuns returns recorded fetch runs for a repository, newest first
func (s *sqliteStorage) GetRuns(ctx context.Context, owner, repo string) ([]*domain.FetchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, repo, kind, records, started_at, finished_at
		FROM runs
		WHERE owner = ? AND repo = ?
		ORDER BY started_at DESC
	`, owner, repo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.FetchRun, 0)
	for rows.Next() {
		var run domain.FetchRun
		var kind string
		if err := rows.Scan(&run.ID, &run.Owner, &run.Repo, &kind, &run.Records, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Kind = domain.FetchKind(kind)
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
