package domain

import "time"

// DateLayout is the calendar-day rendering used by the persisted tabular
// files for every date column.
const DateLayout = "2006-01-02"

// IssueState represents the lifecycle state of an issue
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// CommitRecord is one normalized commit. Records are immutable once
// produced; one record per upstream commit, in upstream order.
type CommitRecord struct {
	SHA     string    `json:"sha"`
	Author  string    `json:"author"` // display name from commit metadata, may be empty
	Email   string    `json:"email"`  // may be empty
	Date    time.Time `json:"date"`
	Message string    `json:"message"` // first line of the full commit message
}

// IssueRecord is one normalized issue. Pull requests are filtered out
// before normalization, so no record in a set corresponds to one.
// OpenDurationDays is set iff ClosedAt is set and holds the whole-day
// span between creation and closure.
type IssueRecord struct {
	ID               int64      `json:"id"`
	Number           int        `json:"number"`
	Title            string     `json:"title"`
	User             string     `json:"user"`
	State            IssueState `json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at"`
	OpenDurationDays *int       `json:"open_duration_days"`
	Comments         int        `json:"comments"`
}
