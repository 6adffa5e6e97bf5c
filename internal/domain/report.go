package domain

import (
	"encoding/json"
	"math"
)

// CommitterCount pairs an author string with the number of commits
// attributed to exactly that string.
type CommitterCount struct {
	Author  string `json:"author"`
	Commits int    `json:"commits"`
}

// SummaryReport holds the aggregate statistics computed from the two
// normalized record sets. It is printed, never persisted.
type SummaryReport struct {
	TopCommitters           []CommitterCount
	IssueCloseRate          float64
	AverageOpenDurationDays float64 // NaN when no closed issues exist
}

// HasAverageOpenDuration reports whether the average open duration is
// defined, i.e. at least one closed issue contributed to it.
func (r *SummaryReport) HasAverageOpenDuration() bool {
	return !math.IsNaN(r.AverageOpenDurationDays)
}

// MarshalJSON renders an undefined average as null instead of NaN,
// which encoding/json refuses to emit.
func (r SummaryReport) MarshalJSON() ([]byte, error) {
	var avg interface{}
	if !math.IsNaN(r.AverageOpenDurationDays) {
		avg = r.AverageOpenDurationDays
	}
	return json.Marshal(struct {
		TopCommitters           []CommitterCount `json:"top_committers"`
		IssueCloseRate          float64          `json:"issue_close_rate"`
		AverageOpenDurationDays interface{}      `json:"average_open_duration_days"`
	}{
		TopCommitters:           r.TopCommitters,
		IssueCloseRate:          r.IssueCloseRate,
		AverageOpenDurationDays: avg,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON: a null average comes back
// as NaN.
func (r *SummaryReport) UnmarshalJSON(data []byte) error {
	var aux struct {
		TopCommitters           []CommitterCount `json:"top_committers"`
		IssueCloseRate          float64          `json:"issue_close_rate"`
		AverageOpenDurationDays *float64         `json:"average_open_duration_days"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.TopCommitters = aux.TopCommitters
	r.IssueCloseRate = aux.IssueCloseRate
	if aux.AverageOpenDurationDays != nil {
		r.AverageOpenDurationDays = *aux.AverageOpenDurationDays
	} else {
		r.AverageOpenDurationDays = math.NaN()
	}
	return nil
}
