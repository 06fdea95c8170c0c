package model

import "time"

// PipelineResult is the abstract produced for one processed document.
// Field names are stable: the review UI and the persistence layer consume
// this shape as-is.
type PipelineResult struct {
	Filename  string              `json:"filename"`
	Subtype   DocumentSubtype     `json:"subtype"`
	Records   []*Metric           `json:"records"`
	Outcomes  []ValidationOutcome `json:"outcomes"`
	PageCount int                 `json:"pageCount"`
	Model     string              `json:"model"`
	Timestamp time.Time           `json:"timestamp"`
	Errors    []string            `json:"errors,omitempty"`
}

// Metric returns the named record from the result, or nil.
func (r *PipelineResult) Metric(name string) *Metric {
	for _, rec := range r.Records {
		if rec.Name == name {
			return rec
		}
	}
	return nil
}

// PipelineSkipped is emitted instead of a PipelineResult when a document
// is rejected before any processing stage runs.
type PipelineSkipped struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// RunStatus is the lifecycle state of a persisted run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
	RunStatusSkipped  RunStatus = "skipped"
)

// Run is one persisted pipeline execution over a single document.
type Run struct {
	ID        string           `json:"id"`
	Document  string           `json:"document"`
	Status    RunStatus        `json:"status"`
	Result    *PipelineResult  `json:"result,omitempty"`
	Skipped   *PipelineSkipped `json:"skipped,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
