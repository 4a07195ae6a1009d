package schemas

import "time"

// Strategy identifies how a Locator's selector is interpreted.
type Strategy string

const (
	ByID    Strategy = "id"
	ByName  Strategy = "name"
	ByCSS   Strategy = "css"
	ByXPath Strategy = "xpath"
)

// Locator describes how to find a UI element on the portal page.
// Locators are supplied by portal locator tables and are never
// constructed by the interaction core itself.
type Locator struct {
	Strategy Strategy `json:"strategy"`
	Selector string   `json:"selector"`
}

func (l Locator) String() string {
	return string(l.Strategy) + "=" + l.Selector
}

// ElementHandle is an opaque reference to a resolved element. The
// concrete type is owned by the session implementation; consumers only
// ever pass it back to the same session.
type ElementHandle interface {
	// Locator returns the locator the handle was resolved from.
	Locator() Locator
}

// InteractionOutcome is the result of one resilient interaction
// (a ClickWithRetry or FillField call).
type InteractionOutcome struct {
	Success      bool   `json:"success"`
	Attempts     int    `json:"attempts"`
	FallbackUsed bool   `json:"fallback_used"`
	Err          *Error `json:"error,omitempty"`
}

// StatusCode enumerates the lifecycle states of a record.
type StatusCode string

const (
	StatusPending    StatusCode = "pending"
	StatusInProgress StatusCode = "in_progress"
	StatusSuccess    StatusCode = "success"
	StatusFailed     StatusCode = "failed"
	StatusSkipped    StatusCode = "skipped"
)

// Terminal reports whether the code is a terminal state.
func (c StatusCode) Terminal() bool {
	return c == StatusSuccess || c == StatusFailed || c == StatusSkipped
}

// RecordStatus is the classified outcome of processing one record.
// Reason is set for failed and skipped records.
type RecordStatus struct {
	Code   StatusCode `json:"code"`
	Reason string     `json:"reason,omitempty"`
}

func Success() RecordStatus              { return RecordStatus{Code: StatusSuccess} }
func Failed(reason string) RecordStatus  { return RecordStatus{Code: StatusFailed, Reason: reason} }
func Skipped(reason string) RecordStatus { return RecordStatus{Code: StatusSkipped, Reason: reason} }

// Record is one unit of input data (e.g. one student row). The core
// only requires an identifier and named field access; the routine
// registered for a task knows which fields it needs.
type Record interface {
	ID() string
	Field(key string) string
}

// RecordResult pairs a record with its terminal status, preserving the
// input-order index so results can be correlated with the source sheet.
type RecordResult struct {
	Index    int          `json:"index"`
	RecordID string       `json:"record_id"`
	Status   RecordStatus `json:"status"`
}

// RunSummary aggregates terminal statuses for one pipeline run.
// Skipped records are counted separately from failures.
type RunSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// PipelineRun is the ordered collection of terminal per-record outcomes
// for one execution. It is owned by the pipeline while running and
// handed to the reporter read-only once complete.
type PipelineRun struct {
	RunID      string         `json:"run_id"`
	ModuleKey  string         `json:"module_key"`
	TaskKey    string         `json:"task_key"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []RecordResult `json:"results"`
	Summary    RunSummary     `json:"summary"`
	// Aborted is true when the run was cancelled before all records
	// were processed; Results then holds the partial prefix.
	Aborted bool `json:"aborted,omitempty"`
}

// Tally recomputes the summary from the accumulated results.
func (r *PipelineRun) Tally() {
	var s RunSummary
	for _, res := range r.Results {
		switch res.Status.Code {
		case StatusSuccess:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}
