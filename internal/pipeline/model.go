package pipeline

import "fmt"

// Status classifies the outcome of a stage or a whole run.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	// StatusSkip marks stages never attempted because an earlier stage
	// failed.
	StatusSkip Status = "skip"
)

// Stage is one pipeline step: a named tvmc invocation. Args is called only
// when the stage is actually reached, so no argument construction happens
// for stages after a failure.
type Stage struct {
	Name string
	Args func() []string
}

// Failure kinds recorded on a failed StageResult. An exit_status of -1 can
// mean either a signal-killed child or a process that never started; the
// kind keeps the two apart in reports.
const (
	KindExit  = "exit"  // the tool ran and exited non-zero
	KindSpawn = "spawn" // the tool could not be started
	KindError = "error" // any other runner failure
)

// StageResult is the recorded outcome of a single stage.
// Matches .microdrive/run/stages/<stage>.json.
type StageResult struct {
	Stage      string `json:"stage"`
	Status     Status `json:"status"`
	ExitStatus int    `json:"exit_status"`
	Kind       string `json:"kind,omitempty"`
	Note       string `json:"note,omitempty"`

	// err is the runner error behind a fail status; kept for wrapping
	// into StageError, never serialized.
	err error
}

// Result summarizes one pipeline run.
// Matches .microdrive/run/last-run.json.
type Result struct {
	RunID       string        `json:"run_id"`
	Board       string        `json:"board"`
	Platform    string        `json:"platform"`
	Target      string        `json:"target"`
	Status      Status        `json:"status"`
	FailedStage string        `json:"failed_stage,omitempty"`
	Stages      []StageResult `json:"stages"`
}

// StageError names the pipeline stage whose tvmc invocation failed and
// carries the underlying cause.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
