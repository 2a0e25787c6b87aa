package domain

import (
	"errors"
	"time"
)

// ErrAlreadyFinalized is returned when an audit entry's outcome would be
// written twice. Entries are immutable once their outcome is known.
var ErrAlreadyFinalized = errors.New("audit entry already finalized")

// ErrEntryNotFound is returned when finalizing an unknown entry id.
var ErrEntryNotFound = errors.New("audit entry not found")

// UserResponse records how the caller acted on a gate decision.
type UserResponse string

const (
	ResponsePending   UserResponse = "pending"
	ResponseConfirmed UserResponse = "confirmed"
	ResponseDeclined  UserResponse = "declined"
	ResponseBlocked   UserResponse = "blocked"
	ResponseExecuted  UserResponse = "executed"
)

// SandboxFailure categorizes sandbox run failures. Failures are carried as
// outcome data, never interpreted as evidence of safety.
type SandboxFailure string

const (
	SandboxInitFailed    SandboxFailure = "initialization_failed"
	SandboxExecFailed    SandboxFailure = "execution_failed"
	SandboxTimeout       SandboxFailure = "timeout"
	SandboxCleanupFailed SandboxFailure = "cleanup_failed"
)

// ExecutionOutcome captures empirical evidence from a run, sandboxed or real.
type ExecutionOutcome struct {
	ExitCode      int            `json:"exit_code"`
	Stdout        string         `json:"stdout,omitempty"`
	Stderr        string         `json:"stderr,omitempty"`
	DurationMS    int64          `json:"duration_ms"`
	CreatedPaths  []string       `json:"created_paths,omitempty"`
	ModifiedPaths []string       `json:"modified_paths,omitempty"`
	DeletedPaths  []string       `json:"deleted_paths,omitempty"`
	TimedOut      bool           `json:"timed_out"`
	Failure       SandboxFailure `json:"failure,omitempty"`
	FailureDetail string         `json:"failure_detail,omitempty"`
}

// SandboxReport wraps the optional empirical verification step for callers.
type SandboxReport struct {
	Ran     bool              `json:"ran"`
	Outcome *ExecutionOutcome `json:"outcome,omitempty"`
	Failure SandboxFailure    `json:"failure,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

// AuditEntry is the immutable record of one command's full decision trail.
// Exactly one entry exists per pipeline evaluation, including blocked and
// declined commands. Only Response/Outcome/FinalizedAt transition from
// absent to present, once, when the caller reports the terminal state.
type AuditEntry struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Command     string            `json:"command"`
	Tags        []OperationTag    `json:"tags,omitempty"`
	Modifiers   Modifiers         `json:"modifiers"`
	Assessment  RiskAssessment    `json:"assessment"`
	Impact      ImpactEstimate    `json:"impact"`
	Decision    GateDecision      `json:"decision"`
	Sandboxed   bool              `json:"sandboxed"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Response    UserResponse      `json:"response"`
	Outcome     *ExecutionOutcome `json:"outcome,omitempty"`
	FinalizedAt *time.Time        `json:"finalized_at,omitempty"`
}

// Finalized reports whether the entry's terminal state is recorded.
func (e AuditEntry) Finalized() bool {
	return e.FinalizedAt != nil
}

// AuditFilter narrows audit queries. Zero values match everything.
type AuditFilter struct {
	Level    *RiskLevel
	Executed *bool
	Limit    int
}

// EvaluationEvent is published after an evaluation reaches a terminal state,
// for asynchronous consumption by the learning collaborator.
type EvaluationEvent struct {
	EntryID   string       `json:"entry_id"`
	Timestamp time.Time    `json:"timestamp"`
	Command   string       `json:"command"`
	Level     RiskLevel    `json:"level"`
	Verdict   GateVerdict  `json:"verdict"`
	Response  UserResponse `json:"response"`
}
