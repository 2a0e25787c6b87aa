package domain

import "context"

// EvaluationRequest carries one candidate command through the pipeline,
// with opaque metadata from the generation collaborator.
type EvaluationRequest struct {
	Context      context.Context
	Command      string
	Metadata     map[string]string
	ModeOverride string
	AutoConfirm  bool
	WithSandbox  bool
}

// EvaluationResult is the canonical response propagated back to the caller.
// The caller acts on Decision and reports the terminal state through the
// evaluation service; the pipeline never performs real execution itself.
type EvaluationResult struct {
	EntryID    string           `json:"entry_id"`
	Command    string           `json:"command"`
	Features   CommandFeatures  `json:"features"`
	Assessment RiskAssessment   `json:"assessment"`
	Impact     ImpactEstimate   `json:"impact"`
	Decision   GateDecision     `json:"decision"`
	Sandbox    *SandboxReport   `json:"sandbox,omitempty"`
	Context    ExecutionContext `json:"context"`
}

// EvaluationService exposes the use-case boundary for gating one command.
type EvaluationService interface {
	Evaluate(EvaluationRequest) (EvaluationResult, error)
	Finalize(entryID string, response UserResponse, outcome *ExecutionOutcome) error
}
