// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the evaluation pipeline and
// external adapters (infrastructure). The pipeline core depends only on these
// abstractions, not on the SQLite driver, the shell parser, or the CLI.
package ports

import (
	"context"

	"github.com/doeshing/cmdgate/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.cmdgate/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// FeatureExtractor turns a raw command string into structured risk features.
// Extraction is total and side-effect free: malformed input yields a feature
// set tagged Unparsable, never an error.
type FeatureExtractor interface {
	Extract(command string) domain.CommandFeatures
}

// RiskClassifier maps features to exactly one assessment. Classification is
// deterministic and total; no unclassified outcome exists.
type RiskClassifier interface {
	Classify(domain.CommandFeatures) domain.RiskAssessment
}

// ImpactEstimator computes scope and reversibility as evidence independent
// of the risk level.
type ImpactEstimator interface {
	Estimate(domain.CommandFeatures, domain.ExecutionContext) domain.ImpactEstimate
}

// GatingPolicy turns assessment plus impact into a gate decision.
type GatingPolicy interface {
	Decide(domain.RiskAssessment, domain.ImpactEstimate, domain.PolicySettings) domain.GateDecision
}

// ContextCollector gathers the execution environment (cwd, project root,
// home) used by the impact estimator. It never executes the command.
type ContextCollector interface {
	Collect(context.Context) (domain.ExecutionContext, error)
}

// Sandbox runs a command in a disposable, isolated working directory and
// reports empirical evidence. The temporary directory is destroyed on every
// exit path; errors carry a domain.SandboxFailure kind.
type Sandbox interface {
	Run(ctx context.Context, command string) (domain.ExecutionOutcome, error)
	Available() bool
}

// AuditRepository is the append-only record of every evaluation. Append is
// serialized by implementations; FinalizeOutcome fills the outcome exactly
// once and returns domain.ErrAlreadyFinalized on a second attempt.
type AuditRepository interface {
	Append(domain.AuditEntry) error
	FinalizeOutcome(id string, response domain.UserResponse, outcome *domain.ExecutionOutcome) error
	Get(id string) (domain.AuditEntry, error)
	Query(domain.AuditFilter) ([]domain.AuditEntry, error)
	ExportJSON(dest string) error
	Clear() error
	Close() error
}

// EventPublisher fans terminal-state events out to asynchronous consumers
// (the learning collaborator). Publishing never blocks the pipeline.
type EventPublisher interface {
	Publish(domain.EvaluationEvent)
	Subscribe() <-chan domain.EvaluationEvent
	Close()
}

// ConfirmationPrompter handles interactive user confirmations for gated
// commands. Used by the CLI to collect the confirm/decline response.
type ConfirmationPrompter interface {
	Confirm(decision domain.GateDecision, risk domain.RiskAssessment, command string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
