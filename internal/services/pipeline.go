// Package services hosts the evaluation pipeline, the use-case layer that
// wires extraction, classification, impact estimation, gating, sandboxing
// and auditing into a single pass over one candidate command.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Pipeline orchestrates the gating lifecycle end-to-end. It decides; it
// never executes the candidate command outside the sandbox.
type Pipeline struct {
	ConfigProvider   ports.ConfigProvider
	ContextCollector ports.ContextCollector
	Extractor        ports.FeatureExtractor
	Classifier       ports.RiskClassifier
	Estimator        ports.ImpactEstimator
	Policy           ports.GatingPolicy
	Sandbox          ports.Sandbox
	Audit            ports.AuditRepository
	Events           ports.EventPublisher
	Logger           ports.Logger
}

// Evaluate runs a single command through the full pipeline. Exactly one
// audit entry is appended per call, whatever the verdict. Blocked commands
// are finalized here; every other verdict stays pending until the caller
// reports the terminal state through Finalize.
func (p *Pipeline) Evaluate(req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	if p.ConfigProvider == nil || p.ContextCollector == nil || p.Extractor == nil ||
		p.Classifier == nil || p.Estimator == nil || p.Policy == nil ||
		p.Audit == nil || p.Logger == nil {
		return domain.EvaluationResult{}, errors.New("services.Pipeline dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := p.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("load config: %w", err)
	}

	execCtx, err := p.ContextCollector.Collect(ctx)
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("collect context: %w", err)
	}

	settings, err := effectiveSettings(cfg.Policy, req)
	if err != nil {
		return domain.EvaluationResult{}, err
	}

	features := p.Extractor.Extract(req.Command)
	assessment := p.Classifier.Classify(features)
	impact := p.Estimator.Estimate(features, execCtx)
	decision := p.Policy.Decide(assessment, impact, settings)

	p.Logger.Info("command evaluated", map[string]interface{}{
		"level":   assessment.Level.String(),
		"verdict": string(decision.Verdict),
		"scope":   string(impact.Scope),
	})

	result := domain.EvaluationResult{
		Command:    req.Command,
		Features:   features,
		Assessment: assessment,
		Impact:     impact,
		Decision:   decision,
		Context:    execCtx,
	}

	if req.WithSandbox && decision.Verdict != domain.VerdictAllow {
		result.Sandbox = p.runSandbox(ctx, req.Command)
	}

	entry := domain.AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Command:    req.Command,
		Tags:       features.Tags(),
		Modifiers:  features.Modifiers,
		Assessment: assessment,
		Impact:     impact,
		Decision:   decision,
		Sandboxed:  result.Sandbox != nil && result.Sandbox.Ran,
		Metadata:   req.Metadata,
		Response:   domain.ResponsePending,
	}
	if err := p.Audit.Append(entry); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("audit append: %w", err)
	}
	result.EntryID = entry.ID

	// Block is terminal. Nothing will come back from the caller, so the
	// entry is finalized right here.
	if decision.Verdict == domain.VerdictBlock {
		if err := p.Finalize(entry.ID, domain.ResponseBlocked, nil); err != nil {
			p.Logger.Warn("finalize blocked entry failed", map[string]interface{}{
				"entry_id": entry.ID,
				"error":    err.Error(),
			})
		}
	}

	return result, nil
}

// Finalize records the terminal state of a pending evaluation exactly once
// and publishes the event for asynchronous consumers.
func (p *Pipeline) Finalize(entryID string, response domain.UserResponse, outcome *domain.ExecutionOutcome) error {
	if err := p.Audit.FinalizeOutcome(entryID, response, outcome); err != nil {
		return err
	}
	if p.Events == nil {
		return nil
	}
	entry, err := p.Audit.Get(entryID)
	if err != nil {
		p.Logger.Warn("event publish skipped", map[string]interface{}{
			"entry_id": entryID,
			"error":    err.Error(),
		})
		return nil
	}
	p.Events.Publish(domain.EvaluationEvent{
		EntryID:   entry.ID,
		Timestamp: time.Now().UTC(),
		Command:   entry.Command,
		Level:     entry.Assessment.Level,
		Verdict:   entry.Decision.Verdict,
		Response:  response,
	})
	return nil
}

// runSandbox degrades failures into report data. A sandbox that cannot run
// is missing evidence, never a reason to fail or soften the evaluation.
func (p *Pipeline) runSandbox(ctx context.Context, command string) *domain.SandboxReport {
	if p.Sandbox == nil || !p.Sandbox.Available() {
		return &domain.SandboxReport{
			Failure: domain.SandboxInitFailed,
			Detail:  "sandbox not available",
		}
	}
	outcome, err := p.Sandbox.Run(ctx, command)
	if err != nil {
		report := &domain.SandboxReport{
			Failure: domain.SandboxExecFailed,
			Detail:  err.Error(),
		}
		if outcome.Failure != "" {
			report.Failure = outcome.Failure
			report.Outcome = &outcome
			report.Ran = outcome.Failure != domain.SandboxInitFailed
		}
		return report
	}
	return &domain.SandboxReport{Ran: true, Outcome: &outcome}
}

func effectiveSettings(base domain.PolicySettings, req domain.EvaluationRequest) (domain.PolicySettings, error) {
	settings := base
	if req.ModeOverride != "" {
		mode, err := domain.ParseConfirmationMode(req.ModeOverride)
		if err != nil {
			return domain.PolicySettings{}, err
		}
		settings.Mode = string(mode)
	}
	if req.AutoConfirm {
		settings.AutoConfirm = true
	}
	return settings, nil
}

// Compile-time interface compliance check
var _ domain.EvaluationService = (*Pipeline)(nil)
