package services

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/pkg/logger"
)

func testPipeline(classified domain.RiskAssessment, audit *stubAudit, sbx *stubSandbox) *Pipeline {
	return &Pipeline{
		ConfigProvider:   stubConfigProvider{cfg: domain.Config{}},
		ContextCollector: stubContextCollector{ctx: domain.ExecutionContext{WorkingDir: "/tmp"}},
		Extractor:        stubExtractor{},
		Classifier:       stubClassifier{assessment: classified},
		Estimator:        stubEstimator{estimate: domain.ImpactEstimate{Scope: domain.ScopeLocal, Reversible: true}},
		Policy:           stubPolicy{},
		Sandbox:          sbx,
		Audit:            audit,
		Events:           nil,
		Logger:           logger.NewStd(false),
	}
}

func TestEvaluateAppendsExactlyOneEntry(t *testing.T) {
	audit := newStubAudit()
	pipeline := testPipeline(domain.RiskAssessment{Level: domain.RiskSafe}, audit, nil)

	result, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "ls"})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(audit.entries))
	}
	if result.EntryID == "" || result.EntryID != audit.entries[0].ID {
		t.Fatalf("result must carry the appended entry id, got %q", result.EntryID)
	}
	if audit.entries[0].Response != domain.ResponsePending {
		t.Fatalf("non-blocked entries start pending, got %s", audit.entries[0].Response)
	}
}

func TestEvaluateBlockedEntryIsFinalized(t *testing.T) {
	audit := newStubAudit()
	pipeline := testPipeline(domain.RiskAssessment{Level: domain.RiskCritical}, audit, nil)

	result, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "rm -rf /"})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if result.Decision.Verdict != domain.VerdictBlock {
		t.Fatalf("critical should block, got %+v", result.Decision)
	}
	entry := audit.entries[0]
	if !entry.Finalized() || entry.Response != domain.ResponseBlocked {
		t.Fatalf("blocked entry must be finalized as blocked, got %+v", entry)
	}
}

func TestEvaluateRunsSandboxOnlyWhenRequestedAndGated(t *testing.T) {
	audit := newStubAudit()
	sbx := &stubSandbox{available: true}
	pipeline := testPipeline(domain.RiskAssessment{Level: domain.RiskHigh}, audit, sbx)

	result, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "rm -r x", WithSandbox: true})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if !sbx.called {
		t.Fatal("sandbox should run for a gated command when requested")
	}
	if result.Sandbox == nil || !result.Sandbox.Ran {
		t.Fatalf("expected sandbox report, got %+v", result.Sandbox)
	}
	if !audit.entries[0].Sandboxed {
		t.Fatal("audit entry should record the sandbox run")
	}

	sbx.called = false
	if _, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "rm -r x"}); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if sbx.called {
		t.Fatal("sandbox must not run when not requested")
	}
}

func TestEvaluateSandboxUnavailableDegradesToReport(t *testing.T) {
	audit := newStubAudit()
	sbx := &stubSandbox{available: false}
	pipeline := testPipeline(domain.RiskAssessment{Level: domain.RiskHigh}, audit, sbx)

	result, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "rm -r x", WithSandbox: true})
	if err != nil {
		t.Fatalf("sandbox unavailability must not fail the evaluation: %v", err)
	}
	if result.Sandbox == nil || result.Sandbox.Ran || result.Sandbox.Failure != domain.SandboxInitFailed {
		t.Fatalf("expected degraded sandbox report, got %+v", result.Sandbox)
	}
	if result.Decision.Verdict != domain.VerdictRequireConfirmation {
		t.Fatalf("gate decision must be unaffected, got %+v", result.Decision)
	}
}

func TestEvaluateRejectsInvalidModeOverride(t *testing.T) {
	pipeline := testPipeline(domain.RiskAssessment{Level: domain.RiskSafe}, newStubAudit(), nil)
	if _, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "ls", ModeOverride: "lenient"}); err == nil {
		t.Fatal("invalid mode override must be rejected")
	}
}

func TestFinalizeDelegatesToAudit(t *testing.T) {
	audit := newStubAudit()
	pipeline := testPipeline(domain.RiskAssessment{Level: domain.RiskSafe}, audit, nil)

	result, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "ls"})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	outcome := &domain.ExecutionOutcome{ExitCode: 0}
	if err := pipeline.Finalize(result.EntryID, domain.ResponseExecuted, outcome); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if err := pipeline.Finalize(result.EntryID, domain.ResponseExecuted, outcome); !errors.Is(err, domain.ErrAlreadyFinalized) {
		t.Fatalf("second finalize must surface ErrAlreadyFinalized, got %v", err)
	}
}

func TestEvaluateMissingDependencies(t *testing.T) {
	pipeline := &Pipeline{}
	if _, err := pipeline.Evaluate(domain.EvaluationRequest{Command: "ls"}); err == nil {
		t.Fatal("expected dependency error")
	}
}

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubContextCollector struct {
	ctx domain.ExecutionContext
	err error
}

func (s stubContextCollector) Collect(context.Context) (domain.ExecutionContext, error) {
	return s.ctx, s.err
}

type stubExtractor struct{}

func (stubExtractor) Extract(command string) domain.CommandFeatures {
	return domain.CommandFeatures{Raw: command}
}

type stubClassifier struct {
	assessment domain.RiskAssessment
}

func (s stubClassifier) Classify(domain.CommandFeatures) domain.RiskAssessment {
	return s.assessment
}

type stubEstimator struct {
	estimate domain.ImpactEstimate
}

func (s stubEstimator) Estimate(domain.CommandFeatures, domain.ExecutionContext) domain.ImpactEstimate {
	return s.estimate
}

// stubPolicy maps levels the way the real gate does, without mode handling.
type stubPolicy struct{}

func (stubPolicy) Decide(assessment domain.RiskAssessment, _ domain.ImpactEstimate, _ domain.PolicySettings) domain.GateDecision {
	switch {
	case assessment.Level == domain.RiskCritical:
		return domain.GateDecision{Verdict: domain.VerdictBlock, Reason: "critical"}
	case assessment.Level.AtLeast(domain.RiskHigh):
		return domain.GateDecision{Verdict: domain.VerdictRequireConfirmation, Reason: "high"}
	default:
		return domain.GateDecision{Verdict: domain.VerdictAllow}
	}
}

type stubSandbox struct {
	available bool
	called    bool
	err       error
}

func (s *stubSandbox) Run(context.Context, string) (domain.ExecutionOutcome, error) {
	s.called = true
	return domain.ExecutionOutcome{ExitCode: 0}, s.err
}

func (s *stubSandbox) Available() bool { return s.available }

type stubAudit struct {
	entries []domain.AuditEntry
}

func newStubAudit() *stubAudit {
	return &stubAudit{}
}

func (s *stubAudit) Append(entry domain.AuditEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubAudit) FinalizeOutcome(id string, response domain.UserResponse, outcome *domain.ExecutionOutcome) error {
	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		if s.entries[i].Finalized() {
			return domain.ErrAlreadyFinalized
		}
		now := s.entries[i].Timestamp
		s.entries[i].Response = response
		s.entries[i].Outcome = outcome
		s.entries[i].FinalizedAt = &now
		return nil
	}
	return domain.ErrEntryNotFound
}

func (s *stubAudit) Get(id string) (domain.AuditEntry, error) {
	for _, entry := range s.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return domain.AuditEntry{}, domain.ErrEntryNotFound
}

func (s *stubAudit) Query(domain.AuditFilter) ([]domain.AuditEntry, error) {
	return s.entries, nil
}

func (s *stubAudit) ExportJSON(string) error { return nil }

func (s *stubAudit) Clear() error {
	s.entries = nil
	return nil
}

func (s *stubAudit) Close() error { return nil }
