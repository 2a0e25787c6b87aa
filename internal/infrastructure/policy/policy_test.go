package policy

import (
	"testing"

	"github.com/doeshing/cmdgate/internal/domain"
)

var benignImpact = domain.ImpactEstimate{Scope: domain.ScopeLocal, Reversible: true}

func assessment(level domain.RiskLevel) domain.RiskAssessment {
	return domain.RiskAssessment{Level: level, Confidence: 0.9, Reasons: []string{"test reason"}}
}

func TestDecideCriticalBlocksRegardlessOfAutoConfirm(t *testing.T) {
	gate := NewGate()
	for _, autoConfirm := range []bool{false, true} {
		decision := gate.Decide(assessment(domain.RiskCritical), benignImpact,
			domain.PolicySettings{Mode: "permissive", AutoConfirm: autoConfirm})
		if decision.Verdict != domain.VerdictBlock {
			t.Fatalf("critical must block (auto_confirm=%t), got %+v", autoConfirm, decision)
		}
	}
}

func TestDecideCriticalOverrideStillNeverAllows(t *testing.T) {
	gate := NewGate()
	settings := domain.PolicySettings{AllowCriticalOverride: true, AutoConfirm: true}
	decision := gate.Decide(assessment(domain.RiskCritical), benignImpact, settings)
	if decision.Verdict != domain.VerdictRequireConfirmation {
		t.Fatalf("override downgrades block to confirmation only, got %+v", decision)
	}
}

func TestDecideHighRequiresConfirmation(t *testing.T) {
	gate := NewGate()
	decision := gate.Decide(assessment(domain.RiskHigh), benignImpact, domain.PolicySettings{})
	if decision.Verdict != domain.VerdictRequireConfirmation {
		t.Fatalf("high requires confirmation, got %+v", decision)
	}
	if decision.Reason == "" {
		t.Fatal("confirmation decisions carry a reason")
	}
}

func TestDecideAutoConfirmCollapsesBelowCritical(t *testing.T) {
	gate := NewGate()
	decision := gate.Decide(assessment(domain.RiskHigh), benignImpact,
		domain.PolicySettings{AutoConfirm: true})
	if decision.Verdict != domain.VerdictAllow {
		t.Fatalf("auto-confirm collapses high to allow, got %+v", decision)
	}
	if len(decision.Warnings) == 0 {
		t.Fatal("a collapsed confirmation still warns")
	}
}

func TestDecideModerateDependsOnMode(t *testing.T) {
	gate := NewGate()

	strict := gate.Decide(assessment(domain.RiskModerate), benignImpact,
		domain.PolicySettings{Mode: "strict"})
	if strict.Verdict != domain.VerdictRequireConfirmation {
		t.Fatalf("strict mode confirms moderate, got %+v", strict)
	}

	standard := gate.Decide(assessment(domain.RiskModerate), benignImpact,
		domain.PolicySettings{Mode: "standard"})
	if standard.Verdict != domain.VerdictAllow {
		t.Fatalf("standard mode allows moderate, got %+v", standard)
	}
	if len(standard.Warnings) == 0 {
		t.Fatal("moderate allow carries a warning")
	}
}

func TestDecideSystemWideIrreversibleFloor(t *testing.T) {
	gate := NewGate()
	impact := domain.ImpactEstimate{Scope: domain.ScopeSystemWide, Reversible: false}
	decision := gate.Decide(assessment(domain.RiskSafe), impact, domain.PolicySettings{})
	if decision.Verdict != domain.VerdictRequireConfirmation {
		t.Fatalf("system-wide irreversible impact floors at confirmation, got %+v", decision)
	}
}

func TestDecideFailsClosedOnInvalidMode(t *testing.T) {
	gate := NewGate()
	decision := gate.Decide(assessment(domain.RiskSafe), benignImpact,
		domain.PolicySettings{Mode: "lenient"})
	if decision.Verdict != domain.VerdictBlock {
		t.Fatalf("an invalid mode must never be substituted with a default, got %+v", decision)
	}
}

func TestDecideVerdictsMonotonicInRiskLevel(t *testing.T) {
	gate := NewGate()
	levels := []domain.RiskLevel{
		domain.RiskSafe, domain.RiskLow, domain.RiskModerate, domain.RiskHigh, domain.RiskCritical,
	}
	for _, mode := range []string{"strict", "standard", "permissive"} {
		prev := domain.VerdictAllow
		for _, level := range levels {
			decision := gate.Decide(assessment(level), benignImpact, domain.PolicySettings{Mode: mode})
			if !decision.Verdict.AtLeast(prev) {
				t.Fatalf("mode %s: verdict for %s less restrictive than for lower level", mode, level)
			}
			prev = decision.Verdict
		}
	}
}
