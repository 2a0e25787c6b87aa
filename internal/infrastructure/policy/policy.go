// Package policy implements the GatingPolicy port as an ordered decision
// table over risk level, impact and confirmation mode.
package policy

import (
	"fmt"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Gate implements ports.GatingPolicy.
type Gate struct{}

// NewGate builds the gating policy.
func NewGate() *Gate {
	return &Gate{}
}

// Decide applies the precedence rules:
//
//  1. Critical blocks regardless of mode or auto-confirm, unless the
//     explicit critical override is configured, in which case it demands
//     confirmation that auto-confirm can never satisfy.
//  2. High always demands confirmation.
//  3. Moderate demands confirmation under strict mode, otherwise allows
//     with a warning.
//  4. Low and Safe allow.
//  5. Independently, system-wide irreversible impact raises Allow to
//     RequireConfirmation.
//
// Auto-confirm collapses RequireConfirmation into Allow below Critical;
// it can never collapse a Block.
func (g *Gate) Decide(assessment domain.RiskAssessment, impact domain.ImpactEstimate, settings domain.PolicySettings) domain.GateDecision {
	mode, err := domain.ParseConfirmationMode(settings.Mode)
	if err != nil {
		// Mode is validated at config load and request parsing; an invalid
		// value reaching the gate is a bug, so fail closed.
		return domain.GateDecision{
			Verdict: domain.VerdictBlock,
			Reason:  "invalid confirmation mode: " + settings.Mode,
		}
	}

	decision := baseDecision(assessment, mode, settings.AllowCriticalOverride)

	if decision.Verdict == domain.VerdictAllow &&
		impact.Scope == domain.ScopeSystemWide && !impact.Reversible {
		decision = domain.GateDecision{
			Verdict: domain.VerdictRequireConfirmation,
			Reason:  "system-wide irreversible impact",
		}
	}

	if settings.AutoConfirm &&
		decision.Verdict == domain.VerdictRequireConfirmation &&
		assessment.Level < domain.RiskCritical {
		decision = domain.GateDecision{
			Verdict:  domain.VerdictAllow,
			Warnings: append(decision.Warnings, "confirmation auto-approved for this session: "+decision.Reason),
		}
	}
	return decision
}

func baseDecision(assessment domain.RiskAssessment, mode domain.ConfirmationMode, allowCriticalOverride bool) domain.GateDecision {
	reason := summarize(assessment)
	switch {
	case assessment.Level == domain.RiskCritical:
		if allowCriticalOverride {
			return domain.GateDecision{
				Verdict: domain.VerdictRequireConfirmation,
				Reason:  "critical risk, override configured: " + reason,
			}
		}
		return domain.GateDecision{Verdict: domain.VerdictBlock, Reason: reason}
	case assessment.Level == domain.RiskHigh:
		return domain.GateDecision{Verdict: domain.VerdictRequireConfirmation, Reason: reason}
	case assessment.Level == domain.RiskModerate:
		if mode == domain.ModeStrict {
			return domain.GateDecision{Verdict: domain.VerdictRequireConfirmation, Reason: reason}
		}
		return domain.GateDecision{
			Verdict:  domain.VerdictAllow,
			Warnings: []string{"moderate risk: " + reason},
		}
	default:
		return domain.GateDecision{Verdict: domain.VerdictAllow}
	}
}

func summarize(assessment domain.RiskAssessment) string {
	if len(assessment.Reasons) > 0 {
		return assessment.Reasons[0]
	}
	return fmt.Sprintf("%s risk", assessment.Level)
}

var _ ports.GatingPolicy = (*Gate)(nil)
