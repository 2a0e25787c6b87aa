package domain

import (
	"fmt"
	"strings"
)

// GateVerdict is the terminal verdict of the gating policy.
type GateVerdict string

const (
	VerdictAllow               GateVerdict = "allow"
	VerdictRequireConfirmation GateVerdict = "require_confirmation"
	VerdictBlock               GateVerdict = "block"
)

// severity orders verdicts for "at least as restrictive" comparisons.
func (v GateVerdict) severity() int {
	switch v {
	case VerdictRequireConfirmation:
		return 1
	case VerdictBlock:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether v is at least as restrictive as other.
func (v GateVerdict) AtLeast(other GateVerdict) bool {
	return v.severity() >= other.severity()
}

// GateDecision is the policy outcome handed back to the caller. Reason is
// set for RequireConfirmation and Block; Warnings accompany Allow verdicts
// that deserve a heads-up (e.g. moderate risk under standard mode).
type GateDecision struct {
	Verdict  GateVerdict `json:"verdict"`
	Reason   string      `json:"reason,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// ConfirmationMode controls how aggressively the policy demands confirmation.
type ConfirmationMode string

const (
	ModeStrict     ConfirmationMode = "strict"
	ModeStandard   ConfirmationMode = "standard"
	ModePermissive ConfirmationMode = "permissive"
)

// ParseConfirmationMode validates a textual mode. An empty value defaults to
// standard; anything else unrecognized is an error, never silently replaced.
func ParseConfirmationMode(value string) (ConfirmationMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return ModeStandard, nil
	case "strict":
		return ModeStrict, nil
	case "standard":
		return ModeStandard, nil
	case "permissive":
		return ModePermissive, nil
	default:
		return "", fmt.Errorf("confirmation mode must be strict|standard|permissive, got %q", value)
	}
}
