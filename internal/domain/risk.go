// Package domain defines core entities and value objects for cmdgate.
//
// The domain layer is independent of infrastructure concerns and represents
// pure data structures flowing through the evaluation pipeline.
package domain

import "strings"

// RiskLevel is the ordered severity classification of a command's potential
// for harm. Levels form a total order: Safe < Low < Moderate < High < Critical.
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskLow
	RiskModerate
	RiskHigh
	RiskCritical
)

// String returns the canonical lowercase name.
func (l RiskLevel) String() string {
	switch l {
	case RiskSafe:
		return "safe"
	case RiskLow:
		return "low"
	case RiskModerate:
		return "moderate"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// AtLeast reports whether l is at least as severe as other.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l >= other
}

// ParseRiskLevel maps a textual level to the canonical scale. Overlapping
// vocabulary from rule files is folded into the single scale: "medium" is an
// alias for moderate, "none" and "info" for safe. Unrecognized values parse
// as safe with ok=false so callers can reject them.
func ParseRiskLevel(value string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "safe", "none", "info":
		return RiskSafe, true
	case "low":
		return RiskLow, true
	case "moderate", "medium":
		return RiskModerate, true
	case "high":
		return RiskHigh, true
	case "critical":
		return RiskCritical, true
	default:
		return RiskSafe, false
	}
}

// MarshalJSON stores levels by name so audit records stay readable.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON accepts canonical names and aliases.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	parsed, _ := ParseRiskLevel(strings.Trim(string(data), `"`))
	*l = parsed
	return nil
}

// RiskAssessment aggregates the classifier's verdict for one command.
type RiskAssessment struct {
	Level        RiskLevel      `json:"level"`
	Confidence   float64        `json:"confidence"`
	Reasons      []string       `json:"reasons"`
	Contributing []OperationTag `json:"contributing_tags,omitempty"`
	MatchedRules []string       `json:"matched_rules,omitempty"`
}
