// Package classify implements the RiskClassifier port as a flat, data-driven
// rule table. Every CommandFeatures value maps to exactly one assessment;
// when several rules fire, the maximum severity wins and is never averaged.
package classify

import (
	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// rule is one row of the classification table.
type rule struct {
	name       string
	level      domain.RiskLevel
	confidence float64
	reason     string
	when       func(domain.CommandFeatures) bool
}

// Classifier implements ports.RiskClassifier.
type Classifier struct {
	rules []rule
}

// NewClassifier builds the classifier from the built-in table plus the
// regex danger_patterns in rulesPath. An empty path uses the embedded
// defaults; a malformed file is an error, never silently replaced.
func NewClassifier(rulesPath string) (*Classifier, error) {
	patterns, err := loadPatternRules(rulesPath)
	if err != nil {
		return nil, err
	}
	return &Classifier{rules: append(baseRules(), patterns...)}, nil
}

// Classify implements ports.RiskClassifier. Deterministic and total: the
// same features always yield the same level and confidence.
func (c *Classifier) Classify(features domain.CommandFeatures) domain.RiskAssessment {
	assessment := domain.RiskAssessment{
		Level:      domain.RiskSafe,
		Confidence: 0.9,
	}
	fired := false
	for _, r := range c.rules {
		if !r.when(features) {
			continue
		}
		fired = true
		switch {
		case r.level > assessment.Level:
			assessment.Level = r.level
			assessment.Confidence = r.confidence
		case r.level == assessment.Level && r.confidence > assessment.Confidence:
			assessment.Confidence = r.confidence
		}
		assessment.Reasons = append(assessment.Reasons, r.reason)
		assessment.MatchedRules = append(assessment.MatchedRules, r.name)
	}
	if !fired {
		assessment.Reasons = []string{"no risk-relevant operations detected"}
	}
	assessment.Contributing = features.Tags()
	return assessment
}

// RuleSummary describes one loaded rule for inspection surfaces.
type RuleSummary struct {
	Name       string
	Level      domain.RiskLevel
	Confidence float64
	Reason     string
}

// Rules lists the loaded rule table, built-in rows first.
func (c *Classifier) Rules() []RuleSummary {
	summaries := make([]RuleSummary, 0, len(c.rules))
	for _, r := range c.rules {
		summaries = append(summaries, RuleSummary{
			Name:       r.name,
			Level:      r.level,
			Confidence: r.confidence,
			Reason:     r.reason,
		})
	}
	return summaries
}

func baseRules() []rule {
	return []rule{
		{
			name: "disk-format", level: domain.RiskCritical, confidence: 0.95,
			reason: "formats a disk or writes to a raw block device",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagDiskFormat)
			},
		},
		{
			name: "delete-protected-path", level: domain.RiskCritical, confidence: 0.95,
			reason: "deletes files under a protected system path",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagFileDelete) && f.Modifiers.ProtectedPath
			},
		},
		{
			name: "forced-recursive-unbounded-delete", level: domain.RiskCritical, confidence: 0.95,
			reason: "recursive forced deletion with unbounded scope",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagFileDelete) && f.Modifiers.Recursive &&
					f.Modifiers.Force && f.UnboundedScope
			},
		},
		{
			name: "unbounded-delete", level: domain.RiskCritical, confidence: 0.9,
			reason: "deletion whose breadth cannot be bounded",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagFileDelete) && f.UnboundedScope
			},
		},
		{
			name: "fetch-into-interpreter", level: domain.RiskHigh, confidence: 0.9,
			reason: "pipes remote content directly into an interpreter",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagNetworkExec) && f.Modifiers.PipedToInterpreter
			},
		},
		{
			name: "write-protected-path", level: domain.RiskHigh, confidence: 0.85,
			reason: "writes or changes permissions under a protected path",
			when: func(f domain.CommandFeatures) bool {
				return (f.HasTag(domain.TagFileWrite) || f.HasTag(domain.TagPermissionChange)) &&
					f.Modifiers.ProtectedPath
			},
		},
		{
			name: "escalated-destructive", level: domain.RiskHigh, confidence: 0.8,
			reason: "privilege escalation combined with a mutating operation",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagPrivilegeEscalation) &&
					(f.HasTag(domain.TagFileDelete) || f.HasTag(domain.TagFileWrite) ||
						f.HasTag(domain.TagPermissionChange) || f.HasTag(domain.TagPackageInstall))
			},
		},
		{
			name: "recursive-delete", level: domain.RiskHigh, confidence: 0.8,
			reason: "recursive deletion",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagFileDelete) && f.Modifiers.Recursive
			},
		},
		{
			name: "git-destructive", level: domain.RiskHigh, confidence: 0.75,
			reason: "rewrites or discards git history",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagGitDestructive)
			},
		},
		{
			name: "file-delete", level: domain.RiskModerate, confidence: 0.7,
			reason: "deletes files",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagFileDelete)
			},
		},
		{
			name: "privilege-escalation", level: domain.RiskModerate, confidence: 0.7,
			reason: "runs with elevated privileges",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagPrivilegeEscalation)
			},
		},
		{
			name: "permission-change", level: domain.RiskModerate, confidence: 0.65,
			reason: "changes file permissions or ownership",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagPermissionChange)
			},
		},
		{
			name: "remote-exec", level: domain.RiskModerate, confidence: 0.6,
			reason: "opens a remote execution channel",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagNetworkExec)
			},
		},
		{
			name: "package-install", level: domain.RiskModerate, confidence: 0.6,
			reason: "installs or upgrades packages",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagPackageInstall)
			},
		},
		{
			name: "opaque-substitution", level: domain.RiskModerate, confidence: 0.5,
			reason: "contains substitutions that defeat static analysis",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagUnparsable) && !f.OnlyUnrecognized()
			},
		},
		{
			name: "unrecognized-input", level: domain.RiskModerate, confidence: 0.3,
			reason: "command could not be parsed or recognized; treating cautiously",
			when: func(f domain.CommandFeatures) bool {
				return f.OnlyUnrecognized()
			},
		},
		{
			name: "network-fetch", level: domain.RiskLow, confidence: 0.6,
			reason: "fetches content from the network",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagNetworkFetch)
			},
		},
		{
			name: "file-write", level: domain.RiskLow, confidence: 0.55,
			reason: "writes files",
			when: func(f domain.CommandFeatures) bool {
				return f.HasTag(domain.TagFileWrite)
			},
		},
		{
			name: "overwrite-redirect", level: domain.RiskLow, confidence: 0.55,
			reason: "overwrites a file via output redirection",
			when: func(f domain.CommandFeatures) bool {
				return f.Modifiers.Overwrite
			},
		},
	}
}

var _ ports.RiskClassifier = (*Classifier)(nil)
