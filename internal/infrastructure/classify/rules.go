package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdgate/assets"
	"github.com/doeshing/cmdgate/internal/domain"
)

// DangerPattern describes a regex-based classification rule supplementing
// the built-in table.
type DangerPattern struct {
	Pattern    string  `yaml:"pattern"`
	Level      string  `yaml:"level"`
	Confidence float64 `yaml:"confidence"`
	Message    string  `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// loadPatternRules reads supplemental regex rules. A missing file falls back
// to the embedded defaults; malformed YAML, an invalid level, a confidence
// outside [0,1] or a bad regex abort the load.
func loadPatternRules(path string) ([]rule, error) {
	data, err := readRules(path)
	if err != nil {
		return nil, err
	}
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	rules := make([]rule, 0, len(file.Rules.DangerPatterns))
	for _, pattern := range file.Rules.DangerPatterns {
		compiled, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, compiled)
	}
	return rules, nil
}

func readRules(path string) ([]byte, error) {
	if path == "" {
		return assets.DefaultRulesYAML, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return assets.DefaultRulesYAML, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return data, nil
}

func compilePattern(pattern DangerPattern) (rule, error) {
	re, err := regexp.Compile(pattern.Pattern)
	if err != nil {
		return rule{}, fmt.Errorf("rule %q: %w", pattern.Pattern, err)
	}
	level, ok := domain.ParseRiskLevel(pattern.Level)
	if !ok {
		return rule{}, fmt.Errorf("rule %q: unknown level %q", pattern.Pattern, pattern.Level)
	}
	confidence := pattern.Confidence
	if confidence == 0 {
		confidence = 0.8
	}
	if confidence < 0 || confidence > 1 {
		return rule{}, fmt.Errorf("rule %q: confidence %v outside [0,1]", pattern.Pattern, confidence)
	}
	reason := pattern.Message
	if reason == "" {
		reason = "matches danger pattern " + pattern.Pattern
	}
	return rule{
		name:       "pattern:" + pattern.Pattern,
		level:      level,
		confidence: confidence,
		reason:     reason,
		when: func(f domain.CommandFeatures) bool {
			return re.MatchString(f.Raw)
		},
	}, nil
}
