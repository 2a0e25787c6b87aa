package doctor

import (
	"context"
	"fmt"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Classifier     ports.RiskClassifier
	Extractor      ports.FeatureExtractor
	Sandbox        ports.Sandbox
	Audit          ports.AuditRepository
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded (format %s)", cfg.ConfigFormatVersion)))

	if s.Extractor != nil && s.Classifier != nil {
		assessment := s.Classifier.Classify(s.Extractor.Extract("ls"))
		if assessment.Level == domain.RiskSafe {
			checks = append(checks, ok("Classifier", "rules loaded, baseline command classifies safe"))
		} else {
			checks = append(checks, warn("Classifier", fmt.Sprintf("baseline command classified %s", assessment.Level)))
		}
	} else {
		checks = append(checks, warn("Classifier", "classifier not initialized"))
	}

	if s.Sandbox != nil {
		if s.Sandbox.Available() {
			checks = append(checks, ok("Sandbox", "enabled and shell found"))
		} else if cfg.Sandbox.Enabled {
			checks = append(checks, warn("Sandbox", "enabled but no usable shell on PATH"))
		} else {
			checks = append(checks, warn("Sandbox", "disabled in config"))
		}
	}

	if s.Audit != nil {
		if _, err := s.Audit.Query(domain.AuditFilter{Limit: 1}); err != nil {
			checks = append(checks, fail("Audit store", err.Error()))
		} else {
			checks = append(checks, ok("Audit store", fmt.Sprintf("%s backend reachable", cfg.AuditBackend())))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
