// Package config validates configuration before the pipeline runs. An
// invalid policy is rejected outright, never silently replaced with a
// default.
package config

import (
	"fmt"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if _, err := domain.ParseConfirmationMode(cfg.Policy.Mode); err != nil {
		return err
	}
	if err := validateSecurity(cfg.Security); err != nil {
		return err
	}
	if err := validateSandbox(cfg.Sandbox); err != nil {
		return err
	}
	return validateAudit(cfg.Audit)
}

func validateSecurity(sec domain.SecuritySettings) error {
	for _, path := range sec.ProtectedPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			return fmt.Errorf("security.protected_paths contains an empty entry")
		}
		if !strings.HasPrefix(trimmed, "/") && trimmed != "~" &&
			!strings.HasPrefix(trimmed, "~/") && !strings.HasPrefix(trimmed, "$HOME") {
			return fmt.Errorf("security.protected_paths entry %q must be absolute or home-anchored", path)
		}
	}
	return nil
}

func validateSandbox(sandbox domain.SandboxSettings) error {
	if sandbox.TimeoutSeconds < 0 {
		return fmt.Errorf("sandbox.timeout must be >= 0, got %d", sandbox.TimeoutSeconds)
	}
	return nil
}

func validateAudit(audit domain.AuditSettings) error {
	switch audit.Backend {
	case "", domain.AuditBackendSQLite, domain.AuditBackendJSONL:
	default:
		return fmt.Errorf("audit.backend must be sqlite|jsonl, got %q", audit.Backend)
	}
	if audit.Path == "" {
		return fmt.Errorf("audit.path must be set")
	}
	return nil
}
