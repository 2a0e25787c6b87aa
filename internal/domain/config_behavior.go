package domain

import "time"

// ConfirmationMode returns the parsed policy mode, defaulting to standard
// when unset. Invalid modes are caught earlier by config validation.
func (c *Config) ConfirmationMode() ConfirmationMode {
	mode, err := ParseConfirmationMode(c.Policy.Mode)
	if err != nil {
		return ModeStandard
	}
	return mode
}

// SandboxTimeout returns the sandbox wall-clock limit.
func (c *Config) SandboxTimeout() time.Duration {
	if c.Sandbox.TimeoutSeconds <= 0 {
		return DefaultSandboxTimeout
	}
	return time.Duration(c.Sandbox.TimeoutSeconds) * time.Second
}

// AuditBackend returns the configured audit backend, defaulting to sqlite.
func (c *Config) AuditBackend() string {
	if c.Audit.Backend == "" {
		return AuditBackendSQLite
	}
	return c.Audit.Backend
}
