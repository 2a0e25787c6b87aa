package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultSandboxTimeout bounds a single sandbox run.
	DefaultSandboxTimeout = 10 * time.Second
	// SandboxKillGrace is how long a cancelled sandbox process group gets
	// before the run is reported as torn down anyway.
	SandboxKillGrace = 2 * time.Second
)

// Limit constants
const (
	// DefaultAuditQueryLimit is the default number of audit entries to list.
	DefaultAuditQueryLimit = 20
	// MaxOutputExcerpt caps captured stdout/stderr per sandbox run.
	MaxOutputExcerpt = 4096
)

// Audit backends
const (
	AuditBackendSQLite = "sqlite"
	AuditBackendJSONL  = "jsonl"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
