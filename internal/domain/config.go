package domain

// Config mirrors ~/.cmdgate/config.yaml.
type Config struct {
	ConfigFormatVersion string           `yaml:"config_format_version"`
	Policy              PolicySettings   `yaml:"policy"`
	Security            SecuritySettings `yaml:"security"`
	Sandbox             SandboxSettings  `yaml:"sandbox"`
	Audit               AuditSettings    `yaml:"audit"`
}

// PolicySettings drive the gating decision table.
type PolicySettings struct {
	Mode                  string `yaml:"mode"`
	AutoConfirm           bool   `yaml:"auto_confirm"`
	AllowCriticalOverride bool   `yaml:"allow_critical_override"`
}

// SecuritySettings configure feature extraction and classification.
type SecuritySettings struct {
	RulesFile      string   `yaml:"rules_file"`
	ProtectedPaths []string `yaml:"protected_paths"`
}

// SandboxSettings control empirical verification runs.
type SandboxSettings struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout"`
	AllowNetwork   bool `yaml:"allow_network"`
}

// AuditSettings locate the append-only audit sink.
type AuditSettings struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}
