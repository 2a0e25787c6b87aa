package domain

// Scope is the blast radius of a command's potential effects.
type Scope string

const (
	// ScopeLocal covers effects confined to the working-directory subtree.
	ScopeLocal Scope = "local"
	// ScopeProjectWide covers effects reaching outside the working directory
	// but staying within the recognized project boundary.
	ScopeProjectWide Scope = "project_wide"
	// ScopeSystemWide covers protected paths and privilege escalation.
	ScopeSystemWide Scope = "system_wide"
)

// ImpactEstimate describes breadth and reversibility of potential effects.
// It is independent evidence for the gating policy, never derived from the
// risk level.
type ImpactEstimate struct {
	Scope           Scope `json:"scope"`
	Reversible      bool  `json:"reversible"`
	RequiresNetwork bool  `json:"requires_network"`
}

// ExecutionContext is the environment the command would run in, gathered
// once per evaluation without executing anything.
type ExecutionContext struct {
	WorkingDir  string `json:"working_dir"`
	ProjectRoot string `json:"project_root,omitempty"`
	Home        string `json:"home,omitempty"`
}
