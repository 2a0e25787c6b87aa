// Package impact implements the ImpactEstimator port. The estimate is
// independent evidence for the gating policy: it is computed from the
// features and execution context alone, never from the risk level.
package impact

import (
	"path/filepath"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Estimator implements ports.ImpactEstimator.
type Estimator struct{}

// NewEstimator builds an estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate implements ports.ImpactEstimator.
func (e *Estimator) Estimate(features domain.CommandFeatures, execCtx domain.ExecutionContext) domain.ImpactEstimate {
	return domain.ImpactEstimate{
		Scope:           scopeOf(features, execCtx),
		Reversible:      reversible(features),
		RequiresNetwork: requiresNetwork(features),
	}
}

func scopeOf(features domain.CommandFeatures, execCtx domain.ExecutionContext) domain.Scope {
	if features.Modifiers.ProtectedPath ||
		features.HasTag(domain.TagPrivilegeEscalation) ||
		features.HasTag(domain.TagDiskFormat) {
		return domain.ScopeSystemWide
	}
	scope := domain.ScopeLocal
	// Package installs mutate a shared environment even when every explicit
	// path argument is local.
	if features.UnboundedScope || features.HasTag(domain.TagPackageInstall) {
		scope = domain.ScopeProjectWide
	}
	for _, target := range features.Targets {
		scope = widest(scope, targetScope(target, execCtx))
	}
	return scope
}

// targetScope places one resolved target relative to the collected
// boundaries: inside the working-directory subtree it is local, outside it
// but within the recognized project root it is project-wide, and past the
// project boundary it is system-wide. Relative paths are anchored at cwd
// textually; without a recognized boundary an escape stays project-wide.
func targetScope(target string, execCtx domain.ExecutionContext) domain.Scope {
	if execCtx.WorkingDir == "" {
		return domain.ScopeLocal
	}
	target = strings.TrimSuffix(target, "/*")
	if !filepath.IsAbs(target) {
		target = filepath.Clean(filepath.Join(execCtx.WorkingDir, target))
	}
	if within(target, execCtx.WorkingDir) {
		return domain.ScopeLocal
	}
	if execCtx.ProjectRoot == "" || within(target, execCtx.ProjectRoot) {
		return domain.ScopeProjectWide
	}
	return domain.ScopeSystemWide
}

func within(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

func widest(a, b domain.Scope) domain.Scope {
	if scopeRank(b) > scopeRank(a) {
		return b
	}
	return a
}

func scopeRank(scope domain.Scope) int {
	switch scope {
	case domain.ScopeSystemWide:
		return 2
	case domain.ScopeProjectWide:
		return 1
	default:
		return 0
	}
}

// reversible is false for deletions, disk formatting, history rewrites and
// unguarded overwrites; reads and plain additions are recoverable.
func reversible(features domain.CommandFeatures) bool {
	if features.HasTag(domain.TagFileDelete) ||
		features.HasTag(domain.TagDiskFormat) ||
		features.HasTag(domain.TagGitDestructive) {
		return false
	}
	if features.Modifiers.Overwrite {
		return false
	}
	if features.HasTag(domain.TagFileWrite) && features.Modifiers.Force {
		return false
	}
	return true
}

func requiresNetwork(features domain.CommandFeatures) bool {
	return features.HasTag(domain.TagNetworkFetch) ||
		features.HasTag(domain.TagNetworkExec) ||
		features.HasTag(domain.TagPackageInstall)
}

var _ ports.ImpactEstimator = (*Estimator)(nil)
