// Package context gathers the execution environment used by the impact
// estimator: working directory, project boundary, home. It inspects the
// filesystem but never runs the candidate command.
package context

import (
	stdcontext "context"
	"os"
	"path/filepath"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/pkg/filesystem"
	"github.com/doeshing/cmdgate/internal/ports"
)

// BasicCollector implements ports.ContextCollector.
type BasicCollector struct{}

// NewBasicCollector builds a collector.
func NewBasicCollector() *BasicCollector {
	return &BasicCollector{}
}

// Collect implements ports.ContextCollector.
func (c *BasicCollector) Collect(stdcontext.Context) (domain.ExecutionContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return domain.ExecutionContext{}, err
	}
	return domain.ExecutionContext{
		WorkingDir:  cwd,
		ProjectRoot: findProjectRoot(cwd),
		Home:        filesystem.UserHomeDir(),
	}, nil
}

// findProjectRoot walks up from dir looking for a .git directory. An empty
// result means no recognized project boundary.
func findProjectRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

var _ ports.ContextCollector = (*BasicCollector)(nil)
