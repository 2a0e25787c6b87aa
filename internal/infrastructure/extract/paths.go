package extract

import (
	"path/filepath"
	"strings"
)

// defaultProtectedPaths is the built-in protected set: system roots plus the
// bare home directory. Config may replace it wholesale.
func defaultProtectedPaths() []string {
	return []string{
		"/", "/bin", "/boot", "/dev", "/etc", "/lib", "/lib64",
		"/proc", "/sbin", "/sys", "/usr", "/var", "~",
	}
}

func normalizeProtected(paths []string, home string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, expandHome(p, home))
	}
	return out
}

// expandTextual resolves ~ and $HOME prefixes and cleans the path, all
// textually. Relative paths stay relative; the estimator anchors them to
// the working directory later.
func (e *Extractor) expandTextual(target string) string {
	expanded := expandHome(target, e.home)
	if expanded == "*" || strings.HasSuffix(expanded, "/*") {
		// keep the glob marker; cleaning would swallow it
		return filepath.Clean(strings.TrimSuffix(expanded, "/*")) + "/*"
	}
	return filepath.Clean(expanded)
}

func expandHome(p, home string) string {
	switch {
	case p == "~" || p == "$HOME":
		return home
	case strings.HasPrefix(p, "~/"):
		return home + p[1:]
	case strings.HasPrefix(p, "$HOME/"):
		return home + p[len("$HOME"):]
	}
	return p
}

// isProtected matches a resolved target against the protected set. The
// filesystem root and the bare home directory match only exactly (or as a
// root glob); other entries protect their whole subtree.
func (e *Extractor) isProtected(target string) bool {
	bare := strings.TrimSuffix(target, "/*")
	if bare == "" {
		bare = "/"
	}
	for _, entry := range e.protected {
		if entry == "/" || entry == e.home {
			if bare == entry {
				return true
			}
			continue
		}
		if bare == entry || strings.HasPrefix(bare, entry+"/") {
			return true
		}
	}
	return false
}

// isUnbounded flags targets whose breadth the extractor cannot bound:
// the root, a root-level glob, the bare home directory, or a bare glob.
func (e *Extractor) isUnbounded(target string) bool {
	switch target {
	case "/", "/*", "*", "./*", e.home, e.home + "/*", "~", "$HOME":
		return true
	}
	return false
}
