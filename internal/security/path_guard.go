package security

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PathGuard decides whether filesystem paths stay inside the project root.
type PathGuard struct {
	root   string // canonical form, empty when containment is disabled
	logger *zap.Logger
}

// NewPathGuard creates a guard for the given project root. An empty root
// disables containment entirely; that degraded state is logged here once,
// distinctly from per-path allow decisions.
func NewPathGuard(projectRoot string, logger *zap.Logger) *PathGuard {
	if projectRoot == "" {
		logger.Warn("path guard is open: no project root configured, all paths are permitted")
		return &PathGuard{logger: logger}
	}

	root, err := canonicalizePath(projectRoot)
	if err != nil {
		// Containment checks against an unresolvable root fail closed below.
		logger.Warn("project root could not be canonicalized",
			zap.String("project_root", projectRoot), zap.Error(err))
		root = projectRoot
	}
	return &PathGuard{root: root, logger: logger}
}

// IsWithinRoot reports whether candidate resolves to a location equal to or
// nested under the project root. It is total: resolution failures count as
// not contained, and with no root configured every path is permitted.
//
// Relative candidates resolve against the process working directory, not any
// request-local context. Parent segments and symlinks are resolved before
// comparison, so a path that traverses outside and back in is contained and
// a sibling like /project-evil is not mistaken for a child of /project.
func (pg *PathGuard) IsWithinRoot(candidate string) bool {
	if pg.root == "" {
		return true
	}

	resolved, err := canonicalizePath(candidate)
	if err != nil {
		pg.logger.Warn("path resolution failed, treating as outside root",
			zap.String("path", candidate), zap.Error(err))
		return false
	}

	if resolved == pg.root {
		return true
	}
	return strings.HasPrefix(resolved, pg.root+string(filepath.Separator))
}

// canonicalizePath expands the home directory, converts to an absolute path,
// and resolves symlinks to prevent bypass via symlink attacks.
func canonicalizePath(path string) (string, error) {
	expanded := path
	if strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		expanded = filepath.Join(home, path[2:])
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}

	// Resolve symlinks, walking up for path components that do not exist
	// yet (write targets are created later by the dispatcher).
	canonical, err := resolveSymlinksWalkUp(abs)
	if err != nil {
		return abs, nil
	}
	return canonical, nil
}

// resolveSymlinksWalkUp walks up the directory tree resolving symlinks until
// it finds a path that exists, then rebuilds the full path on top of the
// resolved ancestor.
func resolveSymlinksWalkUp(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(path)
	base := filepath.Base(path)

	if parent == path {
		return path, nil
	}

	resolvedParent, err := resolveSymlinksWalkUp(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, base), nil
}
