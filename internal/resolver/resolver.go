// Package resolver turns raw dependency strings from import directives into
// concrete file paths.
package resolver

import (
	"os"
	"path/filepath"
)

// Resolver resolves dependency strings against an ordered list of root
// directories. A root equal to "." stands for the importing file's own
// directory; empty roots are skipped.
type Resolver struct {
	Roots []string
}

func New(roots []string) *Resolver {
	return &Resolver{Roots: roots}
}

// Resolve maps a dependency string to an existing file path. An absolute
// dependency resolves iff the file exists; otherwise the roots are tried in
// order and the first existing candidate wins. The second result reports
// whether resolution succeeded; failure is not an error, callers aggregate
// unresolved dependencies and continue.
func (r *Resolver) Resolve(dep, baseDir string) (string, bool) {
	if dep == "" {
		return "", false
	}

	if filepath.IsAbs(dep) {
		if fileExists(dep) {
			return filepath.Clean(dep), true
		}
		return "", false
	}

	for _, root := range r.Roots {
		if root == "" {
			continue
		}
		if root == "." {
			root = baseDir
		}
		candidate := filepath.Join(root, dep)
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
