package server

import (
	"fmt"
	"path/filepath"
	"strings"
)

// relativeToRoot returns p relative to root in slash form, and false when
// p lies outside root.
func relativeToRoot(root, p string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// isHidden reports whether any element of the slash path rel starts with a dot.
func isHidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}

// displayURL formats the address printed in the startup banner.
func displayURL(addr string) string {
	return fmt.Sprintf("http://%s", addr)
}
