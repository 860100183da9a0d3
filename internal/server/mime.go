package server

import (
	"path"
	"strings"
)

// mimeOverrides maps lower-case extensions to the Content-Type that must
// be sent for them regardless of the platform's extension table.
type mimeOverrides map[string]string

func newMimeOverrides(types map[string]string) mimeOverrides {
	m := make(mimeOverrides, len(types)+1)
	for ext, typ := range types {
		m[strings.ToLower(ext)] = typ
	}
	m[".js"] = "application/javascript"
	return m
}

// lookup returns the override for the file named by urlPath. Directory
// paths never match.
func (m mimeOverrides) lookup(urlPath string) (string, bool) {
	if urlPath == "" || strings.HasSuffix(urlPath, "/") {
		return "", false
	}
	ext := strings.ToLower(path.Ext(urlPath))
	if ext == "" {
		return "", false
	}
	typ, ok := m[ext]
	return typ, ok
}
