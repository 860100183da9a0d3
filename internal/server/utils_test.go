package server

import (
	"path/filepath"
	"testing"
)

func TestRelativeToRoot(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"root itself", root, ".", true},
		{"file", filepath.Join(root, "app.js"), "app.js", true},
		{"nested", filepath.Join(root, "assets", "js", "game.js"), "assets/js/game.js", true},
		{"parent", filepath.Dir(root), "", false},
		{"sibling", root + "-other", "", false},
		{"dotted name inside root", filepath.Join(root, "..data"), "..data", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := relativeToRoot(root, tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("relativeToRoot() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"app.js", false},
		{".git", true},
		{".git/HEAD", true},
		{"assets/.cache/x", true},
		{"assets/js/game.js", false},
		{".", false},
	}
	for _, tt := range tests {
		if got := isHidden(tt.rel); got != tt.want {
			t.Errorf("isHidden(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
