// Package watch observes directories for file changes and reports the
// derived agent activity into the office.
package watch

import (
	"path/filepath"
	"strings"
)

// Classification maps a changed path to the agent that should be
// shown working on it.
type Classification struct {
	AgentID string
	Name    string
	Role    string
	Action  string
}

// Display names per role, matching the cast the viewers know.
var roleNames = map[string]string{
	"developer": "Bob",
	"architect": "Alice",
	"tester":    "Carol",
	"pm":        "Eve",
	"designer":  "Frank",
	"devops":    "Dave",
}

var sourceExts = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rs": true, ".java": true, ".c": true, ".cc": true,
	".cpp": true, ".h": true, ".rb": true, ".sh": true,
}

var configExts = map[string]bool{
	".yml": true, ".yaml": true, ".toml": true, ".ini": true,
	".env": true, ".lock": true,
}

var configNames = map[string]bool{
	"Dockerfile": true, "Makefile": true, "go.mod": true,
	"go.sum": true, "package.json": true,
}

var markupExts = map[string]bool{
	".html": true, ".css": true, ".scss": true, ".sass": true, ".less": true,
}

var docExts = map[string]bool{
	".md": true, ".txt": true, ".rst": true, ".adoc": true,
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true,
}

// Classify derives the agent identity for a changed path. Rules are
// evaluated in order and the first match wins; brainDir marks the
// planning directory whose files belong to the architect.
func Classify(path, brainDir string) Classification {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case brainDir != "" && underDir(path, brainDir):
		switch {
		case ext == ".md":
			return forRole("architect", "coding")
		case imageExts[ext]:
			return forRole("architect", "reviewing")
		default:
			return forRole("architect", "thinking")
		}
	case sourceExts[ext]:
		return forRole("developer", "coding")
	case configExts[ext] || configNames[base]:
		return forRole("devops", "coding")
	case markupExts[ext]:
		return forRole("designer", "coding")
	case docExts[ext]:
		return forRole("pm", "coding")
	case mentionsTests(path):
		return forRole("tester", "reviewing")
	default:
		return forRole("developer", "coding")
	}
}

func forRole(role, action string) Classification {
	return Classification{
		AgentID: "fs-" + role,
		Name:    roleNames[role],
		Role:    role,
		Action:  action,
	}
}

func underDir(path, dir string) bool {
	dir = filepath.Clean(dir)
	for _, elem := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if elem == filepath.Base(dir) {
			return true
		}
	}
	rel, err := filepath.Rel(dir, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}

func mentionsTests(path string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	for _, elem := range strings.Split(lower, "/") {
		if strings.Contains(elem, "test") || strings.Contains(elem, "spec") {
			return true
		}
	}
	return false
}
