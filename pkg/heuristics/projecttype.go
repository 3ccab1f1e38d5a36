package heuristics

import (
	"os"
	"path/filepath"
	"strings"
)

// ProjectType labels the repository by its sentinel files. Both a Node
// and a Python signal at once mean "Mixed"; otherwise the first matching
// ecosystem wins, with a top-level source extension sniff as fallback.
func ProjectType(root string) string {
	hasPackageJSON := fileExists(filepath.Join(root, "package.json"))
	hasPython := fileExists(filepath.Join(root, "requirements.txt")) ||
		fileExists(filepath.Join(root, "pyproject.toml")) ||
		hasTopLevelExt(root, ".py")

	switch {
	case hasPackageJSON && hasPython:
		return "Mixed"
	case hasPackageJSON:
		return "Node"
	case hasPython:
		return "Python"
	case hasTopLevelExt(root, ".go"):
		return "Go"
	case hasTopLevelExt(root, ".rs"):
		return "Rust"
	case hasTopLevelExt(root, ".java"):
		return "Java"
	}
	return "Unknown"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func hasTopLevelExt(root, ext string) bool {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
			return true
		}
	}
	return false
}
