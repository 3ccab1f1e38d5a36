// Package heuristics derives higher-level signals from a scanned
// repository: architecture patterns, the project type label, repository
// metadata, and the security and freshness checks over the aggregated
// dependencies.
package heuristics

import (
	"os"
	"strings"
)

// pattern pairs a label with the top-level directory names that signal
// it. A repository matches when any vocabulary name is present, and can
// match several patterns at once.
type pattern struct {
	label string
	dirs  []string
}

var patterns = []pattern{
	{"MVC (Model-View-Controller)", []string{"models", "views", "controllers", "model", "view", "controller"}},
	{"Microservices Architecture", []string{"services", "microservices"}},
	{"Clean Architecture", []string{"domain", "application", "infrastructure", "core", "adapters", "ports"}},
	{"Layered Architecture", []string{"business", "data", "presentation", "dal", "bll", "ui"}},
	{"Component-based Architecture", []string{"components"}},
	{"Plugin Architecture", []string{"plugins", "extensions"}},
}

// ArchitecturePatterns reports the architecture pattern labels suggested
// by the repository's top-level directory names. Matching is
// case-insensitive and hidden directories are ignored.
func ArchitecturePatterns(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	dirs := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs[strings.ToLower(e.Name())] = true
		}
	}

	var out []string
	for _, p := range patterns {
		for _, d := range p.dirs {
			if dirs[d] {
				out = append(out, p.label)
				break
			}
		}
	}
	return out
}
