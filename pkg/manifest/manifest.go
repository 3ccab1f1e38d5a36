// Package manifest defines the parser contract and ecosystem registry for
// dependency manifests.
//
// Each supported ecosystem (pip, npm, cargo, ...) provides a [Parser] in
// its own subpackage. Parsers are pure: they read one file and return a
// [Result] of normalized name → version-spec buckets. They never panic and
// never write; a parser that cannot make sense of its file returns an
// error, which the aggregator turns into an empty contribution rather than
// a failed scan.
//
// The [Registry] is the static table of ecosystem profiles, created once
// at engine construction and read-only afterwards. Detection looks only at
// the project root: root-level manifests are treated as the authoritative
// dependency declarations of a project.
package manifest

import (
	"os"
	"path/filepath"
)

// Parser reads dependency information from one manifest file.
type Parser interface {
	// Ecosystem returns the package-manager identifier (e.g., "pip", "npm").
	Ecosystem() string
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Parse reads the manifest at path into normalized dependency buckets.
	Parse(path string) (*Result, error)
}

// Result holds the normalized dependency buckets parsed from one manifest.
// Version specs are either exact versions, operator-prefixed constraints
// kept verbatim from the source, or one of the profile sentinels
// ("latest", "git-dependency", ...).
type Result struct {
	Dependencies      map[string]string
	DevDependencies   map[string]string
	PeerDependencies  map[string]string
	BuildDependencies map[string]string
	OptionalDeps      map[string]string
	Metadata          map[string]any
}

// NewResult returns a Result with all buckets initialized.
func NewResult() *Result {
	return &Result{
		Dependencies:      make(map[string]string),
		DevDependencies:   make(map[string]string),
		PeerDependencies:  make(map[string]string),
		BuildDependencies: make(map[string]string),
		OptionalDeps:      make(map[string]string),
		Metadata:          make(map[string]any),
	}
}

// VersionFromValue normalizes a structured manifest value into a version
// spec: a plain string is an exact version or constraint, a table with a
// "version" key uses that value, and anything else is marked as a complex
// dependency (git sources, path dependencies, extras-only tables).
func VersionFromValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if ver, ok := val["version"].(string); ok {
			return ver
		}
		return "complex-dependency"
	default:
		return "complex-dependency"
	}
}

// Profile is one static ecosystem entry in the registry: the ecosystem
// name, the root-level filenames that identify it, and its parser.
type Profile struct {
	Ecosystem string
	Filenames []string
	Parser    Parser
}

// Detection is one detected ecosystem with the manifest files found for
// it, in Profile filename order.
type Detection struct {
	Ecosystem string
	Paths     []string
	Parser    Parser
}

// Registry holds the ecosystem profiles in registration order. It is
// populated once and never mutated, so it is safe for concurrent use.
type Registry struct {
	profiles []Profile
}

// NewRegistry creates a registry from the given profiles. Order matters:
// detection results and aggregation merges follow registration order.
func NewRegistry(profiles ...Profile) *Registry {
	return &Registry{profiles: profiles}
}

// Profiles returns the registered profiles in registration order.
func (r *Registry) Profiles() []Profile {
	return r.profiles
}

// Detect scans the project root for known manifest filenames. An
// ecosystem is detected if at least one of its filenames exists directly
// in root; all of its present filenames are collected in filename-list
// order. No recursive search happens.
func (r *Registry) Detect(root string) []Detection {
	var out []Detection
	for _, p := range r.profiles {
		var paths []string
		for _, name := range p.Filenames {
			path := filepath.Join(root, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				paths = append(paths, path)
			}
		}
		if len(paths) > 0 {
			out = append(out, Detection{Ecosystem: p.Ecosystem, Paths: paths, Parser: p.Parser})
		}
	}
	return out
}
