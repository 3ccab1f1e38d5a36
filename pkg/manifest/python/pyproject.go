package python

import (
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

// Pyproject parses pyproject.toml files. It understands Poetry tables,
// PEP 621 [project] metadata, and PDM dev groups. A file that is not valid
// TOML degrades to a line-based section scan instead of failing.
type Pyproject struct{}

func (Pyproject) Ecosystem() string { return "poetry" }

func (Pyproject) Supports(filename string) bool { return filename == "pyproject.toml" }

func (p Pyproject) Parse(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read pyproject.toml")
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return scanPyprojectSections(data), nil
	}

	result := manifest.NewResult()
	parsePoetry(doc, result)
	parsePEP621(doc, result)
	parsePDM(doc, result)
	return result, nil
}

func parsePoetry(doc map[string]any, result *manifest.Result) {
	poetry, ok := tableAt(doc, "tool", "poetry")
	if !ok {
		return
	}
	if name, ok := poetry["name"].(string); ok {
		result.Metadata["name"] = name
	}
	if version, ok := poetry["version"].(string); ok {
		result.Metadata["version"] = version
	}

	if deps, ok := poetry["dependencies"].(map[string]any); ok {
		for name, v := range deps {
			if strings.EqualFold(name, "python") {
				continue
			}
			result.Dependencies[name] = manifest.VersionFromValue(v)
		}
	}
	if deps, ok := poetry["dev-dependencies"].(map[string]any); ok {
		for name, v := range deps {
			result.DevDependencies[name] = manifest.VersionFromValue(v)
		}
	}
	if groups, ok := poetry["group"].(map[string]any); ok {
		for _, g := range groups {
			group, ok := g.(map[string]any)
			if !ok {
				continue
			}
			deps, ok := group["dependencies"].(map[string]any)
			if !ok {
				continue
			}
			for name, v := range deps {
				result.DevDependencies[name] = manifest.VersionFromValue(v)
			}
		}
	}
}

func parsePEP621(doc map[string]any, result *manifest.Result) {
	project, ok := doc["project"].(map[string]any)
	if !ok {
		return
	}
	if name, ok := project["name"].(string); ok {
		result.Metadata["name"] = name
	}
	if version, ok := project["version"].(string); ok {
		result.Metadata["version"] = version
	}

	if deps, ok := project["dependencies"].([]any); ok {
		for _, d := range deps {
			if req, ok := d.(string); ok {
				parseRequirement(req, result.Dependencies)
			}
		}
	}
	if groups, ok := project["optional-dependencies"].(map[string]any); ok {
		for group, g := range groups {
			deps, ok := g.([]any)
			if !ok {
				continue
			}
			dst := result.OptionalDeps
			if isDevGroup(group) {
				dst = result.DevDependencies
			}
			for _, d := range deps {
				if req, ok := d.(string); ok {
					parseRequirement(req, dst)
				}
			}
		}
	}
}

func parsePDM(doc map[string]any, result *manifest.Result) {
	pdm, ok := tableAt(doc, "tool", "pdm")
	if !ok {
		return
	}
	groups, ok := pdm["dev-dependencies"].(map[string]any)
	if !ok {
		return
	}
	for _, g := range groups {
		deps, ok := g.([]any)
		if !ok {
			continue
		}
		for _, d := range deps {
			if req, ok := d.(string); ok {
				parseRequirement(req, result.DevDependencies)
			}
		}
	}
}

func isDevGroup(name string) bool {
	switch strings.ToLower(name) {
	case "dev", "develop", "development", "test", "testing":
		return true
	}
	return false
}

func tableAt(doc map[string]any, keys ...string) (map[string]any, bool) {
	cur := doc
	for _, key := range keys {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

var sectionLine = regexp.MustCompile(`^\s*\[(.+?)\]\s*$`)
var assignLine = regexp.MustCompile(`^\s*([\w.-]+)\s*=\s*"([^"]*)"`)

// scanPyprojectSections is the fallback for broken TOML: it walks the raw
// lines, tracking the current section, and keeps simple name = "version"
// assignments from the known dependency tables.
func scanPyprojectSections(data []byte) *manifest.Result {
	result := manifest.NewResult()
	section := ""
	for _, line := range strings.Split(string(data), "\n") {
		if m := sectionLine.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}
		m := assignLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name, version := m[1], m[2]
		switch {
		case section == "tool.poetry.dependencies":
			if !strings.EqualFold(name, "python") {
				result.Dependencies[name] = version
			}
		case section == "tool.poetry.dev-dependencies",
			strings.HasPrefix(section, "tool.poetry.group.") && strings.HasSuffix(section, ".dependencies"):
			result.DevDependencies[name] = version
		}
	}
	return result
}
