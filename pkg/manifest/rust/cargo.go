// Package rust provides the Cargo.toml manifest parser.
package rust

import (
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

// Cargo parses Cargo.toml. Table values with a version key resolve to
// that version; git and path dependencies come out as
// "complex-dependency". Broken TOML degrades to a section scan.
type Cargo struct{}

func (Cargo) Ecosystem() string { return "cargo" }

func (Cargo) Supports(filename string) bool { return filename == "Cargo.toml" }

func (p Cargo) Parse(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read Cargo.toml")
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return scanCargoSections(data), nil
	}

	result := manifest.NewResult()
	if pkg, ok := doc["package"].(map[string]any); ok {
		if name, ok := pkg["name"].(string); ok {
			result.Metadata["name"] = name
		}
		if version, ok := pkg["version"].(string); ok {
			result.Metadata["version"] = version
		}
		if edition, ok := pkg["edition"].(string); ok {
			result.Metadata["edition"] = edition
		}
	}

	buckets := []struct {
		key string
		dst map[string]string
	}{
		{"dependencies", result.Dependencies},
		{"dev-dependencies", result.DevDependencies},
		{"build-dependencies", result.BuildDependencies},
	}
	for _, b := range buckets {
		deps, ok := doc[b.key].(map[string]any)
		if !ok {
			continue
		}
		for name, v := range deps {
			b.dst[name] = manifest.VersionFromValue(v)
		}
	}
	return result, nil
}

var (
	cargoSection = regexp.MustCompile(`^\s*\[(.+?)\]\s*$`)
	cargoAssign  = regexp.MustCompile(`^\s*([\w-]+)\s*=\s*"([^"]*)"`)
)

func scanCargoSections(data []byte) *manifest.Result {
	result := manifest.NewResult()
	section := ""
	for _, line := range strings.Split(string(data), "\n") {
		if m := cargoSection.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}
		m := cargoAssign.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch section {
		case "dependencies":
			result.Dependencies[m[1]] = m[2]
		case "dev-dependencies":
			result.DevDependencies[m[1]] = m[2]
		case "build-dependencies":
			result.BuildDependencies[m[1]] = m[2]
		}
	}
	return result
}
