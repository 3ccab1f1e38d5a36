package python

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

// Pipfile parses pipenv manifests. The Pipfile itself is TOML with
// [packages] and [dev-packages] tables; Pipfile.lock is JSON with pinned
// versions under "default" and "develop".
type Pipfile struct{}

func (Pipfile) Ecosystem() string { return "pipenv" }

func (Pipfile) Supports(filename string) bool {
	return filename == "Pipfile" || filename == "Pipfile.lock"
}

func (p Pipfile) Parse(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read Pipfile")
	}
	if filepath.Base(path) == "Pipfile.lock" {
		return parsePipfileLock(data)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return scanPipfileSections(data), nil
	}

	result := manifest.NewResult()
	if packages, ok := doc["packages"].(map[string]any); ok {
		for name, v := range packages {
			result.Dependencies[name] = manifest.VersionFromValue(v)
		}
	}
	if packages, ok := doc["dev-packages"].(map[string]any); ok {
		for name, v := range packages {
			result.DevDependencies[name] = manifest.VersionFromValue(v)
		}
	}
	return result, nil
}

// parsePipfileLock extracts the pinned versions. Specs keep their leading
// "==" stripped so the lock contributes exact versions.
func parsePipfileLock(data []byte) (*manifest.Result, error) {
	var doc struct {
		Default map[string]struct {
			Version string `json:"version"`
		} `json:"default"`
		Develop map[string]struct {
			Version string `json:"version"`
		} `json:"develop"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to parse Pipfile.lock")
	}

	result := manifest.NewResult()
	for name, entry := range doc.Default {
		result.Dependencies[name] = lockVersion(entry.Version)
	}
	for name, entry := range doc.Develop {
		result.DevDependencies[name] = lockVersion(entry.Version)
	}
	return result, nil
}

func lockVersion(spec string) string {
	if v := strings.TrimPrefix(spec, "=="); v != "" {
		return v
	}
	return "complex-dependency"
}

func scanPipfileSections(data []byte) *manifest.Result {
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
		switch section {
		case "packages":
			result.Dependencies[m[1]] = m[2]
		case "dev-packages":
			result.DevDependencies[m[1]] = m[2]
		}
	}
	return result
}
