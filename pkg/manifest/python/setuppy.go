package python

import (
	"os"
	"regexp"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

var (
	installRequires = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)
	extrasRequire   = regexp.MustCompile(`(?s)extras_require\s*=\s*\{(.*?)\}`)
	extrasGroup     = regexp.MustCompile(`(?s)['"]([\w.-]+)['"]\s*:\s*\[(.*?)\]`)
	quotedString    = regexp.MustCompile(`['"]([^'"]+)['"]`)
	setupName       = regexp.MustCompile(`name\s*=\s*['"]([^'"]+)['"]`)
	setupVersion    = regexp.MustCompile(`version\s*=\s*['"]([^'"]+)['"]`)
)

// SetupPy extracts dependencies from setup.py by pattern matching on the
// install_requires and extras_require arguments. It never executes the
// file, so computed requirement lists are invisible to it.
type SetupPy struct{}

func (SetupPy) Ecosystem() string { return "setuppy" }

func (SetupPy) Supports(filename string) bool { return filename == "setup.py" }

func (p SetupPy) Parse(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read setup.py")
	}
	src := string(data)

	result := manifest.NewResult()
	if m := setupName.FindStringSubmatch(src); m != nil {
		result.Metadata["name"] = m[1]
	}
	if m := setupVersion.FindStringSubmatch(src); m != nil {
		result.Metadata["version"] = m[1]
	}

	if m := installRequires.FindStringSubmatch(src); m != nil {
		for _, q := range quotedString.FindAllStringSubmatch(m[1], -1) {
			parseRequirement(q[1], result.Dependencies)
		}
	}
	if m := extrasRequire.FindStringSubmatch(src); m != nil {
		for _, group := range extrasGroup.FindAllStringSubmatch(m[1], -1) {
			dst := result.OptionalDeps
			if isDevGroup(group[1]) {
				dst = result.DevDependencies
			}
			for _, q := range quotedString.FindAllStringSubmatch(group[2], -1) {
				parseRequirement(q[1], dst)
			}
		}
	}
	return result, nil
}
