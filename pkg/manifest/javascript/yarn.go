package javascript

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

var yarnVersionLine = regexp.MustCompile(`^\s+version\s+"([^"]+)"`)

// Yarn parses classic yarn.lock files. The resolved versions pin the
// direct dependencies declared in the sibling package.json; without one
// the lock only contributes metadata.
type Yarn struct{}

func (Yarn) Ecosystem() string { return "yarn" }

func (Yarn) Supports(filename string) bool { return filename == "yarn.lock" }

func (p Yarn) Parse(path string) (*manifest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to open yarn.lock")
	}
	defer f.Close()

	// Resolved name → exact version for every entry in the lock. Entry
	// headers are unindented "spec, spec:" lines; the version follows on an
	// indented line.
	resolved := make(map[string]string)
	var current []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case !strings.HasPrefix(line, " ") && strings.HasSuffix(strings.TrimSpace(line), ":"):
			current = current[:0]
			header := strings.TrimSuffix(strings.TrimSpace(line), ":")
			for _, spec := range strings.Split(header, ",") {
				if name := specName(spec); name != "" {
					current = append(current, name)
				}
			}
		default:
			if m := yarnVersionLine.FindStringSubmatch(line); m != nil {
				for _, name := range current {
					resolved[name] = m[1]
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to read yarn.lock")
	}

	result := manifest.NewResult()
	result.Metadata["resolved_packages"] = len(resolved)

	direct, _ := parsePackageJSON(filepath.Join(filepath.Dir(path), "package.json"))
	if direct != nil {
		pin := func(dst, declared map[string]string) {
			for name, spec := range declared {
				if version, ok := resolved[name]; ok {
					dst[name] = version
				} else {
					dst[name] = spec
				}
			}
		}
		pin(result.Dependencies, direct.Dependencies)
		pin(result.DevDependencies, direct.DevDependencies)
	}
	return result, nil
}
