// Package ruby provides manifest parsers for Bundler: Gemfile and
// Gemfile.lock.
package ruby

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

var (
	gemLine    = regexp.MustCompile(`^\s*gem\s+['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)
	sourceLine = regexp.MustCompile(`^\s*source\s+['"]([^'"]+)['"]`)
	rubyLine   = regexp.MustCompile(`^\s*ruby\s+['"]([^'"]+)['"]`)
	groupLine  = regexp.MustCompile(`^\s*group\s+(.+?)\s+do\s*$`)
	// "    rails (7.0.4)" in the specs section of Gemfile.lock.
	lockSpec = regexp.MustCompile(`^    ([\w.-]+) \(([^)]+)\)$`)
	// "  rails (~> 7.0)" or "  rake!" in the DEPENDENCIES section.
	lockDirect = regexp.MustCompile(`^  ([\w.-]+)!?(?: \(.+\))?$`)
)

// Gemfile parses Bundler manifests. Gems inside development or test
// groups land in the dev bucket; Gemfile.lock pins the direct
// dependencies listed in its DEPENDENCIES section to the resolved
// versions from specs.
type Gemfile struct{}

func (Gemfile) Ecosystem() string { return "bundler" }

func (Gemfile) Supports(filename string) bool {
	return filename == "Gemfile" || filename == "Gemfile.lock"
}

func (p Gemfile) Parse(path string) (*manifest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to open Gemfile")
	}
	defer f.Close()

	if filepath.Base(path) == "Gemfile.lock" {
		return parseGemfileLock(f)
	}
	return parseGemfile(f)
}

func parseGemfile(f *os.File) (*manifest.Result, error) {
	result := manifest.NewResult()
	inDevGroup := false
	groupDepth := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue
		case sourceLine.MatchString(line):
			result.Metadata["source"] = sourceLine.FindStringSubmatch(line)[1]
		case rubyLine.MatchString(line):
			result.Metadata["ruby_version"] = rubyLine.FindStringSubmatch(line)[1]
		case groupLine.MatchString(line):
			groupDepth++
			groups := groupLine.FindStringSubmatch(line)[1]
			if strings.Contains(groups, ":development") || strings.Contains(groups, ":test") {
				inDevGroup = true
			}
		case trimmed == "end":
			if groupDepth > 0 {
				groupDepth--
			}
			if groupDepth == 0 {
				inDevGroup = false
			}
		default:
			m := gemLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			version := m[2]
			if version == "" {
				version = "latest"
			}
			if inDevGroup {
				result.DevDependencies[m[1]] = version
			} else {
				result.Dependencies[m[1]] = version
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to read Gemfile")
	}
	return result, nil
}

func parseGemfileLock(f *os.File) (*manifest.Result, error) {
	resolved := make(map[string]string)
	var direct []string
	section := ""

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line != "" && !strings.HasPrefix(line, " "):
			section = strings.TrimSpace(line)
		case section == "GEM":
			if m := lockSpec.FindStringSubmatch(line); m != nil {
				resolved[m[1]] = m[2]
			}
		case section == "DEPENDENCIES":
			if m := lockDirect.FindStringSubmatch(line); m != nil {
				direct = append(direct, strings.TrimSuffix(m[1], "!"))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to read Gemfile.lock")
	}

	result := manifest.NewResult()
	result.Metadata["resolved_packages"] = len(resolved)
	for _, name := range direct {
		if version, ok := resolved[name]; ok {
			result.Dependencies[name] = version
		} else {
			result.Dependencies[name] = "latest"
		}
	}
	return result, nil
}
