// Package golang provides the go.mod manifest parser.
package golang

import (
	"bufio"
	"os"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

// GoMod parses go.mod files. Both block and single-line require
// directives are supported; indirect requirements are kept as
// dependencies but tallied separately in metadata.
type GoMod struct{}

func (GoMod) Ecosystem() string { return "gomod" }

func (GoMod) Supports(filename string) bool { return filename == "go.mod" }

func (p GoMod) Parse(path string) (*manifest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to open go.mod")
	}
	defer f.Close()

	result := manifest.NewResult()
	indirect := 0
	replaces := 0
	inRequire := false
	inReplace := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			continue
		case strings.HasPrefix(line, "module "):
			result.Metadata["module"] = strings.TrimSpace(strings.TrimPrefix(line, "module "))
		case strings.HasPrefix(line, "go "):
			result.Metadata["go_version"] = strings.TrimSpace(strings.TrimPrefix(line, "go "))
		case line == "require (":
			inRequire = true
		case line == "replace (":
			inReplace = true
		case line == ")":
			inRequire = false
			inReplace = false
		case strings.HasPrefix(line, "require "):
			if n := addRequire(result, strings.TrimPrefix(line, "require ")); n {
				indirect++
			}
		case strings.HasPrefix(line, "replace "):
			replaces++
		case inRequire:
			if n := addRequire(result, line); n {
				indirect++
			}
		case inReplace:
			replaces++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to read go.mod")
	}

	if indirect > 0 {
		result.Metadata["indirect_requirements"] = indirect
	}
	if replaces > 0 {
		result.Metadata["replace_directives"] = replaces
	}
	return result, nil
}

// addRequire parses one "path version [// indirect]" requirement line and
// reports whether it was marked indirect.
func addRequire(result *manifest.Result, line string) bool {
	indirect := false
	if entry, comment, ok := strings.Cut(line, "//"); ok {
		indirect = strings.Contains(comment, "indirect")
		line = entry
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return false
	}
	result.Dependencies[fields[0]] = fields[1]
	return indirect
}
