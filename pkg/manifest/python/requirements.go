package python

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

// Requirements parses pip requirements files. Dependencies from the dev
// variants (requirements-dev.txt, dev-requirements.txt) land in the dev
// bucket.
type Requirements struct{}

func (Requirements) Ecosystem() string { return "pip" }

func (Requirements) Supports(filename string) bool {
	switch filename {
	case "requirements.txt", "requirements-dev.txt", "dev-requirements.txt":
		return true
	}
	return false
}

func (p Requirements) Parse(path string) (*manifest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to open requirements file")
	}
	defer f.Close()

	result := manifest.NewResult()
	dst := result.Dependencies
	if name := filepath.Base(path); name == "requirements-dev.txt" || name == "dev-requirements.txt" {
		dst = result.DevDependencies
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		parseRequirement(line, dst)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to read requirements file")
	}
	return result, nil
}
