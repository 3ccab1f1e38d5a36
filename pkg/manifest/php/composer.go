// Package php provides the composer.json manifest parser.
package php

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

// Composer parses composer.json. The "php" runtime constraint and ext-*
// platform requirements are recorded in metadata, not as dependencies.
type Composer struct{}

func (Composer) Ecosystem() string { return "composer" }

func (Composer) Supports(filename string) bool { return filename == "composer.json" }

func (p Composer) Parse(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read composer.json")
	}
	var doc struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		License     string            `json:"license"`
		Require     map[string]string `json:"require"`
		RequireDev  map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to parse composer.json")
	}

	result := manifest.NewResult()
	if doc.Name != "" {
		result.Metadata["name"] = doc.Name
	}
	if doc.Description != "" {
		result.Metadata["description"] = doc.Description
	}
	if doc.License != "" {
		result.Metadata["license"] = doc.License
	}

	for name, version := range doc.Require {
		if isPlatform(name) {
			if name == "php" {
				result.Metadata["php_version"] = version
			}
			continue
		}
		result.Dependencies[name] = version
	}
	for name, version := range doc.RequireDev {
		if isPlatform(name) {
			continue
		}
		result.DevDependencies[name] = version
	}
	return result, nil
}

func isPlatform(name string) bool {
	return name == "php" || strings.HasPrefix(name, "ext-")
}
