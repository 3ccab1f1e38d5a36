package java

import (
	"os"
	"regexp"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

var (
	// implementation("group:artifact:version") and the quoted Groovy form.
	gradleDep = regexp.MustCompile(`(?m)^\s*(implementation|api|compile|runtimeOnly|compileOnly|annotationProcessor|testImplementation|testCompile|testRuntimeOnly)\s*\(?\s*['"]([^'"]+)['"]`)
	// implementation group: 'x', name: 'y', version: 'z'
	gradleMapDep = regexp.MustCompile(`(?m)^\s*(implementation|api|compile|testImplementation|testCompile)\s+group:\s*['"]([^'"]+)['"],\s*name:\s*['"]([^'"]+)['"](?:,\s*version:\s*['"]([^'"]+)['"])?`)
	// classpath("group:artifact:version") inside buildscript blocks.
	gradleClasspath = regexp.MustCompile(`classpath\s*\(?\s*['"]([^'"]+)['"]`)
	// id("plugin.id") version "x.y"
	gradlePlugin = regexp.MustCompile(`(?m)^\s*id\s*\(?\s*['"]([^'"]+)['"]\)?(?:\s+version\s+['"]([^'"]+)['"])?`)
)

// Gradle parses build.gradle and build.gradle.kts with pattern matching.
// Scripted version catalogs and variable references come out as whatever
// literal appears at the call site.
type Gradle struct{}

func (Gradle) Ecosystem() string { return "gradle" }

func (Gradle) Supports(filename string) bool {
	return filename == "build.gradle" || filename == "build.gradle.kts"
}

func (p Gradle) Parse(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read gradle build file")
	}
	src := string(data)

	result := manifest.NewResult()

	for _, m := range gradleDep.FindAllStringSubmatch(src, -1) {
		name, version := splitCoordinate(m[2])
		if strings.HasPrefix(m[1], "test") {
			result.DevDependencies[name] = version
		} else {
			result.Dependencies[name] = version
		}
	}
	for _, m := range gradleMapDep.FindAllStringSubmatch(src, -1) {
		name := coordinate(m[2], m[3])
		version := m[4]
		if version == "" {
			version = "latest"
		}
		if strings.HasPrefix(m[1], "test") {
			result.DevDependencies[name] = version
		} else {
			result.Dependencies[name] = version
		}
	}
	for _, m := range gradleClasspath.FindAllStringSubmatch(src, -1) {
		name, version := splitCoordinate(m[1])
		result.BuildDependencies[name] = version
	}

	var plugins []string
	for _, m := range gradlePlugin.FindAllStringSubmatch(src, -1) {
		plugin := m[1]
		if m[2] != "" {
			plugin += ":" + m[2]
		}
		plugins = append(plugins, plugin)
	}
	if len(plugins) > 0 {
		result.Metadata["plugins"] = plugins
	}
	return result, nil
}

// splitCoordinate splits "group:artifact:version" into a
// "group:artifact" key and the version, defaulting to "latest" when the
// version segment is missing.
func splitCoordinate(coord string) (string, string) {
	parts := strings.Split(coord, ":")
	if len(parts) >= 3 {
		return parts[0] + ":" + parts[1], parts[2]
	}
	return coord, "latest"
}
