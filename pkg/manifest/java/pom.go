// Package java provides manifest parsers for the JVM ecosystems: Maven
// (pom.xml) and Gradle (build.gradle, build.gradle.kts).
package java

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

type pomProject struct {
	GroupID    string          `xml:"groupId"`
	ArtifactID string          `xml:"artifactId"`
	Version    string          `xml:"version"`
	Packaging  string          `xml:"packaging"`
	Parent     pomCoordinates  `xml:"parent"`
	Properties pomProperties   `xml:"properties"`
	Deps       []pomDependency `xml:"dependencies>dependency"`
	Managed    []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
}

type pomCoordinates struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// pomProperties keeps <properties> as a flat name → value map.
type pomProperties struct {
	entries map[string]string
}

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.entries = make(map[string]string)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			p.entries[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// Pom parses Maven pom.xml files. Dependencies are keyed
// "groupId:artifactId"; test and provided scopes go to the dev bucket.
type Pom struct{}

func (Pom) Ecosystem() string { return "maven" }

func (Pom) Supports(filename string) bool { return filename == "pom.xml" }

func (p Pom) Parse(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read pom.xml")
	}
	var project pomProject
	if err := xml.Unmarshal(data, &project); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to parse pom.xml")
	}

	result := manifest.NewResult()
	if project.ArtifactID != "" {
		result.Metadata["name"] = coordinate(orDefault(project.GroupID, project.Parent.GroupID), project.ArtifactID)
	}
	if v := orDefault(project.Version, project.Parent.Version); v != "" {
		result.Metadata["version"] = v
	}
	if project.Packaging != "" {
		result.Metadata["packaging"] = project.Packaging
	}
	if project.Parent.ArtifactID != "" {
		result.Metadata["parent"] = coordinate(project.Parent.GroupID, project.Parent.ArtifactID)
	}
	if len(project.Managed) > 0 {
		result.Metadata["managed_dependencies"] = len(project.Managed)
	}

	props := project.Properties.entries
	for _, dep := range project.Deps {
		name := coordinate(dep.GroupID, dep.ArtifactID)
		version := resolveProperty(dep.Version, props, project)
		if version == "" {
			version = "latest"
		}
		if isDevScope(dep.Scope) {
			result.DevDependencies[name] = version
		} else {
			result.Dependencies[name] = version
		}
	}
	return result, nil
}

func isDevScope(scope string) bool {
	scope = strings.ToLower(scope)
	return strings.HasPrefix(scope, "test") || scope == "provided"
}

func coordinate(group, artifact string) string {
	if group == "" {
		return artifact
	}
	return group + ":" + artifact
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// resolveProperty substitutes a ${...} version reference from the
// project's properties. Unknown references stay verbatim.
func resolveProperty(version string, props map[string]string, project pomProject) string {
	if !strings.HasPrefix(version, "${") || !strings.HasSuffix(version, "}") {
		return version
	}
	key := version[2 : len(version)-1]
	switch key {
	case "project.version":
		return orDefault(project.Version, project.Parent.Version)
	}
	if v, ok := props[key]; ok {
		return v
	}
	return version
}
