// Package javascript provides manifest parsers for the npm and yarn
// ecosystems: package.json, package-lock.json, and yarn.lock.
//
// Lock files never widen the dependency set. They resolve the versions of
// the dependencies declared in package.json to the exact installed
// versions, so that a later merge of the lock result pins what the
// manifest only constrains. Transitive packages in a lock file are counted
// in metadata but never become dependency entries.
package javascript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/manifest"
)

// packageJSON is the subset of package.json the parser reads.
type packageJSON struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Description      string            `json:"description"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	OptionalDeps     map[string]string `json:"optionalDependencies"`
}

// NPM parses package.json and package-lock.json.
type NPM struct{}

func (NPM) Ecosystem() string { return "npm" }

func (NPM) Supports(filename string) bool {
	return filename == "package.json" || filename == "package-lock.json"
}

func (p NPM) Parse(path string) (*manifest.Result, error) {
	if filepath.Base(path) == "package-lock.json" {
		return parsePackageLock(path)
	}
	return parsePackageJSON(path)
}

func parsePackageJSON(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read package.json")
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to parse package.json")
	}

	result := manifest.NewResult()
	if pkg.Name != "" {
		result.Metadata["name"] = pkg.Name
	}
	if pkg.Version != "" {
		result.Metadata["version"] = pkg.Version
	}
	if pkg.Description != "" {
		result.Metadata["description"] = pkg.Description
	}
	copyDeps(result.Dependencies, pkg.Dependencies)
	copyDeps(result.DevDependencies, pkg.DevDependencies)
	copyDeps(result.PeerDependencies, pkg.PeerDependencies)
	copyDeps(result.OptionalDeps, pkg.OptionalDeps)
	return result, nil
}

// packageLock covers both the nested v1 layout and the flat v2/v3
// "packages" layout.
type packageLock struct {
	LockfileVersion int                        `json:"lockfileVersion"`
	Dependencies    map[string]lockDependency  `json:"dependencies"`
	Packages        map[string]lockPackageInfo `json:"packages"`
}

type lockDependency struct {
	Version string `json:"version"`
	Dev     bool   `json:"dev"`
}

type lockPackageInfo struct {
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageLock(path string) (*manifest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read package-lock.json")
	}
	var lock packageLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifestParse, "failed to parse package-lock.json")
	}

	result := manifest.NewResult()
	result.Metadata["lockfile_version"] = lock.LockfileVersion

	if root, ok := lock.Packages[""]; ok {
		// v2/v3: the root entry declares the direct dependencies and the
		// node_modules entries carry the resolved versions.
		resolve := func(name, declared string) string {
			if entry, ok := lock.Packages["node_modules/"+name]; ok && entry.Version != "" {
				return entry.Version
			}
			return declared
		}
		for name, declared := range root.Dependencies {
			result.Dependencies[name] = resolve(name, declared)
		}
		for name, declared := range root.DevDependencies {
			result.DevDependencies[name] = resolve(name, declared)
		}
		result.Metadata["resolved_packages"] = len(lock.Packages) - 1
		return result, nil
	}

	// v1: only the hoisted tree is available, so the direct set comes from
	// the sibling package.json when present.
	direct, _ := parsePackageJSON(filepath.Join(filepath.Dir(path), "package.json"))
	if direct != nil {
		for name, declared := range direct.Dependencies {
			result.Dependencies[name] = v1Version(lock, name, declared)
		}
		for name, declared := range direct.DevDependencies {
			result.DevDependencies[name] = v1Version(lock, name, declared)
		}
	}
	result.Metadata["resolved_packages"] = len(lock.Dependencies)
	return result, nil
}

func v1Version(lock packageLock, name, declared string) string {
	if entry, ok := lock.Dependencies[name]; ok && entry.Version != "" {
		return entry.Version
	}
	return declared
}

func copyDeps(dst, src map[string]string) {
	for name, version := range src {
		dst[name] = version
	}
}

// specName extracts the package name from a yarn.lock entry spec such as
// "lodash@^4.17.0" or "@babel/core@7.22.0".
func specName(spec string) string {
	spec = strings.Trim(strings.TrimSpace(spec), `"`)
	if i := strings.LastIndex(spec, "@"); i > 0 {
		return spec[:i]
	}
	return spec
}
