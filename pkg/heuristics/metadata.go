package heuristics

import (
	"os"
	"path/filepath"

	"github.com/repolens/repolens/pkg/profile"
)

var (
	readmeNames  = []string{"README.md", "README.rst", "README.txt", "readme.md"}
	licenseNames = []string{"LICENSE", "LICENSE.txt", "LICENSE.md", "COPYING"}
	configNames  = []string{".gitignore", ".env.example", "config.json", "settings.json"}
	cicdNames    = []string{".github", ".gitlab-ci.yml", "Jenkinsfile", ".travis.yml", "azure-pipelines.yml"}
	docDirNames  = []string{"docs", "documentation", "doc", "wiki"}
)

// Metadata collects the well-known documentation, license, config, and
// CI files present at the repository root.
func Metadata(root string) profile.Metadata {
	md := profile.Metadata{
		ReadmeFiles:       present(root, readmeNames, anyEntry),
		LicenseFiles:      present(root, licenseNames, anyEntry),
		ConfigFiles:       present(root, configNames, anyEntry),
		CICDFiles:         present(root, cicdNames, anyEntry),
		DocumentationDirs: present(root, docDirNames, dirOnly),
	}
	return md
}

type entryFilter func(info os.FileInfo) bool

func anyEntry(os.FileInfo) bool     { return true }
func dirOnly(info os.FileInfo) bool { return info.IsDir() }

func present(root string, names []string, keep entryFilter) []string {
	out := []string{}
	for _, name := range names {
		if info, err := os.Stat(filepath.Join(root, name)); err == nil && keep(info) {
			out = append(out, name)
		}
	}
	return out
}
