package engine

import (
	"github.com/repolens/repolens/pkg/manifest"
	"github.com/repolens/repolens/pkg/manifest/golang"
	"github.com/repolens/repolens/pkg/manifest/java"
	"github.com/repolens/repolens/pkg/manifest/javascript"
	"github.com/repolens/repolens/pkg/manifest/php"
	"github.com/repolens/repolens/pkg/manifest/python"
	"github.com/repolens/repolens/pkg/manifest/ruby"
	"github.com/repolens/repolens/pkg/manifest/rust"
)

// DefaultRegistry returns the registry of all supported ecosystems. The
// order is fixed because detection output and aggregation merges follow
// it; lock files come after their manifests so resolved versions win.
func DefaultRegistry() *manifest.Registry {
	return manifest.NewRegistry(
		manifest.Profile{
			Ecosystem: "pip",
			Filenames: []string{"requirements.txt", "requirements-dev.txt", "dev-requirements.txt"},
			Parser:    python.Requirements{},
		},
		manifest.Profile{
			Ecosystem: "pipenv",
			Filenames: []string{"Pipfile", "Pipfile.lock"},
			Parser:    python.Pipfile{},
		},
		manifest.Profile{
			Ecosystem: "poetry",
			Filenames: []string{"pyproject.toml"},
			Parser:    python.Pyproject{},
		},
		manifest.Profile{
			Ecosystem: "setuppy",
			Filenames: []string{"setup.py"},
			Parser:    python.SetupPy{},
		},
		manifest.Profile{
			Ecosystem: "npm",
			Filenames: []string{"package.json", "package-lock.json"},
			Parser:    javascript.NPM{},
		},
		manifest.Profile{
			Ecosystem: "yarn",
			Filenames: []string{"yarn.lock"},
			Parser:    javascript.Yarn{},
		},
		manifest.Profile{
			Ecosystem: "maven",
			Filenames: []string{"pom.xml"},
			Parser:    java.Pom{},
		},
		manifest.Profile{
			Ecosystem: "gradle",
			Filenames: []string{"build.gradle", "build.gradle.kts"},
			Parser:    java.Gradle{},
		},
		manifest.Profile{
			Ecosystem: "cargo",
			Filenames: []string{"Cargo.toml"},
			Parser:    rust.Cargo{},
		},
		manifest.Profile{
			Ecosystem: "gomod",
			Filenames: []string{"go.mod"},
			Parser:    golang.GoMod{},
		},
		manifest.Profile{
			Ecosystem: "composer",
			Filenames: []string{"composer.json"},
			Parser:    php.Composer{},
		},
		manifest.Profile{
			Ecosystem: "bundler",
			Filenames: []string{"Gemfile", "Gemfile.lock"},
			Parser:    ruby.Gemfile{},
		},
	)
}
