package ruby

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGemfile_Parse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Gemfile", `
source 'https://rubygems.org'
ruby '3.2.0'

gem 'rails', '~> 7.0.4'
gem 'pg'
gem 'puma', '~> 5.0'

group :development, :test do
  gem 'rspec-rails'
  gem 'debug', '>= 1.0.0'
end

group :production do
  gem 'rack-timeout'
end
`)

	result, err := (Gemfile{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Metadata["source"] != "https://rubygems.org" {
		t.Errorf("metadata[source] = %v", result.Metadata["source"])
	}
	if result.Metadata["ruby_version"] != "3.2.0" {
		t.Errorf("metadata[ruby_version] = %v", result.Metadata["ruby_version"])
	}
	if result.Dependencies["rails"] != "~> 7.0.4" {
		t.Errorf("deps[rails] = %q", result.Dependencies["rails"])
	}
	if result.Dependencies["pg"] != "latest" {
		t.Errorf("deps[pg] = %q, want latest", result.Dependencies["pg"])
	}
	if result.DevDependencies["rspec-rails"] != "latest" {
		t.Errorf("dev[rspec-rails] = %q", result.DevDependencies["rspec-rails"])
	}
	if result.DevDependencies["debug"] != ">= 1.0.0" {
		t.Errorf("dev[debug] = %q", result.DevDependencies["debug"])
	}
	if result.Dependencies["rack-timeout"] != "latest" {
		t.Errorf("production group should stay runtime: %v", result.Dependencies)
	}
	if _, ok := result.DevDependencies["rack-timeout"]; ok {
		t.Error("production group gem must not land in dev")
	}
}

func TestGemfile_Lock(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Gemfile.lock", `GEM
  remote: https://rubygems.org/
  specs:
    rails (7.0.4)
      actionpack (= 7.0.4)
    actionpack (7.0.4)
    rake (13.0.6)

PLATFORMS
  ruby

DEPENDENCIES
  rails (~> 7.0)
  rake
  local-gem!

BUNDLED WITH
   2.4.10
`)

	result, err := (Gemfile{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Dependencies["rails"] != "7.0.4" {
		t.Errorf("deps[rails] = %q, want resolved 7.0.4", result.Dependencies["rails"])
	}
	if result.Dependencies["rake"] != "13.0.6" {
		t.Errorf("deps[rake] = %q, want resolved 13.0.6", result.Dependencies["rake"])
	}
	if result.Dependencies["local-gem"] != "latest" {
		t.Errorf("deps[local-gem] = %q, want latest for unresolved path gem", result.Dependencies["local-gem"])
	}
	if _, ok := result.Dependencies["actionpack"]; ok {
		t.Error("transitive spec must not become a dependency entry")
	}
	if result.Metadata["resolved_packages"] != 3 {
		t.Errorf("resolved_packages = %v, want 3", result.Metadata["resolved_packages"])
	}
}
