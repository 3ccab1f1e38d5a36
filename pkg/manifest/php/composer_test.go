package php

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComposer_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composer.json")
	content := `{
  "name": "acme/webapp",
  "description": "demo app",
  "license": "MIT",
  "require": {
    "php": ">=8.1",
    "ext-json": "*",
    "symfony/symfony": "6.2.0",
    "guzzlehttp/guzzle": "^7.5"
  },
  "require-dev": {
    "phpunit/phpunit": "^10.0"
  }
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := (Composer{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Metadata["name"] != "acme/webapp" {
		t.Errorf("metadata[name] = %v", result.Metadata["name"])
	}
	if result.Metadata["php_version"] != ">=8.1" {
		t.Errorf("metadata[php_version] = %v", result.Metadata["php_version"])
	}
	if _, ok := result.Dependencies["php"]; ok {
		t.Error("php platform requirement must not be a dependency")
	}
	if _, ok := result.Dependencies["ext-json"]; ok {
		t.Error("ext-* platform requirement must not be a dependency")
	}
	if result.Dependencies["symfony/symfony"] != "6.2.0" {
		t.Errorf("deps[symfony/symfony] = %q", result.Dependencies["symfony/symfony"])
	}
	if result.DevDependencies["phpunit/phpunit"] != "^10.0" {
		t.Errorf("dev[phpunit/phpunit] = %q", result.DevDependencies["phpunit/phpunit"])
	}
}

func TestComposer_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composer.json")
	if err := os.WriteFile(path, []byte(`{"require": [`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := (Composer{}).Parse(path); err == nil {
		t.Fatal("expected parse error for malformed JSON")
	}
}
