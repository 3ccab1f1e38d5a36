package manifest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
)

// stubParser returns canned results per filename, or an error for
// filenames listed in fail.
type stubParser struct {
	ecosystem string
	filenames []string
	results   map[string]*Result
	fail      map[string]bool
}

func (s *stubParser) Ecosystem() string { return s.ecosystem }

func (s *stubParser) Supports(filename string) bool {
	for _, f := range s.filenames {
		if f == filename {
			return true
		}
	}
	return false
}

func (s *stubParser) Parse(path string) (*Result, error) {
	name := filepath.Base(path)
	if s.fail[name] {
		return nil, os.ErrInvalid
	}
	if r, ok := s.results[name]; ok {
		return r, nil
	}
	return NewResult(), nil
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRegistry_Detect(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "package.json", "package-lock.json", "requirements.txt")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub"), "Cargo.toml")

	npm := &stubParser{ecosystem: "npm", filenames: []string{"package.json", "package-lock.json"}}
	pip := &stubParser{ecosystem: "pip", filenames: []string{"requirements.txt"}}
	cargo := &stubParser{ecosystem: "cargo", filenames: []string{"Cargo.toml"}}
	reg := NewRegistry(
		Profile{Ecosystem: "pip", Filenames: pip.filenames, Parser: pip},
		Profile{Ecosystem: "npm", Filenames: npm.filenames, Parser: npm},
		Profile{Ecosystem: "cargo", Filenames: cargo.filenames, Parser: cargo},
	)

	got := reg.Detect(dir)
	if len(got) != 2 {
		t.Fatalf("got %d detections, want 2: %+v", len(got), got)
	}
	if got[0].Ecosystem != "pip" || got[1].Ecosystem != "npm" {
		t.Errorf("detection order = %q, %q; want registration order pip, npm", got[0].Ecosystem, got[1].Ecosystem)
	}
	wantPaths := []string{
		filepath.Join(dir, "package.json"),
		filepath.Join(dir, "package-lock.json"),
	}
	if !reflect.DeepEqual(got[1].Paths, wantPaths) {
		t.Errorf("npm paths = %v, want %v", got[1].Paths, wantPaths)
	}
}

func TestRegistry_DetectIgnoresDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Gemfile"), 0755); err != nil {
		t.Fatal(err)
	}
	bundler := &stubParser{ecosystem: "bundler", filenames: []string{"Gemfile"}}
	reg := NewRegistry(Profile{Ecosystem: "bundler", Filenames: bundler.filenames, Parser: bundler})
	if got := reg.Detect(dir); len(got) != 0 {
		t.Errorf("directory named like a manifest must not be detected: %+v", got)
	}
}

func TestAggregate_LockOverridesManifest(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "package.json", "package-lock.json")

	manifestResult := NewResult()
	manifestResult.Dependencies["express"] = "^4.18.0"
	manifestResult.DevDependencies["jest"] = "^29.0.0"
	lockResult := NewResult()
	lockResult.Dependencies["express"] = "4.18.2"

	npm := &stubParser{
		ecosystem: "npm",
		filenames: []string{"package.json", "package-lock.json"},
		results: map[string]*Result{
			"package.json":      manifestResult,
			"package-lock.json": lockResult,
		},
	}
	reg := NewRegistry(Profile{Ecosystem: "npm", Filenames: npm.filenames, Parser: npm})

	deps := Aggregate(context.Background(), dir, reg, quietLogger())
	if deps.Runtime["express"] != "4.18.2" {
		t.Errorf("express = %q, want lock version 4.18.2", deps.Runtime["express"])
	}
	if deps.Dev["jest"] != "^29.0.0" {
		t.Errorf("jest = %q, want ^29.0.0", deps.Dev["jest"])
	}
	if deps.Stats.Direct != 1 || deps.Stats.Dev != 1 || deps.Stats.Total != 2 {
		t.Errorf("stats = %+v", deps.Stats)
	}
	if deps.Stats.Transitive != 0 {
		t.Errorf("transitive = %d, want 0", deps.Stats.Transitive)
	}
	if !reflect.DeepEqual(deps.Ecosystems, []string{"npm"}) {
		t.Errorf("ecosystems = %v", deps.Ecosystems)
	}
}

func TestAggregate_ParseFailureIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "requirements.txt", "package.json")

	pipResult := NewResult()
	pipResult.Dependencies["flask"] = "2.0.1"
	pip := &stubParser{
		ecosystem: "pip",
		filenames: []string{"requirements.txt"},
		results:   map[string]*Result{"requirements.txt": pipResult},
	}
	npm := &stubParser{
		ecosystem: "npm",
		filenames: []string{"package.json"},
		fail:      map[string]bool{"package.json": true},
	}
	reg := NewRegistry(
		Profile{Ecosystem: "pip", Filenames: pip.filenames, Parser: pip},
		Profile{Ecosystem: "npm", Filenames: npm.filenames, Parser: npm},
	)

	deps := Aggregate(context.Background(), dir, reg, quietLogger())
	if deps.Runtime["flask"] != "2.0.1" {
		t.Errorf("flask = %q, want 2.0.1 despite npm failure", deps.Runtime["flask"])
	}
	if !reflect.DeepEqual(deps.Ecosystems, []string{"pip", "npm"}) {
		t.Errorf("ecosystems = %v, want both despite failure", deps.Ecosystems)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.manifest", "b.manifest")

	first := NewResult()
	first.Dependencies["pkg"] = "1.0.0"
	second := NewResult()
	second.Dependencies["pkg"] = "2.0.0"
	p := &stubParser{
		ecosystem: "stub",
		filenames: []string{"a.manifest", "b.manifest"},
		results:   map[string]*Result{"a.manifest": first, "b.manifest": second},
	}
	reg := NewRegistry(Profile{Ecosystem: "stub", Filenames: p.filenames, Parser: p})

	for i := 0; i < 10; i++ {
		deps := Aggregate(context.Background(), dir, reg, quietLogger())
		if deps.Runtime["pkg"] != "2.0.0" {
			t.Fatalf("run %d: pkg = %q, want last-writer 2.0.0", i, deps.Runtime["pkg"])
		}
	}
}

func TestVersionFromValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "^1.2.3", "^1.2.3"},
		{"table with version", map[string]any{"version": "1.0", "features": []any{"x"}}, "1.0"},
		{"table without version", map[string]any{"git": "https://example.com/r.git"}, "complex-dependency"},
		{"other type", 42, "complex-dependency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VersionFromValue(tt.in); got != tt.want {
				t.Errorf("VersionFromValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAggregate_CancelledContextSkipsParsing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "requirements.txt")

	pipResult := NewResult()
	pipResult.Dependencies["flask"] = "2.0.1"
	pip := &stubParser{
		ecosystem: "pip",
		filenames: []string{"requirements.txt"},
		results:   map[string]*Result{"requirements.txt": pipResult},
	}
	reg := NewRegistry(Profile{Ecosystem: "pip", Filenames: pip.filenames, Parser: pip})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deps := Aggregate(ctx, dir, reg, quietLogger())
	if len(deps.Runtime) != 0 {
		t.Errorf("runtime = %v, want no parsing after cancellation", deps.Runtime)
	}
	if deps.Stats.Total != 0 {
		t.Errorf("stats = %+v, want zero totals", deps.Stats)
	}
}
