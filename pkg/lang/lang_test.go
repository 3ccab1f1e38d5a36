package lang

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/repolens/repolens/pkg/walker"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() {}\n")
	write(t, filepath.Join(dir, "app.py"), "import os\n\nprint('hi')\n")
	write(t, filepath.Join(dir, "notes.txt"), "not code\n")

	got, err := Classify(context.Background(), dir, walker.DefaultSkipDirs())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if len(got.Stats) != 2 {
		t.Fatalf("got %d languages, want 2: %v", len(got.Stats), got.Stats)
	}
	if got.Stats["Go"].FileCount != 1 {
		t.Errorf("Go file_count = %d, want 1", got.Stats["Go"].FileCount)
	}
	if got.Stats["Go"].LineCount != 2 {
		t.Errorf("Go line_count = %d, want 2 (blank line excluded)", got.Stats["Go"].LineCount)
	}
	if got.Stats["Python"].LineCount != 2 {
		t.Errorf("Python line_count = %d, want 2", got.Stats["Python"].LineCount)
	}
	if got.TotalLines != 4 {
		t.Errorf("TotalLines = %d, want 4", got.TotalLines)
	}

	sum := 0.0
	for _, s := range got.Stats {
		sum += s.Percentage
	}
	if math.Abs(sum-100) > 0.1 {
		t.Errorf("percentages sum to %f, want 100", sum)
	}
}

func TestClassify_Empty(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "README.md"), "docs only\n")

	got, err := Classify(context.Background(), dir, walker.DefaultSkipDirs())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(got.Stats) != 0 {
		t.Errorf("expected empty stats, got %v", got.Stats)
	}
	if got.Primary != "" {
		t.Errorf("Primary = %q, want empty", got.Primary)
	}
	if got.TotalBytes != 0 {
		t.Errorf("TotalBytes = %d, want 0", got.TotalBytes)
	}
}

func TestClassify_SkipsCacheDirs(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "app.js"), "console.log(1)\n")
	write(t, filepath.Join(dir, "node_modules", "dep", "index.js"), strings.Repeat("x\n", 100))
	write(t, filepath.Join(dir, ".hidden", "sneaky.js"), "console.log(2)\n")

	got, err := Classify(context.Background(), dir, walker.DefaultSkipDirs())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.Stats["JavaScript"].FileCount != 1 {
		t.Errorf("JavaScript file_count = %d, want 1", got.Stats["JavaScript"].FileCount)
	}
}

func TestClassify_LongLinesExcluded(t *testing.T) {
	dir := t.TempDir()
	content := "short line\n" + strings.Repeat("x", 20000) + "\nanother\n"
	write(t, filepath.Join(dir, "bundle.js"), content)

	got, err := Classify(context.Background(), dir, walker.DefaultSkipDirs())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.Stats["JavaScript"].LineCount != 2 {
		t.Errorf("line_count = %d, want 2 (long line excluded)", got.Stats["JavaScript"].LineCount)
	}
}

func TestPrimary_StableTieBreak(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.go"), "package a\n")
	write(t, filepath.Join(dir, "b.py"), "import ab\n")

	// Equal byte counts: the alphabetically first language wins on every run.
	for i := 0; i < 3; i++ {
		got, err := Classify(context.Background(), dir, walker.DefaultSkipDirs())
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if got.Primary != "Go" {
			t.Fatalf("Primary = %q, want %q", got.Primary, "Go")
		}
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		ext  string
		want string
		ok   bool
	}{
		{".go", "Go", true},
		{".PY", "Python", true},
		{".rs", "Rust", true},
		{".txt", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Language(tt.ext)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Language(%q) = %q, %v; want %q, %v", tt.ext, got, ok, tt.want, tt.ok)
		}
	}
}
