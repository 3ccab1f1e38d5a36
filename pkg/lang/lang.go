// Package lang classifies the source code of a repository by language.
//
// Classification runs in two passes. The first pass only stats files and
// accumulates byte size and file count per language; the second pass reads
// file contents and counts non-blank lines. The passes are independent so
// that a file that can be statted but not read still contributes to the
// size breakdown. Both passes reuse the walker's exclusion set, keeping
// dependency caches and build output out of the numbers.
package lang

import (
	"bytes"
	"context"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/repolens/repolens/pkg/profile"
)

// maxLineLength is the cutoff above which a line is treated as
// binary-looking and excluded from line counts.
const maxLineLength = 10000

// extensions maps file extensions to language names.
var extensions = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".java":  "Java",
	".cpp":   "C++",
	".c":     "C",
	".cs":    "C#",
	".go":    "Go",
	".rs":    "Rust",
	".php":   "PHP",
	".rb":    "Ruby",
	".kt":    "Kotlin",
	".swift": "Swift",
	".scala": "Scala",
}

// Language returns the language for a file extension, if recognized.
func Language(ext string) (string, bool) {
	name, ok := extensions[strings.ToLower(ext)]
	return name, ok
}

// Classify walks root and returns the per-language breakdown. skipDirs
// holds directory names never descended into (typically the walker's
// exclusion set); hidden directories are always skipped. Unreadable files
// are skipped individually and never abort a pass.
func Classify(ctx context.Context, root string, skipDirs map[string]bool) (*profile.Languages, error) {
	stats := make(map[string]*profile.LanguageStat)

	// Pass 1: sizes and file counts from metadata only.
	err := walkSources(ctx, root, skipDirs, func(path, language string, d fs.DirEntry) {
		info, err := d.Info()
		if err != nil {
			return
		}
		s := stats[language]
		if s == nil {
			s = &profile.LanguageStat{}
			stats[language] = s
		}
		s.Bytes += info.Size()
		s.FileCount++
	})
	if err != nil {
		return nil, err
	}

	var total int64
	for _, s := range stats {
		total += s.Bytes
	}
	for _, s := range stats {
		if total > 0 {
			s.Percentage = math.Round(float64(s.Bytes)/float64(total)*100*100) / 100
		}
	}

	// Pass 2: line counts from file contents.
	totalLines := 0
	err = walkSources(ctx, root, skipDirs, func(path, language string, d fs.DirEntry) {
		n, err := countLines(path)
		if err != nil {
			return
		}
		if s := stats[language]; s != nil {
			s.LineCount += n
		}
		totalLines += n
	})
	if err != nil {
		return nil, err
	}

	out := &profile.Languages{
		Primary:    primary(stats),
		Stats:      make(map[string]profile.LanguageStat, len(stats)),
		TotalBytes: total,
		TotalLines: totalLines,
	}
	for name, s := range stats {
		out.Stats[name] = *s
	}
	return out, nil
}

// walkSources visits every recognized source file below root, calling fn
// with the file's path and language. Cancellation is checked per directory.
func walkSources(ctx context.Context, root string, skipDirs map[string]bool, fn func(path, language string, d fs.DirEntry)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return fs.SkipDir
			}
			return nil
		}
		if language, ok := Language(filepath.Ext(d.Name())); ok {
			fn(path, language, d)
		}
		return nil
	})
}

// countLines counts non-blank lines in the file at path, excluding lines
// at or above maxLineLength characters.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line = data[:i]
			data = data[i+1:]
		} else {
			data = nil
		}
		if len(bytes.TrimSpace(line)) > 0 && len(line) < maxLineLength {
			count++
		}
	}
	return count, nil
}

// primary returns the language with the highest percentage. The scan is
// over sorted names so ties resolve to the same key on every run.
func primary(stats map[string]*profile.LanguageStat) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestPct := -1.0
	for _, name := range names {
		if stats[name].Percentage > bestPct {
			best = name
			bestPct = stats[name].Percentage
		}
	}
	return best
}
