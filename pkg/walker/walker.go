// Package walker builds a depth-bounded directory tree with aggregate
// counters for a repository scan.
//
// The walk is sequential and deterministic: entries are visited in sorted
// order, hidden entries are skipped unless allowlisted, and subtrees below
// the depth ceiling are replaced by a truncation marker instead of being
// expanded. A directory that cannot be listed yields an access-denied
// placeholder and the walk continues. Cancellation is checked between
// directories so a scan of a pathologically large tree can be aborted.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/profile"
)

// DefaultMaxDepth is the directory depth at which subtrees are truncated.
const DefaultMaxDepth = 3

// truncatedKey and deniedKey are the placeholder child names used for
// depth-truncated subtrees and unreadable directories.
const (
	truncatedKey = "..."
	deniedKey    = "<access_denied>"
)

// DefaultSkipDirs returns the directory names that are never descended
// into: version-control metadata, dependency caches, and build output.
// The language classifier reuses the same set so cache directories are
// never counted as code.
func DefaultSkipDirs() map[string]bool {
	return map[string]bool{
		".git":         true,
		"node_modules": true,
		"__pycache__":  true,
		"venv":         true,
		".venv":        true,
		"vendor":       true,
		"target":       true,
		"dist":         true,
	}
}

// DefaultAllowHidden returns the dot-prefixed filenames that are kept
// despite the hidden-entry rule.
func DefaultAllowHidden() map[string]bool {
	return map[string]bool{
		".gitignore":   true,
		".env.example": true,
	}
}

// Options configures a walk.
type Options struct {
	MaxDepth    int             // depth ceiling (default: 3)
	SkipDirs    map[string]bool // directory names never descended into
	AllowHidden map[string]bool // dot-prefixed names kept anyway
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.SkipDirs == nil {
		opts.SkipDirs = DefaultSkipDirs()
	}
	if opts.AllowHidden == nil {
		opts.AllowHidden = DefaultAllowHidden()
	}
	return opts
}

// ValidateRoot checks that path exists and names a directory.
func ValidateRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}

// Result holds the directory tree and the aggregate counters of one walk.
type Result struct {
	Tree    *profile.DirectoryNode
	Summary profile.TreeSummary
}

type walk struct {
	root string
	opts Options
	res  *Result
	all  []profile.FileEntry // every file seen, for the top-10 selection
}

// Walk traverses root up to the configured depth and returns the tree and
// counters. The only errors returned are a cancelled context and an
// unreadable root; permission failures below the root become placeholder
// nodes instead.
func Walk(ctx context.Context, root string, opts Options) (*Result, error) {
	opts = opts.WithDefaults()

	w := &walk{
		root: root,
		opts: opts,
		res: &Result{
			Summary: profile.TreeSummary{
				FileTypes:    make(map[string]int),
				LargestFiles: []profile.FileEntry{},
			},
		},
	}

	tree, err := w.dir(ctx, root, 0)
	if err != nil {
		return nil, err
	}
	w.res.Tree = tree

	// Size-descending, ties broken by first-seen order.
	sort.SliceStable(w.all, func(i, j int) bool {
		return w.all[i].Size > w.all[j].Size
	})
	if len(w.all) > 10 {
		w.all = w.all[:10]
	}
	w.res.Summary.LargestFiles = w.all

	return w.res, nil
}

func (w *walk) dir(ctx context.Context, path string, depth int) (*profile.DirectoryNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth >= w.opts.MaxDepth {
		return &profile.DirectoryNode{
			Children: map[string]*profile.DirectoryNode{
				truncatedKey: {Marker: "truncated"},
			},
		}, nil
	}

	node := &profile.DirectoryNode{Children: make(map[string]*profile.DirectoryNode)}

	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsPermission(err) {
			if depth > 0 {
				node.Children[deniedKey] = &profile.DirectoryNode{Marker: "Permission denied"}
				return node, nil
			}
			return nil, errors.Wrap(err, errors.ErrCodePermissionDenied, "cannot list repository root")
		}
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") && !w.opts.AllowHidden[name] {
			continue
		}

		childPath := filepath.Join(path, name)
		if entry.IsDir() {
			if w.opts.SkipDirs[name] {
				continue
			}
			w.res.Summary.TotalDirectories++
			child, err := w.dir(ctx, childPath, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children[name+"/"] = child
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// File disappeared mid-walk; skip it.
			continue
		}
		size := info.Size()
		node.Children[name] = &profile.DirectoryNode{Type: "file", Size: size}
		w.res.Summary.TotalFiles++
		w.res.Summary.FileTypes[strings.ToLower(filepath.Ext(name))]++

		rel, err := filepath.Rel(w.root, childPath)
		if err != nil {
			rel = childPath
		}
		w.all = append(w.all, profile.FileEntry{Name: name, Path: rel, Size: size})
	}

	return node, nil
}
