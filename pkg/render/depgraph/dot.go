// Package depgraph renders the direct dependencies of a scanned
// repository as a graph: the repository in the center, one cluster per
// dependency bucket, one node per package.
package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/repolens/repolens/pkg/profile"
)

// Options configures dependency graph rendering.
type Options struct {
	// Detailed includes version specs in node labels.
	// When false, only the package name is shown.
	Detailed bool

	// IncludeDev adds the dev-dependency cluster.
	IncludeDev bool
}

// bucket pairs a cluster label with one dependency map.
type bucket struct {
	label string
	fill  string
	deps  map[string]string
}

// ToDOT converts a profile's dependencies to Graphviz DOT format. The
// resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
// Output is deterministic: buckets and packages appear in sorted order.
func ToDOT(p *profile.RepositoryProfile, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.7;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	root := rootLabel(p)
	fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,bold\", fillcolor=lightblue];\n", root)

	buckets := []bucket{
		{label: "runtime", fill: "white", deps: p.Dependencies.Runtime},
	}
	if opts.IncludeDev {
		buckets = append(buckets, bucket{label: "dev", fill: "lightgrey", deps: p.Dependencies.Dev})
	}

	vulnerable := make(map[string]bool, len(p.Dependencies.Issues))
	for _, issue := range p.Dependencies.Issues {
		vulnerable[issue.Package] = true
	}

	for i, b := range buckets {
		if len(b.deps) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", b.label)
		buf.WriteString("    style=dashed;\n")
		for _, name := range sortedKeys(b.deps) {
			attrs := []string{fmt.Sprintf("label=%q", nodeLabel(name, b.deps[name], opts.Detailed))}
			fill := b.fill
			if vulnerable[name] {
				fill = "lightcoral"
			}
			attrs = append(attrs, fmt.Sprintf("fillcolor=%s", fill))
			fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(b.label, name), strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
		for _, name := range sortedKeys(b.deps) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", root, nodeID(b.label, name))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rootLabel(p *profile.RepositoryProfile) string {
	if p.ProjectType != "" && p.ProjectType != "Unknown" {
		return p.Root + "\n(" + p.ProjectType + ")"
	}
	return p.Root
}

func nodeID(bucket, name string) string {
	return bucket + ":" + name
}

func nodeLabel(name, version string, detailed bool) string {
	if !detailed {
		return name
	}
	return name + "\n" + version
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
