package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repolens/repolens/pkg/cache"
	"github.com/repolens/repolens/pkg/profile"
	"github.com/repolens/repolens/pkg/render/depgraph"
	"github.com/repolens/repolens/pkg/walker"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output     string // output file path (stdout for DOT if empty)
	format     string // "dot", "svg", or "png"
	detailed   bool   // include version specs in node labels
	includeDev bool   // include the dev-dependency cluster
	scan       scanOpts
}

// graphCommand creates the graph command for rendering dependency graphs.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{scan: scanOpts{maxDepth: walker.DefaultMaxDepth}}

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Render a repository's direct dependencies as a graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if opts.format == "" {
				opts.format = formatFromOutput(opts.output)
			}
			if err := validateGraphFormat(opts.format); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), root, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout for DOT if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot (default), svg, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show version specs in node labels")
	cmd.Flags().BoolVar(&opts.includeDev, "dev", false, "include dev dependencies")
	cmd.Flags().IntVar(&opts.scan.maxDepth, "max-depth", opts.scan.maxDepth, "maximum directory depth to walk")
	cmd.Flags().BoolVar(&opts.scan.noCache, "no-cache", false, "disable the scan result cache")
	cmd.Flags().BoolVar(&opts.scan.refresh, "refresh", false, "recompute the profile even if cached")

	return cmd
}

// runGraph scans root and renders its dependency graph per opts.
func (c *CLI) runGraph(ctx context.Context, root string, opts *graphOpts) error {
	p, _, err := c.analyze(ctx, root, &opts.scan)
	if err != nil {
		return err
	}

	dot := depgraph.ToDOT(p, depgraph.Options{
		Detailed:   opts.detailed,
		IncludeDev: opts.includeDev,
	})

	if opts.format == formatDOT {
		return writeGraph(opts.output, []byte(dot))
	}

	data, err := c.renderGraph(ctx, p, dot, opts)
	if err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = "deps." + opts.format
	}
	return writeGraph(opts.output, data)
}

// renderGraph rasterizes dot via Graphviz, consulting the render cache.
func (c *CLI) renderGraph(ctx context.Context, p *profile.RepositoryProfile, dot string, opts *graphOpts) ([]byte, error) {
	renderCache, err := newCache(opts.scan.noCache)
	if err != nil {
		return nil, err
	}
	defer renderCache.Close()

	profileJSON, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	keyer := cache.NewDefaultKeyer()
	key := keyer.RenderKey(cache.Hash(profileJSON), opts.format)

	if !opts.scan.refresh {
		if data, hit, err := renderCache.Get(ctx, key); err == nil && hit {
			c.Logger.Debug("using cached render", "key", key)
			return data, nil
		}
	}

	var data []byte
	switch opts.format {
	case formatSVG:
		data, err = depgraph.RenderSVG(ctx, dot)
	case formatPNG:
		data, err = depgraph.RenderPNG(ctx, dot)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.format, err)
	}

	if err := renderCache.Set(ctx, key, data, defaultScanTTL); err != nil {
		c.Logger.Debug("cache write failed", "error", err)
	}
	return data, nil
}

// formatFromOutput infers the render format from the output file extension.
func formatFromOutput(output string) string {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".svg":
		return formatSVG
	case ".png":
		return formatPNG
	default:
		return formatDOT
	}
}

func validateGraphFormat(format string) error {
	switch format {
	case formatDOT, formatSVG, formatPNG:
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected dot, svg, or png)", format)
	}
}

// writeGraph writes data to path, or stdout when path is empty.
func writeGraph(path string, data []byte) error {
	if path == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	printSuccess("Rendered dependency graph")
	printFile(path)
	return nil
}
