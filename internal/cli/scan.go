package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/repolens/repolens/pkg/advisory"
	"github.com/repolens/repolens/pkg/cache"
	"github.com/repolens/repolens/pkg/engine"
	"github.com/repolens/repolens/pkg/profile"
	"github.com/repolens/repolens/pkg/walker"
)

const (
	formatJSON    = "json"
	formatSummary = "summary"

	// defaultScanTTL is how long cached scan results stay valid.
	defaultScanTTL = 24 * time.Hour
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	output     string // output file path (stdout if empty)
	format     string // "summary" or "json"
	maxDepth   int    // directory tree depth ceiling
	noCache    bool   // disable the result cache entirely
	refresh    bool   // recompute even when a cached result exists
	advisories string // path to a custom advisory database
}

// scanCommand creates the scan command for analyzing a repository.
func (c *CLI) scanCommand() *cobra.Command {
	opts := scanOpts{format: formatSummary, maxDepth: walker.DefaultMaxDepth}

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze a repository and produce its profile",
		Long: `Scan walks the repository tree, classifies languages, parses every
recognized dependency manifest at the root, and checks direct dependencies
against the built-in advisory database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if opts.format != formatSummary && opts.format != formatJSON {
				return fmt.Errorf("unknown format %q (expected summary or json)", opts.format)
			}
			return c.runScan(cmd.Context(), root, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the profile as JSON to this file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "stdout format: summary (default), json")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum directory depth to walk")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the scan result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the profile even if cached")
	cmd.Flags().StringVar(&opts.advisories, "advisories", "", "path to a custom advisory database (YAML)")

	return cmd
}

// runScan analyzes root and writes the profile per opts.
func (c *CLI) runScan(ctx context.Context, root string, opts *scanOpts) error {
	p, cached, err := c.analyze(ctx, root, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return fmt.Errorf("write profile: %w", err)
		}
		printSuccess("Scanned %s", p.Root)
		printFile(opts.output)
		return nil
	}

	if opts.format == formatJSON {
		fmt.Println(string(data))
		return nil
	}

	printSummary(p, cached)
	return nil
}

// analyze resolves root, consults the cache, and runs the engine on a miss.
// The returned bool reports whether the profile came from the cache.
func (c *CLI) analyze(ctx context.Context, root string, opts *scanOpts) (*profile.RepositoryProfile, bool, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, false, fmt.Errorf("resolve path: %w", err)
	}

	db, err := loadAdvisories(opts.advisories)
	if err != nil {
		return nil, false, err
	}

	resultCache, err := newCache(opts.noCache)
	if err != nil {
		return nil, false, err
	}
	defer resultCache.Close()

	keyer := cache.NewDefaultKeyer()
	key := keyer.ProfileKey(abs, cache.ProfileKeyOpts{
		MaxDepth:        opts.maxDepth,
		AdvisoryVersion: db.Version,
	})

	if !opts.refresh {
		if data, hit, err := resultCache.Get(ctx, key); err == nil && hit {
			var p profile.RepositoryProfile
			if err := json.Unmarshal(data, &p); err == nil {
				c.Logger.Debug("using cached profile", "key", key)
				return &p, true, nil
			}
		}
	}

	eng := engine.New(
		engine.WithAdvisories(db),
		engine.WithWalkerOptions(walker.Options{MaxDepth: opts.maxDepth}),
		engine.WithLogger(c.Logger),
	)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", abs))
	spinner.Start()
	prog := newProgress(c.Logger)

	p, err := eng.Analyze(ctx, abs)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Scan failed: %v", err))
		return nil, false, err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Scanned %d files", p.Structure.Summary.TotalFiles))

	if data, err := json.Marshal(p); err == nil {
		if err := resultCache.Set(ctx, key, data, defaultScanTTL); err != nil {
			c.Logger.Debug("cache write failed", "error", err)
		}
	}

	return p, false, nil
}

// loadAdvisories returns the advisory database to scan with. An empty path
// selects the embedded database.
func loadAdvisories(path string) (*advisory.Database, error) {
	if path == "" {
		return advisory.Default(), nil
	}
	return advisory.LoadFile(path)
}

// printSummary renders the human-readable scan summary.
func printSummary(p *profile.RepositoryProfile, cached bool) {
	printKeyValue("Repository", p.Root)
	printKeyValue("Type", p.ProjectType)
	if p.Languages.Primary != "" {
		printKeyValue("Language", p.Languages.Primary)
	}
	if len(p.ArchitecturePatterns) > 0 {
		printKeyValue("Architecture", strings.Join(p.ArchitecturePatterns, ", "))
	}
	printKeyValue("Files", fmt.Sprintf("%d", p.Structure.Summary.TotalFiles))

	if len(p.Dependencies.Ecosystems) > 0 {
		printInfo("Dependencies (%s)", strings.Join(p.Dependencies.Ecosystems, ", "))
		printDepStats(p.Dependencies.Stats, cached)
	} else {
		printDetail("No dependency manifests found")
	}

	for _, issue := range p.Dependencies.Issues {
		label := severityStyle(issue.Severity).Render(string(issue.Severity))
		printWarning("%s: %s %s (%s, fixed in %s)", label, issue.Package, issue.Version, issue.AdvisoryID, issue.FixedIn)
	}
	for _, pkg := range p.Dependencies.Outdated {
		printDetail("outdated: %s %s → %s (%s)", pkg.Package, pkg.CurrentVersion, pkg.LatestVersion, pkg.UpdateUrgency)
	}
}
