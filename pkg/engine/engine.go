// Package engine orchestrates a repository scan: directory structure,
// language classification, dependency aggregation, and the heuristic
// passes, assembled into a single profile.
//
// The engine is stateless between scans. The only fatal error is an
// unusable root path (or a cancelled context); everything else degrades
// to partial results so one unreadable manifest never sinks a scan.
package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/repolens/repolens/pkg/advisory"
	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/heuristics"
	"github.com/repolens/repolens/pkg/lang"
	"github.com/repolens/repolens/pkg/manifest"
	"github.com/repolens/repolens/pkg/observability"
	"github.com/repolens/repolens/pkg/profile"
	"github.com/repolens/repolens/pkg/walker"
)

// Engine runs repository scans.
type Engine struct {
	registry   *manifest.Registry
	advisories advisory.Source
	walkOpts   walker.Options
	logger     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default ecosystem registry.
func WithRegistry(reg *manifest.Registry) Option {
	return func(e *Engine) { e.registry = reg }
}

// WithAdvisories replaces the embedded advisory database.
func WithAdvisories(src advisory.Source) Option {
	return func(e *Engine) { e.advisories = src }
}

// WithWalkerOptions replaces the default walk options.
func WithWalkerOptions(opts walker.Options) Option {
	return func(e *Engine) { e.walkOpts = opts }
}

// WithLogger replaces the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine with the default registry, embedded advisories,
// and default walk options.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:   DefaultRegistry(),
		advisories: advisory.Default(),
		walkOpts:   walker.Options{}.WithDefaults(),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithOptions returns a copy of the engine with opts applied on top of
// its current configuration. The receiver is not modified; scans on it
// and on the copy can run concurrently.
func (e *Engine) WithOptions(opts ...Option) *Engine {
	clone := *e
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

// Analyze scans the repository at root and assembles its profile.
func (e *Engine) Analyze(ctx context.Context, root string) (*profile.RepositoryProfile, error) {
	started := time.Now()
	observability.Engine().OnScanStart(ctx, root)

	p, err := e.analyze(ctx, root)
	observability.Engine().OnScanComplete(ctx, root, time.Since(started), err)
	return p, err
}

func (e *Engine) analyze(ctx context.Context, root string) (*profile.RepositoryProfile, error) {
	if err := ValidateRoot(root); err != nil {
		return nil, err
	}
	p := &profile.RepositoryProfile{Root: root}

	err := e.stage(ctx, "structure", func() error {
		result, err := walker.Walk(ctx, root, e.walkOpts)
		if err != nil {
			return err
		}
		p.Structure = profile.Structure{Tree: result.Tree, Summary: result.Summary}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, "languages", func() error {
		languages, err := lang.Classify(ctx, root, e.walkOpts.SkipDirs)
		if err != nil {
			return err
		}
		p.Languages = *languages
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, "dependencies", func() error {
		deps := manifest.Aggregate(ctx, root, e.registry, e.logger)

		// Advisory and staleness checks cover direct runtime
		// dependencies only; dev dependencies are reported but not
		// checked.
		deps.Issues = heuristics.SecurityIssues(e.advisories, deps.Runtime)
		deps.Outdated = heuristics.Outdated(e.advisories, deps.Runtime)
		heuristics.TallySeverities(deps.Issues, &deps.Stats)

		p.Dependencies = deps
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, "heuristics", func() error {
		p.ArchitecturePatterns = heuristics.ArchitecturePatterns(root)
		p.ProjectType = heuristics.ProjectType(root)
		p.Metadata = heuristics.Metadata(root)
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// stage runs one scan stage with logging and hook emission. Stage
// failures are fatal only because the stages themselves already absorb
// their non-fatal errors; what escapes is path or context trouble.
func (e *Engine) stage(ctx context.Context, name string, fn func() error) error {
	e.logger.Debug("stage started", "stage", name)
	observability.Engine().OnStageStart(ctx, name)
	started := time.Now()

	err := fn()
	observability.Engine().OnStageComplete(ctx, name, time.Since(started), err)
	if err != nil {
		e.logger.Error("stage failed", "stage", name, "err", err)
		return err
	}
	e.logger.Debug("stage finished", "stage", name, "duration", time.Since(started))
	return nil
}

// ValidateRoot reports whether path is a scannable repository root.
func ValidateRoot(path string) error {
	if err := walker.ValidateRoot(path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidPath, "repository path is not scannable")
	}
	return nil
}
