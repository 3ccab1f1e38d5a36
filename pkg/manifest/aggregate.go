package manifest

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/repolens/repolens/pkg/profile"
)

// parsed pairs one manifest file with its parser output (empty on failure).
type parsed struct {
	ecosystem string
	path      string
	result    *Result
}

// Aggregate detects manifests under root, parses them, and merges the
// results into unified dependency buckets.
//
// Parsing runs in parallel across files, but the merge happens in a fixed,
// reproducible order: registry registration order first, then filename
// order within each ecosystem. Duplicate names within the same ecosystem
// are last-writer-wins, which deliberately lets lock-file versions
// (detected after their manifest in the profile's filename list) override
// declared constraints.
//
// A parser failure never fails the aggregation: the file contributes an
// empty result and the failure is logged with path and ecosystem. A
// cancelled context stops dispatching further parse jobs; files never
// dispatched contribute nothing.
func Aggregate(ctx context.Context, root string, reg *Registry, logger *log.Logger) profile.Dependencies {
	detections := reg.Detect(root)

	// Flatten to (file, parser) pairs preserving the merge order.
	var jobs []parsed
	for _, d := range detections {
		for _, path := range d.Paths {
			jobs = append(jobs, parsed{ecosystem: d.Ecosystem, path: path})
		}
	}

	var wg sync.WaitGroup
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(job *parsed, parser Parser) {
			defer wg.Done()
			res, err := parser.Parse(job.path)
			if err != nil {
				logger.Warn("manifest parse failed",
					"ecosystem", job.ecosystem,
					"path", job.path,
					"err", err)
				res = NewResult()
			}
			job.result = res
		}(&jobs[i], parserFor(detections, jobs[i].ecosystem))
	}
	wg.Wait()

	deps := profile.Dependencies{
		Runtime:  make(map[string]string),
		Dev:      make(map[string]string),
		Peer:     make(map[string]string),
		Build:    make(map[string]string),
		Optional: make(map[string]string),
		Issues:   []profile.DependencyIssue{},
		Outdated: []profile.OutdatedPackage{},
	}
	for _, d := range detections {
		deps.Ecosystems = append(deps.Ecosystems, d.Ecosystem)
	}

	// Deterministic merge in job order. Jobs skipped by cancellation
	// have no result and contribute nothing.
	for _, job := range jobs {
		if job.result == nil {
			continue
		}
		merge(deps.Runtime, job.result.Dependencies)
		merge(deps.Dev, job.result.DevDependencies)
		merge(deps.Peer, job.result.PeerDependencies)
		merge(deps.Build, job.result.BuildDependencies)
		merge(deps.Optional, job.result.OptionalDeps)
	}

	deps.Stats.Direct = len(deps.Runtime)
	deps.Stats.Dev = len(deps.Dev)
	// Transitive stays zero: no registry resolution in a static scan.
	deps.Stats.Total = deps.Stats.Direct + deps.Stats.Dev + deps.Stats.Transitive

	return deps
}

func parserFor(detections []Detection, ecosystem string) Parser {
	for _, d := range detections {
		if d.Ecosystem == ecosystem {
			return d.Parser
		}
	}
	return nil
}

func merge(dst, src map[string]string) {
	for name, version := range src {
		dst[name] = version
	}
}
