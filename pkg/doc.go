// Package pkg provides the core libraries for RepoLens repository analysis.
//
// # Overview
//
// RepoLens scans a repository on disk and assembles a single profile
// describing its structure, languages, dependencies, and architecture.
// The pkg directory is organized into four main areas:
//
//  1. Analysis - [walker], [lang], [manifest], [heuristics], [advisory]
//  2. Orchestration - [engine] (runs the stages and assembles the profile)
//  3. Infrastructure - [cache], [store], [observability], [errors]
//  4. Output - [profile] (the result types), [render/depgraph]
//
// # Architecture
//
// The typical data flow through RepoLens:
//
//	Repository on disk
//	         ↓
//	    [walker] package (directory tree + file summary)
//	         ↓
//	    [lang] package (language classification)
//	         ↓
//	    [manifest] package (ecosystem parsers + aggregation)
//	         ↓
//	    [heuristics] + [advisory] packages (patterns, vulnerabilities, staleness)
//	         ↓
//	    profile.RepositoryProfile
//
// # Quick Start
//
// Scan a repository and inspect its profile:
//
//	import (
//	    "context"
//	    "github.com/repolens/repolens/pkg/engine"
//	)
//
//	eng := engine.New()
//	p, err := eng.Analyze(context.Background(), "/path/to/repo")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(p.ProjectType, p.Dependencies.Stats.Total)
//
// Individual stages are usable on their own: manifest.Aggregate parses
// and merges every recognized manifest at a root, and lang.Classify
// computes the language breakdown without the rest of the pipeline.
package pkg
