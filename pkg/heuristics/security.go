package heuristics

import (
	"sort"

	"github.com/repolens/repolens/pkg/advisory"
	"github.com/repolens/repolens/pkg/profile"
)

// SecurityIssues checks the given dependencies against the advisory
// source. Results are ordered by package name so repeated scans produce
// identical reports.
func SecurityIssues(src advisory.Source, deps map[string]string) []profile.DependencyIssue {
	issues := []profile.DependencyIssue{}
	for _, name := range sortedKeys(deps) {
		for _, a := range src.Match(name, deps[name]) {
			issues = append(issues, profile.DependencyIssue{
				Package:      name,
				Version:      deps[name],
				AdvisoryID:   a.ID,
				Severity:     profile.Severity(a.Severity),
				Description:  a.Description,
				FixedIn:      a.FixedIn,
				ReferenceURL: a.URL,
			})
		}
	}
	return issues
}

// TallySeverities counts issues per severity into stats.
func TallySeverities(issues []profile.DependencyIssue, stats *profile.DependencyStats) {
	for _, issue := range issues {
		switch issue.Severity {
		case profile.SeverityCritical:
			stats.Critical++
		case profile.SeverityHigh:
			stats.High++
		case profile.SeverityMedium:
			stats.Medium++
		case profile.SeverityLow:
			stats.Low++
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
