package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/repolens/repolens/pkg/advisory"
	"github.com/repolens/repolens/pkg/profile"
)

var constraintPrefix = regexp.MustCompile(`^[~^>=<]+`)

// Outdated compares dependencies against the advisory source's
// latest-version table. A dependency is outdated when its cleaned
// version differs from the latest; the "latest" sentinel never is.
// Urgency comes from the version distance: a newer major is high, a
// newer minor is medium, anything else low. Results are ordered by
// package name.
func Outdated(src advisory.Source, deps map[string]string) []profile.OutdatedPackage {
	out := []profile.OutdatedPackage{}
	for _, name := range sortedKeys(deps) {
		version := deps[name]
		latest, ok := src.LatestVersion(name)
		if !ok || version == latest || version == profile.VersionLatest {
			continue
		}
		out = append(out, profile.OutdatedPackage{
			Package:        name,
			CurrentVersion: version,
			LatestVersion:  latest,
			UpdateUrgency:  urgency(constraintPrefix.ReplaceAllString(version, ""), latest),
		})
	}
	return out
}

func urgency(current, latest string) string {
	currentParts := strings.Split(current, ".")
	latestParts := strings.Split(latest, ".")
	if len(currentParts) < 2 || len(latestParts) < 2 {
		return "low"
	}
	curMajor, err1 := strconv.Atoi(currentParts[0])
	newMajor, err2 := strconv.Atoi(latestParts[0])
	if err1 != nil || err2 != nil {
		return "low"
	}
	if newMajor > curMajor {
		return "high"
	}
	curMinor, err1 := strconv.Atoi(currentParts[1])
	newMinor, err2 := strconv.Atoi(latestParts[1])
	if err1 == nil && err2 == nil && newMajor == curMajor && newMinor > curMinor {
		return "medium"
	}
	return "low"
}
