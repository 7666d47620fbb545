package resolve

import (
	"sort"
	"strings"

	"github.com/wheelvend/wheelvend/internal/pypi"
)

// SelectCandidates orders the index's published versions and filters them
// against the requested version.
//
// With no requested version the full descending-sorted list is returned.
// A requested version present as an exact key short-circuits to a singleton,
// which is the primary path for fully pinned requests. Otherwise the request
// is treated as a version family: "2.1" selects every "2.1.x" key, newest
// first. An empty family is a NoMatchError for direct user reporting.
func SelectCandidates(project *pypi.Project, requestedVersion string) ([]string, error) {
	versions := make([]string, 0, len(project.Releases))
	for v := range project.Releases {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return compareVersionStrings(versions[i], versions[j]) > 0
	})

	if requestedVersion == "" {
		return versions, nil
	}

	if _, ok := project.Releases[requestedVersion]; ok {
		return []string{requestedVersion}, nil
	}

	prefix := requestedVersion + "."
	var family []string
	for _, v := range versions {
		if strings.HasPrefix(v, prefix) {
			family = append(family, v)
		}
	}
	if len(family) == 0 {
		return nil, &NoMatchError{Package: project.Name(), RequestedVersion: requestedVersion}
	}
	return family, nil
}

// compareVersionStrings orders two version keys numerically when both parse
// as dotted numeric versions, falling back to plain string comparison for
// anything else (pre-release suffixes and the like). The fallback is a known
// approximation, not full version-scheme semantics.
func compareVersionStrings(a, b string) int {
	av, aerr := parseVersionLoose(a)
	bv, berr := parseVersionLoose(b)
	if aerr == nil && berr == nil {
		if cmp := compareSegments(av, bv); cmp != 0 {
			return cmp
		}
	}
	return strings.Compare(a, b)
}
