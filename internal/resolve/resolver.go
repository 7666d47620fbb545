package resolve

import (
	"fmt"
	"strings"

	"github.com/wheelvend/wheelvend/internal/pypi"
)

// ResolvedArtifact is the resolver's output: one fully matched release file,
// ready for the download stage. It is only ever constructed on a complete
// match and is immutable once returned.
type ResolvedArtifact struct {
	Filename    string
	Info        ArtifactInfo
	DownloadURL string
	SizeBytes   int64
}

// NoMatchError is the terminal failure returned when the candidate space is
// exhausted without an acceptable artifact. It carries enough context to be
// surfaced to a terminal user as-is.
type NoMatchError struct {
	Package          string
	RequestedVersion string
	RuntimeVersion   string
	Platform         string
}

func (e *NoMatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no compatible artifact for package %q", e.Package)
	if e.RequestedVersion != "" {
		fmt.Fprintf(&b, " version %q", e.RequestedVersion)
	}
	if e.RuntimeVersion != "" || e.Platform != "" {
		fmt.Fprintf(&b, " (runtime %s, platform %s)", e.RuntimeVersion, e.Platform)
	}
	return b.String()
}

// Resolve walks the candidate versions in descending order and returns the
// first release file that is a binary archive, compatible with the target
// runtime version, and built for the target platform (or platform
// independent). Within a version, releases are considered in index order.
//
// Resolution is pure computation over the in-memory index snapshot: no
// hidden state, safe for concurrent use, and identical inputs always yield
// identical results. Per-release parse and evaluation failures disqualify
// only that release; exhaustion of all candidates yields a NoMatchError.
func Resolve(project *pypi.Project, runtimeVersion, platform, requestedVersion string) (ResolvedArtifact, error) {
	candidates, err := SelectCandidates(project, requestedVersion)
	if err != nil {
		return ResolvedArtifact{}, err
	}

	for _, version := range candidates {
		for _, release := range project.Releases[version] {
			if !strings.HasSuffix(release.Filename, ArchiveExt) {
				continue
			}

			if requirement, constrained := RuntimeRequirement(release.PythonVersion, release.RequiresPython); constrained {
				c, err := ParseConstraint(requirement)
				if err != nil {
					continue
				}
				ok, err := c.Matches(runtimeVersion)
				if err != nil || !ok {
					continue
				}
			}

			info, err := ParseFilename(release.Filename)
			if err != nil {
				continue
			}
			if info.PlatformTag != platform && info.PlatformTag != AnyPlatform {
				continue
			}

			return ResolvedArtifact{
				Filename:    release.Filename,
				Info:        info,
				DownloadURL: release.URL,
				SizeBytes:   release.Size,
			}, nil
		}
	}

	return ResolvedArtifact{}, &NoMatchError{
		Package:          project.Name(),
		RequestedVersion: requestedVersion,
		RuntimeVersion:   runtimeVersion,
		Platform:         platform,
	}
}
