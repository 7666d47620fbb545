package resolve

import (
	"fmt"
	"strings"
)

const (
	// ArchiveExt is the only artifact extension eligible for installation.
	// Source distributions and other file kinds are never selected.
	ArchiveExt = ".whl"

	// AnyPlatform is the universal platform tag matching every target.
	AnyPlatform = "any"
)

// ArtifactInfo holds the structured segments of a wheel filename.
type ArtifactInfo struct {
	Distribution string
	Version      string
	Build        string
	RuntimeTag   string
	ABITag       string
	PlatformTag  string
}

// ParseError reports an input the resolver's grammars cannot interpret.
// Inside the matching loop it only disqualifies the offending candidate.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// ParseFilename splits a wheel filename into its tagged segments.
// The expected shape is
//
//	<distribution>-<version>(-<build>)?-<runtimeTag>-<abiTag>-<platformTag>.whl
//
// where every segment is a non-empty run of characters without hyphens and
// the optional build segment is purely numeric.
func ParseFilename(filename string) (ArtifactInfo, error) {
	if !strings.HasSuffix(filename, ArchiveExt) {
		return ArtifactInfo{}, &ParseError{Input: filename, Reason: "not a " + ArchiveExt + " archive"}
	}

	stem := strings.TrimSuffix(filename, ArchiveExt)
	parts := strings.Split(stem, "-")

	var info ArtifactInfo
	switch len(parts) {
	case 5:
		info = ArtifactInfo{
			Distribution: parts[0],
			Version:      parts[1],
			RuntimeTag:   parts[2],
			ABITag:       parts[3],
			PlatformTag:  parts[4],
		}
	case 6:
		if !allDigits(parts[2]) {
			return ArtifactInfo{}, &ParseError{Input: filename, Reason: "build segment must be numeric"}
		}
		info = ArtifactInfo{
			Distribution: parts[0],
			Version:      parts[1],
			Build:        parts[2],
			RuntimeTag:   parts[3],
			ABITag:       parts[4],
			PlatformTag:  parts[5],
		}
	default:
		return ArtifactInfo{}, &ParseError{Input: filename, Reason: fmt.Sprintf("expected 5 or 6 segments, got %d", len(parts))}
	}

	for _, segment := range []string{info.Distribution, info.Version, info.RuntimeTag, info.ABITag, info.PlatformTag} {
		if segment == "" {
			return ArtifactInfo{}, &ParseError{Input: filename, Reason: "empty segment"}
		}
	}

	return info, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
