package resolve

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wheelvend/wheelvend/internal/pypi"
)

func TestResolvePicksExactRuntimeMatch(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"1.0": {
				{Filename: "pkg-1.0-cp310-cp310-win_amd64.whl", PythonVersion: "cp310", URL: "https://files.example/pkg310.whl", Size: 1024},
				{Filename: "pkg-1.0-cp39-cp39-win_amd64.whl", PythonVersion: "cp39", URL: "https://files.example/pkg39.whl", Size: 1000},
			},
		},
	}

	artifact, err := Resolve(project, "3.10", "win_amd64", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if artifact.Filename != "pkg-1.0-cp310-cp310-win_amd64.whl" {
		t.Errorf("Resolve() picked %q, want the cp310 release", artifact.Filename)
	}
	if artifact.DownloadURL != "https://files.example/pkg310.whl" || artifact.SizeBytes != 1024 {
		t.Errorf("Resolve() = %+v, descriptor fields not carried over", artifact)
	}
}

func TestResolvePlatformMismatchFails(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"1.0": {
				{Filename: "pkg-1.0-cp310-cp310-win_amd64.whl", PythonVersion: "cp310"},
				{Filename: "pkg-1.0-cp39-cp39-win_amd64.whl", PythonVersion: "cp39"},
			},
		},
	}

	_, err := Resolve(project, "3.10", "linux_x86_64", "")
	if err == nil {
		t.Fatal("Resolve() should fail when no release targets the platform")
	}

	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("error type = %T, want *NoMatchError", err)
	}
	if noMatch.Package != "pkg" || noMatch.RuntimeVersion != "3.10" || noMatch.Platform != "linux_x86_64" {
		t.Errorf("NoMatchError missing context: %+v", noMatch)
	}
}

func TestResolveUniversalPlatformTagMatchesAnything(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"0.3": {
				{Filename: "pkg-0.3-py3-none-any.whl", PythonVersion: "py3", RequiresPython: ">=3.7"},
			},
		},
	}

	for _, platform := range []string{"win_amd64", "linux_x86_64", "macosx_11_0_arm64"} {
		artifact, err := Resolve(project, "3.10", platform, "")
		if err != nil {
			t.Errorf("Resolve(platform=%q) error = %v", platform, err)
			continue
		}
		if artifact.Info.PlatformTag != AnyPlatform {
			t.Errorf("Resolve(platform=%q) picked %q", platform, artifact.Filename)
		}
	}
}

func TestResolveHonorsDeclaredRequirement(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"0.3": {
				{Filename: "pkg-0.3-py3-none-any.whl", PythonVersion: "py3", RequiresPython: ">=3.9"},
			},
		},
	}

	if _, err := Resolve(project, "3.8", "win_amd64", ""); err == nil {
		t.Error("Resolve() should reject a runtime below the declared requirement")
	}
	if _, err := Resolve(project, "3.9", "win_amd64", ""); err != nil {
		t.Errorf("Resolve() error = %v, runtime meets the declared requirement", err)
	}
}

func TestResolveSkipsSourceArchives(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"1.0": {
				{Filename: "pkg-1.0.tar.gz", PythonVersion: "source"},
				{Filename: "pkg-1.0-cp310-cp310-win_amd64.whl", PythonVersion: "cp310"},
			},
		},
	}

	artifact, err := Resolve(project, "3.10", "win_amd64", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if artifact.Filename != "pkg-1.0-cp310-cp310-win_amd64.whl" {
		t.Errorf("Resolve() picked %q, source archives must never be selected", artifact.Filename)
	}
}

func TestResolveSkipsUnparseableFilenames(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"1.0": {
				{Filename: "broken.whl", PythonVersion: "cp310"},
				{Filename: "pkg-1.0-cp310-cp310-win_amd64.whl", PythonVersion: "cp310"},
			},
		},
	}

	artifact, err := Resolve(project, "3.10", "win_amd64", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if artifact.Filename != "pkg-1.0-cp310-cp310-win_amd64.whl" {
		t.Errorf("Resolve() picked %q, malformed filenames should only be skipped", artifact.Filename)
	}
}

func TestResolvePrefersNewestCompatibleVersion(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"1.0": {
				{Filename: "pkg-1.0-cp310-cp310-win_amd64.whl", PythonVersion: "cp310"},
			},
			"2.0": {
				{Filename: "pkg-2.0-cp311-cp311-win_amd64.whl", PythonVersion: "cp311"},
			},
			"1.5": {
				{Filename: "pkg-1.5-cp310-cp310-win_amd64.whl", PythonVersion: "cp310"},
			},
		},
	}

	// 2.0 only ships a cp311 build, so the newest compatible version is 1.5.
	artifact, err := Resolve(project, "3.10", "win_amd64", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if artifact.Info.Version != "1.5" {
		t.Errorf("Resolve() picked version %q, want 1.5", artifact.Info.Version)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	project := &pypi.Project{
		Info: pypi.ProjectInfo{Name: "pkg"},
		Releases: map[string][]pypi.Release{
			"2.1.0": {{Filename: "pkg-2.1.0-cp310-cp310-win_amd64.whl", PythonVersion: "cp310", URL: "u", Size: 7}},
			"2.1.2": {{Filename: "pkg-2.1.2-cp310-cp310-win_amd64.whl", PythonVersion: "cp310", URL: "v", Size: 9}},
		},
	}

	first, err := Resolve(project, "3.10", "win_amd64", "2.1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := Resolve(project, "3.10", "win_amd64", "2.1")
	if err != nil {
		t.Fatalf("Resolve() second call error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Resolve() not idempotent: %+v vs %+v", first, second)
	}
	if first.Info.Version != "2.1.2" {
		t.Errorf("Resolve() picked %q, want the newest family member 2.1.2", first.Info.Version)
	}
}
