package installer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"
)

// extractArchive unpacks a wheel archive (a deflate-compressed zip) into
// destDir and returns the sorted top-level entries it created. Those entries
// become the uninstall manifest, so every created path must be reported.
func extractArchive(archivePath, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	reader.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	topLevel := make(map[string]struct{})
	for _, file := range reader.File {
		name := path.Clean(file.Name)
		if name == "." || name == "" || name == ".." || strings.HasPrefix(name, "../") {
			return nil, fmt.Errorf("archive entry %q escapes extraction directory", file.Name)
		}

		target := filepath.Join(destDir, filepath.FromSlash(name))
		if err := ensureWithinDir(destDir, target); err != nil {
			return nil, err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		} else {
			if err := extractFile(file, target); err != nil {
				return nil, err
			}
		}

		topLevel[firstSegment(name)] = struct{}{}
	}

	entries := make([]string, 0, len(topLevel))
	for entry := range topLevel {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return entries, nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
	}
	defer src.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}
	return dst.Close()
}

func firstSegment(name string) string {
	if idx := strings.IndexByte(name, '/'); idx > 0 {
		return name[:idx]
	}
	return name
}

// ensureWithinDir guards against zip-slip paths.
func ensureWithinDir(dir, target string) error {
	dir = filepath.Clean(dir)
	target = filepath.Clean(target)
	if target == dir {
		return nil
	}
	if !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %s escapes extraction directory %s", target, dir)
	}
	return nil
}
