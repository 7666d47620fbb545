package installer

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeArchive(t *testing.T, files map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %q: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "pkg-1.0-py3-none-any.whl")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestExtractArchive(t *testing.T) {
	archive := writeArchive(t, map[string]string{
		"pkg/__init__.py":            "",
		"pkg/core.py":                "VALUE = 42\n",
		"pkg-1.0.dist-info/METADATA": "Name: pkg\n",
		"pkg-1.0.dist-info/RECORD":   "",
		"top_level_module.py":        "x = 1\n",
	})

	destDir := t.TempDir()
	entries, err := extractArchive(archive, destDir)
	if err != nil {
		t.Fatalf("extractArchive() error = %v", err)
	}

	want := []string{"pkg", "pkg-1.0.dist-info", "top_level_module.py"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}

	content, err := os.ReadFile(filepath.Join(destDir, "pkg", "core.py"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(content) != "VALUE = 42\n" {
		t.Errorf("extracted content = %q", content)
	}
}

func TestExtractArchiveRejectsPathTraversal(t *testing.T) {
	archive := writeArchive(t, map[string]string{
		"../evil.py": "import os\n",
	})

	if _, err := extractArchive(archive, t.TempDir()); err == nil {
		t.Error("extractArchive() should reject entries escaping the destination")
	}
}

func TestExtractArchiveMissingFile(t *testing.T) {
	if _, err := extractArchive(filepath.Join(t.TempDir(), "absent.whl"), t.TempDir()); err == nil {
		t.Error("extractArchive() should fail for a missing archive")
	}
}
