package vendordir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Receipt records one completed package install inside a plugin's vendor
// directory. The entry list is what Uninstall removes, so a receipt is the
// authoritative record of what an install created.
type Receipt struct {
	ID          string    `yaml:"id"`
	Package     string    `yaml:"package"`
	Version     string    `yaml:"version"`
	Filename    string    `yaml:"filename"`
	SourceURL   string    `yaml:"source_url"`
	SizeBytes   int64     `yaml:"size_bytes"`
	Entries     []string  `yaml:"entries"`
	InstalledAt time.Time `yaml:"installed_at"`
}

// NormalizeName folds a package name to its canonical receipt key: lower
// case with hyphens and dots collapsed to underscores, matching how wheel
// filenames spell distribution names.
func NormalizeName(name string) string {
	lowered := strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, lowered)
}

func writeReceipt(path string, receipt Receipt) error {
	data, err := yaml.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create receipts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	return nil
}

func readReceipt(path string) (Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Receipt{}, err
	}
	var receipt Receipt
	if err := yaml.Unmarshal(data, &receipt); err != nil {
		return Receipt{}, fmt.Errorf("failed to decode receipt %s: %w", path, err)
	}
	return receipt, nil
}
