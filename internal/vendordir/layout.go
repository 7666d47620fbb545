package vendordir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// receiptsDir is the hidden subdirectory of a plugin's vendor directory
// holding one receipt per installed package.
const receiptsDir = ".receipts"

// Layout manages the per-plugin vendor directory tree:
//
//	<root>/<plugin>/vendor/           unpacked package contents
//	<root>/<plugin>/vendor/.receipts/ install receipts
type Layout struct {
	root   string
	logger *logrus.Entry
}

// NewLayout creates a Layout rooted at the given directory.
func NewLayout(root string) *Layout {
	return &Layout{
		root:   root,
		logger: logrus.WithField("component", "vendordir"),
	}
}

// Root returns the layout's root directory.
func (l *Layout) Root() string {
	return l.root
}

// VendorDir returns the vendor directory path for a plugin.
func (l *Layout) VendorDir(plugin string) string {
	return filepath.Join(l.root, plugin, "vendor")
}

func (l *Layout) receiptPath(plugin, pkg string) string {
	return filepath.Join(l.VendorDir(plugin), receiptsDir, NormalizeName(pkg)+".yaml")
}

// EnsureVendorDir creates the plugin's vendor directory if it does not
// exist and returns its path.
func (l *Layout) EnsureVendorDir(plugin string) (string, error) {
	dir := l.VendorDir(plugin)
	l.logger.WithField("dir", dir).Debug("Ensuring vendor directory exists")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.logger.WithError(err).Error("Failed to create vendor directory")
		return "", fmt.Errorf("failed to create vendor directory %s: %w", dir, err)
	}
	return dir, nil
}

// SaveReceipt records a completed install for the plugin.
func (l *Layout) SaveReceipt(plugin string, receipt Receipt) error {
	return writeReceipt(l.receiptPath(plugin, receipt.Package), receipt)
}

// Receipt returns the install receipt for one package, or an error when the
// package is not installed for the plugin.
func (l *Layout) Receipt(plugin, pkg string) (Receipt, error) {
	receipt, err := readReceipt(l.receiptPath(plugin, pkg))
	if err != nil {
		if os.IsNotExist(err) {
			return Receipt{}, fmt.Errorf("package %q is not installed for plugin %q", pkg, plugin)
		}
		return Receipt{}, err
	}
	return receipt, nil
}

// Installed lists the receipts of every package installed for the plugin,
// sorted by package name. A missing vendor directory is an empty list, not
// an error.
func (l *Layout) Installed(plugin string) ([]Receipt, error) {
	dir := filepath.Join(l.VendorDir(plugin), receiptsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read receipts directory %s: %w", dir, err)
	}

	var receipts []Receipt
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		receipt, err := readReceipt(filepath.Join(dir, entry.Name()))
		if err != nil {
			l.logger.WithError(err).WithField("file", entry.Name()).Warning("Skipping unreadable receipt")
			continue
		}
		receipts = append(receipts, receipt)
	}

	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].Package < receipts[j].Package
	})
	return receipts, nil
}

// RemovePackage deletes every filesystem entry a package's install created,
// then its receipt. Entries recorded in the receipt are resolved relative to
// the plugin's vendor directory and must stay inside it.
func (l *Layout) RemovePackage(plugin, pkg string) error {
	receipt, err := l.Receipt(plugin, pkg)
	if err != nil {
		return err
	}

	vendorDir := l.VendorDir(plugin)
	for _, entry := range receipt.Entries {
		target := filepath.Join(vendorDir, entry)
		if err := ensureWithinRoot(vendorDir, target); err != nil {
			return err
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to remove %s: %w", target, err)
		}
	}

	if err := os.Remove(l.receiptPath(plugin, pkg)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove receipt: %w", err)
	}

	l.logger.WithFields(logrus.Fields{
		"plugin":  plugin,
		"package": receipt.Package,
		"version": receipt.Version,
	}).Info("Removed package from vendor directory")
	return nil
}

// ensureWithinRoot guards against receipt entries escaping the vendor
// directory.
func ensureWithinRoot(root, target string) error {
	root = filepath.Clean(root)
	target = filepath.Clean(target)
	if target == root {
		return fmt.Errorf("refusing to remove vendor root %s", root)
	}
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return fmt.Errorf("entry %s escapes vendor directory %s", target, root)
	}
	return nil
}
