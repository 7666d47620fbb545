package installer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wheelvend/wheelvend/internal/pypi"
	"github.com/wheelvend/wheelvend/internal/resolve"
	"github.com/wheelvend/wheelvend/internal/vendordir"
)

// Manager coordinates the full install pipeline for one plugin: index
// lookup, artifact resolution, download, unpack, receipt.
type Manager struct {
	index      *pypi.Client
	layout     *vendordir.Layout
	downloader *Downloader
	logger     *logrus.Entry
	now        func() time.Time
}

// NewManager creates a Manager from its collaborators.
func NewManager(index *pypi.Client, layout *vendordir.Layout, downloader *Downloader) *Manager {
	return &Manager{
		index:      index,
		layout:     layout,
		downloader: downloader,
		logger:     logrus.WithField("component", "installer"),
		now:        time.Now,
	}
}

// Install resolves and installs one package into the plugin's vendor
// directory. requestedVersion may be empty for "newest compatible". The
// temporary archive is deleted once extraction finishes.
func (m *Manager) Install(ctx context.Context, plugin, pkg, requestedVersion, runtimeVersion, platform string) (vendordir.Receipt, error) {
	m.logger.WithFields(logrus.Fields{
		"plugin":   plugin,
		"package":  pkg,
		"version":  requestedVersion,
		"runtime":  runtimeVersion,
		"platform": platform,
	}).Info("Installing package")

	project, err := m.index.FetchProject(ctx, pkg)
	if err != nil {
		return vendordir.Receipt{}, err
	}

	artifact, err := resolve.Resolve(project, runtimeVersion, platform, requestedVersion)
	if err != nil {
		return vendordir.Receipt{}, err
	}
	m.logger.WithFields(logrus.Fields{
		"filename": artifact.Filename,
		"version":  artifact.Info.Version,
	}).Info("Resolved artifact")

	vendorDir, err := m.layout.EnsureVendorDir(plugin)
	if err != nil {
		return vendordir.Receipt{}, err
	}

	archivePath, err := m.downloader.Fetch(ctx, artifact, vendorDir)
	if err != nil {
		return vendordir.Receipt{}, err
	}
	defer func() {
		if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
			m.logger.WithError(err).Warning("Failed to remove temporary archive")
		}
	}()

	entries, err := extractArchive(archivePath, vendorDir)
	if err != nil {
		return vendordir.Receipt{}, fmt.Errorf("failed to unpack %s: %w", artifact.Filename, err)
	}

	receipt := vendordir.Receipt{
		ID:          uuid.New().String(),
		Package:     pkg,
		Version:     artifact.Info.Version,
		Filename:    artifact.Filename,
		SourceURL:   artifact.DownloadURL,
		SizeBytes:   artifact.SizeBytes,
		Entries:     entries,
		InstalledAt: m.now().UTC(),
	}
	if err := m.layout.SaveReceipt(plugin, receipt); err != nil {
		return vendordir.Receipt{}, err
	}

	m.logger.WithFields(logrus.Fields{
		"plugin":  plugin,
		"package": pkg,
		"version": receipt.Version,
		"entries": len(entries),
	}).Info("Package installed")
	return receipt, nil
}

// Uninstall removes a previously installed package from the plugin's vendor
// directory.
func (m *Manager) Uninstall(plugin, pkg string) error {
	return m.layout.RemovePackage(plugin, pkg)
}

// Installed lists the plugin's install receipts.
func (m *Manager) Installed(plugin string) ([]vendordir.Receipt, error) {
	return m.layout.Installed(plugin)
}
