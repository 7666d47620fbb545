package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wheelvend/wheelvend/internal/installer"
	"github.com/wheelvend/wheelvend/internal/pypi"
	"github.com/wheelvend/wheelvend/internal/vendordir"
	"github.com/wheelvend/wheelvend/pkg/logger"
)

var installCmd = &cobra.Command{
	Use:   "install <plugin> <package>[==version]",
	Short: "Install a package into a plugin's vendor directory",
	Long: `Resolve the newest package artifact compatible with the configured runtime
version and platform, download it, and unpack it into the plugin's vendor
directory. A version pin ("requests==2.31.0") or version family
("requests==2.31") narrows the candidates.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		plugin := args[0]
		pkg, requestedVersion, err := parsePackageSpec(args[1])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := logger.NewLogger("cli")
		log.WithFields(logger.Fields{
			"plugin":   plugin,
			"package":  pkg,
			"runtime":  Cfg.Target.RuntimeVersion,
			"platform": Cfg.Target.Platform,
		}).Debug("Starting install")

		manager := newManager()
		receipt, err := manager.Install(ctx, plugin, pkg, requestedVersion,
			Cfg.Target.RuntimeVersion, Cfg.Target.Platform)
		if err != nil {
			return err
		}

		fmt.Printf("Installed %s %s for plugin %s (%s)\n",
			receipt.Package, receipt.Version, plugin, receipt.Filename)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(installCmd)
}

// newManager wires the install pipeline from the loaded configuration.
func newManager() *installer.Manager {
	client := pypi.NewClient(
		pypi.WithBaseURL(Cfg.Index.BaseURL),
		pypi.WithTimeout(Cfg.RequestTimeout()),
	)
	layout := vendordir.NewLayout(Cfg.Vendor.Root)
	downloader := installer.NewDownloader(nil, true)
	return installer.NewManager(client, layout, downloader)
}

// parsePackageSpec splits a "name==version" argument into its parts. A bare
// name requests the newest compatible version.
func parsePackageSpec(spec string) (pkg, version string, err error) {
	name, ver, found := strings.Cut(spec, "==")
	if !found {
		if strings.ContainsAny(spec, "<>=") {
			return "", "", fmt.Errorf("unsupported package spec %q: only name==version pins are accepted", spec)
		}
		return spec, "", nil
	}
	if name == "" || ver == "" {
		return "", "", fmt.Errorf("invalid package spec %q: expected name==version", spec)
	}
	return name, ver, nil
}
