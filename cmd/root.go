package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wheelvend/wheelvend/internal/config"
)

var (
	cfgFile string
	Cfg     *config.Config
	Version string
)

var RootCmd = &cobra.Command{
	Use:   "wheelvend",
	Short: "Wheelvend - a minimal wheel installer for per-plugin vendor directories",
	Long: `Wheelvend resolves, downloads, and unpacks Python binary wheels from a
package index into an isolated per-plugin vendor directory, matching the
configured runtime version and platform.`,
	SilenceUsage: true,
}

func Execute(version string) error {
	Version = version
	return RootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.wheelvend/config.yaml)")
}

func initConfig() {
	var err error

	Cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("Fatal: Configuration could not be loaded: %v\n", err)
		os.Exit(1)
	}
}
