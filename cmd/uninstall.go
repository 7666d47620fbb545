package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <plugin> <package>",
	Short: "Remove an installed package from a plugin's vendor directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		plugin, pkg := args[0], args[1]

		if err := newManager().Uninstall(plugin, pkg); err != nil {
			return err
		}

		fmt.Printf("Uninstalled %s from plugin %s\n", pkg, plugin)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(uninstallCmd)
}
