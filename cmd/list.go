package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <plugin>",
	Short: "List the packages installed for a plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plugin := args[0]

		receipts, err := newManager().Installed(plugin)
		if err != nil {
			return err
		}

		if len(receipts) == 0 {
			fmt.Printf("No packages installed for plugin %s\n", plugin)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PACKAGE\tVERSION\tINSTALLED")
		for _, r := range receipts {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Package, r.Version, r.InstalledAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
}
