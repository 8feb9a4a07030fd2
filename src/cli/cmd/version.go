package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidaislive/forksync/src/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
