package cmd

import (
	"github.com/spf13/cobra"

	"github.com/upcheckio/upcheck/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints upcheck version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Version())
	},
}
