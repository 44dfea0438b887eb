package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/docmark/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		common.LoadVersionFromFile()
		fmt.Fprintf(cmd.OutOrStdout(), "Docmark version %s\n", common.GetFullVersion())
	},
}
