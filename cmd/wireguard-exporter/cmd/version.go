package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the exporter version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wireguard-exporter %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
