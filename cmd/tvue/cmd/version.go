package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tvue version %s\n", version)
		fmt.Println("A command-line client for the Tradervue trade journal")
		fmt.Println("https://github.com/rustyeddy/tvue")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
