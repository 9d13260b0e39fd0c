package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dockd",
	Short: "Inbound receiving server",
	Long: `dockd serves the warehouse inbound receiving workflow: RF terminals
POST each scan to it, it walks every operator through the receiving state
machine, and it closes batches in the background once the last operator
signals done.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
