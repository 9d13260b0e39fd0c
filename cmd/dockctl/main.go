package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/dockhand/internal/client"
	"github.com/groblegark/dockhand/internal/ui"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
	operator   string
	terminal   string

	apiClient *client.HTTPClient
)

func defaultServerURL() string {
	if s := os.Getenv("DOCKHAND_HTTP_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultOperator() string {
	if s := os.Getenv("DOCKHAND_OPERATOR"); s != "" {
		return s
	}
	return os.Getenv("USER")
}

func defaultTerminal() string {
	if s := os.Getenv("DOCKHAND_TERMINAL"); s != "" {
		return s
	}
	host, err := os.Hostname()
	if err != nil {
		return "dockctl"
	}
	return host
}

var rootCmd = &cobra.Command{
	Use:   "dockctl <command>",
	Short: "CLI client for the receiving server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		apiClient = client.NewHTTPClient(serverURL, authToken)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "receiving server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("DOCKHAND_AUTH_TOKEN"), "bearer token for the server")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&operator, "operator", defaultOperator(), "operator badge for scan and session commands")
	rootCmd.PersistentFlags().StringVar(&terminal, "terminal", defaultTerminal(), "terminal identifier reported with scans")

	rootCmd.AddGroup(
		&cobra.Group{ID: "receiving", Title: "Receiving:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Receiving
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(sessionCmd)

	// Views
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(operatorsCmd)

	// System
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
