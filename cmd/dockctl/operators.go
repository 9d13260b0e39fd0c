package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var operatorsCmd = &cobra.Command{
	Use:     "operators",
	Short:   "List every operator seen this shift",
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiClient.Roster(context.Background())
		if err != nil {
			return fmt.Errorf("get roster: %w", err)
		}

		if jsonOutput {
			return printJSON(resp)
		}
		printOperatorTable(cmd.OutOrStdout(), resp.Operators)
		return nil
	},
}
