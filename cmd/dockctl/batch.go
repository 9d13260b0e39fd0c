package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:     "batch",
	Short:   "Inspect a receiving batch",
	GroupID: "views",
}

var batchShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show the batch record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := apiClient.GetBatch(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("get batch: %w", err)
		}

		if jsonOutput {
			return printJSON(batch)
		}
		printBatch(cmd.OutOrStdout(), batch)
		return nil
	},
}

var batchPalletsCmd = &cobra.Command{
	Use:   "pallets <number>",
	Short: "List the pallets committed against a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiClient.ListPallets(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("list pallets: %w", err)
		}

		if jsonOutput {
			return printJSON(resp)
		}
		printPalletTable(cmd.OutOrStdout(), resp.Pallets)
		return nil
	},
}

var batchReceiversCmd = &cobra.Command{
	Use:   "receivers <number>",
	Short: "List the operators currently scanning a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiClient.Receivers(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("list receivers: %w", err)
		}

		if jsonOutput {
			return printJSON(resp)
		}
		printOperatorTable(cmd.OutOrStdout(), resp.Receivers)
		return nil
	},
}

func init() {
	batchCmd.AddCommand(batchShowCmd)
	batchCmd.AddCommand(batchPalletsCmd)
	batchCmd.AddCommand(batchReceiversCmd)
}
