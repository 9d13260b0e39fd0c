package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Inspect or clear an operator's session",
	GroupID: "receiving",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [operator]",
	Short: "Show the live session state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := operator
		if len(args) > 0 {
			op = args[0]
		}
		if op == "" {
			return fmt.Errorf("operator is required")
		}

		sess, err := apiClient.GetSession(context.Background(), op)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		if jsonOutput {
			return printJSON(sess)
		}
		printSession(cmd.OutOrStdout(), sess)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <operator>",
	Short: "Forcibly clear a stuck terminal's session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.DeleteSession(context.Background(), args[0]); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session cleared for %s\n", args[0])
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
