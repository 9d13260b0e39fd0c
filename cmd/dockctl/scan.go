package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groblegark/dockhand/internal/model"
)

var (
	scanCommand string
	scanOpHint  string
)

var scanCmd = &cobra.Command{
	Use:     "scan [value]",
	Short:   "Submit one scan or function key as the current operator",
	GroupID: "receiving",
	Args:    cobra.MaximumNArgs(1),
	Example: `  dockctl scan 1234567            # scan a batch number
  dockctl scan --command exit     # press F3
  dockctl scan --command skip     # skip an optional field`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if operator == "" {
			return fmt.Errorf("operator is required (set --operator or DOCKHAND_OPERATOR)")
		}

		req := &model.ScanRequest{
			Operator: operator,
			Terminal: terminal,
		}
		if len(args) > 0 {
			req.Fields = map[string]string{model.ScanField: args[0]}
		}
		if scanCommand != "" {
			c := model.Command(scanCommand)
			if !c.IsValid() {
				return fmt.Errorf("unknown command %q", scanCommand)
			}
			req.Command = c
		}
		if scanOpHint != "" {
			hint := model.Op(scanOpHint)
			if !hint.IsValid() {
				return fmt.Errorf("unknown state %q", scanOpHint)
			}
			req.OpHint = hint
		}
		if req.Command == model.CommandNone && len(args) == 0 {
			return fmt.Errorf("a scan value or --command is required")
		}

		resp, err := apiClient.Scan(context.Background(), req)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}

		if jsonOutput {
			return printJSON(resp)
		}
		renderResponse(cmd.OutOrStdout(), resp)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanCommand, "command", "", "function key instead of a scan (exit, skip, copy, label, lot-toggle)")
	scanCmd.Flags().StringVar(&scanOpHint, "op", "", "assert the expected state before applying the scan")
}
