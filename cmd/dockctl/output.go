package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/presence"
	"github.com/groblegark/dockhand/internal/ui"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// renderResponse prints a scan reply the way an RF screen would: messages
// first, then the next field to fill, then the live function keys.
func renderResponse(w io.Writer, resp *model.ScanResponse) {
	if resp.Error != "" {
		fmt.Fprintln(w, ui.RenderError("ERROR: "+resp.Error))
	}
	if resp.Warn != "" {
		fmt.Fprintln(w, ui.RenderWarn("WARN:  "+resp.Warn))
	}
	if resp.Info != "" {
		fmt.Fprintln(w, resp.Info)
	}

	for _, f := range resp.Screen {
		line := ui.RenderAccent(f.Label)
		if f.Default != "" {
			line += " [" + f.Default + "]"
		}
		if f.Hint != "" {
			line += " " + ui.RenderMuted("("+f.Hint+")")
		}
		fmt.Fprintln(w, line)
	}

	if len(resp.Keys) > 0 {
		parts := make([]string, len(resp.Keys))
		for i, k := range resp.Keys {
			parts[i] = ui.RenderCommand(k.Key) + "=" + k.Label
		}
		fmt.Fprintln(w, ui.RenderMuted(strings.Join(parts, "  ")))
	}
}

func printSession(w io.Writer, sess *model.Session) {
	fmt.Fprintf(w, "Operator:  %s\n", sess.Operator)
	if sess.Terminal != "" {
		fmt.Fprintf(w, "Terminal:  %s\n", sess.Terminal)
	}
	fmt.Fprintf(w, "State:     %s\n", sess.CurOp)
	if sess.Batch.Number != "" {
		fmt.Fprintf(w, "Batch:     %s\n", sess.Batch.Number)
	}
	if sess.Pallet.PalletID != "" {
		fmt.Fprintf(w, "Pallet:    %s\n", sess.Pallet.PalletID)
	}
	if sess.Pallet.ProductCode != "" {
		fmt.Fprintf(w, "Product:   %s\n", sess.Pallet.ProductCode)
	}
	if sess.Pallet.Qty > 0 {
		fmt.Fprintf(w, "Qty:       %d\n", sess.Pallet.Qty)
	}
	if !sess.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated:   %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printBatch(w io.Writer, b *model.Batch) {
	fmt.Fprintf(w, "Number:     %s\n", b.Number)
	fmt.Fprintf(w, "Customer:   %s\n", b.Customer)
	fmt.Fprintf(w, "Warehouse:  %s\n", b.Warehouse)
	if b.Door != "" {
		fmt.Fprintf(w, "Door:       %s\n", b.Door)
	}
	fmt.Fprintf(w, "Status:     %s\n", b.Status)
	if b.QuickReceive {
		fmt.Fprintf(w, "Quick:      yes (outbound %s)\n", b.OutboundBatch)
	}
	if b.Dynamic {
		fmt.Fprintln(w, "Dynamic:    yes")
	}
	if b.Carrier != "" {
		fmt.Fprintf(w, "Carrier:    %s\n", b.Carrier)
	}
	if b.ScanStarted != nil {
		fmt.Fprintf(w, "Started:    %s\n", b.ScanStarted.Format("2006-01-02 15:04:05"))
	}
	if b.ScanFinished != nil {
		fmt.Fprintf(w, "Finished:   %s\n", b.ScanFinished.Format("2006-01-02 15:04:05"))
	}
}

func printPalletTable(w io.Writer, pallets []*model.Pallet) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PALLET\tPRODUCT\tLOT\tQTY\tWEIGHT\tDATE\tBY")
	for _, p := range pallets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%s\t%s\n",
			p.ID,
			p.ProductCode,
			p.Lot,
			p.Qty,
			p.Weight,
			p.CodeDate,
			p.ReceivedBy,
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d pallets\n", len(pallets))
}

func printOperatorTable(w io.Writer, entries []presence.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATOR\tTERMINAL\tBATCH\tSTATE\tSCANS\tIDLE")
	for _, e := range entries {
		state := string(e.LastOp)
		if e.OffShift {
			state = "off-shift"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.0fs\n",
			e.Operator,
			e.Terminal,
			e.BatchNumber,
			state,
			e.ScanCount,
			e.IdleSecs,
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d operators\n", len(entries))
}
