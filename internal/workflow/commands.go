package workflow

import (
	"context"

	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/sequence"
)

// applyCommand handles the global commands that work regardless of the
// current state: exit, skip, lot-toggle, copy-previous, and label print.
// Returns true when the request was fully handled as a command.
func (d *Dispatcher) applyCommand(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) (bool, error) {
	switch req.Command {
	case model.CommandNone:
		return false, nil

	case model.CommandExit:
		return true, d.commandExit(ctx, s, resp)

	case model.CommandSkip:
		if !s.CurOp.IsOptionalField() {
			resp.Error = "nothing to skip here"
			return true, nil
		}
		s.Flags.MarkSkipped(s.CurOp)
		s.Transition(sequence.Next(s.CurOp, s.Gates, s.Scans, s.Flags))
		return true, nil

	case model.CommandLotToggle:
		s.Gates.Lot = !s.Gates.Lot
		s.Flags.LotToggled = true
		if s.Gates.Lot {
			resp.Info = "lot entry enabled"
		} else {
			resp.Info = "lot entry disabled"
			if s.CurOp == model.OpLot {
				s.Transition(sequence.Next(model.OpLot, s.Gates, s.Scans, s.Flags))
			}
		}
		return true, nil

	case model.CommandCopy:
		if !s.CurOp.IsOptionalField() {
			resp.Error = "copy previous applies to descriptive fields only"
			return true, nil
		}
		if s.Scans.OldLot == "" && s.Scans.OldCodeDate == "" && s.Scans.OldEstablishment == "" {
			resp.Error = "no previous pallet to copy from"
			return true, nil
		}
		s.Scans.CopyPrevious()
		s.Flags.CopyUsed = true
		resp.Info = "previous pallet values copied"
		s.Transition(sequence.Next(model.OpQty, s.Gates, s.Scans, s.Flags))
		return true, nil

	case model.CommandLabel:
		if s.Pallet.PalletID == "" {
			resp.Error = "no pallet to label"
			return true, nil
		}
		s.Flags.LabelUsed = true
		d.publish(ctx, events.TopicPalletLabeled, events.PalletLabeled{
			PalletID: s.Pallet.PalletID,
			Printer:  d.profile.LabelPrinter,
		})
		resp.Info = "label sent to printer"
		return true, nil

	default:
		resp.Error = "unknown command"
		return true, nil
	}
}

// commandExit backs the operator out one level: mid-pallet it abandons the
// pallet, at the pallet scan it signals the batch complete, and at the
// batch scan it clears the session.
func (d *Dispatcher) commandExit(ctx context.Context, s *model.Session, resp *model.ScanResponse) error {
	switch {
	case s.CurOp == model.OpBatch:
		s.ResetBatch()
		resp.Info = "session cleared"

	case s.CurOp == model.OpPallet && !palletInProgress(s):
		// Done receiving: flag the batch complete and let the close
		// orchestrator reconcile after its settle delay.
		batch := s.Batch.Number
		if err := d.repo.UpdateBatchStatus(ctx, batch, model.BatchComplete); err != nil {
			return err
		}
		d.publish(ctx, events.TopicBatchComplete, events.BatchComplete{
			BatchNumber: batch,
			Operator:    s.Operator,
		})
		s.ResetBatch()
		resp.Info = "batch " + batch + " marked complete"

	default:
		s.ResetPallet()
		s.Transition(model.OpPallet)
		resp.Info = "pallet abandoned"
	}
	return nil
}
