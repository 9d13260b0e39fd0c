package workflow

import (
	"context"
	"fmt"

	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/rules"
	"github.com/groblegark/dockhand/internal/sequence"
)

// handleQty cross-checks the case count against the product's tie/high
// configuration. A mismatch gets a one-shot confirmation; the same value
// accepted once is not re-asked.
func (d *Dispatcher) handleQty(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	qty, err := rules.ParseQty(req.Value())
	if err != nil {
		resp.Error = err.Error()
		return nil
	}

	switch rules.CheckQty(qty, s.Pallet.Tie, s.Pallet.High, s.Flags.QtyOverride) {
	case rules.QtyConfirm:
		s.Pallet.Qty = qty
		resp.Warn = fmt.Sprintf("quantity %d differs from expected %d (%d tie x %d high)",
			qty, s.Pallet.Tie*s.Pallet.High, s.Pallet.Tie, s.Pallet.High)
		s.Transition(model.OpQtyConfirm)
		return nil
	default:
		s.Pallet.Qty = qty
		d.acceptQty(s)
		return nil
	}
}

// handleQtyConfirm resolves a quantity mismatch: Y accepts the override and
// writes an audit entry, N returns to the quantity screen.
func (d *Dispatcher) handleQtyConfirm(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	switch yesNo(req.Value()) {
	case "Y":
		s.Flags.QtyOverride = s.Pallet.Qty
		v := &rules.Violation{
			Code: model.ProblemQtyOverride,
			Explanation: fmt.Sprintf("accepted quantity %d against expected %d for %s",
				s.Pallet.Qty, s.Pallet.Tie*s.Pallet.High, s.Pallet.ProductCode),
		}
		d.acceptQty(s)
		return d.recordViolation(ctx, s, v)
	case "N":
		s.Pallet.Qty = 0
		s.Transition(model.OpQty)
		return nil
	default:
		resp.Error = "enter Y to accept the quantity or N to rescan"
		return nil
	}
}

// acceptQty finalizes the quantity, derives the pallet weight, and routes
// either into the blast/HPP hook or into the descriptive-field sequence.
func (d *Dispatcher) acceptQty(s *model.Session) {
	if s.Pallet.Product != nil && s.Pallet.Product.NetWeight > 0 {
		s.Pallet.Weight = float64(s.Pallet.Qty) * s.Pallet.Product.NetWeight
	}
	if s.Pallet.BlastFreeze || s.Pallet.HPP {
		s.Transition(model.OpBlastConfirm)
		return
	}
	s.Transition(sequence.Next(model.OpQty, s.Gates, s.Scans, s.Flags))
}

// handleBlastConfirm records whether this pallet goes on a blast-freeze or
// HPP hold. The hold rows themselves are created at commit, when the lot is
// known.
func (d *Dispatcher) handleBlastConfirm(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	switch yesNo(req.Value()) {
	case "Y":
		s.Pallet.BlastHold = s.Pallet.BlastFreeze
		s.Pallet.HPPHold = s.Pallet.HPP
	case "N":
		s.Pallet.BlastHold = false
		s.Pallet.HPPHold = false
	default:
		resp.Error = "enter Y to hold this pallet or N to receive normally"
		return nil
	}
	s.Transition(sequence.Next(model.OpQty, s.Gates, s.Scans, s.Flags))
	return nil
}
