package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/idgen"
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/sequence"
	"github.com/groblegark/dockhand/internal/session"
	"github.com/groblegark/dockhand/internal/store"
)

// handleSendPallet is the commit gate. Y verifies every required field is
// filled, then either hands catch-weight product off for weighing or commits
// the pallet in one transaction. N discards the pallet.
func (d *Dispatcher) handleSendPallet(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	switch yesNo(req.Value()) {
	case "N":
		s.ResetPallet()
		s.Transition(model.OpPallet)
		resp.Info = "pallet discarded"
		return nil
	case "Y":
	default:
		resp.Error = "enter Y to send the pallet or N to discard it"
		return nil
	}

	if missing := sequence.Missing(s.Gates, s.Scans, s.Flags); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, op := range missing {
			names[i] = op.String()
		}
		resp.Error = "required fields missing: " + strings.Join(names, ", ")
		return nil
	}

	// Quick-receive preconditions are checked before anything is written.
	if s.Batch.QuickReceive {
		if s.Batch.Load.OutboundBatch == "" {
			resp.Error = "quick-receive batch has no outbound load assigned"
			return nil
		}
		if _, err := d.repo.GetOutboundLoad(ctx, s.Batch.Load.OutboundBatch); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.Error = "outbound load " + s.Batch.Load.OutboundBatch + " not found"
				return nil
			}
			return fmt.Errorf("get outbound load: %w", err)
		}
	}

	p := d.buildPallet(s)

	if s.Pallet.CatchWeight {
		// Net weight is unknown until every box is weighed. Park the pallet
		// on the secondary session object and hand it to the weigh station.
		if err := d.sessions.PutSecondary(ctx, s.Operator, session.KeyCatchWeight, p); err != nil {
			return fmt.Errorf("park catch-weight pallet: %w", err)
		}
		d.publish(ctx, events.TopicHandoffCatchWeight, events.HandoffCatchWeight{
			Operator: s.Operator,
			Pallet:   p,
			Boxes:    p.Qty,
		})
		resp.Info = fmt.Sprintf("catch-weight pallet %s parked: weigh %d boxes", p.ID, p.Qty)
		s.Transition(model.OpCatchWeight)
		return nil
	}

	if err := d.commitPallet(ctx, s, p); err != nil {
		return err
	}
	return d.afterCommit(ctx, s, p, resp)
}

// buildPallet assembles the repository row from the session. A computed
// best-before (code date plus shelf life) is derived here when the customer
// profile asks for it and no scanned value is present.
func (d *Dispatcher) buildPallet(s *model.Session) *model.Pallet {
	bestBefore := s.Scans.BestBefore
	if bestBefore == "" && s.Pallet.Profile != nil &&
		s.Pallet.Profile.BestBeforeType == model.BestBeforeComputed &&
		s.Pallet.ShelfLifeDays > 0 && s.Pallet.Product != nil {
		if date, ok := parseDate(s.Scans.CodeDate, s.Pallet.Product.DateType); ok {
			bestBefore = date.AddDate(0, 0, s.Pallet.ShelfLifeDays).Format("01022006")
		}
	}

	return &model.Pallet{
		ID:             s.Pallet.PalletID,
		CustomerPallet: s.Pallet.CustomerPallet,
		BatchNumber:    s.Batch.Number,
		ProductCode:    s.Pallet.ProductCode,
		Lot:            s.Scans.Lot,
		CustomerLot:    s.Scans.CustomerLot,
		Qty:            s.Pallet.Qty,
		Weight:         s.Pallet.Weight,
		CodeDate:       s.Scans.CodeDate,
		BestBefore:     bestBefore,
		Establishment:  s.Scans.Establishment,
		SlaughterDate:  s.Scans.SlaughterDate,
		Reference:      s.Scans.Reference,
		Temperature:    s.Scans.Temperature,
		Consignee:      s.Scans.Consignee,
		BlastHold:      s.Pallet.BlastHold,
		HPPHold:        s.Pallet.HPPHold,
		ReceivedBy:     s.Operator,
		ReceivedAt:     d.now().UTC(),
	}
}

// commitPallet writes the pallet, its lot accumulation, the rotation date,
// and any holds in one transaction, then announces the commit.
func (d *Dispatcher) commitPallet(ctx context.Context, s *model.Session, p *model.Pallet) error {
	prod := s.Pallet.Product
	var holds []*model.Hold
	if p.BlastHold {
		h, err := d.newHold(p, model.HoldBlast)
		if err != nil {
			return err
		}
		holds = append(holds, h)
	}
	if p.HPPHold {
		h, err := d.newHold(p, model.HoldHPP)
		if err != nil {
			return err
		}
		holds = append(holds, h)
	}

	err := d.repo.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreatePallet(ctx, p); err != nil {
			return fmt.Errorf("create pallet %s: %w", p.ID, err)
		}
		if err := tx.UpsertLot(ctx, &model.Lot{
			Number:      lotNumber(p),
			BatchNumber: p.BatchNumber,
			ProductCode: p.ProductCode,
			Qty:         p.Qty,
			Weight:      p.Weight,
			CodeDate:    p.CodeDate,
			BestBefore:  p.BestBefore,
		}); err != nil {
			return fmt.Errorf("upsert lot: %w", err)
		}
		if prod != nil && prod.RotationRestrict {
			if date, ok := parseDate(p.CodeDate, prod.DateType); ok {
				if err := tx.RecordReceivedDate(ctx, prod, date); err != nil {
					return fmt.Errorf("record received date: %w", err)
				}
			}
		}
		for _, h := range holds {
			if err := tx.CreateHold(ctx, h); err != nil {
				return fmt.Errorf("create %s hold: %w", h.Kind, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.publish(ctx, events.TopicPalletCommitted, events.PalletCommitted{Pallet: p})
	for _, h := range holds {
		d.publish(ctx, events.TopicHoldCreated, events.HoldCreated{Hold: h})
	}
	return nil
}

func (d *Dispatcher) newHold(p *model.Pallet, kind model.HoldKind) (*model.Hold, error) {
	id, err := idgen.Generate(idgen.PrefixHold)
	if err != nil {
		return nil, err
	}
	return &model.Hold{
		ID:          id,
		BatchNumber: p.BatchNumber,
		Lot:         lotNumber(p),
		ProductCode: p.ProductCode,
		Kind:        kind,
		Status:      model.HoldHeld,
		CreatedAt:   d.now().UTC(),
	}, nil
}

// lotNumber picks the lot key the pallet accumulates under: the scanned lot
// when present, else the code date, else the pallet itself.
func lotNumber(p *model.Pallet) string {
	if p.Lot != "" {
		return p.Lot
	}
	if p.CodeDate != "" {
		return p.CodeDate
	}
	return p.ID
}

// afterCommit routes the session after a successful commit: cross-dock
// booking for quick-receive, merge hand-off for dynamic batches, otherwise
// the facility's post-commit prompts and back to the pallet scan.
func (d *Dispatcher) afterCommit(ctx context.Context, s *model.Session, p *model.Pallet, resp *model.ScanResponse) error {
	switch {
	case s.Batch.QuickReceive:
		outbound := s.Batch.Load.OutboundBatch
		if err := d.repo.BookCrossDock(ctx, p, outbound, d.profile.QuickReceiveGLCode, p.Weight); err != nil {
			return fmt.Errorf("book cross-dock: %w", err)
		}
		resp.Info = fmt.Sprintf("pallet %s booked to outbound load %s", p.ID, outbound)
		s.ResetBatch()
		return nil

	case s.Batch.Load != nil && s.Batch.Load.Dynamic:
		if err := d.sessions.PutSecondary(ctx, s.Operator, session.KeyMerge, p); err != nil {
			return fmt.Errorf("park merge pallet: %w", err)
		}
		d.publish(ctx, events.TopicHandoffMerge, events.HandoffMerge{
			Operator:    s.Operator,
			BatchNumber: s.Batch.Number,
			Pallet:      p,
		})
		resp.Info = fmt.Sprintf("pallet %s handed to merge", p.ID)
		s.ResetBatch()
		return nil

	case d.profile.PlatformPrompt:
		resp.Info = "pallet " + p.ID + " received"
		s.Transition(model.OpPlatformType)
		return nil

	case d.profile.PutAwayPrompt:
		resp.Info = "pallet " + p.ID + " received"
		s.Transition(model.OpPutAway)
		return nil

	default:
		resp.Info = "pallet " + p.ID + " received"
		s.ResetPallet()
		s.Transition(model.OpPallet)
		return nil
	}
}

// handlePlatformType records the platform type chosen from the facility's
// list, then continues to put-away or the next pallet.
func (d *Dispatcher) handlePlatformType(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	choice := strings.ToUpper(strings.TrimSpace(req.Value()))
	if !containsFold(d.profile.PlatformTypes, choice) {
		resp.Error = "platform type must be one of " + strings.Join(d.profile.PlatformTypes, ", ")
		return nil
	}
	if err := d.repo.SetPalletPlatform(ctx, s.Pallet.PalletID, choice); err != nil {
		return fmt.Errorf("set platform: %w", err)
	}
	s.Pallet.Platform = choice
	if d.profile.PutAwayPrompt {
		s.Transition(model.OpPutAway)
		return nil
	}
	s.ResetPallet()
	s.Transition(model.OpPallet)
	return nil
}

// handlePutAway records the put-away location and returns to the pallet scan.
func (d *Dispatcher) handlePutAway(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	loc := strings.TrimSpace(req.Value())
	if loc == "" {
		resp.Error = "scan the put-away location"
		return nil
	}
	if err := d.repo.SetPalletPutAway(ctx, s.Pallet.PalletID, loc); err != nil {
		return fmt.Errorf("set put-away: %w", err)
	}
	resp.Info = "pallet " + s.Pallet.PalletID + " put away at " + loc
	s.ResetPallet()
	s.Transition(model.OpPallet)
	return nil
}

// handleCatchWeight completes a parked catch-weight pallet with the total
// weighed weight and commits it.
func (d *Dispatcher) handleCatchWeight(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	raw := strings.TrimSpace(req.Value())
	weight, err := strconv.ParseFloat(raw, 64)
	if err != nil || weight <= 0 {
		resp.Error = fmt.Sprintf("weight %q must be a positive number of pounds", raw)
		return nil
	}

	var p model.Pallet
	if err := d.sessions.GetSecondary(ctx, s.Operator, session.KeyCatchWeight, &p); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			resp.Error = "no catch-weight pallet parked; start over"
			s.ResetPallet()
			s.Transition(model.OpPallet)
			return nil
		}
		return fmt.Errorf("load parked pallet: %w", err)
	}

	p.Weight = weight
	s.Pallet.Weight = weight
	if err := d.commitPallet(ctx, s, &p); err != nil {
		return err
	}
	if err := d.sessions.DeleteSecondary(ctx, s.Operator, session.KeyCatchWeight); err != nil {
		d.logger.Error("delete parked pallet", "operator", s.Operator, "err", err)
	}
	return d.afterCommit(ctx, s, &p, resp)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
