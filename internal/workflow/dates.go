package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/groblegark/dockhand/internal/idgen"
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/rules"
)

// handleDate validates the scanned code date against the product's date
// type and the facility year window, then checks the rotation restriction.
// A hard violation re-renders the same screen with an explanation and an
// already-resolved audit entry; a rotation hit routes to the keep-or-change
// confirmation.
func (d *Dispatcher) handleDate(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	raw := strings.TrimSpace(req.Value())
	if raw == "" {
		resp.Error = "scan a code date"
		return nil
	}

	prod := s.Pallet.Product
	now := d.now().UTC()
	date, v := rules.CheckCodeDate(raw, prod, now, d.profile.DateYearsBack)
	if v != nil {
		resp.Error = v.Explanation
		return d.recordViolation(ctx, s, v)
	}

	if prod.RotationRestrict {
		newest, err := d.repo.LatestReceivedDate(ctx, prod.Code, prod.Customer, prod.Owner, prod.SupplierProduct)
		if err != nil {
			return err
		}
		if rv := rules.CheckRotation(date, newest); rv != nil {
			s.Flags.PendingDate = raw
			s.Flags.NewestDate = newest.Format("2006-01-02")
			resp.Warn = rv.Explanation
			s.Transition(model.OpRotationConfirm)
			return nil
		}
	}

	s.Scans.CodeDate = raw
	s.Transition(model.OpQty)
	return nil
}

// handleRotationConfirm resolves a rotation warning: Y keeps the older date
// and writes an audit entry, N discards it and returns to the date scan.
func (d *Dispatcher) handleRotationConfirm(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	switch yesNo(req.Value()) {
	case "Y":
		s.Scans.CodeDate = s.Flags.PendingDate
		v := &rules.Violation{
			Code: model.ProblemRotation,
			Explanation: "operator kept date " + s.Flags.PendingDate +
				" older than most recent received " + s.Flags.NewestDate,
		}
		s.Flags.PendingDate = ""
		s.Flags.NewestDate = ""
		s.Transition(model.OpQty)
		return d.recordViolation(ctx, s, v)
	case "N":
		s.Flags.PendingDate = ""
		s.Flags.NewestDate = ""
		s.Transition(model.OpDate)
		return nil
	default:
		resp.Error = "enter Y to keep the date or N to rescan"
		return nil
	}
}

// recordViolation writes a resolved audit entry for a rejected or accepted
// rule evaluation. Audit failures do not block the scan.
func (d *Dispatcher) recordViolation(ctx context.Context, s *model.Session, v *rules.Violation) error {
	id, err := idgen.Generate(idgen.PrefixProblem)
	if err != nil {
		return err
	}
	p := &model.Problem{
		ID:          id,
		Operator:    s.Operator,
		BatchNumber: s.Batch.Number,
		PalletID:    s.Pallet.PalletID,
		ProductCode: s.Pallet.ProductCode,
		Code:        v.Code,
		Explanation: v.Explanation,
		Resolved:    true,
		CreatedAt:   d.now().UTC(),
	}
	if err := d.repo.RecordProblem(ctx, p); err != nil {
		d.logger.Error("record problem", "code", p.Code, "err", err)
	}
	return nil
}

// yesNo normalizes a confirmation input.
func yesNo(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "Y", "YES":
		return "Y"
	case "N", "NO":
		return "N"
	}
	return ""
}

// parseDate re-parses an already validated code-date scan. Used at commit
// time to compute derived dates.
func parseDate(raw string, dt model.DateType) (time.Time, bool) {
	switch dt {
	case model.DateJulian:
		t, v := rules.ParseJulian(raw)
		return t, v == nil
	case model.DateGregorian:
		t, v := rules.ParseGregorian(raw)
		return t, v == nil
	}
	return time.Time{}, false
}
