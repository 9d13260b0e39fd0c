package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/store"
)

const (
	maxBatchLen  = 8
	maxPalletLen = 18
)

// handleBatch starts (or joins) receiving for a batch. The scan-requirement
// gates are derived here, once per batch, from the customer's profile.
func (d *Dispatcher) handleBatch(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	number := strings.TrimSpace(req.Value())
	if number == "" {
		resp.Error = "scan a batch number"
		return nil
	}
	if len(number) > maxBatchLen || !isDigits(number) {
		resp.Error = fmt.Sprintf("batch number %q must be numeric, up to %d digits", number, maxBatchLen)
		return nil
	}

	batch, err := d.repo.GetBatch(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		resp.Error = "batch " + number + " not found"
		return nil
	}
	if err != nil {
		return fmt.Errorf("get batch %s: %w", number, err)
	}
	if batch.Status == model.BatchClosed {
		resp.Error = "batch " + number + " is already closed"
		return nil
	}

	profile, err := d.repo.GetScanProfile(ctx, batch.Customer)
	if errors.Is(err, store.ErrNotFound) {
		// No profile on file: nothing extra is required.
		profile = &model.ScanProfile{Customer: batch.Customer}
	} else if err != nil {
		return fmt.Errorf("get scan profile for %s: %w", batch.Customer, err)
	}

	s.Batch = model.BatchContext{
		Number:       number,
		Load:         batch,
		QuickReceive: batch.QuickReceive,
	}
	s.Gates = profile.Gates()
	s.Pallet = model.PalletContext{Profile: profile}
	s.Scans = model.Scans{}
	s.Flags = model.Flags{}

	if batch.Status == model.BatchReceiving {
		// Another operator already started this batch.
		s.Batch.MultiReceiver = true
		resp.Info = "joining batch " + number + " in progress"
	} else {
		if err := d.repo.UpdateBatchStatus(ctx, number, model.BatchReceiving); err != nil {
			return fmt.Errorf("start batch %s: %w", number, err)
		}
		d.publish(ctx, events.TopicBatchStarted, events.BatchStarted{
			BatchNumber: number,
			Operator:    s.Operator,
		})
	}
	if s.Batch.QuickReceive {
		resp.Warn = "quick-receive batch: pallets book to outbound load " + batch.OutboundBatch
	}

	// Header context for the terminal's status line.
	resp.SetAux("customer", batch.Customer)
	if batch.Door != "" {
		resp.SetAux("door", batch.Door)
	}

	s.Transition(model.OpPallet)
	return nil
}

// handlePallet records the pallet id and routes to the customer-pallet or
// product scan depending on the customer configuration.
func (d *Dispatcher) handlePallet(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	id := strings.TrimSpace(req.Value())
	if id == "" {
		resp.Error = "scan a pallet id"
		return nil
	}
	if len(id) > maxPalletLen {
		resp.Error = fmt.Sprintf("pallet id longer than %d characters", maxPalletLen)
		return nil
	}

	s.Pallet.PalletID = id
	if s.Pallet.Profile != nil && s.Pallet.Profile.UseCustomerPallet {
		s.Transition(model.OpCustomPallet)
	} else {
		s.Transition(model.OpProduct)
	}
	return nil
}

// handleCustomPallet records the customer's own pallet id.
func (d *Dispatcher) handleCustomPallet(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	id := strings.TrimSpace(req.Value())
	if id == "" {
		resp.Error = "scan the customer pallet id"
		return nil
	}
	if len(id) > maxPalletLen {
		resp.Error = fmt.Sprintf("customer pallet id longer than %d characters", maxPalletLen)
		return nil
	}
	s.Pallet.CustomerPallet = id
	s.Transition(model.OpProduct)
	return nil
}

// handleProduct caches the product master on the session and routes to the
// date or quantity scan depending on the product's date type. When an EDI
// advance-ship-notice exists its code date pre-fills the next screen.
func (d *Dispatcher) handleProduct(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	code := strings.TrimSpace(req.Value())
	if code == "" {
		resp.Error = "scan a product code"
		return nil
	}

	customer := s.Batch.Load.Customer
	prod, err := d.repo.GetProduct(ctx, code, customer)
	if errors.Is(err, store.ErrNotFound) {
		resp.Error = "product " + code + " not on file for " + customer
		return nil
	}
	if err != nil {
		return fmt.Errorf("get product %s: %w", code, err)
	}

	s.Pallet.CacheProduct(prod)

	if prod.DateType != model.DateNone {
		if asn, err := d.repo.GetASN(ctx, s.Batch.Number, code); err == nil {
			s.Pallet.ASN = asn
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("get asn for %s/%s: %w", s.Batch.Number, code, err)
		}
		s.Transition(model.OpDate)
	} else {
		s.Transition(model.OpQty)
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
