package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/rules"
	"github.com/groblegark/dockhand/internal/sequence"
)

const (
	maxLotLen           = 20
	maxEstablishmentLen = 10
	maxReferenceLen     = 20
	maxConsigneeLen     = 10
)

// advance moves past the field just filled to the next enabled, unfilled
// step in the fixed sequence.
func (d *Dispatcher) advance(s *model.Session, from model.Op) {
	s.Transition(sequence.Next(from, s.Gates, s.Scans, s.Flags))
}

func (d *Dispatcher) handleLot(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	lot := strings.TrimSpace(req.Value())
	if lot == "" {
		resp.Error = "scan a lot number"
		return nil
	}
	if len(lot) > maxLotLen || !isAlnum(lot) {
		resp.Error = fmt.Sprintf("lot %q must be alphanumeric, up to %d characters", lot, maxLotLen)
		return nil
	}
	s.Scans.Lot = lot
	d.advance(s, model.OpLot)
	return nil
}

func (d *Dispatcher) handleCustomerLot(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	lot := strings.TrimSpace(req.Value())
	if lot == "" {
		resp.Error = "scan the customer lot"
		return nil
	}
	if len(lot) > maxLotLen {
		resp.Error = fmt.Sprintf("customer lot longer than %d characters", maxLotLen)
		return nil
	}
	s.Scans.CustomerLot = lot
	d.advance(s, model.OpCustomerLot)
	return nil
}

func (d *Dispatcher) handleEstablishment(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	est := strings.TrimSpace(req.Value())
	if est == "" {
		resp.Error = "scan the establishment number"
		return nil
	}
	if len(est) > maxEstablishmentLen {
		resp.Error = fmt.Sprintf("establishment number longer than %d characters", maxEstablishmentLen)
		return nil
	}
	s.Scans.Establishment = est
	d.advance(s, model.OpEstablishment)
	return nil
}

// handleSlaughterDate takes MMDD, MMDDYY, or MMDDYYYY and rejects future
// dates: an animal cannot be slaughtered tomorrow.
func (d *Dispatcher) handleSlaughterDate(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	raw := strings.TrimSpace(req.Value())
	if raw == "" {
		resp.Error = "scan the slaughter date"
		return nil
	}
	now := d.now().UTC()
	date, v := rules.ParseSlaughterDate(raw, now)
	if v != nil {
		resp.Error = v.Explanation
		return nil
	}
	if date.After(now) {
		resp.Error = "slaughter date " + date.Format("2006-01-02") + " is in the future"
		return nil
	}
	s.Scans.SlaughterDate = raw
	d.advance(s, model.OpSlaughterDate)
	return nil
}

func (d *Dispatcher) handleReference(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	ref := strings.TrimSpace(req.Value())
	if ref == "" {
		resp.Error = "scan the reference"
		return nil
	}
	if len(ref) > maxReferenceLen {
		resp.Error = fmt.Sprintf("reference longer than %d characters", maxReferenceLen)
		return nil
	}
	s.Scans.Reference = ref
	d.advance(s, model.OpReference)
	return nil
}

func (d *Dispatcher) handleTemperature(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	raw := strings.TrimSpace(req.Value())
	temp, err := parseTemp(raw)
	if err != nil {
		resp.Error = err.Error()
		return nil
	}
	s.Scans.Temperature = temp
	d.advance(s, model.OpTemperature)
	return nil
}

// handleBestBefore takes a gregorian best-before date and warns (without
// blocking) when the product is close to or past expiry.
func (d *Dispatcher) handleBestBefore(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	raw := strings.TrimSpace(req.Value())
	if raw == "" {
		resp.Error = "scan the best-before date"
		return nil
	}
	date, v := rules.ParseGregorian(raw)
	if v != nil {
		resp.Error = v.Explanation
		return nil
	}
	if warn := rules.ExpiryWarning(date, d.now().UTC()); warn != "" {
		resp.Warn = warn
		ev := &rules.Violation{Code: model.ProblemExpiryNear, Explanation: warn}
		if err := d.recordViolation(ctx, s, ev); err != nil {
			return err
		}
	}
	s.Scans.BestBefore = raw
	d.advance(s, model.OpBestBefore)
	return nil
}

func (d *Dispatcher) handleConsignee(_ context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	c := strings.TrimSpace(req.Value())
	if c == "" {
		resp.Error = "scan the consignee code"
		return nil
	}
	if len(c) > maxConsigneeLen {
		resp.Error = fmt.Sprintf("consignee code longer than %d characters", maxConsigneeLen)
		return nil
	}
	s.Scans.Consignee = c
	d.advance(s, model.OpConsignee)
	return nil
}

func isAlnum(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return len(s) > 0
}

// parseTemp validates a temperature reading in degrees Fahrenheit.
func parseTemp(raw string) (string, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("temperature %q is not a number", raw)
	}
	if f < -60 || f > 120 {
		return "", fmt.Errorf("temperature %.1f out of range (-60 to 120)", f)
	}
	return raw, nil
}
