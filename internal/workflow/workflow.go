// Package workflow drives the scan-by-scan receiving session: the
// operation dispatcher, one step handler per state, and the sub-flow
// controllers (catch-weight, blast/HPP, quick-receive, pallet merge,
// put-away). The session is loaded per request, mutated by exactly one
// handler, and fully replaced in the session store on success.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/facility"
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/session"
	"github.com/groblegark/dockhand/internal/store"
)

// Dispatcher is the top-level entry point for terminal requests.
type Dispatcher struct {
	sessions session.Store
	repo     store.Store
	pub      events.Publisher
	profile  *facility.Profile
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a dispatcher.
func New(sessions session.Store, repo store.Store, pub events.Publisher, profile *facility.Profile, logger *slog.Logger) *Dispatcher {
	if profile == nil {
		profile = facility.Default()
	}
	return &Dispatcher{
		sessions: sessions,
		repo:     repo,
		pub:      pub,
		profile:  profile,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle processes one terminal request: load or create the session, apply
// global commands, route by current state, persist, respond. A non-nil
// error means an infrastructure failure; the previously persisted session
// is left untouched in that case. Validation failures come back in the
// response with the same state re-rendered.
func (d *Dispatcher) Handle(ctx context.Context, req *model.ScanRequest) (*model.ScanResponse, error) {
	if req.Operator == "" {
		return nil, fmt.Errorf("missing operator id")
	}

	s, err := d.sessions.Get(ctx, req.Operator)
	if errors.Is(err, session.ErrNotFound) {
		s = model.NewSession(req.Operator, req.Terminal)
	} else if err != nil {
		return nil, fmt.Errorf("load session for %s: %w", req.Operator, err)
	}

	resp := &model.ScanResponse{}

	// A stale terminal can submit input for a screen the session already
	// left. When the request asserts its state and the session disagrees,
	// re-render the live screen without consuming the input.
	if req.OpHint != "" && req.OpHint != s.CurOp {
		resp.Warn = fmt.Sprintf("screen out of date: session is at %s, not %s", s.CurOp, req.OpHint)
		d.finishResponse(s, resp)
		return resp, nil
	}

	// Global commands apply independent of the current state.
	handled, err := d.applyCommand(ctx, s, req, resp)
	if err != nil {
		return nil, err
	}
	if !handled {
		if err := d.route(ctx, s, req, resp); err != nil {
			return nil, err
		}
	}

	s.UpdatedAt = d.now().UTC()
	d.finishResponse(s, resp)

	if err := d.sessions.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session for %s: %w", req.Operator, err)
	}
	return resp, nil
}

// route dispatches to exactly one step handler by current state.
func (d *Dispatcher) route(ctx context.Context, s *model.Session, req *model.ScanRequest, resp *model.ScanResponse) error {
	switch s.CurOp {
	case model.OpBatch:
		return d.handleBatch(ctx, s, req, resp)
	case model.OpPallet:
		return d.handlePallet(ctx, s, req, resp)
	case model.OpCustomPallet:
		return d.handleCustomPallet(ctx, s, req, resp)
	case model.OpProduct:
		return d.handleProduct(ctx, s, req, resp)
	case model.OpDate:
		return d.handleDate(ctx, s, req, resp)
	case model.OpQty:
		return d.handleQty(ctx, s, req, resp)
	case model.OpQtyConfirm:
		return d.handleQtyConfirm(ctx, s, req, resp)
	case model.OpRotationConfirm:
		return d.handleRotationConfirm(ctx, s, req, resp)
	case model.OpLot:
		return d.handleLot(ctx, s, req, resp)
	case model.OpCustomerLot:
		return d.handleCustomerLot(ctx, s, req, resp)
	case model.OpEstablishment:
		return d.handleEstablishment(ctx, s, req, resp)
	case model.OpSlaughterDate:
		return d.handleSlaughterDate(ctx, s, req, resp)
	case model.OpReference:
		return d.handleReference(ctx, s, req, resp)
	case model.OpTemperature:
		return d.handleTemperature(ctx, s, req, resp)
	case model.OpBestBefore:
		return d.handleBestBefore(ctx, s, req, resp)
	case model.OpConsignee:
		return d.handleConsignee(ctx, s, req, resp)
	case model.OpBlastConfirm:
		return d.handleBlastConfirm(ctx, s, req, resp)
	case model.OpSendPallet:
		return d.handleSendPallet(ctx, s, req, resp)
	case model.OpPlatformType:
		return d.handlePlatformType(ctx, s, req, resp)
	case model.OpPutAway:
		return d.handlePutAway(ctx, s, req, resp)
	case model.OpCatchWeight:
		return d.handleCatchWeight(ctx, s, req, resp)
	default:
		// Unknown persisted state; recover to a clean batch scan rather
		// than stranding the terminal.
		d.logger.Error("session in unknown state", "operator", s.Operator, "op", s.CurOp)
		s.ResetBatch()
		resp.Error = "session reset: unknown state"
		return nil
	}
}

// finishResponse fills the state, screen, and function keys the terminal
// renders next. Handlers may pre-populate the screen (e.g. with defaults).
func (d *Dispatcher) finishResponse(s *model.Session, resp *model.ScanResponse) {
	resp.Op = s.CurOp
	if resp.Screen == nil {
		resp.Screen = d.screenFor(s)
	}
	if resp.Keys == nil {
		resp.Keys = d.keysFor(s.CurOp)
	}
}

// publish emits an event, logging instead of failing the request when the
// bus is unavailable.
func (d *Dispatcher) publish(ctx context.Context, topic string, event any) {
	if err := d.pub.Publish(ctx, topic, event); err != nil {
		d.logger.Error("publish event", "topic", topic, "err", err)
	}
}

// palletInProgress reports whether the session is mid-pallet (past the
// pallet scan, before commit).
func palletInProgress(s *model.Session) bool {
	return s.Pallet.PalletID != "" || s.Pallet.ProductCode != ""
}
