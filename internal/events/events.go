package events

import (
	"context"

	"github.com/groblegark/dockhand/internal/model"
)

// Event topic constants
const (
	TopicPalletCommitted = "receiving.pallet.committed"
	TopicPalletLabeled   = "receiving.pallet.labeled"

	// Batch lifecycle. TopicBatchComplete is the operator's done signal;
	// the close orchestrator consumes it after a settle delay and publishes
	// TopicBatchClosed when reconciliation finishes.
	TopicBatchStarted  = "receiving.batch.started"
	TopicBatchComplete = "receiving.batch.complete"
	TopicBatchClosed   = "receiving.batch.closed"
	TopicMoveToYard    = "receiving.batch.move_to_yard"

	// Sub-flow hand-offs. Ownership of the pallet transfers with the
	// message; the cooperating workflow reads its payload from the
	// operator's secondary session object.
	TopicHandoffCatchWeight = "receiving.handoff.catchweight"
	TopicHandoffMerge       = "receiving.handoff.merge"

	TopicHoldCreated  = "receiving.hold.created"
	TopicHoldReleased = "receiving.hold.released"
)

// Event types

type PalletCommitted struct {
	Pallet *model.Pallet `json:"pallet"`
}

type PalletLabeled struct {
	PalletID string `json:"pallet_id"`
	Printer  string `json:"printer,omitempty"`
}

type BatchStarted struct {
	BatchNumber string `json:"batch_number"`
	Operator    string `json:"operator"`
}

type BatchComplete struct {
	BatchNumber string `json:"batch_number"`
	Operator    string `json:"operator"`
}

type BatchClosed struct {
	BatchNumber   string `json:"batch_number"`
	LotsUpdated   int    `json:"lots_updated"`
	HoldsReleased int    `json:"holds_released"`
}

type MoveToYard struct {
	BatchNumber string `json:"batch_number"`
	Door        string `json:"door,omitempty"`
}

type HandoffCatchWeight struct {
	Operator string        `json:"operator"`
	Pallet   *model.Pallet `json:"pallet"`
	Boxes    int           `json:"boxes"`
}

type HandoffMerge struct {
	Operator    string        `json:"operator"`
	BatchNumber string        `json:"batch_number"`
	Pallet      *model.Pallet `json:"pallet"`
}

type HoldCreated struct {
	Hold *model.Hold `json:"hold"`
}

type HoldReleased struct {
	BatchNumber string `json:"batch_number"`
	Count       int    `json:"count"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
