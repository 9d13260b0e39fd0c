package store

import (
	"context"
	"errors"
	"time"

	"github.com/groblegark/dockhand/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store defines the inventory repository consumed by the receiving core.
type Store interface {
	// Batch / load records
	GetBatch(ctx context.Context, number string) (*model.Batch, error)
	UpdateBatchStatus(ctx context.Context, number string, status model.BatchStatus) error
	UpdateLoadFinish(ctx context.Context, number string, finished time.Time, scanStatus string) error

	// Master data
	GetProduct(ctx context.Context, code, customer string) (*model.Product, error)
	GetScanProfile(ctx context.Context, customer string) (*model.ScanProfile, error)
	GetASN(ctx context.Context, batchNumber, productCode string) (*model.ASN, error)

	// Pallets and lots
	CreatePallet(ctx context.Context, p *model.Pallet) error
	DeletePallet(ctx context.Context, id string) error
	SetPalletPlatform(ctx context.Context, id, platform string) error
	SetPalletPutAway(ctx context.Context, id, location string) error
	ListPallets(ctx context.Context, batchNumber string) ([]*model.Pallet, error)
	UpsertLot(ctx context.Context, lot *model.Lot) error
	UpdateLotTotals(ctx context.Context, lot *model.Lot) error
	DeleteEmptyLots(ctx context.Context, batchNumber string) (int, error)
	AggregateLotTotals(ctx context.Context, batchNumber string) ([]*model.Lot, error)

	// Rotation restriction support
	LatestReceivedDate(ctx context.Context, productCode, customer, owner, supplierProduct string) (time.Time, error)
	RecordReceivedDate(ctx context.Context, p *model.Product, date time.Time) error

	// Audit and holds
	RecordProblem(ctx context.Context, p *model.Problem) error
	CreateHold(ctx context.Context, h *model.Hold) error
	ResolveHolds(ctx context.Context, batchNumber string) (int, error)

	// Quick-receive (cross-dock)
	GetOutboundLoad(ctx context.Context, number string) (*model.Batch, error)
	BookCrossDock(ctx context.Context, p *model.Pallet, outboundBatch, glCode string, proratedWeight float64) error

	// Shipment confirmations
	OpenShipmentConfirmation(ctx context.Context, batchNumber string) (*model.ShipmentConfirmation, error)
	AutoReceive(ctx context.Context, confirmationID string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
