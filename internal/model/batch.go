package model

import "time"

// BatchStatus tracks where an inbound load is in its lifecycle.
type BatchStatus string

const (
	BatchOpen      BatchStatus = "open"
	BatchReceiving BatchStatus = "receiving"
	BatchComplete  BatchStatus = "complete" // operator signalled done; close pending
	BatchClosed    BatchStatus = "closed"
)

// String returns the string representation of the status.
func (s BatchStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchOpen, BatchReceiving, BatchComplete, BatchClosed:
		return true
	}
	return false
}

// Batch is the load record for one inbound shipment.
type Batch struct {
	Number        string      `json:"number"`
	Customer      string      `json:"customer"`
	Warehouse     string      `json:"warehouse"`
	Door          string      `json:"door,omitempty"`
	Status        BatchStatus `json:"status"`
	QuickReceive  bool        `json:"quick_receive"` // cross-dock: pallets book straight to an outbound batch
	Dynamic       bool        `json:"dynamic"`       // dynamically slotted; pallets hand off to the merge workflow
	OutboundBatch string      `json:"outbound_batch,omitempty"`
	Carrier       string      `json:"carrier,omitempty"`
	ScanStarted   *time.Time  `json:"scan_started,omitempty"`
	ScanFinished  *time.Time  `json:"scan_finished,omitempty"`
}

// Pallet is one physical unit received against a batch. It is committed to
// the repository only when the session reaches the send-pallet state.
type Pallet struct {
	ID             string    `json:"id"`
	CustomerPallet string    `json:"customer_pallet,omitempty"`
	BatchNumber    string    `json:"batch_number"`
	ProductCode    string    `json:"product_code"`
	Lot            string    `json:"lot,omitempty"`
	CustomerLot    string    `json:"customer_lot,omitempty"`
	Qty            int       `json:"qty"`
	Weight         float64   `json:"weight"`
	CodeDate       string    `json:"code_date,omitempty"`
	BestBefore     string    `json:"best_before,omitempty"`
	Establishment  string    `json:"establishment,omitempty"`
	SlaughterDate  string    `json:"slaughter_date,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	Temperature    string    `json:"temperature,omitempty"`
	Consignee      string    `json:"consignee,omitempty"`
	Platform       string    `json:"platform,omitempty"`
	PutAway        string    `json:"put_away,omitempty"`
	BlastHold      bool      `json:"blast_hold,omitempty"`
	HPPHold        bool      `json:"hpp_hold,omitempty"`
	ReceivedBy     string    `json:"received_by"`
	ReceivedAt     time.Time `json:"received_at"`
}

// Lot aggregates received quantity and weight for one lot of one product
// within a batch.
type Lot struct {
	Number      string  `json:"number"`
	BatchNumber string  `json:"batch_number"`
	ProductCode string  `json:"product_code"`
	Qty         int     `json:"qty"`
	Weight      float64 `json:"weight"`
	CodeDate    string  `json:"code_date,omitempty"`
	BestBefore  string  `json:"best_before,omitempty"`
}

// HoldKind distinguishes the two inbound hold flavors.
type HoldKind string

const (
	HoldBlast HoldKind = "blast"
	HoldHPP   HoldKind = "hpp"
)

// HoldStatus is the lifecycle state of a hold.
type HoldStatus string

const (
	HoldHeld     HoldStatus = "held"
	HoldReleased HoldStatus = "released"
)

// Hold is a blast-freeze or HPP restriction applied to a lot at receipt
// and resolved during batch close.
type Hold struct {
	ID          string     `json:"id"`
	BatchNumber string     `json:"batch_number"`
	Lot         string     `json:"lot"`
	ProductCode string     `json:"product_code"`
	Kind        HoldKind   `json:"kind"`
	Status      HoldStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
}

// ASN is an advance-ship-notice line used to pre-fill the code date and
// lot when the supplier sent one via EDI.
type ASN struct {
	BatchNumber string `json:"batch_number"`
	ProductCode string `json:"product_code"`
	Lot         string `json:"lot,omitempty"`
	CodeDate    string `json:"code_date,omitempty"`
	Qty         int    `json:"qty,omitempty"`
}

// ShipmentConfirmation is an open confirmation the batch-close
// reconciliation can auto-receive against.
type ShipmentConfirmation struct {
	ID          string `json:"id"`
	BatchNumber string `json:"batch_number"`
	Open        bool   `json:"open"`
}
