package model

import "time"

// Session is the unit of work threaded through every terminal request for
// one operator. It is loaded, mutated by exactly one step handler, and
// fully replaced in the session store on success.
type Session struct {
	Operator string `json:"operator"`
	Terminal string `json:"terminal"`
	CurOp    Op     `json:"cur_op"`
	PrevOp   Op     `json:"prev_op,omitempty"`

	Batch  BatchContext  `json:"batch"`
	Pallet PalletContext `json:"pallet"`
	Gates  Gates         `json:"gates"`
	Scans  Scans         `json:"scans"`
	Flags  Flags         `json:"flags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns a fresh session positioned at the batch scan.
func NewSession(operator, terminal string) *Session {
	now := time.Now().UTC()
	return &Session{
		Operator:  operator,
		Terminal:  terminal,
		CurOp:     OpBatch,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition records a state change, keeping PrevOp for handlers that need
// to know where the session came from (reachability, confirmations).
func (s *Session) Transition(next Op) {
	s.PrevOp = s.CurOp
	s.CurOp = next
}

// ResetPallet clears the pallet-in-progress context and accumulated scans
// so the next pallet in the same batch starts clean. Old* shadow copies are
// refreshed first so the copy-previous shortcut can restore them.
func (s *Session) ResetPallet() {
	s.Scans.shadow()
	s.Pallet = PalletContext{}
	s.Scans.clearCurrent()
	s.Flags = Flags{}
}

// ResetBatch returns the session to a clean batch scan, dropping all batch
// and pallet context.
func (s *Session) ResetBatch() {
	s.Batch = BatchContext{}
	s.Pallet = PalletContext{}
	s.Gates = Gates{}
	s.Scans = Scans{}
	s.Flags = Flags{}
	s.Transition(OpBatch)
}

// BatchContext is the cached load snapshot for the batch being received.
type BatchContext struct {
	Number        string `json:"number"`
	Load          *Batch `json:"load,omitempty"`
	QuickReceive  bool   `json:"quick_receive"`
	MultiReceiver bool   `json:"multi_receiver"`
}

// PalletContext is the pallet being built up across requests, including
// product-master values cached at product-scan time.
type PalletContext struct {
	PalletID       string       `json:"pallet_id,omitempty"`
	CustomerPallet string       `json:"customer_pallet,omitempty"`
	ProductCode    string       `json:"product_code,omitempty"`
	Product        *Product     `json:"product,omitempty"`
	Profile        *ScanProfile `json:"profile,omitempty"`
	ASN            *ASN         `json:"asn,omitempty"`

	Qty    int     `json:"qty,omitempty"`
	Weight float64 `json:"weight,omitempty"`

	// Cached product-master attributes consulted by handlers.
	Tie           int  `json:"tie,omitempty"`
	High          int  `json:"high,omitempty"`
	ShelfLifeDays int  `json:"shelf_life_days,omitempty"`
	CatchWeight   bool `json:"catch_weight,omitempty"`
	BlastFreeze   bool `json:"blast_freeze,omitempty"`
	HPP           bool `json:"hpp,omitempty"`

	// Outcomes of the blast/HPP hold hook.
	BlastHold bool `json:"blast_hold,omitempty"`
	HPPHold   bool `json:"hpp_hold,omitempty"`

	Platform string `json:"platform,omitempty"`
	PutAway  string `json:"put_away,omitempty"`
}

// CacheProduct snapshots the product master onto the pallet context.
func (p *PalletContext) CacheProduct(prod *Product) {
	p.Product = prod
	p.ProductCode = prod.Code
	p.Tie = prod.Tie
	p.High = prod.High
	p.ShelfLifeDays = prod.ShelfLifeDays
	p.CatchWeight = prod.CatchWeight
	p.BlastFreeze = prod.BlastFreeze
	p.HPP = prod.HPP
}

// Scans holds the accumulated scan values plus Old* shadow copies of the
// previous pallet used by the copy-previous shortcut.
type Scans struct {
	Lot           string `json:"lot,omitempty"`
	CustomerLot   string `json:"customer_lot,omitempty"`
	Establishment string `json:"establishment,omitempty"`
	SlaughterDate string `json:"slaughter_date,omitempty"`
	Reference     string `json:"reference,omitempty"`
	Temperature   string `json:"temperature,omitempty"`
	CodeDate      string `json:"code_date,omitempty"`
	BestBefore    string `json:"best_before,omitempty"`
	Consignee     string `json:"consignee,omitempty"`

	OldLot           string `json:"old_lot,omitempty"`
	OldCustomerLot   string `json:"old_customer_lot,omitempty"`
	OldEstablishment string `json:"old_establishment,omitempty"`
	OldSlaughterDate string `json:"old_slaughter_date,omitempty"`
	OldReference     string `json:"old_reference,omitempty"`
	OldCodeDate      string `json:"old_code_date,omitempty"`
	OldBestBefore    string `json:"old_best_before,omitempty"`
}

func (sc *Scans) shadow() {
	sc.OldLot = sc.Lot
	sc.OldCustomerLot = sc.CustomerLot
	sc.OldEstablishment = sc.Establishment
	sc.OldSlaughterDate = sc.SlaughterDate
	sc.OldReference = sc.Reference
	sc.OldCodeDate = sc.CodeDate
	sc.OldBestBefore = sc.BestBefore
}

func (sc *Scans) clearCurrent() {
	sc.Lot = ""
	sc.CustomerLot = ""
	sc.Establishment = ""
	sc.SlaughterDate = ""
	sc.Reference = ""
	sc.Temperature = ""
	sc.CodeDate = ""
	sc.BestBefore = ""
	sc.Consignee = ""
}

// CopyPrevious restores the Old* shadow values into the current scan slots.
// Temperature is never copied; it must be taken per pallet.
func (sc *Scans) CopyPrevious() {
	sc.Lot = sc.OldLot
	sc.CustomerLot = sc.OldCustomerLot
	sc.Establishment = sc.OldEstablishment
	sc.SlaughterDate = sc.OldSlaughterDate
	sc.Reference = sc.OldReference
	sc.CodeDate = sc.OldCodeDate
	sc.BestBefore = sc.OldBestBefore
}

// Flags are transient per-pallet UI and override markers.
type Flags struct {
	LabelUsed   bool     `json:"label_used,omitempty"`   // F9 label print requested
	CopyUsed    bool     `json:"copy_used,omitempty"`    // F6 copy-previous shortcut taken
	QtyOverride int      `json:"qty_override,omitempty"` // accepted mismatched qty; not re-asked for this value
	PendingDate string   `json:"pending_date,omitempty"` // date awaiting rotation keep-or-change
	NewestDate  string   `json:"newest_date,omitempty"`  // most recent received date that tripped rotation
	LotToggled  bool     `json:"lot_toggled,omitempty"`  // operator toggled the lot requirement
	Skipped     []string `json:"skipped,omitempty"`      // optional fields skipped via the skip key
}

// MarkSkipped records that the operator skipped an optional field.
func (f *Flags) MarkSkipped(op Op) {
	if f.WasSkipped(op) {
		return
	}
	f.Skipped = append(f.Skipped, string(op))
}

// WasSkipped reports whether an optional field was skipped for this pallet.
func (f *Flags) WasSkipped(op Op) bool {
	for _, s := range f.Skipped {
		if s == string(op) {
			return true
		}
	}
	return false
}
