package model

// DateType selects which code-date representation a product uses.
type DateType string

const (
	DateNone      DateType = "none"
	DateJulian    DateType = "julian"
	DateGregorian DateType = "gregorian"
)

// String returns the string representation of the date type.
func (d DateType) String() string {
	return string(d)
}

// IsValid checks whether the date type is a known value.
func (d DateType) IsValid() bool {
	switch d {
	case DateNone, DateJulian, DateGregorian:
		return true
	}
	return false
}

// PickCode controls lot selection at pick time. Sell-by and FIFO products
// get a different code-date year window because their scanned date lies in
// the future of the production date by up to the shelf life.
type PickCode string

const (
	PickNone   PickCode = ""
	PickFIFO   PickCode = "FIFO"
	PickSellBy PickCode = "SELLBY"
)

// ShiftsDateWindow reports whether the pick code moves the allowed
// code-date year window forward by the product's shelf life.
func (p PickCode) ShiftsDateWindow() bool {
	return p == PickFIFO || p == PickSellBy
}

// Product is the product-master snapshot cached on the session while a
// pallet of that product is being received.
type Product struct {
	Code             string   `json:"code"`
	Owner            string   `json:"owner,omitempty"`
	SupplierProduct  string   `json:"supplier_product,omitempty"`
	Customer         string   `json:"customer"`
	Description      string   `json:"description,omitempty"`
	Tie              int      `json:"tie"`
	High             int      `json:"high"`
	ShelfLifeDays    int      `json:"shelf_life_days"`
	DateType         DateType `json:"date_type"`
	PickCode         PickCode `json:"pick_code,omitempty"`
	CatchWeight      bool     `json:"catch_weight"`
	BlastFreeze      bool     `json:"blast_freeze"`
	HPP              bool     `json:"hpp"`
	RotationRestrict bool     `json:"rotation_restrict"`
	NetWeight        float64  `json:"net_weight,omitempty"` // per case, pounds
}

// ExpectedQty is the pallet quantity implied by the tie/high configuration.
func (p *Product) ExpectedQty() int {
	return p.Tie * p.High
}

// BestBeforeType selects how a product's best-before date is obtained.
type BestBeforeType string

const (
	BestBeforeNone     BestBeforeType = ""
	BestBeforeScanned  BestBeforeType = "scan"
	BestBeforeComputed BestBeforeType = "compute" // code date + shelf life
)

// ScanProfile is the customer scan-requirement configuration. It is looked
// up once per batch and drives which optional fields the sequencer asks for.
type ScanProfile struct {
	Customer             string         `json:"customer"`
	RequireLot           bool           `json:"require_lot"`
	RequireCustomerLot   bool           `json:"require_customer_lot"`
	RequireEstablishment bool           `json:"require_establishment"`
	RequireReference     bool           `json:"require_reference"`
	RequireTemperature   bool           `json:"require_temperature"`
	BestBeforeType       BestBeforeType `json:"best_before_type,omitempty"`
	ConsigneeCrossDock   bool           `json:"consignee_cross_dock"`
	UseCustomerPallet    bool           `json:"use_customer_pallet"`
}

// Gates derives the sequencer gate vector from the profile.
func (p *ScanProfile) Gates() Gates {
	return Gates{
		Lot:           p.RequireLot,
		CustomerLot:   p.RequireCustomerLot,
		Establishment: p.RequireEstablishment,
		Reference:     p.RequireReference,
		Temperature:   p.RequireTemperature,
		BestBefore:    p.BestBeforeType == BestBeforeScanned,
		Consignee:     p.ConsigneeCrossDock,
	}
}

// Gates is the boolean vector consumed by the sequencer. A true gate means
// the corresponding scan step is required before the pallet may finalize.
// Slaughter-date shares the establishment gate: plants that require an
// establishment number also record the slaughter date.
type Gates struct {
	Lot           bool `json:"lot"`
	CustomerLot   bool `json:"customer_lot"`
	Establishment bool `json:"establishment"`
	Reference     bool `json:"reference"`
	Temperature   bool `json:"temperature"`
	BestBefore    bool `json:"best_before"`
	Consignee     bool `json:"consignee"`
}
