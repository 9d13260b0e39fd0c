package workflow

import (
	"fmt"
	"strings"

	"github.com/groblegark/dockhand/internal/model"
)

// screenFor renders the input fields the terminal shows for the session's
// current state, including pre-filled defaults from the EDI advance ship
// notice and the previous pallet's shadow values.
func (d *Dispatcher) screenFor(s *model.Session) []model.FieldSpec {
	f := model.FieldSpec{Name: model.ScanField, Editable: true}

	switch s.CurOp {
	case model.OpBatch:
		f.Label = "Batch"
		f.MaxLen = maxBatchLen
	case model.OpPallet:
		f.Label = "Pallet"
		f.MaxLen = maxPalletLen
	case model.OpCustomPallet:
		f.Label = "Customer Pallet"
		f.MaxLen = maxPalletLen
	case model.OpProduct:
		f.Label = "Product"
	case model.OpDate:
		f.Label = "Code Date"
		f.Hint = dateHint(s.Pallet.Product)
		if s.Pallet.ASN != nil && s.Pallet.ASN.CodeDate != "" {
			f.Default = s.Pallet.ASN.CodeDate
		}
	case model.OpQty:
		f.Label = "Quantity"
		if exp := expectedQty(s); exp > 0 {
			f.Hint = fmt.Sprintf("expected %d", exp)
		}
	case model.OpQtyConfirm:
		f.Label = "Accept Quantity? (Y/N)"
		f.MaxLen = 1
	case model.OpRotationConfirm:
		f.Label = "Keep Older Date? (Y/N)"
		f.MaxLen = 1
	case model.OpLot:
		f.Label = "Lot"
		f.MaxLen = maxLotLen
		if s.Pallet.ASN != nil && s.Pallet.ASN.Lot != "" {
			f.Default = s.Pallet.ASN.Lot
		} else if s.Scans.OldLot != "" {
			f.Default = s.Scans.OldLot
		}
	case model.OpCustomerLot:
		f.Label = "Customer Lot"
		f.MaxLen = maxLotLen
		f.Default = s.Scans.OldCustomerLot
	case model.OpEstablishment:
		f.Label = "Establishment"
		f.MaxLen = maxEstablishmentLen
		f.Default = s.Scans.OldEstablishment
	case model.OpSlaughterDate:
		f.Label = "Slaughter Date"
		f.Hint = "MMDD, MMDDYY, or MMDDYYYY"
		f.Default = s.Scans.OldSlaughterDate
	case model.OpReference:
		f.Label = "Reference"
		f.MaxLen = maxReferenceLen
		f.Default = s.Scans.OldReference
	case model.OpTemperature:
		f.Label = "Temperature (F)"
	case model.OpBestBefore:
		f.Label = "Best Before"
		f.Hint = "MMDDYY or MMDDYYYY"
		f.Default = s.Scans.OldBestBefore
	case model.OpConsignee:
		f.Label = "Consignee"
		f.MaxLen = maxConsigneeLen
	case model.OpBlastConfirm:
		f.Label = holdPromptLabel(s)
		f.MaxLen = 1
	case model.OpSendPallet:
		f.Label = "Send Pallet? (Y/N)"
		f.MaxLen = 1
	case model.OpPlatformType:
		f.Label = "Platform Type"
		f.Hint = strings.Join(d.profile.PlatformTypes, "/")
	case model.OpPutAway:
		f.Label = "Put-Away Location"
	case model.OpCatchWeight:
		f.Label = "Total Weight (lb)"
		if s.Pallet.Qty > 0 {
			f.Hint = fmt.Sprintf("%d boxes", s.Pallet.Qty)
		}
	default:
		f.Label = "Scan"
	}

	return []model.FieldSpec{f}
}

func dateHint(prod *model.Product) string {
	if prod == nil {
		return ""
	}
	switch prod.DateType {
	case model.DateJulian:
		return "YYDDD or YYYYDDD"
	case model.DateGregorian:
		return "MMDDYY or MMDDYYYY"
	}
	return ""
}

func expectedQty(s *model.Session) int {
	if s.Pallet.Product == nil {
		return 0
	}
	return s.Pallet.Product.ExpectedQty()
}

func holdPromptLabel(s *model.Session) string {
	switch {
	case s.Pallet.BlastFreeze && s.Pallet.HPP:
		return "Blast/HPP Hold? (Y/N)"
	case s.Pallet.HPP:
		return "HPP Hold? (Y/N)"
	default:
		return "Blast Freeze? (Y/N)"
	}
}
