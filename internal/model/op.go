package model

// Op identifies the operation state a receiving session is in. Every
// terminal request is routed to exactly one handler by the session's
// current Op.
type Op string

const (
	// Batch entry and pallet identification.
	OpBatch        Op = "batch"
	OpPallet       Op = "pallet"
	OpCustomPallet Op = "custom-pallet"
	OpProduct      Op = "product"

	// Date and quantity capture.
	OpDate       Op = "date"
	OpQty        Op = "qty"
	OpQtyConfirm Op = "qty-confirm"

	// Optional descriptive fields, ordered by the sequencer.
	OpLot           Op = "lot"
	OpCustomerLot   Op = "customer-lot"
	OpEstablishment Op = "establishment"
	OpSlaughterDate Op = "slaughter-date"
	OpReference     Op = "reference"
	OpTemperature   Op = "temperature"
	OpBestBefore    Op = "best-before"
	OpConsignee     Op = "consignee"

	// One-shot confirmation states.
	OpRotationConfirm Op = "rotation-confirm"
	OpBlastConfirm    Op = "blast-confirm"

	// Finalize and post-commit prompts.
	OpSendPallet   Op = "send-pallet"
	OpPlatformType Op = "platform-type"
	OpPutAway      Op = "putaway"

	// Re-entry point after a catch-weight hand-off completes.
	OpCatchWeight Op = "catch-weight"
)

// String returns the string representation of the op.
func (o Op) String() string {
	return string(o)
}

// IsValid checks whether the op is a known state.
func (o Op) IsValid() bool {
	switch o {
	case OpBatch, OpPallet, OpCustomPallet, OpProduct,
		OpDate, OpQty, OpQtyConfirm,
		OpLot, OpCustomerLot, OpEstablishment, OpSlaughterDate,
		OpReference, OpTemperature, OpBestBefore, OpConsignee,
		OpRotationConfirm, OpBlastConfirm,
		OpSendPallet, OpPlatformType, OpPutAway, OpCatchWeight:
		return true
	}
	return false
}

// IsOptionalField reports whether the op is one of the sequencer-ordered
// descriptive field scans. These states always re-route through the
// sequencer rather than having a fixed successor.
func (o Op) IsOptionalField() bool {
	switch o {
	case OpLot, OpCustomerLot, OpEstablishment, OpSlaughterDate,
		OpReference, OpTemperature, OpBestBefore, OpConsignee:
		return true
	}
	return false
}
