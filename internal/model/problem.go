package model

import "time"

// ProblemCode classifies an audit entry written when a rule is rejected or
// overridden.
type ProblemCode string

const (
	ProblemQtyOverride ProblemCode = "QTY_OVERRIDE"
	ProblemDateYear    ProblemCode = "DATE_YEAR"
	ProblemDateDay     ProblemCode = "DATE_DAY"
	ProblemDateShape   ProblemCode = "DATE_SHAPE"
	ProblemRotation    ProblemCode = "ROTATION"
	ProblemExpiryNear  ProblemCode = "EXPIRY_NEAR"
)

// String returns the string representation of the code.
func (c ProblemCode) String() string {
	return string(c)
}

// Problem is a structured audit record for a rejected or overridden rule
// evaluation. Resolved means no follow-up is required: either the input was
// rejected outright or the operator explicitly accepted the condition.
type Problem struct {
	ID          string      `json:"id"`
	Operator    string      `json:"operator"`
	BatchNumber string      `json:"batch_number"`
	PalletID    string      `json:"pallet_id,omitempty"`
	ProductCode string      `json:"product_code,omitempty"`
	Code        ProblemCode `json:"code"`
	Explanation string      `json:"explanation"`
	Resolved    bool        `json:"resolved"`
	CreatedAt   time.Time   `json:"created_at"`
}
