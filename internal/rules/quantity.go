package rules

import (
	"fmt"
	"strconv"
)

// QtyResult is the outcome of a quantity cross-check.
type QtyResult int

const (
	// QtyOK means the quantity matches tie*high or a previously accepted
	// override for the same value.
	QtyOK QtyResult = iota
	// QtyConfirm means the quantity differs and a one-shot confirmation is
	// required before it can be accepted.
	QtyConfirm
)

// ParseQty parses the scanned case quantity.
func ParseQty(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("quantity %q must be a positive number", raw)
	}
	return n, nil
}

// CheckQty compares the scanned quantity against tie*high. An override
// previously accepted for the same value is not re-asked.
func CheckQty(qty, tie, high, accepted int) QtyResult {
	if tie <= 0 || high <= 0 {
		// No tie/high configured; nothing to cross-check.
		return QtyOK
	}
	if qty == tie*high {
		return QtyOK
	}
	if qty == accepted {
		return QtyOK
	}
	return QtyConfirm
}
