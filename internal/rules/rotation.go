package rules

import (
	"fmt"
	"time"

	"github.com/groblegark/dockhand/internal/model"
)

// CheckRotation enforces the rotation restriction: a newly scanned code
// date must not predate the most recent date already received for the same
// product/customer/owner/supplier-product combination. A violation is soft;
// the operator chooses to keep or change the date.
func CheckRotation(newDate, newest time.Time) *Violation {
	if newest.IsZero() || !newDate.Before(newest) {
		return nil
	}
	return &Violation{
		Code: model.ProblemRotation,
		Explanation: fmt.Sprintf("scanned date %s is older than the most recent received date %s",
			newDate.Format("2006-01-02"), newest.Format("2006-01-02")),
		Hard: false,
	}
}
