package rules

import (
	"fmt"
	"time"
)

// ExpiryWarnDays is how close to expiry a best-before date may be before
// the operator sees a warning.
const ExpiryWarnDays = 30

// ExpiryWarning returns a non-blocking warning when the best-before date is
// within ExpiryWarnDays of today, or empty when it is not. Already-expired
// product also warns; rejection policy for expired product is handled
// elsewhere.
func ExpiryWarning(bestBefore, now time.Time) string {
	if bestBefore.IsZero() {
		return ""
	}
	days := int(bestBefore.Sub(now).Hours() / 24)
	if days > ExpiryWarnDays {
		return ""
	}
	if days < 0 {
		return fmt.Sprintf("best-before date %s has passed", bestBefore.Format("2006-01-02"))
	}
	return fmt.Sprintf("product expires in %d days (%s)", days, bestBefore.Format("2006-01-02"))
}
