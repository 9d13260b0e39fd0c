// Package rules implements the pure validation functions used by the
// receiving step handlers: date parsing and windows, quantity cross-checks,
// rotation restriction, and expiration proximity.
package rules

import (
	"fmt"
	"strconv"
	"time"

	"github.com/groblegark/dockhand/internal/model"
)

// Violation describes a failed rule evaluation. Hard violations reject the
// input; soft ones are override-eligible warnings. Both are written to the
// problem audit trail by the caller.
type Violation struct {
	Code        model.ProblemCode
	Explanation string
	Hard        bool
}

func (v *Violation) Error() string {
	return v.Explanation
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInYear(year int) int {
	if isLeap(year) {
		return 366
	}
	return 365
}

// ParseJulian parses a julian code date: YYDDD (5 digits) or YYYYDDD
// (7 digits). Day-of-year bounds respect leap years.
func ParseJulian(raw string) (time.Time, *Violation) {
	if len(raw) != 5 && len(raw) != 7 {
		return time.Time{}, &Violation{
			Code:        model.ProblemDateShape,
			Explanation: fmt.Sprintf("julian date %q must be 5 or 7 digits", raw),
			Hard:        true,
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return time.Time{}, &Violation{
			Code:        model.ProblemDateShape,
			Explanation: fmt.Sprintf("julian date %q is not numeric", raw),
			Hard:        true,
		}
	}

	var year, doy int
	if len(raw) == 5 {
		year = 2000 + n/1000
		doy = n % 1000
	} else {
		year = n / 1000
		doy = n % 1000
	}

	if doy < 1 || doy > daysInYear(year) {
		return time.Time{}, &Violation{
			Code:        model.ProblemDateDay,
			Explanation: fmt.Sprintf("day %03d is out of range for year %d", doy, year),
			Hard:        true,
		}
	}

	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1), nil
}

// ParseGregorian parses a gregorian code date: MMDDYY (6 digits) or
// MMDDYYYY (8 digits).
func ParseGregorian(raw string) (time.Time, *Violation) {
	if len(raw) != 6 && len(raw) != 8 {
		return time.Time{}, &Violation{
			Code:        model.ProblemDateShape,
			Explanation: fmt.Sprintf("date %q must be 6 or 8 digits (MMDDYY or MMDDYYYY)", raw),
			Hard:        true,
		}
	}
	if _, err := strconv.Atoi(raw); err != nil {
		return time.Time{}, &Violation{
			Code:        model.ProblemDateShape,
			Explanation: fmt.Sprintf("date %q is not numeric", raw),
			Hard:        true,
		}
	}

	month, _ := strconv.Atoi(raw[0:2])
	day, _ := strconv.Atoi(raw[2:4])
	var year int
	if len(raw) == 6 {
		yy, _ := strconv.Atoi(raw[4:6])
		year = 2000 + yy
	} else {
		year, _ = strconv.Atoi(raw[4:8])
	}

	if month < 1 || month > 12 {
		return time.Time{}, &Violation{
			Code:        model.ProblemDateDay,
			Explanation: fmt.Sprintf("month %02d is out of range", month),
			Hard:        true,
		}
	}
	if day < 1 || day > daysInMonth(year, month) {
		return time.Time{}, &Violation{
			Code:        model.ProblemDateDay,
			Explanation: fmt.Sprintf("day %02d is out of range for %02d/%d", day, month, year),
			Hard:        true,
		}
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if isLeap(year) {
			return 29
		}
		return 28
	}
}

// ParseSlaughterDate parses a slaughter date: MMDD (current year assumed),
// MMDDYY, or MMDDYYYY.
func ParseSlaughterDate(raw string, now time.Time) (time.Time, *Violation) {
	if len(raw) == 4 {
		raw = raw + fmt.Sprintf("%02d", now.Year()%100)
	}
	return ParseGregorian(raw)
}

// CheckCodeDate parses the raw scan per the product's date type and applies
// the year window [today-yearsBack, today+1]. Sell-by/FIFO products carry a
// date that already includes the shelf life, so the window is applied to
// the date minus shelf life.
func CheckCodeDate(raw string, prod *model.Product, now time.Time, yearsBack int) (time.Time, *Violation) {
	var (
		date time.Time
		v    *Violation
	)
	switch prod.DateType {
	case model.DateJulian:
		date, v = ParseJulian(raw)
	case model.DateGregorian:
		date, v = ParseGregorian(raw)
	default:
		return time.Time{}, &Violation{
			Code:        model.ProblemDateShape,
			Explanation: fmt.Sprintf("product %s does not take a code date", prod.Code),
			Hard:        true,
		}
	}
	if v != nil {
		return time.Time{}, v
	}

	effective := date
	if prod.PickCode.ShiftsDateWindow() && prod.ShelfLifeDays > 0 {
		effective = date.AddDate(0, 0, -prod.ShelfLifeDays)
	}

	minYear := now.Year() - yearsBack
	maxYear := now.Year() + 1
	if y := effective.Year(); y < minYear || y > maxYear {
		return time.Time{}, &Violation{
			Code: model.ProblemDateYear,
			Explanation: fmt.Sprintf("year %d is outside the allowed window %d-%d",
				y, minYear, maxYear),
			Hard: true,
		}
	}

	return date, nil
}
