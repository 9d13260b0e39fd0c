package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/groblegark/dockhand/internal/model"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestParseJulian(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want string
	}{
		{"2026001", "2026-01-01"},
		{"2026244", "2026-09-01"},
		{"26100", "2026-04-10"},
		{"2024366", "2024-12-31"}, // leap year
	} {
		got, v := ParseJulian(tc.raw)
		if v != nil {
			t.Errorf("ParseJulian(%q) violation: %v", tc.raw, v)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("ParseJulian(%q) = %s, want %s", tc.raw, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestParseJulianRejects(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		code model.ProblemCode
	}{
		{"2025366", model.ProblemDateDay}, // not a leap year
		{"2026000", model.ProblemDateDay},
		{"202", model.ProblemDateShape},
		{"20260001", model.ProblemDateShape},
		{"2026x01", model.ProblemDateShape},
	} {
		_, v := ParseJulian(tc.raw)
		if v == nil {
			t.Errorf("ParseJulian(%q) should be rejected", tc.raw)
			continue
		}
		if v.Code != tc.code || !v.Hard {
			t.Errorf("ParseJulian(%q) = %v/%v, want hard %v", tc.raw, v.Code, v.Hard, tc.code)
		}
	}
}

func TestParseGregorian(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want string
	}{
		{"090126", "2026-09-01"},
		{"09012026", "2026-09-01"},
		{"022924", "2024-02-29"}, // leap day
	} {
		got, v := ParseGregorian(tc.raw)
		if v != nil {
			t.Errorf("ParseGregorian(%q) violation: %v", tc.raw, v)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("ParseGregorian(%q) = %s, want %s", tc.raw, got.Format("2006-01-02"), tc.want)
		}
	}

	for _, raw := range []string{"022925", "130126", "093126", "0901", "09012", "0901202"} {
		if _, v := ParseGregorian(raw); v == nil {
			t.Errorf("ParseGregorian(%q) should be rejected", raw)
		}
	}
}

func TestParseSlaughterDate(t *testing.T) {
	got, v := ParseSlaughterDate("0815", testNow)
	if v != nil {
		t.Fatalf("violation: %v", v)
	}
	if got.Format("2006-01-02") != "2026-08-15" {
		t.Errorf("ParseSlaughterDate(0815) = %s, want 2026-08-15", got.Format("2006-01-02"))
	}
}

func TestCheckCodeDateYearWindow(t *testing.T) {
	prod := &model.Product{Code: "P1", DateType: model.DateGregorian}

	if _, v := CheckCodeDate("09012025", prod, testNow, 2); v != nil {
		t.Errorf("last year should be accepted: %v", v)
	}
	if _, v := CheckCodeDate("09012027", prod, testNow, 2); v != nil {
		t.Errorf("next year should be accepted: %v", v)
	}

	_, v := CheckCodeDate("09012023", prod, testNow, 2)
	if v == nil || v.Code != model.ProblemDateYear || !v.Hard {
		t.Errorf("year below window: got %v, want hard DATE_YEAR", v)
	}
	_, v = CheckCodeDate("09012028", prod, testNow, 2)
	if v == nil || v.Code != model.ProblemDateYear {
		t.Errorf("year above window: got %v, want DATE_YEAR", v)
	}
}

func TestCheckCodeDateSellByWindow(t *testing.T) {
	// A sell-by date 1 year out with a 400-day shelf life maps back inside
	// the window once the shelf life is subtracted.
	prod := &model.Product{
		Code:          "P2",
		DateType:      model.DateGregorian,
		PickCode:      model.PickSellBy,
		ShelfLifeDays: 400,
	}
	if _, v := CheckCodeDate("10012027", prod, testNow, 1); v != nil {
		t.Errorf("sell-by date within shifted window rejected: %v", v)
	}

	// Without the pick code the same scan fails a 0-years-back window.
	plain := &model.Product{Code: "P3", DateType: model.DateGregorian}
	if _, v := CheckCodeDate("10012028", plain, testNow, 1); v == nil {
		t.Error("far-future date should be rejected for a plain product")
	}
}

func TestCheckCodeDateJulianProduct(t *testing.T) {
	prod := &model.Product{Code: "P4", DateType: model.DateJulian}
	date, v := CheckCodeDate("2026100", prod, testNow, 2)
	if v != nil {
		t.Fatalf("violation: %v", v)
	}
	if date.Format("2006-01-02") != "2026-04-10" {
		t.Errorf("date = %s", date.Format("2006-01-02"))
	}

	if _, v := CheckCodeDate("090126", prod, testNow, 2); v == nil {
		t.Error("6-digit scan should fail julian shape validation")
	}
}

func TestParseQty(t *testing.T) {
	if n, err := ParseQty("45"); err != nil || n != 45 {
		t.Errorf("ParseQty(45) = %d, %v", n, err)
	}
	for _, raw := range []string{"", "0", "-3", "abc"} {
		if _, err := ParseQty(raw); err == nil {
			t.Errorf("ParseQty(%q) should fail", raw)
		}
	}
}

func TestCheckQty(t *testing.T) {
	if got := CheckQty(45, 9, 5, 0); got != QtyOK {
		t.Errorf("matching qty = %v, want QtyOK", got)
	}
	if got := CheckQty(40, 9, 5, 0); got != QtyConfirm {
		t.Errorf("mismatched qty = %v, want QtyConfirm", got)
	}
	// A previously accepted override for the same value is not re-asked.
	if got := CheckQty(40, 9, 5, 40); got != QtyOK {
		t.Errorf("overridden qty = %v, want QtyOK", got)
	}
	if got := CheckQty(38, 9, 5, 40); got != QtyConfirm {
		t.Errorf("different mismatch after override = %v, want QtyConfirm", got)
	}
	// No tie/high configured: nothing to cross-check.
	if got := CheckQty(7, 0, 0, 0); got != QtyOK {
		t.Errorf("unconfigured tie/high = %v, want QtyOK", got)
	}
}

func TestCheckRotation(t *testing.T) {
	newest := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	if v := CheckRotation(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), newest); v != nil {
		t.Errorf("newer date flagged: %v", v)
	}
	if v := CheckRotation(newest, newest); v != nil {
		t.Errorf("equal date flagged: %v", v)
	}
	if v := CheckRotation(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), time.Time{}); v != nil {
		t.Errorf("no prior receipts flagged: %v", v)
	}

	v := CheckRotation(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), newest)
	if v == nil {
		t.Fatal("older date should violate rotation")
	}
	if v.Hard {
		t.Error("rotation violation must be soft (keep-or-change, not reject)")
	}
	if v.Code != model.ProblemRotation {
		t.Errorf("code = %v", v.Code)
	}
}

func TestExpiryWarning(t *testing.T) {
	if w := ExpiryWarning(testNow.AddDate(0, 0, 60), testNow); w != "" {
		t.Errorf("60 days out warned: %q", w)
	}
	if w := ExpiryWarning(testNow.AddDate(0, 0, 10), testNow); w == "" {
		t.Error("10 days out should warn")
	}
	if w := ExpiryWarning(testNow.AddDate(0, 0, -2), testNow); !strings.Contains(w, "passed") {
		t.Errorf("expired product warning = %q", w)
	}
	if w := ExpiryWarning(time.Time{}, testNow); w != "" {
		t.Errorf("zero date warned: %q", w)
	}
}
