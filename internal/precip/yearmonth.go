package precip

import (
	"fmt"
	"math"
	"time"
)

// YearMonth is a calendar month packed as year*12 + (month-1) so that
// ordinary integer comparison is chronological.
type YearMonth int32

// NewYearMonth packs a year and a month in 1..12.
func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth(year*12 + int(month) - 1)
}

// Year returns the calendar year.
func (ym YearMonth) Year() int {
	return int(ym) / 12
}

// Month returns the calendar month.
func (ym YearMonth) Month() time.Month {
	return time.Month(int(ym)%12 + 1)
}

// Time returns midnight UTC of the first day of the month.
func (ym YearMonth) Time() time.Time {
	return time.Date(ym.Year(), ym.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// String renders the zero-padded "YYYY-MM" label.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year(), int(ym.Month()))
}

// MarshalCSV lets gocsv write the label form.
func (ym YearMonth) MarshalCSV() (string, error) {
	return ym.String(), nil
}

// ParseYearMonth parses a "YYYY-MM" label.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, fmt.Errorf("parse year-month %q: %w", s, err)
	}
	return NewYearMonth(t.Year(), t.Month()), nil
}

// YearMonthFromCode converts an integer-encoded YYYYMMDD date to its month.
// The day must exist in that month; it is otherwise discarded.
func YearMonthFromCode(code int64) (YearMonth, error) {
	t, err := time.Parse("20060102", fmt.Sprintf("%08d", code))
	if err != nil {
		return 0, fmt.Errorf("date code %d: %w", code, err)
	}
	return NewYearMonth(t.Year(), t.Month()), nil
}

// yearMonthFromFloat truncates a floating point date code the way an
// integer cast would before decoding it.
func yearMonthFromFloat(v float64) (YearMonth, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("date code %v is not a YYYYMMDD integer", v)
	}
	return YearMonthFromCode(int64(v))
}
