package precip

import (
	"cmp"
	"math"
	"slices"
)

// ObservationPoint is the field value read at the selected grid cell for one
// month.
type ObservationPoint struct {
	Period YearMonth `csv:"period"`
	Value  float64   `csv:"value"`
}

// TimeSeries is a sequence of observations ordered by period. Periods may
// repeat when input files overlap.
type TimeSeries []ObservationPoint

// Sort orders the series by period in place. Points sharing a period keep
// their relative order.
func (ts TimeSeries) Sort() {
	slices.SortStableFunc(ts, func(a, b ObservationPoint) int {
		return cmp.Compare(a.Period, b.Period)
	})
}

// IsSorted reports whether the series is in ascending period order.
func (ts TimeSeries) IsSorted() bool {
	return slices.IsSortedFunc(ts, func(a, b ObservationPoint) int {
		return cmp.Compare(a.Period, b.Period)
	})
}

// Values returns the observation values in series order.
func (ts TimeSeries) Values() []float64 {
	vs := make([]float64, len(ts))
	for i, p := range ts {
		vs[i] = p.Value
	}
	return vs
}

// Labels returns the "YYYY-MM" label of every observation in series order.
func (ts TimeSeries) Labels() []string {
	ls := make([]string, len(ts))
	for i, p := range ts {
		ls[i] = p.Period.String()
	}
	return ls
}

// Years returns the distinct years present, ascending.
func (ts TimeSeries) Years() []int {
	var years []int
	for _, p := range ts {
		y := p.Period.Year()
		if n := len(years); n == 0 || years[n-1] != y {
			years = append(years, y)
		}
	}
	slices.Sort(years)
	return slices.Compact(years)
}

// Duplicates returns the periods that occur more than once, ascending. The
// series must be sorted.
func (ts TimeSeries) Duplicates() []YearMonth {
	var dups []YearMonth
	for i := 1; i < len(ts); i++ {
		if ts[i].Period != ts[i-1].Period {
			continue
		}
		if n := len(dups); n == 0 || dups[n-1] != ts[i].Period {
			dups = append(dups, ts[i].Period)
		}
	}
	return dups
}

// Valid returns the observations with a finite value, in series order.
func (ts TimeSeries) Valid() TimeSeries {
	out := make(TimeSeries, 0, len(ts))
	for _, p := range ts {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}
