package precip

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned by statistics and renderers given an empty series.
var ErrNoData = errors.New("no data")

// YearlyAggregate is the sum of a calendar year's observations.
type YearlyAggregate struct {
	Year  int     `csv:"year"`
	Total float64 `csv:"total"`
}

// Yearly is a sequence of yearly totals ascending by year.
type Yearly []YearlyAggregate

// AggregateByYear sums observations per calendar year. Missing (NaN)
// observations are left out of the sums; a year whose observations are all
// missing totals zero.
func AggregateByYear(series TimeSeries) Yearly {
	totals := make(map[int]float64)
	for _, p := range series {
		y := p.Period.Year()
		v := p.Value
		if math.IsNaN(v) {
			v = 0
		}
		totals[y] += v
	}

	out := make(Yearly, 0, len(totals))
	for y, t := range totals {
		out = append(out, YearlyAggregate{Year: y, Total: t})
	}
	slices.SortFunc(out, func(a, b YearlyAggregate) int { return a.Year - b.Year })
	return out
}

// Years returns the years in order.
func (y Yearly) Years() []int {
	ys := make([]int, len(y))
	for i, a := range y {
		ys[i] = a.Year
	}
	return ys
}

// Totals returns the totals in year order.
func (y Yearly) Totals() []float64 {
	ts := make([]float64, len(y))
	for i, a := range y {
		ts[i] = a.Total
	}
	return ts
}

// MaxYear returns the first year with the largest total.
func (y Yearly) MaxYear() (int, error) {
	if len(y) == 0 {
		return 0, ErrNoData
	}
	return y[floats.MaxIdx(y.Totals())].Year, nil
}

// MinYear returns the first year with the smallest total.
func (y Yearly) MinYear() (int, error) {
	if len(y) == 0 {
		return 0, ErrNoData
	}
	return y[floats.MinIdx(y.Totals())].Year, nil
}

// Mean returns the mean total, or NaN when empty.
func (y Yearly) Mean() float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	return stat.Mean(y.Totals(), nil)
}

// Variance returns the sample (n-1) variance of the totals, or NaN when
// empty.
func (y Yearly) Variance() float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	return stat.Variance(y.Totals(), nil)
}

// StdDev returns the sample standard deviation of the totals.
func (y Yearly) StdDev() float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	return stat.StdDev(y.Totals(), nil)
}

// Median returns the 50th percentile of the totals.
func (y Yearly) Median() float64 {
	return Percentile(y.Totals(), 50)
}

// Percentile returns the p-th percentile, p in [0, 100], of the totals.
func (y Yearly) Percentile(p float64) float64 {
	return Percentile(y.Totals(), p)
}

// Percentile computes the p-th percentile of xs, interpolating linearly
// between the two closest ranks (rank = p/100 * (n-1)). It returns NaN for
// empty input or p outside [0, 100]. xs is not modified.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 || math.IsNaN(p) || p < 0 || p > 100 {
		return math.NaN()
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Summary is the set of descriptive statistics reported for yearly totals.
type Summary struct {
	Years    int
	MaxYear  int
	MinYear  int
	Max      float64
	Min      float64
	Mean     float64
	Median   float64
	Variance float64
	StdDev   float64
	P25      float64
	P75      float64
}

// Describe computes the Summary of y.
func Describe(y Yearly) (Summary, error) {
	maxYear, err := y.MaxYear()
	if err != nil {
		return Summary{}, err
	}
	minYear, err := y.MinYear()
	if err != nil {
		return Summary{}, err
	}
	totals := y.Totals()
	return Summary{
		Years:    len(y),
		MaxYear:  maxYear,
		MinYear:  minYear,
		Max:      floats.Max(totals),
		Min:      floats.Min(totals),
		Mean:     y.Mean(),
		Median:   y.Median(),
		Variance: y.Variance(),
		StdDev:   y.StdDev(),
		P25:      y.Percentile(25),
		P75:      y.Percentile(75),
	}, nil
}

// LogAttrs flattens the summary into slog key/value pairs.
func (s Summary) LogAttrs() []any {
	return []any{
		"years", s.Years,
		"mean", s.Mean,
		"median", s.Median,
		"max", s.Max,
		"maxYear", s.MaxYear,
		"min", s.Min,
		"minYear", s.MinYear,
		"variance", s.Variance,
		"stdDev", s.StdDev,
		"p25", s.P25,
		"p75", s.P75,
	}
}
