package chart

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtm0/precip/internal/precip"
)

func testSeries() precip.TimeSeries {
	var ts precip.TimeSeries
	for y := 1990; y < 1994; y++ {
		for m := time.January; m <= time.December; m++ {
			v := float64(10*int(m) + y - 1990)
			if y == 1991 && m == time.June {
				v = math.NaN()
			}
			ts = append(ts, precip.ObservationPoint{Period: precip.NewYearMonth(y, m), Value: v})
		}
	}
	return ts
}

func requirePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)
}

func TestMonthlyWithHistogram(t *testing.T) {
	dir := t.TempDir()
	path, err := MonthlyWithHistogram(dir, testSeries(), 37.24, -8.7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, MonthlyHistogramFile), path)
	requirePNG(t, path)
}

func TestStackedByMonth(t *testing.T) {
	dir := t.TempDir()
	path, err := StackedByMonth(dir, testSeries(), 37.24, -8.7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, MonthlyStackedFile), path)
	requirePNG(t, path)
}

func TestYearlyWithHistogram(t *testing.T) {
	dir := t.TempDir()
	path, err := YearlyWithHistogram(dir, precip.AggregateByYear(testSeries()), 37.24, -8.7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, YearlyHistogramFile), path)
	requirePNG(t, path)
}

func TestCharts_EmptySeries(t *testing.T) {
	dir := t.TempDir()
	_, err := MonthlyWithHistogram(dir, nil, 0, 0)
	assert.ErrorIs(t, err, precip.ErrNoData)
	_, err = StackedByMonth(dir, nil, 0, 0)
	assert.ErrorIs(t, err, precip.ErrNoData)
	_, err = YearlyWithHistogram(dir, nil, 0, 0)
	assert.ErrorIs(t, err, precip.ErrNoData)
}

func TestMonthLayers(t *testing.T) {
	series := testSeries()
	layers := monthLayers(series, series.Years())

	assert.Equal(t, 10.0, layers[0][0])
	assert.Equal(t, 123.0, layers[11][3])
	// Missing June 1991 stacks as zero.
	assert.Equal(t, 0.0, layers[5][1])
}

func TestJanuaryTicks(t *testing.T) {
	series := testSeries()
	ticks := januaryTicks(series).Ticks(0, float64(len(series)))

	require.Len(t, ticks, 4)
	assert.Equal(t, "1990-01", ticks[0].Label)
	assert.Equal(t, 12.0, ticks[1].Value)
}
