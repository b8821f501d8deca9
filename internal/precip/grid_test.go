package precip

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/stretchr/testify/require"
)

// testGrid describes a small monthly file written with the CDF writer.
type testGrid struct {
	codes []int32
	lats  []float32
	lons  []float32
	field string
	attrs api.AttributeMap
	// value computes the stored cell value; cellCode is used when nil.
	value func(t, la, lo int) float32
	// fieldSteps, when set, gives the field its own step dimension of that
	// length.
	fieldSteps int
}

// cellCode makes every cell distinguishable: 100*t + 10*la + lo.
func cellCode(t, la, lo int) float32 {
	return float32(100*t + 10*la + lo)
}

func newTestGrid(codes ...int32) testGrid {
	return testGrid{
		codes: codes,
		lats:  []float32{36.5, 37.0, 37.5, 38.0},
		lons:  []float32{-9.5, -9.0, -8.5, -8.0, -7.5},
		field: DefaultField,
	}
}

func writeGrid(t *testing.T, dir, name string, g testGrid) string {
	t.Helper()

	value := g.value
	if value == nil {
		value = cellCode
	}
	steps, stepDim := len(g.codes), timeVar
	if g.fieldSteps > 0 {
		steps, stepDim = g.fieldSteps, "step"
	}
	data := make([][][]float32, steps)
	for ti := range data {
		data[ti] = make([][]float32, len(g.lats))
		for la := range data[ti] {
			data[ti][la] = make([]float32, len(g.lons))
			for lo := range data[ti][la] {
				data[ti][la][lo] = value(ti, la, lo)
			}
		}
	}

	path := filepath.Join(dir, name)
	cw, err := cdf.OpenWriter(path)
	require.NoError(t, err)
	require.NoError(t, cw.AddVar(timeVar, api.Variable{Values: g.codes, Dimensions: []string{timeVar}}))
	require.NoError(t, cw.AddVar(latVar, api.Variable{Values: g.lats, Dimensions: []string{latVar}}))
	require.NoError(t, cw.AddVar(lonVar, api.Variable{Values: g.lons, Dimensions: []string{lonVar}}))
	require.NoError(t, cw.AddVar(g.field, api.Variable{
		Values:     data,
		Dimensions: []string{stepDim, latVar, lonVar},
		Attributes: g.attrs,
	}))
	require.NoError(t, cw.Close())
	return path
}

func writeJunk(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("not a netcdf file"), 0o644))
}

// months returns the YYYYMM15 codes of consecutive months starting at
// year/month.
func months(year, month, n int) []int32 {
	codes := make([]int32, n)
	for i := range codes {
		y := year + (month-1+i)/12
		m := (month-1+i)%12 + 1
		codes[i] = int32(y*10000 + m*100 + 15)
	}
	return codes
}
