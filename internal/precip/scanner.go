package precip

import (
	"errors"
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// ErrNotGridded is returned when a file lacks the expected axes or the field
// does not have the [time, lat, lon] layout.
var ErrNotGridded = errors.New("not a time/lat/lon gridded dataset")

// Names of the coordinate variables every input file must carry.
const (
	timeVar = "time"
	latVar  = "lat"
	lonVar  = "lon"
)

// Scanner reads the field at one grid cell from a NetCDF file one time step
// at a time.
type Scanner struct {
	nc     api.Group
	field  api.VarGetter
	pack   packing
	codes  []float64
	latIdx int
	lonIdx int
	lat    float64
	lon    float64
	pos    int
	point  ObservationPoint
	err    error
}

// NewScanner opens filePath and selects the grid cell nearest to (lat, lon)
// for the named field. The caller must Close the scanner.
func NewScanner(filePath, field string, lat, lon float64) (*Scanner, error) {
	nc, err := netcdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	s, err := newScanner(nc, field, lat, lon)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return s, nil
}

func newScanner(nc api.Group, field string, lat, lon float64) (*Scanner, error) {
	s := &Scanner{nc: nc}
	lats, err := axisValues(nc, latVar)
	if err != nil {
		return nil, err
	}
	lons, err := axisValues(nc, lonVar)
	if err != nil {
		return nil, err
	}
	s.codes, err = axisValues(nc, timeVar)
	if err != nil {
		return nil, err
	}
	if len(lats) == 0 || len(lons) == 0 {
		return nil, fmt.Errorf("%w: empty lat/lon axis", ErrNotGridded)
	}
	s.latIdx = NearestIndex(lats, lat)
	s.lonIdx = NearestIndex(lons, lon)
	if s.latIdx < 0 || s.lonIdx < 0 {
		return nil, fmt.Errorf("%w: no finite axis value near target", ErrNotGridded)
	}
	s.lat, s.lon = lats[s.latIdx], lons[s.lonIdx]

	s.field, err = nc.GetVarGetter(field)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}
	// Len is the outer (time) length; pick bounds-checks lat/lon per step.
	dims := s.field.Dimensions()
	if len(dims) != 3 || s.field.Len() != int64(len(s.codes)) {
		return nil, fmt.Errorf("%w: field %q has dimensions %v and %d steps, want (%s, %s, %s) and %d",
			ErrNotGridded, field, dims, s.field.Len(), timeVar, latVar, lonVar, len(s.codes))
	}
	s.pack = packingOf(s.field.Attributes())
	return s, nil
}

func axisValues(nc api.Group, name string) ([]float64, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("axis %q: %w", name, err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("axis %q: %w", name, err)
	}
	return toFloat64s(v)
}

// Close releases the underlying file.
func (s *Scanner) Close() {
	s.nc.Close()
}

// Summary returns information about the selected cell suitable for logging.
func (s *Scanner) Summary() []any {
	return []any{
		"steps", len(s.codes),
		"latIdx", s.latIdx,
		"lonIdx", s.lonIdx,
		"cellLat", s.lat,
		"cellLon", s.lon,
	}
}

// Len returns the number of time steps in the file.
func (s *Scanner) Len() int {
	return len(s.codes)
}

// Scan reads the value for the next time step. It returns false at the end
// of the file or on the first error, which Err then reports.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.pos >= len(s.codes) {
		return false
	}
	period, err := yearMonthFromFloat(s.codes[s.pos])
	if err != nil {
		s.err = err
		return false
	}
	begin := int64(s.pos)
	v, err := s.field.GetSlice(begin, begin+1)
	if err != nil {
		s.err = err
		return false
	}
	raw, err := cellValue(v, s.latIdx, s.lonIdx)
	if err != nil {
		s.err = err
		return false
	}
	s.point = ObservationPoint{Period: period, Value: s.pack.unpack(raw)}
	s.pos++
	return true
}

// Point returns the observation read by the last Scan.
func (s *Scanner) Point() ObservationPoint {
	return s.point
}

// Err returns the error that stopped Scan, if any.
func (s *Scanner) Err() error {
	return s.err
}
