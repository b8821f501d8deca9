package precip

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// toFloat64s widens a 1-D numeric variable of any storage type.
func toFloat64s(v any) ([]float64, error) {
	switch vs := v.(type) {
	case []float64:
		return vs, nil
	case []float32:
		return widen(vs), nil
	case []int64:
		return widen(vs), nil
	case []int32:
		return widen(vs), nil
	case []int16:
		return widen(vs), nil
	case []int8:
		return widen(vs), nil
	case []uint8:
		return widen(vs), nil
	case []uint16:
		return widen(vs), nil
	case []uint32:
		return widen(vs), nil
	case []uint64:
		return widen(vs), nil
	default:
		return nil, fmt.Errorf("%w: unsupported 1-D type %T", ErrNotGridded, v)
	}
}

func widen[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32](vs []T) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

// cellValue picks [0][la][lo] out of a one-step slice of a 3-D variable.
func cellValue(v any, la, lo int) (float64, error) {
	switch vs := v.(type) {
	case [][][]float64:
		return pick(vs, la, lo)
	case [][][]float32:
		return pick(vs, la, lo)
	case [][][]int64:
		return pick(vs, la, lo)
	case [][][]int32:
		return pick(vs, la, lo)
	case [][][]int16:
		return pick(vs, la, lo)
	case [][][]int8:
		return pick(vs, la, lo)
	case [][][]uint8:
		return pick(vs, la, lo)
	default:
		return 0, fmt.Errorf("%w: unsupported 3-D type %T", ErrNotGridded, v)
	}
}

func pick[T int8 | int16 | int32 | int64 | uint8 | float32 | float64](vs [][][]T, la, lo int) (float64, error) {
	if len(vs) == 0 || la >= len(vs[0]) || lo >= len(vs[0][la]) {
		return 0, fmt.Errorf("%w: cell [%d,%d] outside the slice", ErrNotGridded, la, lo)
	}
	return float64(vs[0][la][lo]), nil
}

// packing holds the CF attributes a reader has to honour to recover
// physical values from stored ones.
type packing struct {
	scale   float64
	offset  float64
	missing []float64
}

func packingOf(attrs api.AttributeMap) packing {
	p := packing{scale: 1}
	if attrs == nil {
		return p
	}
	if v, ok := attrFloat(attrs, "scale_factor"); ok {
		p.scale = v
	}
	if v, ok := attrFloat(attrs, "add_offset"); ok {
		p.offset = v
	}
	for _, name := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloat(attrs, name); ok {
			p.missing = append(p.missing, v)
		}
	}
	return p
}

// unpack maps a stored value to its physical value, or NaN when it is a
// fill value.
func (p packing) unpack(raw float64) float64 {
	for _, m := range p.missing {
		if raw == m {
			return math.NaN()
		}
	}
	return raw*p.scale + p.offset
}

func attrFloat(attrs api.AttributeMap, name string) (float64, bool) {
	v, ok := attrs.Get(name)
	if !ok {
		return 0, false
	}
	switch a := v.(type) {
	case float64:
		return a, true
	case float32:
		return float64(a), true
	case int64:
		return float64(a), true
	case int32:
		return float64(a), true
	case int16:
		return float64(a), true
	case int8:
		return float64(a), true
	case uint8:
		return float64(a), true
	}
	if vs, err := toFloat64s(v); err == nil && len(vs) > 0 {
		return vs[0], true
	}
	return 0, false
}
