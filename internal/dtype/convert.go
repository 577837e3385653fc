package dtype

// Conversion Strategy
//
// Readers hand back plain typed Go slices. Everything here works on those
// slices through a type switch for the numeric fast path and falls back to
// reflection for the rest, so callers never need to know the concrete
// element type to move data around.
//
// Float64 conversion is only used for ordered searching and for nodata
// sentinels. Integer values beyond 2^53 lose precision in that conversion;
// the data copied into caller buffers is never converted.

import (
	"fmt"
	"reflect"
)

// MakeSlice allocates a slice of n elements of type d.
func MakeSlice(d DType, n int) (interface{}, error) {
	t, err := GoType(d)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative length %d", n)
	}
	return reflect.MakeSlice(reflect.SliceOf(t), n, n).Interface(), nil
}

// Len returns the length of a slice, or -1 if v is not a slice.
func Len(v interface{}) int {
	if v == nil {
		return -1
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return -1
	}
	return rv.Len()
}

// Slice returns v[start:stop] for a typed slice.
func Slice(v interface{}, start, stop int) (interface{}, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %T", v)
	}
	if start < 0 || stop < start || stop > rv.Len() {
		return nil, fmt.Errorf("slice bounds [%d:%d] out of range [0:%d]", start, stop, rv.Len())
	}
	return rv.Slice(start, stop).Interface(), nil
}

// Copy copies src into dst. Both must be slices of the same element type.
// It returns the number of elements copied.
func Copy(dst, src interface{}) (int, error) {
	dv := reflect.ValueOf(dst)
	sv := reflect.ValueOf(src)
	if dv.Kind() != reflect.Slice || sv.Kind() != reflect.Slice {
		return 0, fmt.Errorf("copy requires slices, got %T and %T", dst, src)
	}
	if dv.Type() != sv.Type() {
		return 0, fmt.Errorf("element type mismatch: %s vs %s", dv.Type().Elem(), sv.Type().Elem())
	}
	return reflect.Copy(dv, sv), nil
}

// Float64s converts a numeric slice to []float64.
func Float64s(v interface{}) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out, nil
	case []float32:
		return widen(s), nil
	case []int8:
		return widen(s), nil
	case []uint8:
		return widen(s), nil
	case []int16:
		return widen(s), nil
	case []uint16:
		return widen(s), nil
	case []int32:
		return widen(s), nil
	case []uint32:
		return widen(s), nil
	case []int64:
		return widen(s), nil
	case []uint64:
		return widen(s), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to []float64", v)
	}
}

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

func widen[T number](s []T) []float64 {
	out := make([]float64, len(s))
	for i, x := range s {
		out[i] = float64(x)
	}
	return out
}

// Float64At returns element i of a numeric slice as float64.
func Float64At(v interface{}, i int) (float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return 0, fmt.Errorf("expected slice, got %T", v)
	}
	if i < 0 || i >= rv.Len() {
		return 0, fmt.Errorf("index %d out of range [0:%d]", i, rv.Len())
	}
	f, ok := ToFloat64(rv.Index(i).Interface())
	if !ok {
		return 0, fmt.Errorf("element type %s is not numeric", rv.Type().Elem())
	}
	return f, nil
}

// ToFloat64 converts a numeric scalar to float64. Single-element numeric
// slices are accepted too, since container attributes are often stored as
// length-1 arrays.
func ToFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint8:
		return float64(x), true
	case int16:
		return float64(x), true
	case uint16:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	rv := reflect.ValueOf(v)
	if v != nil && rv.Kind() == reflect.Slice && rv.Len() == 1 {
		return ToFloat64(rv.Index(0).Interface())
	}
	return 0, false
}
