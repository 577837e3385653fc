package hyperslab

import (
	"fmt"
	"reflect"
)

// Selection is a per-dimension start/count/stride selection.
// A nil Stride means all ones.
type Selection struct {
	Start  []int
	Count  []int
	Stride []int
}

// Rank returns the number of dimensions.
func (s Selection) Rank() int {
	return len(s.Start)
}

// Shape returns the shape of the selected block.
func (s Selection) Shape() []int {
	out := make([]int, len(s.Count))
	copy(out, s.Count)
	return out
}

// NumElements returns the number of selected elements.
func (s Selection) NumElements() int {
	return NumElements(s.Count)
}

func (s Selection) stride(dim int) int {
	if s.Stride == nil {
		return 1
	}
	return s.Stride[dim]
}

// Validate checks the selection against an array shape.
func (s Selection) Validate(shape []int) error {
	if len(s.Start) != len(shape) || len(s.Count) != len(shape) {
		return fmt.Errorf("selection rank (%d/%d) != array rank (%d)", len(s.Start), len(s.Count), len(shape))
	}
	if s.Stride != nil && len(s.Stride) != len(shape) {
		return fmt.Errorf("stride rank (%d) != array rank (%d)", len(s.Stride), len(shape))
	}
	for i := range shape {
		if s.Count[i] < 0 {
			return fmt.Errorf("negative count in dimension %d", i)
		}
		if s.stride(i) <= 0 {
			return fmt.Errorf("stride must be > 0 in dimension %d", i)
		}
		if s.Count[i] == 0 {
			continue
		}
		last := s.Start[i] + (s.Count[i]-1)*s.stride(i)
		if s.Start[i] < 0 || last >= shape[i] {
			return fmt.Errorf("selection out of bounds in dimension %d: start=%d last=%d size=%d",
				i, s.Start[i], last, shape[i])
		}
	}
	return nil
}

// NumElements returns the product of the dimensions in shape.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Offsets returns the row-major flat offsets of every selected element of
// an array with the given shape, in selection order.
func Offsets(shape []int, sel Selection) ([]int, error) {
	if err := sel.Validate(shape); err != nil {
		return nil, err
	}
	n := sel.NumElements()
	out := make([]int, 0, n)
	if n == 0 {
		return out, nil
	}

	rank := len(shape)
	strides := make([]int, rank)
	acc := 1
	for i := rank - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}

	pos := make([]int, rank)
	for {
		off := 0
		for i := 0; i < rank; i++ {
			off += (sel.Start[i] + pos[i]*sel.stride(i)) * strides[i]
		}
		out = append(out, off)

		// advance the odometer, innermost dimension fastest
		i := rank - 1
		for ; i >= 0; i-- {
			pos[i]++
			if pos[i] < sel.Count[i] {
				break
			}
			pos[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}

// Gather returns the selected elements of a flat row-major slice src with
// the given shape, as a new slice of the same element type.
func Gather(src interface{}, shape []int, sel Selection) (interface{}, error) {
	sv := reflect.ValueOf(src)
	if sv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %T", src)
	}
	if sv.Len() != NumElements(shape) {
		return nil, fmt.Errorf("source has %d elements, shape %v needs %d", sv.Len(), shape, NumElements(shape))
	}
	offsets, err := Offsets(shape, sel)
	if err != nil {
		return nil, err
	}

	switch s := src.(type) {
	case []float64:
		return take(s, offsets), nil
	case []float32:
		return take(s, offsets), nil
	case []int32:
		return take(s, offsets), nil
	case []int16:
		return take(s, offsets), nil
	case []int64:
		return take(s, offsets), nil
	case []uint8:
		return take(s, offsets), nil
	}

	out := reflect.MakeSlice(sv.Type(), len(offsets), len(offsets))
	for i, off := range offsets {
		out.Index(i).Set(sv.Index(off))
	}
	return out.Interface(), nil
}

func take[T any](src []T, offsets []int) []T {
	out := make([]T, len(offsets))
	for i, off := range offsets {
		out[i] = src[off]
	}
	return out
}

// Flatten converts nested slices ([][]T, [][][]T, ...) into a flat
// row-major []T and the shape of the nesting. A flat slice is returned
// unchanged with a one-element shape. Ragged nesting is an error.
func Flatten(nested interface{}) (interface{}, []int, error) {
	v := reflect.ValueOf(nested)
	if v.Kind() != reflect.Slice {
		return nil, nil, fmt.Errorf("expected slice, got %T", nested)
	}

	var shape []int
	leaf := v.Type()
	for leaf.Kind() == reflect.Slice {
		leaf = leaf.Elem()
	}
	cur := v
	for cur.Kind() == reflect.Slice {
		shape = append(shape, cur.Len())
		if cur.Len() == 0 || cur.Type().Elem().Kind() != reflect.Slice {
			break
		}
		cur = cur.Index(0)
	}
	if v.Type().Elem().Kind() != reflect.Slice {
		return nested, shape, nil
	}

	// pad the shape for empty outer dimensions
	for depth(v.Type()) > len(shape) {
		shape = append(shape, 0)
	}

	flat := reflect.MakeSlice(reflect.SliceOf(leaf), 0, NumElements(shape))
	var walk func(val reflect.Value, dim int) error
	walk = func(val reflect.Value, dim int) error {
		if val.Len() != shape[dim] {
			return fmt.Errorf("ragged array: dimension %d has length %d, expected %d", dim, val.Len(), shape[dim])
		}
		if dim == len(shape)-1 {
			flat = reflect.AppendSlice(flat, val)
			return nil
		}
		for i := 0; i < val.Len(); i++ {
			if err := walk(val.Index(i), dim+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(v, 0); err != nil {
		return nil, nil, err
	}
	return flat.Interface(), shape, nil
}

func depth(t reflect.Type) int {
	d := 0
	for t.Kind() == reflect.Slice {
		d++
		t = t.Elem()
	}
	return d
}
