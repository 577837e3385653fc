package cubeaccess

import (
	"fmt"
	"sort"
)

// Index is an index request for a single axis: either a Slice (positions)
// or a Range (coordinate values). A nil Index means the full extent.
type Index interface {
	isIndex()
}

// Slice is a half-open index-space selection [Start, Stop) taken every
// Step positions. A zero Step means 1.
type Slice struct {
	Start int
	Stop  int
	Step  int
}

func (Slice) isIndex() {}

// Stride returns the effective step.
func (s Slice) Stride() int {
	if s.Step <= 0 {
		return 1
	}
	return s.Step
}

// Len returns the number of positions selected.
func (s Slice) Len() int {
	if s.Stop <= s.Start {
		return 0
	}
	step := s.Stride()
	return (s.Stop - s.Start + step - 1) / step
}

// Empty reports whether the slice selects nothing.
func (s Slice) Empty() bool {
	return s.Len() == 0
}

func (s Slice) String() string {
	if s.Stride() == 1 {
		return fmt.Sprintf("[%d:%d]", s.Start, s.Stop)
	}
	return fmt.Sprintf("[%d:%d:%d]", s.Start, s.Stop, s.Stride())
}

// Range is a closed value-space interval over one axis. It selects every
// sample whose coordinate lies in [Begin, End]; Begin and End may be given
// in either order.
type Range struct {
	Begin float64
	End   float64
}

func (Range) isIndex() {}

// Bounds returns the interval as (low, high).
func (r Range) Bounds() (float64, float64) {
	if r.Begin <= r.End {
		return r.Begin, r.End
	}
	return r.End, r.Begin
}

func (r Range) String() string {
	return fmt.Sprintf("<%g..%g>", r.Begin, r.End)
}

// NormalizeIndex canonicalizes an index request against a coordinate.
// A nil request becomes the full extent; slices and ranges are returned
// unchanged. It performs no I/O and does not validate bounds.
func NormalizeIndex(c Coordinate, idx Index) Index {
	if idx == nil {
		return c.Extent()
	}
	return idx
}

// RangeToIndex resolves a value range against fully loaded, monotonic axis
// values (ascending or descending) and returns the slice of positions whose
// values fall inside the range, inclusive at both ends.
//
// A range lying entirely outside the axis resolves to an empty slice. A
// degenerate range (Begin == End) that matches no stored value resolves to
// the empty slice at its insertion point, i.e. before the first position
// that lies past it in axis order.
func RangeToIndex(values []float64, r Range) Slice {
	n := len(values)
	if n == 0 {
		return Slice{Step: 1}
	}
	lo, hi := r.Bounds()

	var start, stop int
	if values[0] <= values[n-1] {
		start = sort.Search(n, func(i int) bool { return values[i] >= lo })
		stop = sort.Search(n, func(i int) bool { return values[i] > hi })
	} else {
		start = sort.Search(n, func(i int) bool { return values[i] <= hi })
		stop = sort.Search(n, func(i int) bool { return values[i] < lo })
	}
	if stop < start {
		stop = start
	}
	return Slice{Start: start, Stop: stop, Step: 1}
}
