package cubeaccess

import (
	"math"

	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
)

// Coordinate describes a one-dimensional, monotonic axis without holding its
// values: the element type, the first and last stored values and the
// number of samples. Begin > End marks a descending axis.
type Coordinate struct {
	DType  dtype.DType
	Begin  float64
	End    float64
	Length int
}

// Ascending reports whether values increase along the axis.
func (c Coordinate) Ascending() bool {
	return c.Begin <= c.End
}

// Extent returns the full index-space slice [0, Length).
func (c Coordinate) Extent() Slice {
	return Slice{Start: 0, Stop: c.Length, Step: 1}
}

// HasBounds reports whether Begin and End hold real values. Empty and
// non-numeric axes carry NaN bounds.
func (c Coordinate) HasBounds() bool {
	return !math.IsNaN(c.Begin) && !math.IsNaN(c.End)
}

// Overlaps reports whether the value range can select any sample, judged
// from the bounds alone.
func (c Coordinate) Overlaps(r Range) bool {
	if c.Length == 0 || !c.HasBounds() {
		return false
	}
	lo, hi := r.Bounds()
	first, last := c.Begin, c.End
	if !c.Ascending() {
		first, last = last, first
	}
	return hi >= first && lo <= last
}
