package cubeaccess

import (
	"slices"

	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
)

// DefaultNoDataAttrs lists the attributes consulted for a variable's nodata
// value, highest priority first.
var DefaultNoDataAttrs = []string{"_FillValue", "missing_value", "fill_value"}

// Variable describes a measurement field: its element type, optional nodata
// sentinel and the ordered names of the axes it is keyed by.
type Variable struct {
	DType  dtype.DType
	NoData *float64
	Dims   []string
}

// NewVariable builds a Variable, resolving nodata from attrs by checking
// each name of noDataAttrs in order. The first attribute present with a
// numeric value wins; a stored value of zero is a valid nodata. Readers
// that chain the attributes by truthiness skip a zero _FillValue and fall
// through to missing_value; here presence decides. A nil noDataAttrs means
// DefaultNoDataAttrs.
func NewVariable(dt dtype.DType, dims []string, attrs map[string]interface{}, noDataAttrs []string) Variable {
	if noDataAttrs == nil {
		noDataAttrs = DefaultNoDataAttrs
	}
	v := Variable{DType: dt, Dims: slices.Clone(dims)}
	for _, name := range noDataAttrs {
		raw, ok := attrs[name]
		if !ok {
			continue
		}
		if f, ok := dtype.ToFloat64(raw); ok {
			v.NoData = &f
			break
		}
	}
	return v
}

// Rank returns the number of dimensions.
func (v Variable) Rank() int {
	return len(v.Dims)
}

// HasNoData reports whether a nodata value was resolved.
func (v Variable) HasNoData() bool {
	return v.NoData != nil
}
