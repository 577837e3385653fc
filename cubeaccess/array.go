package cubeaccess

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
	"github.com/robert-malhotra/go-cubeaccess/internal/hyperslab"
)

// Array is an n-dimensional block of values stored row-major in a typed Go
// slice ([]float64, []int16, ...). The slice length always equals the
// product of Shape.
type Array struct {
	DType dtype.DType
	Shape []int
	Data  interface{}
}

// NewArray allocates a zeroed array, typically used as the destination
// buffer for Unit.FillVariable.
func NewArray(dt dtype.DType, shape ...int) (*Array, error) {
	for i, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative extent %d in dimension %d", d, i)
		}
	}
	data, err := dtype.MakeSlice(dt, hyperslab.NumElements(shape))
	if err != nil {
		return nil, err
	}
	return &Array{DType: dt, Shape: slices.Clone(shape), Data: data}, nil
}

// WrapArray builds an array over an existing typed slice without copying.
// With no shape the array is one-dimensional.
func WrapArray(data interface{}, shape ...int) (*Array, error) {
	dt, err := dtype.Of(data)
	if err != nil {
		return nil, err
	}
	n := dtype.Len(data)
	if len(shape) == 0 {
		shape = []int{n}
	}
	if hyperslab.NumElements(shape) != n {
		return nil, fmt.Errorf("shape %v needs %d elements, data has %d", shape, hyperslab.NumElements(shape), n)
	}
	return &Array{DType: dt, Shape: slices.Clone(shape), Data: data}, nil
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.Shape)
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return dtype.Len(a.Data)
}

// Float64s returns the values converted to float64.
func (a *Array) Float64s() ([]float64, error) {
	return dtype.Float64s(a.Data)
}

// compatible reports whether a can receive a block of the given type and shape.
func (a *Array) compatible(dt dtype.DType, shape []int) bool {
	if a == nil || a.DType != dt || !slices.Equal(a.Shape, shape) {
		return false
	}
	got, err := dtype.Of(a.Data)
	return err == nil && got == dt && dtype.Len(a.Data) == hyperslab.NumElements(shape)
}
