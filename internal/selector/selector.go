// Package selector applies index-space slices to in-memory row-major data
// on behalf of container backends.
package selector

import (
	"fmt"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
	"github.com/robert-malhotra/go-cubeaccess/internal/hyperslab"
)

// Build converts per-dimension slices into a hyperslab selection and checks
// it against shape.
func Build(sel []cubeaccess.Slice, shape []int) (hyperslab.Selection, error) {
	if len(sel) != len(shape) {
		return hyperslab.Selection{}, fmt.Errorf("%d slices for rank %d", len(sel), len(shape))
	}
	hs := hyperslab.Selection{
		Start:  make([]int, len(sel)),
		Count:  make([]int, len(sel)),
		Stride: make([]int, len(sel)),
	}
	for i, s := range sel {
		hs.Start[i] = s.Start
		hs.Count[i] = s.Len()
		hs.Stride[i] = s.Stride()
	}
	if err := hs.Validate(shape); err != nil {
		return hyperslab.Selection{}, err
	}
	return hs, nil
}

// Read gathers sel out of flat row-major data with the given shape.
func Read(data interface{}, shape []int, sel []cubeaccess.Slice) (*cubeaccess.Array, error) {
	dt, err := dtype.Of(data)
	if err != nil {
		return nil, err
	}
	hs, err := Build(sel, shape)
	if err != nil {
		return nil, err
	}
	out, err := hyperslab.Gather(data, shape, hs)
	if err != nil {
		return nil, err
	}
	return &cubeaccess.Array{DType: dt, Shape: hs.Shape(), Data: out}, nil
}
