// Package netcdf is a container backend for NetCDF files, both the classic
// CDF formats and NetCDF-4 (HDF5) files, built on go-native-netcdf.
//
// Files are opened read-only for the duration of one call. Shapes come from
// the dimension table, so enumerating fields reads no data. Variables are
// read along their outermost dimension with GetSlice, so only the rows that
// cover the requested selection are loaded; inner dimensions and strides are
// then applied in memory.
package netcdf

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	ncfile "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
	"github.com/robert-malhotra/go-cubeaccess/internal/hyperslab"
	"github.com/robert-malhotra/go-cubeaccess/internal/logging"
	"github.com/robert-malhotra/go-cubeaccess/internal/selector"
)

// Backend opens NetCDF files by path.
type Backend struct {
	open func(path string) (api.Group, error)
}

var _ cubeaccess.Backend = (*Backend)(nil)

// New returns a NetCDF backend.
func New() *Backend {
	return &Backend{open: ncfile.Open}
}

// Name implements cubeaccess.Backend.
func (b *Backend) Name() string {
	return "netcdf"
}

// Open implements cubeaccess.Backend.
func (b *Backend) Open(path string) (cubeaccess.Container, error) {
	g, err := b.open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &container{group: g}, nil
}

// Open is a convenience for cubeaccess.New(New(), path, opts...).
func Open(path string, opts ...cubeaccess.Option) (*cubeaccess.Unit, error) {
	return cubeaccess.New(New(), path, opts...)
}

type container struct {
	group api.Group
}

// layout is the element type and effective shape of a variable. Char data
// comes back from the library as Go strings, so the trailing string-length
// dimension of a char variable is absorbed into each element.
type layout struct {
	dtype dtype.DType
	dims  []string
	shape []int
}

func (c *container) Close() error {
	c.group.Close()
	return nil
}

func (c *container) Fields() ([]cubeaccess.Field, error) {
	names := c.group.ListVariables()
	fields := make([]cubeaccess.Field, 0, len(names))
	for _, name := range names {
		vg, err := c.group.GetVarGetter(name)
		if err != nil {
			logging.Debugf("netcdf: skipping variable %q: %v", name, err)
			continue
		}
		l, err := c.layoutOf(vg)
		if err != nil {
			logging.Debugf("netcdf: skipping variable %q: %v", name, err)
			continue
		}
		fields = append(fields, cubeaccess.Field{
			Name:  name,
			DType: l.dtype,
			Shape: l.shape,
			Dims:  l.dims,
			Attrs: attributes(vg.Attributes()),
		})
	}
	return fields, nil
}

// layoutOf derives the layout from metadata alone. The outer extent is the
// variable's length, which accounts for an unlimited record dimension;
// inner extents come from the dimension table.
func (c *container) layoutOf(vg api.VarGetter) (layout, error) {
	dt, err := elementType(vg)
	if err != nil {
		return layout{}, err
	}
	dims := vg.Dimensions()
	if dt == dtype.String && len(dims) > 0 {
		dims = dims[:len(dims)-1]
	}

	l := layout{dtype: dt, dims: slices.Clone(dims), shape: make([]int, len(dims))}
	for i, dim := range dims {
		if i == 0 {
			l.shape[0] = int(vg.Len())
			continue
		}
		n, ok := c.dimLen(dim)
		if !ok {
			return layout{}, fmt.Errorf("unknown extent of dimension %q", dim)
		}
		l.shape[i] = n
	}
	return l, nil
}

// dimLen looks a dimension up in the dimension table, falling back to the
// length of its coordinate variable. NetCDF-4 files do not list dimensions
// that have a coordinate variable.
func (c *container) dimLen(name string) (int, bool) {
	n, found := c.group.GetDimension(name)
	if found && n > 0 {
		return int(n), true
	}
	if vg, err := c.group.GetVarGetter(name); err == nil {
		if dims := vg.Dimensions(); len(dims) == 1 && dims[0] == name {
			return int(vg.Len()), true
		}
	}
	return int(n), found
}

func (c *container) Read(name string, sel []cubeaccess.Slice) (*cubeaccess.Array, error) {
	vg, err := c.group.GetVarGetter(name)
	if err != nil {
		return nil, err
	}
	l, err := c.layoutOf(vg)
	if err != nil {
		return nil, err
	}
	if len(sel) != len(l.shape) {
		return nil, fmt.Errorf("%d slices for rank %d", len(sel), len(l.shape))
	}

	if len(l.shape) == 0 {
		v, err := vg.Values()
		if err != nil {
			return nil, err
		}
		data, err := asSlice(v)
		if err != nil {
			return nil, err
		}
		return selector.Read(trimStrings(data), nil, nil)
	}

	// validate the whole selection before touching the file
	if _, err := selector.Build(sel, l.shape); err != nil {
		return nil, err
	}

	outer := sel[0]
	if outer.Empty() {
		shape := make([]int, len(sel))
		for i, s := range sel {
			shape[i] = s.Len()
		}
		return cubeaccess.NewArray(l.dtype, shape...)
	}
	last := outer.Start + (outer.Len()-1)*outer.Stride()
	rows, err := vg.GetSlice(int64(outer.Start), int64(last+1))
	if err != nil {
		return nil, fmt.Errorf("reading rows [%d:%d]: %w", outer.Start, last+1, err)
	}
	flat, got, err := hyperslab.Flatten(rows)
	if err != nil {
		return nil, err
	}
	if len(got) != len(l.shape) || !slices.Equal(got[1:], l.shape[1:]) {
		return nil, fmt.Errorf("read rows shaped %v, expected inner extents %v", got, l.shape[1:])
	}

	local := make([]cubeaccess.Slice, len(sel))
	copy(local, sel)
	local[0] = cubeaccess.Slice{Start: 0, Stop: got[0], Step: outer.Stride()}
	return selector.Read(trimStrings(flat), got, local)
}

func elementType(vg api.VarGetter) (dtype.DType, error) {
	if dt, err := dtype.Parse(vg.GoType()); err == nil {
		return dt, nil
	}
	return dtype.Parse(vg.Type())
}

func attributes(am api.AttributeMap) map[string]interface{} {
	if am == nil {
		return nil
	}
	out := make(map[string]interface{})
	for _, key := range am.Keys() {
		if v, ok := am.Get(key); ok {
			out[key] = v
		}
	}
	return out
}

// asSlice wraps a scalar in a one-element slice of its own type.
func asSlice(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, fmt.Errorf("nil value")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return nil, fmt.Errorf("scalar read returned %d values", rv.Len())
		}
		return v, nil
	}
	out := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
	out.Index(0).Set(rv)
	return out.Interface(), nil
}

// trimStrings strips the NUL padding of fixed-width char data.
func trimStrings(data interface{}) interface{} {
	strs, ok := data.([]string)
	if !ok {
		return data
	}
	out := make([]string, len(strs))
	for i, s := range strs {
		out[i] = strings.TrimRight(s, "\x00")
	}
	return out
}
