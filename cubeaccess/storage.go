package cubeaccess

import (
	"errors"
	"fmt"
	"maps"

	"github.com/charmbracelet/log"

	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
	"github.com/robert-malhotra/go-cubeaccess/internal/hyperslab"
	"github.com/robert-malhotra/go-cubeaccess/internal/logging"
)

// StorageUnit gives lazy access to the coordinates and variables of one
// backing container.
type StorageUnit interface {
	Coordinates() map[string]Coordinate
	Variables() map[string]Variable
	GetCoord(axis string, idx Index) (*Array, Slice, error)
	FillVariable(name string, idx []Slice, dest *Array) error
}

var _ StorageUnit = (*Unit)(nil)

// Unit is the StorageUnit implementation shared by all backends. It keeps
// only metadata; every data access opens the container, reads, and closes
// it again before returning. A Unit is safe for concurrent use.
type Unit struct {
	locator string
	backend Backend
	coords  map[string]Coordinate
	vars    map[string]Variable
	logger  *log.Logger
	metrics *Metrics
}

// New creates a storage unit for the container at locator. Unless
// WithMetadata supplies the schema, the container is opened once to
// enumerate and classify its fields.
func New(backend Backend, locator string, opts ...Option) (*Unit, error) {
	o := &unitOptions{logger: logging.L}
	for _, opt := range opts {
		opt(o)
	}

	u := &Unit{
		locator: locator,
		backend: backend,
		logger:  o.logger.With("backend", backend.Name(), "locator", locator),
		metrics: o.metrics,
	}

	if len(o.coords) > 0 && len(o.vars) > 0 {
		u.coords, u.vars = o.coords, o.vars
		return u, nil
	}

	if err := u.introspect(o.noDataAttrs); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Unit) introspect(noDataAttrs []string) (err error) {
	c, err := u.open("introspect")
	if err != nil {
		return err
	}
	defer u.close(c, &err)

	coords, vars, err := Classify(c, noDataAttrs)
	if err != nil {
		return &OpError{Op: "introspect", Locator: u.locator, Err: err}
	}
	u.coords, u.vars = coords, vars
	u.logger.Debug("classified fields", "coordinates", len(coords), "variables", len(vars))
	return nil
}

// Locator returns the container locator the unit reads from.
func (u *Unit) Locator() string {
	return u.locator
}

// Backend returns the backend the unit opens containers with.
func (u *Unit) Backend() Backend {
	return u.backend
}

// Coordinates returns a copy of the axis-name to Coordinate map.
func (u *Unit) Coordinates() map[string]Coordinate {
	return maps.Clone(u.coords)
}

// Variables returns a copy of the variable-name to Variable map.
func (u *Unit) Variables() map[string]Variable {
	return maps.Clone(u.vars)
}

// Coordinate looks up one axis.
func (u *Unit) Coordinate(name string) (Coordinate, bool) {
	c, ok := u.coords[name]
	return c, ok
}

// Variable looks up one variable.
func (u *Unit) Variable(name string) (Variable, bool) {
	v, ok := u.vars[name]
	return v, ok
}

// GetCoord returns coordinate values for an axis and the index-space slice
// they were read from.
//
// A nil idx reads the whole axis. A Slice is read as given. A Range
// requires the entire axis to be read so the boundaries can be found by
// binary search; prefer a Slice when positions are already known. A Range
// outside the axis resolves to an empty array and an empty slice.
func (u *Unit) GetCoord(axis string, idx Index) (*Array, Slice, error) {
	coord, ok := u.coords[axis]
	if !ok {
		return nil, Slice{}, &OpError{Op: "get_coord", Locator: u.locator, Name: axis, Err: ErrUnknownAxis}
	}

	switch ix := NormalizeIndex(coord, idx).(type) {
	case Slice:
		data, err := u.readAxis(axis, ix)
		if err != nil {
			return nil, Slice{}, err
		}
		return data, ix, nil
	case Range:
		return u.resolveRange(axis, coord, ix)
	default:
		return nil, Slice{}, &OpError{Op: "get_coord", Locator: u.locator, Name: axis,
			Err: fmt.Errorf("unsupported index type %T", ix)}
	}
}

func (u *Unit) readAxis(axis string, s Slice) (data *Array, err error) {
	c, err := u.open("get_coord")
	if err != nil {
		return nil, err
	}
	defer u.close(c, &err)

	data, err = c.Read(axis, []Slice{s})
	if err != nil {
		return nil, &OpError{Op: "get_coord", Locator: u.locator, Name: axis, Err: err}
	}
	u.metrics.read(u.backend.Name(), "coordinate", data.Len())
	return data, nil
}

func (u *Unit) resolveRange(axis string, coord Coordinate, r Range) (data *Array, resolved Slice, err error) {
	if !coord.DType.IsNumeric() {
		return nil, Slice{}, &OpError{Op: "get_coord", Locator: u.locator, Name: axis,
			Err: fmt.Errorf("%w: range query on %s axis", ErrUnsupportedType, coord.DType)}
	}

	c, err := u.open("get_coord")
	if err != nil {
		return nil, Slice{}, err
	}
	defer u.close(c, &err)

	full, err := c.Read(axis, []Slice{coord.Extent()})
	if err != nil {
		return nil, Slice{}, &OpError{Op: "get_coord", Locator: u.locator, Name: axis, Err: err}
	}
	u.metrics.read(u.backend.Name(), "coordinate", full.Len())

	values, err := full.Float64s()
	if err != nil {
		return nil, Slice{}, &OpError{Op: "get_coord", Locator: u.locator, Name: axis, Err: err}
	}
	resolved = RangeToIndex(values, r)
	overlaps := coord.Overlaps(r)
	u.metrics.resolved(resolved, overlaps)
	if !overlaps {
		u.logger.Debug("range outside axis bounds", "axis", axis, "range", r, "begin", coord.Begin, "end", coord.End)
	}
	u.logger.Debug("resolved range", "axis", axis, "range", r, "slice", resolved)

	sub, err := dtype.Slice(full.Data, resolved.Start, resolved.Stop)
	if err != nil {
		return nil, Slice{}, &OpError{Op: "get_coord", Locator: u.locator, Name: axis, Err: err}
	}
	return &Array{DType: full.DType, Shape: []int{resolved.Len()}, Data: sub}, resolved, nil
}

// Selection completes idx for the named variable and returns the per-axis
// slices together with the shape of the selected block. Missing trailing
// entries select the full extent of their axis. No I/O is performed.
func (u *Unit) Selection(name string, idx []Slice) ([]Slice, []int, error) {
	v, ok := u.vars[name]
	if !ok {
		return nil, nil, &OpError{Op: "selection", Locator: u.locator, Name: name, Err: ErrUnknownVariable}
	}
	if len(idx) > v.Rank() {
		return nil, nil, &OpError{Op: "selection", Locator: u.locator, Name: name,
			Err: fmt.Errorf("%w: %d slices for %d dimensions", ErrShapeMismatch, len(idx), v.Rank())}
	}

	sel := make([]Slice, v.Rank())
	shape := make([]int, v.Rank())
	copy(sel, idx)
	for i := len(idx); i < v.Rank(); i++ {
		coord, ok := u.coords[v.Dims[i]]
		if !ok {
			return nil, nil, &OpError{Op: "selection", Locator: u.locator, Name: v.Dims[i], Err: ErrUnknownAxis}
		}
		sel[i] = coord.Extent()
	}
	for i, s := range sel {
		shape[i] = s.Len()
	}
	return sel, shape, nil
}

// FillVariable reads the selection idx of a variable into dest. idx holds
// one index-space slice per dimension, typically the slices returned by
// GetCoord. dest must already have the variable's element type and the
// selection's shape; on any mismatch ErrShapeMismatch is returned and dest
// is left untouched.
func (u *Unit) FillVariable(name string, idx []Slice, dest *Array) (err error) {
	v, ok := u.vars[name]
	if !ok {
		return &OpError{Op: "fill_variable", Locator: u.locator, Name: name, Err: ErrUnknownVariable}
	}
	sel, shape, err := u.Selection(name, idx)
	if err != nil {
		return err
	}
	if !dest.compatible(v.DType, shape) {
		return &OpError{Op: "fill_variable", Locator: u.locator, Name: name,
			Err: fmt.Errorf("%w: want %s%v, got %s", ErrShapeMismatch, v.DType, shape, describe(dest))}
	}

	c, err := u.open("fill_variable")
	if err != nil {
		return err
	}
	defer u.close(c, &err)

	data, err := c.Read(name, sel)
	if err != nil {
		return &OpError{Op: "fill_variable", Locator: u.locator, Name: name, Err: err}
	}
	if data.DType != v.DType || hyperslab.NumElements(data.Shape) != hyperslab.NumElements(shape) {
		return &OpError{Op: "fill_variable", Locator: u.locator, Name: name,
			Err: fmt.Errorf("container returned %s%v for selection %v", data.DType, data.Shape, shape)}
	}
	n, err := dtype.Copy(dest.Data, data.Data)
	if err != nil {
		return &OpError{Op: "fill_variable", Locator: u.locator, Name: name, Err: err}
	}
	u.metrics.read(u.backend.Name(), "variable", n)
	return nil
}

// ReadVariable allocates a buffer for the selection and fills it.
func (u *Unit) ReadVariable(name string, idx []Slice) (*Array, error) {
	v, ok := u.vars[name]
	if !ok {
		return nil, &OpError{Op: "read_variable", Locator: u.locator, Name: name, Err: ErrUnknownVariable}
	}
	_, shape, err := u.Selection(name, idx)
	if err != nil {
		return nil, err
	}
	dest, err := NewArray(v.DType, shape...)
	if err != nil {
		return nil, &OpError{Op: "read_variable", Locator: u.locator, Name: name,
			Err: errors.Join(ErrUnsupportedType, err)}
	}
	if err := u.FillVariable(name, idx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (u *Unit) open(op string) (Container, error) {
	c, err := u.backend.Open(u.locator)
	u.metrics.opened(u.backend.Name(), err)
	if err != nil {
		return nil, &OpError{Op: op, Locator: u.locator, Err: fmt.Errorf("%w: %w", ErrContainerUnavailable, err)}
	}
	u.logger.Debug("opened container", "op", op)
	return c, nil
}

// close releases c and reports a close failure through errp unless an
// earlier error is already set.
func (u *Unit) close(c Container, errp *error) {
	cerr := c.Close()
	if cerr != nil && *errp == nil {
		*errp = &OpError{Op: "close", Locator: u.locator, Err: cerr}
	}
}

func describe(a *Array) string {
	if a == nil {
		return "nil"
	}
	return fmt.Sprintf("%s%v", a.DType, a.Shape)
}
