package cubeaccess

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
)

// Backend opens containers of one storage format. Implementations must
// allow any number of concurrent, independent read-only opens of the same
// locator.
type Backend interface {
	// Name identifies the format, e.g. "netcdf".
	Name() string
	// Open opens the container read-only. It must not modify the source.
	Open(locator string) (Container, error)
}

// Container is an open, read-only handle on one backing resource. It is
// used for the duration of a single call and then closed.
type Container interface {
	// Fields enumerates every named field with its metadata.
	Fields() ([]Field, error)
	// Read returns the selection of the named field, one Slice per
	// dimension, as an array shaped like the selection.
	Read(name string, sel []Slice) (*Array, error)
	Close() error
}

// Field is the metadata a container reports for one named array.
type Field struct {
	Name  string
	DType dtype.DType
	Shape []int
	Dims  []string
	Attrs map[string]interface{}
}

// IsCoordinate reports whether the field is a coordinate axis: one
// dimensional and named after its only dimension.
func (f Field) IsCoordinate() bool {
	return len(f.Dims) == 1 && f.Dims[0] == f.Name
}

// Classify enumerates the fields of an open container and sorts them into
// coordinates and variables. Coordinate bounds are taken from the first and
// last stored values, read one element at a time; no axis is loaded whole.
func Classify(c Container, noDataAttrs []string) (map[string]Coordinate, map[string]Variable, error) {
	fields, err := c.Fields()
	if err != nil {
		return nil, nil, fmt.Errorf("enumerating fields: %w", err)
	}

	coords := make(map[string]Coordinate)
	vars := make(map[string]Variable)
	for _, f := range fields {
		if !f.IsCoordinate() {
			vars[f.Name] = NewVariable(f.DType, f.Dims, f.Attrs, noDataAttrs)
			continue
		}
		coord, err := describeAxis(c, f)
		if err != nil {
			return nil, nil, fmt.Errorf("axis %q: %w", f.Name, err)
		}
		coords[f.Name] = coord
	}
	return coords, vars, nil
}

func describeAxis(c Container, f Field) (Coordinate, error) {
	if len(f.Shape) != 1 {
		return Coordinate{}, fmt.Errorf("coordinate has shape %v", f.Shape)
	}
	coord := Coordinate{DType: f.DType, Begin: math.NaN(), End: math.NaN(), Length: f.Shape[0]}
	if coord.Length == 0 || !f.DType.IsNumeric() {
		return coord, nil
	}

	var err error
	if coord.Begin, err = readPoint(c, f.Name, 0); err != nil {
		return Coordinate{}, err
	}
	if coord.End, err = readPoint(c, f.Name, coord.Length-1); err != nil {
		return Coordinate{}, err
	}
	return coord, nil
}

func readPoint(c Container, name string, i int) (float64, error) {
	arr, err := c.Read(name, []Slice{{Start: i, Stop: i + 1, Step: 1}})
	if err != nil {
		return 0, err
	}
	return dtype.Float64At(arr.Data, 0)
}
