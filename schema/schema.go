// Package schema reads and writes the precomputed metadata of a storage
// unit as a YAML document, so a catalog that already knows a container's
// layout can build units without opening the container:
//
//	locator: sst.nc
//	coordinates:
//	  time: {dtype: float64, begin: 0, end: 18, length: 4}
//	variables:
//	  sst: {dtype: float32, nodata: -1e20, dims: [time, lat]}
package schema

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
)

// ErrInvalid is returned for documents that do not describe a usable unit.
var ErrInvalid = errors.New("invalid schema")

// Document is the YAML form of a unit's metadata.
type Document struct {
	Locator     string                `yaml:"locator,omitempty"`
	Backend     string                `yaml:"backend,omitempty"`
	Coordinates map[string]Coordinate `yaml:"coordinates"`
	Variables   map[string]Variable   `yaml:"variables"`
}

// Coordinate mirrors cubeaccess.Coordinate. Bounds are omitted for axes
// without numeric bounds.
type Coordinate struct {
	DType  dtype.DType `yaml:"dtype"`
	Begin  *float64    `yaml:"begin,omitempty"`
	End    *float64    `yaml:"end,omitempty"`
	Length int         `yaml:"length"`
}

// Variable mirrors cubeaccess.Variable.
type Variable struct {
	DType  dtype.DType `yaml:"dtype"`
	NoData *float64    `yaml:"nodata,omitempty"`
	Dims   []string    `yaml:"dims,flow"`
}

// FromUnit captures the metadata of a unit.
func FromUnit(u *cubeaccess.Unit) *Document {
	doc := &Document{
		Locator:     u.Locator(),
		Backend:     u.Backend().Name(),
		Coordinates: make(map[string]Coordinate),
		Variables:   make(map[string]Variable),
	}
	for name, c := range u.Coordinates() {
		sc := Coordinate{DType: c.DType, Length: c.Length}
		if c.HasBounds() {
			begin, end := c.Begin, c.End
			sc.Begin, sc.End = &begin, &end
		}
		doc.Coordinates[name] = sc
	}
	for name, v := range u.Variables() {
		sv := Variable{DType: v.DType, Dims: append([]string{}, v.Dims...)}
		if v.NoData != nil {
			nd := *v.NoData
			sv.NoData = &nd
		}
		doc.Variables[name] = sv
	}
	return doc
}

// Load decodes and validates a document.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Write encodes the document as YAML.
func (d *Document) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	return enc.Close()
}

// Validate checks that the document can be injected into a unit.
func (d *Document) Validate() error {
	if len(d.Coordinates) == 0 || len(d.Variables) == 0 {
		return fmt.Errorf("%w: coordinates and variables are both required", ErrInvalid)
	}
	for _, name := range sortedKeys(d.Coordinates) {
		c := d.Coordinates[name]
		if !c.DType.Valid() {
			return fmt.Errorf("%w: coordinate %q has no dtype", ErrInvalid, name)
		}
		if c.Length < 0 {
			return fmt.Errorf("%w: coordinate %q has negative length", ErrInvalid, name)
		}
		if (c.Begin == nil) != (c.End == nil) {
			return fmt.Errorf("%w: coordinate %q needs both begin and end", ErrInvalid, name)
		}
	}
	for _, name := range sortedKeys(d.Variables) {
		v := d.Variables[name]
		if !v.DType.Valid() {
			return fmt.Errorf("%w: variable %q has no dtype", ErrInvalid, name)
		}
		if _, clash := d.Coordinates[name]; clash {
			return fmt.Errorf("%w: %q is both a coordinate and a variable", ErrInvalid, name)
		}
	}
	return nil
}

// Metadata converts the document into the maps cubeaccess.WithMetadata takes.
func (d *Document) Metadata() (map[string]cubeaccess.Coordinate, map[string]cubeaccess.Variable) {
	coords := make(map[string]cubeaccess.Coordinate, len(d.Coordinates))
	for name, c := range d.Coordinates {
		cc := cubeaccess.Coordinate{DType: c.DType, Begin: math.NaN(), End: math.NaN(), Length: c.Length}
		if c.Begin != nil && c.End != nil {
			cc.Begin, cc.End = *c.Begin, *c.End
		}
		coords[name] = cc
	}
	vars := make(map[string]cubeaccess.Variable, len(d.Variables))
	for name, v := range d.Variables {
		cv := cubeaccess.Variable{DType: v.DType, Dims: append([]string{}, v.Dims...)}
		if v.NoData != nil {
			nd := *v.NoData
			cv.NoData = &nd
		}
		vars[name] = cv
	}
	return coords, vars
}

// Options returns the unit options that inject this document's metadata.
func (d *Document) Options() []cubeaccess.Option {
	return []cubeaccess.Option{cubeaccess.WithMetadata(d.Metadata())}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
