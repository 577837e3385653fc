package dtype

import (
	"fmt"
	"reflect"
	"strings"
)

// DType identifies the element type of an array.
type DType uint8

const (
	Invalid DType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	String
)

var names = [...]string{
	Invalid: "invalid",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
}

var goTypes = [...]reflect.Type{
	Int8:    reflect.TypeOf(int8(0)),
	Uint8:   reflect.TypeOf(uint8(0)),
	Int16:   reflect.TypeOf(int16(0)),
	Uint16:  reflect.TypeOf(uint16(0)),
	Int32:   reflect.TypeOf(int32(0)),
	Uint32:  reflect.TypeOf(uint32(0)),
	Int64:   reflect.TypeOf(int64(0)),
	Uint64:  reflect.TypeOf(uint64(0)),
	Float32: reflect.TypeOf(float32(0)),
	Float64: reflect.TypeOf(float64(0)),
	String:  reflect.TypeOf(""),
}

// cdlNames maps CDL type names to their DType.
var cdlNames = map[string]DType{
	"byte":   Int8,
	"ubyte":  Uint8,
	"short":  Int16,
	"ushort": Uint16,
	"int":    Int32,
	"uint":   Uint32,
	"int64":  Int64,
	"uint64": Uint64,
	"float":  Float32,
	"double": Float64,
	"char":   String,
	"string": String,
}

// String returns the Go name of the type.
func (d DType) String() string {
	if int(d) < len(names) {
		return names[d]
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d DType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid dtype %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Valid reports whether d names a supported type.
func (d DType) Valid() bool {
	return d > Invalid && d <= String
}

// IsNumeric returns true for integer and floating-point types.
func (d DType) IsNumeric() bool {
	return d >= Int8 && d <= Float64
}

// IsFloat returns true for floating-point types.
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// Size returns the element size in bytes, or 0 for strings.
func (d DType) Size() int {
	switch d {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Parse resolves a Go type name ("float64") or a CDL type name ("double").
func Parse(name string) (DType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range names {
		if i != int(Invalid) && s == n {
			return DType(i), nil
		}
	}
	if d, ok := cdlNames[n]; ok {
		return d, nil
	}
	return Invalid, fmt.Errorf("unsupported type name %q", name)
}

// GoType returns the reflect.Type of a single element.
func GoType(d DType) (reflect.Type, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unsupported dtype: %s", d)
	}
	return goTypes[d], nil
}

// Of returns the DType of a typed slice such as []float32.
func Of(slice interface{}) (DType, error) {
	if slice == nil {
		return Invalid, fmt.Errorf("nil slice")
	}
	t := reflect.TypeOf(slice)
	if t.Kind() != reflect.Slice {
		return Invalid, fmt.Errorf("expected slice, got %s", t)
	}
	return ofElem(t.Elem())
}

// OfValue returns the DType of a scalar value.
func OfValue(v interface{}) (DType, error) {
	if v == nil {
		return Invalid, fmt.Errorf("nil value")
	}
	return ofElem(reflect.TypeOf(v))
}

func ofElem(t reflect.Type) (DType, error) {
	for i, gt := range goTypes {
		if gt != nil && gt == t {
			return DType(i), nil
		}
	}
	return Invalid, fmt.Errorf("unsupported element type %s", t)
}
