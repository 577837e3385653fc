// Package dtype provides element type handling and Go type conversion for
// array data read from storage containers.
//
// Containers describe their element types in different vocabularies: CDL
// names ("double", "short", "ubyte"), Go type names ("float64", "int16"),
// or simply by the Go slice a reader hands back. This package maps all of
// them onto a single [DType] and provides the slice plumbing the rest of
// the module needs:
//
//   - Determine the DType of a name or of a typed Go slice
//   - Allocate typed slices for caller buffers
//   - Convert typed slices and scalar attributes to float64 for searching
//   - Copy between slices of the same element type
//
// # Type Mapping Strategy
//
//	DType    | Go type  | CDL name
//	---------|----------|----------
//	Int8     | int8     | byte
//	Uint8    | uint8    | ubyte
//	Int16    | int16    | short
//	Uint16   | uint16   | ushort
//	Int32    | int32    | int
//	Uint32   | uint32   | uint
//	Int64    | int64    | int64
//	Uint64   | uint64   | uint64
//	Float32  | float32  | float
//	Float64  | float64  | double
//	String   | string   | char, string
//
// # Key Functions
//
//   - [Parse]: Resolves a CDL or Go type name
//   - [Of]: Returns the DType of a typed slice
//   - [MakeSlice]: Allocates a typed slice of n elements
//   - [Float64s]: Converts a numeric slice to []float64
//   - [ToFloat64]: Converts a scalar (or one-element slice) to float64
//   - [Copy]: Copies between slices of identical element type
package dtype
