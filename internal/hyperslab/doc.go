// Package hyperslab implements index-space selection over row-major arrays.
//
// A [Selection] names, per dimension, a start position, a number of
// elements and a stride. It is the in-memory counterpart of an HDF5
// hyperslab with a block size of one:
//
//	dim i selects start[i], start[i]+stride[i], ... (count[i] elements)
//
// Containers that can only read contiguous runs along their outermost axis
// read that run and hand it to [Gather], which picks out the remaining
// positions. [Flatten] turns the nested slices some readers return
// ([][]float32 for a 2-D variable) into a flat row-major slice plus shape.
package hyperslab
