// Package field provides executor-bound owning buffers (Vector) and
// non-owning host windows (View) over them. A Vector is the unit of field
// storage for the assembly algorithms: bound to one executor for its whole
// lifetime, exclusively owning its memory, copyable across backends.
package field

import "fmt"

// Scalar is the floating point type used for field values and matrix
// coefficients.
type Scalar = float64

// Idx is the integer type used for mesh connectivity and sparse offsets.
type Idx = int32

// Value is the closed set of element types a Vector may hold. The set is
// fixed by what the OKL code generator can express on the device side.
type Value interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// cTypeOf returns the OKL/C type name for T.
func cTypeOf[T Value]() string {
	var zero T
	switch any(zero).(type) {
	case int32:
		return "int"
	case int64:
		return "long long"
	case float32:
		return "float"
	case float64:
		return "double"
	}
	panic(fmt.Sprintf("field: unsupported element type %T", zero))
}

// typeTag returns a C-identifier-safe suffix for kernel names.
func typeTag[T Value]() string {
	var zero T
	switch any(zero).(type) {
	case int32:
		return "i32"
	case int64:
		return "i64"
	case float32:
		return "f32"
	case float64:
		return "f64"
	}
	panic(fmt.Sprintf("field: unsupported element type %T", zero))
}

// sizeOf returns the element size of T in bytes.
func sizeOf[T Value]() int64 {
	var zero T
	switch any(zero).(type) {
	case int32, float32:
		return 4
	default:
		return 8
	}
}
