package field

import "errors"

var (
	// ErrSizeMismatch reports operand lengths that differ in an elementwise
	// operation. Recoverable by the caller.
	ErrSizeMismatch = errors.New("field: vector sizes differ")

	// ErrExecutorMismatch reports operands bound to different backends in an
	// operation that requires identical backends. Recoverable by the caller.
	ErrExecutorMismatch = errors.New("field: executors differ")

	// ErrDeviceResident reports an attempt to obtain a host view of
	// accelerator-resident storage. Device elements are only reachable
	// through whole-buffer copies or kernels.
	ErrDeviceResident = errors.New("field: storage is device resident")
)
