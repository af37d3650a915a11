package field

import (
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/notargets/gofvm/executor"
)

// Vector is an executor-bound, size-tracked, exclusively-owned buffer of
// elements of type T. The binding executor never changes over the vector's
// lifetime and the buffer is never shared between vectors: every copy
// operation produces independent storage.
//
// Host-bound vectors (Sequential, HostParallel) store a Go slice and are
// reachable through View. Accelerator-bound vectors store OCCA device memory
// that host code can only reach through whole-buffer copies; element access
// from the host is not part of the API at all, which is what makes a stray
// device dereference impossible rather than merely discouraged.
type Vector[T Value] struct {
	exec executor.Executor
	n    int
	host []T               // host storage, nil when device bound or empty
	dev  *gocca.OCCAMemory // device storage, nil when host bound or empty
}

// New creates a vector of n elements on exec. The contents are unspecified
// until written (host backends hand out zeroed memory, the device does not).
func New[T Value](exec executor.Executor, n int) *Vector[T] {
	v := &Vector[T]{exec: exec}
	v.allocate(n, nil)
	return v
}

// NewWithValue creates a vector of n elements on exec, eagerly filled with
// value.
func NewWithValue[T Value](exec executor.Executor, n int, value T) (*Vector[T], error) {
	v := New[T](exec, n)
	if err := v.Fill(value); err != nil {
		v.Free()
		return nil, err
	}
	return v, nil
}

// NewFromSlice creates a vector on exec holding a copy of the host data.
// For an accelerator destination this is a host-to-device transfer.
func NewFromSlice[T Value](exec executor.Executor, data []T) *Vector[T] {
	v := &Vector[T]{exec: exec}
	if len(data) == 0 {
		return v
	}
	v.allocate(len(data), unsafe.Pointer(&data[0]))
	if v.host != nil {
		copy(v.host, data)
	}
	return v
}

// NewFromVector creates a vector on exec holding a copy of src, which may be
// bound to a different executor. The copy stages through the host, covering
// all four transfer directions.
func NewFromVector[T Value](exec executor.Executor, src *Vector[T]) *Vector[T] {
	return NewFromSlice(exec, src.HostCopy())
}

// allocate binds fresh storage of n elements, optionally initialized from
// src (host memory). Precondition: the vector holds no storage.
func (v *Vector[T]) allocate(n int, src unsafe.Pointer) {
	v.n = n
	if n == 0 {
		return
	}
	if dev := v.exec.Device(); dev != nil {
		v.dev = dev.Malloc(int64(n)*sizeOf[T](), src)
		return
	}
	v.host = make([]T, n)
}

// Size returns the number of elements.
func (v *Vector[T]) Size() int { return v.n }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.n == 0 }

// Exec returns the executor the vector is bound to.
func (v *Vector[T]) Exec() executor.Executor { return v.exec }

// DeviceMemory returns the OCCA buffer backing an accelerator-bound vector,
// nil otherwise. It is the handle passed to kernels as an argument; the
// memory remains owned by the vector.
func (v *Vector[T]) DeviceMemory() *gocca.OCCAMemory { return v.dev }

// Free releases the vector's storage. The vector is left empty; Free is
// idempotent.
func (v *Vector[T]) Free() {
	if v.dev != nil {
		v.dev.Free()
		v.dev = nil
	}
	v.host = nil
	v.n = 0
}

// Move transfers ownership of the storage to a new vector in O(1) and
// leaves the receiver empty.
func (v *Vector[T]) Move() *Vector[T] {
	out := &Vector[T]{exec: v.exec, n: v.n, host: v.host, dev: v.dev}
	v.host = nil
	v.dev = nil
	v.n = 0
	return out
}

// Clone returns an independent copy of the vector on the same executor.
func (v *Vector[T]) Clone() *Vector[T] {
	return NewFromVector(v.exec, v)
}

// CopyToExecutor returns an independent copy of the vector on dst. A copy
// onto the vector's own executor still produces fresh storage: mutating the
// result never affects the source.
func (v *Vector[T]) CopyToExecutor(dst executor.Executor) *Vector[T] {
	return NewFromVector(dst, v)
}

// CopyToHost returns an independent copy bound to the sequential executor.
func (v *Vector[T]) CopyToHost() *Vector[T] {
	return v.CopyToExecutor(executor.NewSequential())
}

// HostCopy returns the vector's values in a fresh Go slice. For a device
// vector this fences the device first, so the result reflects all
// previously dispatched kernels.
func (v *Vector[T]) HostCopy() []T {
	out := make([]T, v.n)
	if v.n == 0 {
		return out
	}
	if v.host != nil {
		copy(out, v.host)
		return out
	}
	v.exec.Synchronize()
	v.dev.CopyTo(unsafe.Pointer(&out[0]), int64(v.n)*sizeOf[T]())
	return out
}

// Resize rebinds the vector to n elements. The old prefix (up to the
// smaller of the two sizes) is preserved; contents past it are unspecified
// until written.
func (v *Vector[T]) Resize(n int) {
	if n == v.n {
		return
	}
	if n == 0 {
		v.Free()
		return
	}
	if !v.exec.IsHostAddressable() {
		// device storage: allocate fresh, carry the old prefix over
		var staging []T
		if v.dev != nil {
			keep := v.n
			if n < keep {
				keep = n
			}
			staging = make([]T, keep)
			v.exec.Synchronize()
			v.dev.CopyTo(unsafe.Pointer(&staging[0]), int64(keep)*sizeOf[T]())
			v.dev.Free()
			v.dev = nil
		}
		v.allocateDevice(n, staging)
		return
	}
	old := v.host
	v.host = make([]T, n)
	copy(v.host, old)
	v.n = n
}

// allocateDevice binds fresh device storage of n elements with prefix
// initialized from the staging slice.
func (v *Vector[T]) allocateDevice(n int, prefix []T) {
	v.n = n
	v.dev = v.exec.Device().Malloc(int64(n)*sizeOf[T](), nil)
	if len(prefix) > 0 {
		v.dev.CopyFrom(unsafe.Pointer(&prefix[0]), int64(len(prefix))*sizeOf[T]())
	}
}

// Assign overwrites the vector with the values of src, which must be bound
// to the same executor. A size mismatch resizes the destination first.
func (v *Vector[T]) Assign(src *Vector[T]) error {
	if !v.exec.Equal(src.exec) {
		return ErrExecutorMismatch
	}
	if v.n != src.n {
		v.Resize(src.n)
	}
	if src.n == 0 {
		return nil
	}
	if v.host != nil {
		copy(v.host, src.host)
		return nil
	}
	staging := src.HostCopy()
	v.dev.CopyFrom(unsafe.Pointer(&staging[0]), int64(len(staging))*sizeOf[T]())
	return nil
}

// View returns a mutable window over the whole vector. Accelerator-bound
// storage has no host view; the error is how a stray host dereference is
// kept structurally impossible.
func (v *Vector[T]) View() (View[T], error) {
	if !v.exec.IsHostAddressable() {
		return View[T]{}, ErrDeviceResident
	}
	return View[T]{s: v.host}, nil
}

// ReadView returns a read-only window over the whole vector.
func (v *Vector[T]) ReadView() (ReadView[T], error) {
	if !v.exec.IsHostAddressable() {
		return ReadView[T]{}, ErrDeviceResident
	}
	return ReadView[T]{s: v.host}, nil
}

// validate checks the operand contract shared by all elementwise operations.
func (v *Vector[T]) validate(rhs *Vector[T]) error {
	if v.n != rhs.n {
		return ErrSizeMismatch
	}
	if !v.exec.Equal(rhs.exec) {
		return ErrExecutorMismatch
	}
	return nil
}
