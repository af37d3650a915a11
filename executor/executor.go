// Package executor provides the backend selection, memory allocation and
// parallel dispatch layer that the field and assembly packages are built on.
//
// An Executor is one of a closed set of backends: Sequential (plain loop on
// the calling goroutine), HostParallel (fork-join across a CPU worker pool)
// and Accelerator (an OCCA device driven through gocca). Algorithms are
// written once against ForEach and run unchanged on any backend.
package executor

import (
	"fmt"
	"runtime"
)

// Kind identifies one of the supported execution backends.
type Kind uint8

const (
	// Sequential iterates indices in ascending order on the calling goroutine.
	Sequential Kind = iota
	// HostParallel partitions index ranges across a CPU worker pool.
	HostParallel
	// Accelerator enqueues OKL kernels on an OCCA device.
	Accelerator
)

func (k Kind) String() string {
	switch k {
	case Sequential:
		return "Sequential"
	case HostParallel:
		return "HostParallel"
	case Accelerator:
		return "Accelerator"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Executor is a handle to one execution backend. It is a small value type:
// copies refer to the same underlying device. Two executors compare equal
// iff they are of the same Kind.
type Executor struct {
	kind    Kind
	workers int     // HostParallel pool size
	dev     *Device // non-nil only for Accelerator
}

// NewSequential returns the sequential backend.
func NewSequential() Executor {
	return Executor{kind: Sequential}
}

// NewHostParallel returns the host-parallel backend with one worker per CPU.
func NewHostParallel() Executor {
	return Executor{kind: HostParallel, workers: runtime.NumCPU()}
}

// NewHostParallelN returns the host-parallel backend with an explicit worker
// count. Counts below one fall back to a single worker.
func NewHostParallelN(workers int) Executor {
	if workers < 1 {
		workers = 1
	}
	return Executor{kind: HostParallel, workers: workers}
}

// NewAccelerator creates an accelerator backend on an OCCA device. With no
// arguments it probes OpenMP, CUDA and Serial device modes in that order and
// takes the first that initializes. Explicit OCCA property JSON strings
// override the probe list.
func NewAccelerator(propsJSON ...string) (Executor, error) {
	dev, err := newDevice(propsJSON)
	if err != nil {
		return Executor{}, fmt.Errorf("accelerator init: %w", err)
	}
	return Executor{kind: Accelerator, dev: dev}, nil
}

// Kind returns the backend variant.
func (e Executor) Kind() Kind { return e.kind }

// Name returns the backend name; for the accelerator it includes the OCCA
// device mode.
func (e Executor) Name() string {
	if e.kind == Accelerator && e.dev != nil {
		return fmt.Sprintf("Accelerator(%s)", e.dev.Mode())
	}
	return e.kind.String()
}

// Equal reports whether two executors are the same backend variant.
func (e Executor) Equal(o Executor) bool { return e.kind == o.kind }

// IsHostAddressable reports whether memory bound to this executor may be
// dereferenced from host code. Accelerator memory may not.
func (e Executor) IsHostAddressable() bool { return e.kind != Accelerator }

// Workers returns the fork-join pool size for the HostParallel backend and
// 1 otherwise.
func (e Executor) Workers() int {
	if e.kind == HostParallel {
		return e.workers
	}
	return 1
}

// Device returns the OCCA device backing an Accelerator executor, nil for
// the host backends.
func (e Executor) Device() *Device { return e.dev }

// Synchronize blocks until all previously dispatched work is complete. It is
// a no-op for Sequential and HostParallel, whose dispatches are synchronous,
// and a mandatory fence for the Accelerator before its results may be read
// on the host.
func (e Executor) Synchronize() {
	if e.kind == Accelerator && e.dev != nil {
		e.dev.Finish()
	}
}

// Free releases backend resources. Only the Accelerator holds any.
func (e Executor) Free() {
	if e.kind == Accelerator && e.dev != nil {
		e.dev.Free()
	}
}
