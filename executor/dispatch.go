package executor

import (
	"fmt"
)

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Op is one index-parametrized operation. Host carries the loop body for the
// Sequential and HostParallel backends. Name, OKL and Args describe the same
// operation as an OCCA kernel for the Accelerator: OKL source whose @kernel
// function Name takes (const int lo, const int hi, Args...).
//
// Indices carry no data dependencies on each other; writes that may target
// the same location from different indices must use atomic accumulation
// (AtomicAdd/AtomicSub on the host, @atomic in OKL).
type Op struct {
	Name string
	Host func(i int)
	OKL  string
	Args []interface{}
}

// ForEach executes op over r according to the semantics of exec.
//
// Sequential runs indices in ascending order on the calling goroutine.
// HostParallel forks the range across the worker pool and joins before
// returning; iteration order across partitions is unspecified. Accelerator
// compiles op's kernel on first use and enqueues a launch: the call returns
// while the kernel may still be running, and exec.Synchronize() is required
// before the results are host-visible.
func ForEach(exec Executor, r Range, op Op) error {
	if r.Len() <= 0 {
		return nil
	}
	switch exec.Kind() {
	case Sequential:
		if op.Host == nil {
			return fmt.Errorf("dispatch %s: no host body", op.Name)
		}
		for i := r.Start; i < r.End; i++ {
			op.Host(i)
		}
		return nil

	case HostParallel:
		if op.Host == nil {
			return fmt.Errorf("dispatch %s: no host body", op.Name)
		}
		forkJoin(r.Start, r.End, exec.Workers(), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				op.Host(i)
			}
		})
		return nil

	case Accelerator:
		if op.OKL == "" {
			return fmt.Errorf("dispatch %s: no device kernel source", op.Name)
		}
		kernel, err := exec.Device().Kernel(op.Name, op.OKL)
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", op.Name, err)
		}
		args := make([]interface{}, 0, len(op.Args)+2)
		args = append(args, r.Start, r.End)
		args = append(args, op.Args...)
		if err := kernel.RunWithArgs(args...); err != nil {
			return fmt.Errorf("dispatch %s: kernel launch failed: %w", op.Name, err)
		}
		return nil
	}
	return fmt.Errorf("dispatch %s: unknown executor kind %v", op.Name, exec.Kind())
}
