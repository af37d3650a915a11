package field

import (
	"github.com/notargets/gofvm/executor"
)

// Elementwise operations. Each runs through the dispatch primitive so the
// same call works on every backend; the accelerator variants are the OKL
// kernels in okl.go. Device results become host-visible only after
// Exec().Synchronize() (HostCopy fences implicitly).

// Fill sets every element to value.
func (v *Vector[T]) Fill(value T) error {
	if v.n == 0 {
		return nil
	}
	op := executor.Op{Name: "gofvm_fill_" + typeTag[T]()}
	if v.host != nil {
		s := v.host
		op.Host = func(i int) { s[i] = value }
	} else {
		op.OKL = fillOKL(op.Name, cTypeOf[T]())
		op.Args = []interface{}{v.dev, value}
	}
	return executor.ForEach(v.exec, executor.Range{Start: 0, End: v.n}, op)
}

// Add adds rhs elementwise. Operands must have equal size and executor.
func (v *Vector[T]) Add(rhs *Vector[T]) error {
	return v.binary(rhs, "add", func(a, b T) T { return a + b })
}

// Sub subtracts rhs elementwise. Operands must have equal size and executor.
func (v *Vector[T]) Sub(rhs *Vector[T]) error {
	return v.binary(rhs, "sub", func(a, b T) T { return a - b })
}

// Mul multiplies by rhs elementwise. Operands must have equal size and
// executor.
func (v *Vector[T]) Mul(rhs *Vector[T]) error {
	return v.binary(rhs, "mul", func(a, b T) T { return a * b })
}

func (v *Vector[T]) binary(rhs *Vector[T], name string, f func(a, b T) T) error {
	if err := v.validate(rhs); err != nil {
		return err
	}
	if v.n == 0 {
		return nil
	}
	op := executor.Op{Name: "gofvm_" + name + "_" + typeTag[T]()}
	if v.host != nil {
		a, b := v.host, rhs.host
		op.Host = func(i int) { a[i] = f(a[i], b[i]) }
	} else {
		op.OKL = binaryOKL(op.Name, cTypeOf[T](), name)
		op.Args = []interface{}{v.dev, rhs.dev}
	}
	return executor.ForEach(v.exec, executor.Range{Start: 0, End: v.n}, op)
}

// Scale multiplies every element by value.
func (v *Vector[T]) Scale(value T) error {
	if v.n == 0 {
		return nil
	}
	op := executor.Op{Name: "gofvm_scale_" + typeTag[T]()}
	if v.host != nil {
		s := v.host
		op.Host = func(i int) { s[i] *= value }
	} else {
		op.OKL = scaleOKL(op.Name, cTypeOf[T]())
		op.Args = []interface{}{v.dev, value}
	}
	return executor.ForEach(v.exec, executor.Range{Start: 0, End: v.n}, op)
}
