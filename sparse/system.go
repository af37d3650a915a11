package sparse

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
)

// System is the flat matrix-value and right-hand-side storage of a linear
// system, addressed through a Pattern. During assembly it is the one shared
// mutable resource: concurrent writers from different faces reach the same
// slots and must accumulate atomically. It must be zeroed before an
// assembly pass accumulates into it.
type System struct {
	pat    *Pattern
	values *field.Vector[field.Scalar] // NNZ entries
	rhs    *field.Vector[field.Scalar] // one per cell
}

// NewSystem allocates a zero-initialized system over pat, bound to the
// pattern's executor.
func NewSystem(pat *Pattern) (*System, error) {
	values, err := field.NewWithValue[field.Scalar](pat.Exec(), pat.NNZ(), 0)
	if err != nil {
		return nil, err
	}
	rhs, err := field.NewWithValue[field.Scalar](pat.Exec(), pat.NRows(), 0)
	if err != nil {
		values.Free()
		return nil, err
	}
	return &System{pat: pat, values: values, rhs: rhs}, nil
}

// Pattern returns the sparsity pattern the system is addressed through.
func (s *System) Pattern() *Pattern { return s.pat }

// Values returns the flat matrix value storage.
func (s *System) Values() *field.Vector[field.Scalar] { return s.values }

// RHS returns the per-cell right-hand-side storage.
func (s *System) RHS() *field.Vector[field.Scalar] { return s.rhs }

// Exec returns the executor the system storage is bound to.
func (s *System) Exec() executor.Executor { return s.pat.Exec() }

// Zero resets matrix and right-hand side before a new assembly pass.
func (s *System) Zero() error {
	if err := s.values.Fill(0); err != nil {
		return err
	}
	return s.rhs.Fill(0)
}

// Dense expands the assembled matrix into a gonum dense matrix on the host,
// fencing the device first. Intended for inspection and reference checks,
// not for solving at scale.
func (s *System) Dense() *mat.Dense {
	n := s.pat.NRows()
	rowOffs := s.pat.RowOffsets().HostCopy()
	colIdx := s.pat.ColIndices().HostCopy()
	values := s.values.HostCopy()

	d := mat.NewDense(n, n, nil)
	for r := 0; r < n; r++ {
		for k := rowOffs[r]; k < rowOffs[r+1]; k++ {
			d.Set(r, int(colIdx[k]), values[k])
		}
	}
	return d
}

// RHSVec returns the right-hand side as a gonum vector on the host.
func (s *System) RHSVec() *mat.VecDense {
	return mat.NewVecDense(s.pat.NRows(), s.rhs.HostCopy())
}

// Free releases the system storage. The pattern is not owned and stays
// alive.
func (s *System) Free() {
	s.values.Free()
	s.rhs.Free()
}

// Solver consumes an assembled System and overwrites x with the solution in
// place. Solver internals (Krylov, direct, preconditioning) live outside
// this module.
type Solver interface {
	Solve(s *System, x *field.Vector[field.Scalar]) error
}
