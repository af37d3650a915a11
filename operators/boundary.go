package operators

import (
	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
)

// BoundaryCoeffs carries the per-boundary-face data of the implicit
// divergence's Robin-style boundary term: a blend fraction α between a
// prescribed reference value and the interior extrapolation, and the
// reference value itself. α=1 pins the face to the reference value, α=0
// leaves it fully implicit.
type BoundaryCoeffs struct {
	ValueFraction *field.Vector[field.Scalar]
	RefValue      *field.Vector[field.Scalar]
}

// NewBoundaryCoeffs allocates zeroed boundary coefficients for nFaces
// boundary faces on exec.
func NewBoundaryCoeffs(exec executor.Executor, nFaces int) (*BoundaryCoeffs, error) {
	frac, err := field.NewWithValue[field.Scalar](exec, nFaces, 0)
	if err != nil {
		return nil, err
	}
	ref, err := field.NewWithValue[field.Scalar](exec, nFaces, 0)
	if err != nil {
		frac.Free()
		return nil, err
	}
	return &BoundaryCoeffs{ValueFraction: frac, RefValue: ref}, nil
}

// FixedValueBoundary returns coefficients pinning every boundary face to
// value (α=1).
func FixedValueBoundary(exec executor.Executor, nFaces int, value field.Scalar) (*BoundaryCoeffs, error) {
	bc, err := NewBoundaryCoeffs(exec, nFaces)
	if err != nil {
		return nil, err
	}
	if err := bc.ValueFraction.Fill(1); err != nil {
		bc.Free()
		return nil, err
	}
	if err := bc.RefValue.Fill(value); err != nil {
		bc.Free()
		return nil, err
	}
	return bc, nil
}

// ZeroGradientBoundary returns coefficients leaving every boundary face
// fully implicit (α=0).
func ZeroGradientBoundary(exec executor.Executor, nFaces int) (*BoundaryCoeffs, error) {
	return NewBoundaryCoeffs(exec, nFaces)
}

// Free releases the coefficient storage.
func (b *BoundaryCoeffs) Free() {
	b.ValueFraction.Free()
	b.RefValue.Free()
}

// BoundaryProvider produces boundary coefficients for a mesh. It is the
// seam to the boundary-condition registration machinery, which lives
// outside this module.
type BoundaryProvider interface {
	BoundaryCoeffs(m *mesh.Mesh) (*BoundaryCoeffs, error)
}
