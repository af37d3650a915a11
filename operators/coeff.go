// Package operators implements the face-to-cell assembly algorithms:
// explicit and implicit divergence of a face-flux-weighted field, the
// time-derivative operator pair, and upwind surface interpolation. Every
// algorithm is written once against the dispatch primitive and carries an
// OKL twin for the accelerator; scatter writes that may collide use atomic
// accumulation and each assembly separates its scatter and normalize phases
// with an executor barrier.
package operators

import (
	"fmt"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
)

// Coeff is a per-cell operator scaling: a uniform scalar, optionally
// modulated by a per-cell field. Both representations are read through one
// access pattern, so assembly kernels never branch on which one they got.
type Coeff struct {
	uniform field.Scalar
	span    *field.Vector[field.Scalar]
}

// OneCoeff is the neutral scaling.
func OneCoeff() Coeff { return Coeff{uniform: 1} }

// UniformCoeff scales every cell by v.
func UniformCoeff(v field.Scalar) Coeff { return Coeff{uniform: v} }

// FieldCoeff scales cell c by span[c]. The span vector is borrowed, not
// owned; it must outlive the coefficient and stay bound to the executor the
// operators run on.
func FieldCoeff(span *field.Vector[field.Scalar]) Coeff {
	return Coeff{uniform: 1, span: span}
}

// ScaledFieldCoeff scales cell c by v*span[c].
func ScaledFieldCoeff(v field.Scalar, span *field.Vector[field.Scalar]) Coeff {
	return Coeff{uniform: v, span: span}
}

// validate checks the span against the executor and cell count of the
// operator consuming the coefficient.
func (c Coeff) validate(exec executor.Executor, nCells int) error {
	if c.span == nil {
		return nil
	}
	if c.span.Size() != nCells {
		return fmt.Errorf("operators: coeff span has %d cells, mesh has %d: %w",
			c.span.Size(), nCells, field.ErrSizeMismatch)
	}
	if !c.span.Exec().Equal(exec) {
		return field.ErrExecutorMismatch
	}
	return nil
}

// hostAt returns the per-cell accessor for host execution.
func (c Coeff) hostAt() (func(cell int) field.Scalar, error) {
	u := c.uniform
	if c.span == nil {
		return func(int) field.Scalar { return u }, nil
	}
	rv, err := c.span.ReadView()
	if err != nil {
		return nil, err
	}
	return func(cell int) field.Scalar { return u * rv.At(cell) }, nil
}

// deviceArgs returns the kernel argument triple every coefficient-aware OKL
// kernel ends with: (uniform, hasSpan, span). Without a span the scratch
// unit buffer stands in for the pointer; the flag keeps it unread.
func (c Coeff) deviceArgs(dev *executor.Device) []interface{} {
	if c.span == nil {
		return []interface{}{c.uniform, 0, dev.ScratchUnit()}
	}
	return []interface{}{c.uniform, 1, c.span.DeviceMemory()}
}
