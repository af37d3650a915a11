package operators

import (
	"fmt"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
	"github.com/notargets/gofvm/sparse"
)

// DdtExplicit accumulates the explicit backward-difference time derivative
// into source:
//
//	source[c] += coeff[c] * (phi[c] - phiOld[c]) / dt * V[c]
//
// Each cell is written by exactly one index, so no atomics are involved.
func DdtExplicit(source, phi, phiOld *field.Vector[field.Scalar],
	dt field.Scalar, m *mesh.Mesh, coeff Coeff) error {

	exec := m.Exec()
	if err := validateCellOperands(m, source, phi, phiOld); err != nil {
		return err
	}
	if dt == 0 {
		return fmt.Errorf("operators: ddt: zero time step")
	}
	if err := coeff.validate(exec, m.NCells()); err != nil {
		return err
	}

	op := executor.Op{Name: "gofvm_ddt_exp"}
	if exec.IsHostAddressable() {
		srcV, err := source.View()
		if err != nil {
			return err
		}
		src := srcV.Slice()
		phiV := mustRead(phi)
		oldV := mustRead(phiOld)
		vol := mustRead(m.CellVolumes())
		at, err := coeff.hostAt()
		if err != nil {
			return err
		}
		op.Host = func(c int) {
			src[c] += at(c) * (phiV.At(c) - oldV.At(c)) / dt * vol.At(c)
		}
	} else {
		op.OKL = ddtExplicitOKL(op.Name)
		op.Args = append([]interface{}{
			phi.DeviceMemory(), phiOld.DeviceMemory(),
			m.CellVolumes().DeviceMemory(), dt,
			source.DeviceMemory(),
		}, coeff.deviceArgs(exec.Device())...)
	}
	return executor.ForEach(exec, executor.Range{Start: 0, End: m.NCells()}, op)
}

// DdtImplicit accumulates the implicit backward-difference time derivative
// into sys: the diagonal gains V[c]/dt and the right-hand side gains
// phiOld[c]/dt * V[c], both scaled by coeff[c].
func DdtImplicit(sys *sparse.System, phiOld *field.Vector[field.Scalar],
	dt field.Scalar, m *mesh.Mesh, coeff Coeff) error {

	exec := m.Exec()
	pat := sys.Pattern()
	if pat.NRows() != m.NCells() {
		return fmt.Errorf("operators: system has %d rows, mesh has %d cells: %w",
			pat.NRows(), m.NCells(), field.ErrSizeMismatch)
	}
	if phiOld.Size() != m.NCells() {
		return fmt.Errorf("operators: ddt phiOld has %d cells, mesh has %d: %w",
			phiOld.Size(), m.NCells(), field.ErrSizeMismatch)
	}
	if !phiOld.Exec().Equal(exec) || !sys.Exec().Equal(exec) {
		return field.ErrExecutorMismatch
	}
	if dt == 0 {
		return fmt.Errorf("operators: ddt: zero time step")
	}
	if err := coeff.validate(exec, m.NCells()); err != nil {
		return err
	}

	op := executor.Op{Name: "gofvm_ddt_imp"}
	if exec.IsHostAddressable() {
		valsV, err := sys.Values().View()
		if err != nil {
			return err
		}
		vals := valsV.Slice()
		rhsV, err := sys.RHS().View()
		if err != nil {
			return err
		}
		rhs := rhsV.Slice()
		oldV := mustRead(phiOld)
		vol := mustRead(m.CellVolumes())
		rowOffs := mustReadIdx(pat.RowOffsets())
		diagOff := mustReadIdx(pat.DiagOffset())
		at, err := coeff.hostAt()
		if err != nil {
			return err
		}
		op.Host = func(c int) {
			s := at(c)
			vals[int(rowOffs.At(c))+int(diagOff.At(c))] += s * vol.At(c) / dt
			rhs[c] += s * oldV.At(c) / dt * vol.At(c)
		}
	} else {
		op.OKL = ddtImplicitOKL(op.Name)
		op.Args = append([]interface{}{
			phiOld.DeviceMemory(), m.CellVolumes().DeviceMemory(), dt,
			pat.RowOffsets().DeviceMemory(), pat.DiagOffset().DeviceMemory(),
			sys.Values().DeviceMemory(), sys.RHS().DeviceMemory(),
		}, coeff.deviceArgs(exec.Device())...)
	}
	if err := executor.ForEach(exec, executor.Range{Start: 0, End: m.NCells()}, op); err != nil {
		return err
	}
	exec.Synchronize()
	return nil
}

// validateCellOperands checks that cell vectors fit the mesh and share its
// executor.
func validateCellOperands(m *mesh.Mesh, vs ...*field.Vector[field.Scalar]) error {
	for _, v := range vs {
		if v.Size() != m.NCells() {
			return fmt.Errorf("operators: operand has %d cells, mesh has %d: %w",
				v.Size(), m.NCells(), field.ErrSizeMismatch)
		}
		if !v.Exec().Equal(m.Exec()) {
			return field.ErrExecutorMismatch
		}
	}
	return nil
}
