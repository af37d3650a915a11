package operators

import (
	"fmt"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
	"github.com/notargets/gofvm/sparse"
)

// DivExplicit accumulates the explicit divergence of the face-interpolated
// field phiFace weighted by faceFlux into result:
//
//	result[c] = coeff[c]/V[c] * sum over faces of c of faceFlux*phiFace
//
// with the owner-to-neighbour sign convention: each internal face adds its
// flux to the owner and subtracts it from the neighbour, so interior cells
// of a uniform field cancel exactly. The scatter phase and the normalize
// phase are separated by an executor barrier on every backend, because a
// cell receives contributions from more than one face.
func DivExplicit(result, faceFlux, phiFace *field.Vector[field.Scalar],
	m *mesh.Mesh, coeff Coeff) error {

	exec := m.Exec()
	if result.Size() != m.NCells() || faceFlux.Size() != m.NFaces() || phiFace.Size() != m.NFaces() {
		return fmt.Errorf("operators: div operand sizes (result %d, flux %d, phiFace %d) do not fit mesh (%d cells, %d faces): %w",
			result.Size(), faceFlux.Size(), phiFace.Size(), m.NCells(), m.NFaces(), field.ErrSizeMismatch)
	}
	if !result.Exec().Equal(exec) || !faceFlux.Exec().Equal(exec) || !phiFace.Exec().Equal(exec) {
		return field.ErrExecutorMismatch
	}
	if err := coeff.validate(exec, m.NCells()); err != nil {
		return err
	}

	nInt := m.NInternalFaces()
	nFaces := m.NFaces()

	scatterInt := executor.Op{Name: "gofvm_div_scatter_int"}
	scatterBnd := executor.Op{Name: "gofvm_div_scatter_bnd"}
	normalize := executor.Op{Name: "gofvm_div_norm"}

	if exec.IsHostAddressable() {
		resV, err := result.View()
		if err != nil {
			return err
		}
		res := resV.Slice()
		flux := mustRead(faceFlux)
		phif := mustRead(phiFace)
		owner := mustReadIdx(m.Owner())
		neighbour := mustReadIdx(m.Neighbour())
		bOwner := mustReadIdx(m.BoundaryOwner())
		vol := mustRead(m.CellVolumes())
		at, err := coeff.hostAt()
		if err != nil {
			return err
		}

		if exec.Kind() == executor.Sequential {
			scatterInt.Host = func(i int) {
				f := flux.At(i) * phif.At(i)
				res[owner.At(i)] += f
				res[neighbour.At(i)] -= f
			}
			scatterBnd.Host = func(i int) {
				res[bOwner.At(i-nInt)] += flux.At(i) * phif.At(i)
			}
		} else {
			scatterInt.Host = func(i int) {
				f := flux.At(i) * phif.At(i)
				executor.AtomicAdd(&res[owner.At(i)], f)
				executor.AtomicSub(&res[neighbour.At(i)], f)
			}
			scatterBnd.Host = func(i int) {
				executor.AtomicAdd(&res[bOwner.At(i-nInt)], flux.At(i)*phif.At(i))
			}
		}
		normalize.Host = func(c int) {
			res[c] *= at(c) / vol.At(c)
		}
	} else {
		dev := exec.Device()
		scatterInt.OKL = divScatterInternalOKL(scatterInt.Name)
		scatterInt.Args = []interface{}{
			faceFlux.DeviceMemory(), phiFace.DeviceMemory(),
			m.Owner().DeviceMemory(), m.Neighbour().DeviceMemory(),
			result.DeviceMemory(),
		}
		scatterBnd.OKL = divScatterBoundaryOKL(scatterBnd.Name)
		scatterBnd.Args = []interface{}{
			faceFlux.DeviceMemory(), phiFace.DeviceMemory(),
			m.BoundaryOwner().DeviceMemory(),
			result.DeviceMemory(),
		}
		normalize.OKL = divNormalizeOKL(normalize.Name)
		normalize.Args = append([]interface{}{
			m.CellVolumes().DeviceMemory(), result.DeviceMemory(),
		}, coeff.deviceArgs(dev)...)
	}

	// scatter phase
	if err := executor.ForEach(exec, executor.Range{Start: 0, End: nInt}, scatterInt); err != nil {
		return err
	}
	if err := executor.ForEach(exec, executor.Range{Start: nInt, End: nFaces}, scatterBnd); err != nil {
		return err
	}

	// No cell may normalize before every face touching it has scattered.
	exec.Synchronize()

	return executor.ForEach(exec, executor.Range{Start: 0, End: m.NCells()}, normalize)
}

// DivExplicitFromField interpolates the cell field phi to faces with interp
// and accumulates its explicit divergence into result.
func DivExplicitFromField(result, faceFlux, phi *field.Vector[field.Scalar],
	interp Interpolation, m *mesh.Mesh, coeff Coeff) error {

	if interp == nil {
		return fmt.Errorf("operators: div: interpolation collaborator not supplied")
	}
	phiFace := field.New[field.Scalar](m.Exec(), m.NFaces())
	defer phiFace.Free()
	if err := interp.Interpolate(faceFlux, phi, phiFace); err != nil {
		return err
	}
	return DivExplicit(result, faceFlux, phiFace, m, coeff)
}

// DivImplicit accumulates the implicit, upwind-weighted divergence operator
// into sys. Per internal face with owner o, neighbour n and upwind weight
// w = 1 if flux >= 0 else 0:
//
//	offdiag(n,o) += -w*flux * s_n     diag(o) -= -w*flux * s_o
//	offdiag(o,n) += (1-w)*flux * s_o  diag(n) -= (1-w)*flux * s_n
//
// The equal-and-opposite pair per face is what keeps the operator
// discretely conservative. Off-diagonal slots are private to their face;
// diagonal and right-hand-side slots are shared between faces and take only
// atomic updates. Boundary faces blend a reference value with fraction α:
// diag(o) += flux*s_o*(1-α), rhs(o) -= flux*s_o*α*r.
func DivImplicit(sys *sparse.System, faceFlux *field.Vector[field.Scalar],
	m *mesh.Mesh, coeff Coeff, bcs *BoundaryCoeffs) error {

	exec := m.Exec()
	pat := sys.Pattern()
	if pat.NRows() != m.NCells() {
		return fmt.Errorf("operators: system has %d rows, mesh has %d cells: %w",
			pat.NRows(), m.NCells(), field.ErrSizeMismatch)
	}
	if faceFlux.Size() != m.NFaces() {
		return fmt.Errorf("operators: div flux has %d faces, mesh has %d: %w",
			faceFlux.Size(), m.NFaces(), field.ErrSizeMismatch)
	}
	if bcs == nil {
		return fmt.Errorf("operators: div: boundary coefficients not supplied")
	}
	if bcs.ValueFraction.Size() != m.NBoundaryFaces() || bcs.RefValue.Size() != m.NBoundaryFaces() {
		return fmt.Errorf("operators: boundary coeffs sized for %d faces, mesh has %d: %w",
			bcs.ValueFraction.Size(), m.NBoundaryFaces(), field.ErrSizeMismatch)
	}
	if !faceFlux.Exec().Equal(exec) || !sys.Exec().Equal(exec) ||
		!bcs.ValueFraction.Exec().Equal(exec) || !bcs.RefValue.Exec().Equal(exec) {
		return field.ErrExecutorMismatch
	}
	if err := coeff.validate(exec, m.NCells()); err != nil {
		return err
	}

	nInt := m.NInternalFaces()
	nFaces := m.NFaces()

	internal := executor.Op{Name: "gofvm_div_imp_int"}
	boundary := executor.Op{Name: "gofvm_div_imp_bnd"}

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
		flux := mustRead(faceFlux)
		owner := mustReadIdx(m.Owner())
		neighbour := mustReadIdx(m.Neighbour())
		bOwner := mustReadIdx(m.BoundaryOwner())
		rowOffs := mustReadIdx(pat.RowOffsets())
		diagOff := mustReadIdx(pat.DiagOffset())
		ownOff := mustReadIdx(pat.OwnerOffset())
		neiOff := mustReadIdx(pat.NeighbourOffset())
		frac := mustRead(bcs.ValueFraction)
		ref := mustRead(bcs.RefValue)
		at, err := coeff.hostAt()
		if err != nil {
			return err
		}

		sequential := exec.Kind() == executor.Sequential
		sub := func(addr *field.Scalar, v field.Scalar) {
			if sequential {
				*addr -= v
			} else {
				executor.AtomicSub(addr, v)
			}
		}
		add := func(addr *field.Scalar, v field.Scalar) {
			if sequential {
				*addr += v
			} else {
				executor.AtomicAdd(addr, v)
			}
		}

		internal.Host = func(i int) {
			f := flux.At(i)
			w := field.Scalar(0)
			if f >= 0 {
				w = 1
			}
			own := int(owner.At(i))
			nei := int(neighbour.At(i))
			rowOwn := int(rowOffs.At(own))
			rowNei := int(rowOffs.At(nei))
			sOwn := at(own)
			sNei := at(nei)

			v := -w * f
			vals[rowNei+int(neiOff.At(i))] += v * sNei
			sub(&vals[rowOwn+int(diagOff.At(own))], v*sOwn)

			v = (1 - w) * f
			vals[rowOwn+int(ownOff.At(i))] += v * sOwn
			sub(&vals[rowNei+int(diagOff.At(nei))], v*sNei)
		}
		boundary.Host = func(i int) {
			bc := i - nInt
			f := flux.At(i)
			own := int(bOwner.At(bc))
			rowOwn := int(rowOffs.At(own))
			sOwn := at(own)
			a := frac.At(bc)

			add(&vals[rowOwn+int(diagOff.At(own))], f*sOwn*(1-a))
			sub(&rhs[own], f*sOwn*a*ref.At(bc))
		}
	} else {
		dev := exec.Device()
		internal.OKL = divImplicitInternalOKL(internal.Name)
		internal.Args = append([]interface{}{
			faceFlux.DeviceMemory(),
			m.Owner().DeviceMemory(), m.Neighbour().DeviceMemory(),
			pat.RowOffsets().DeviceMemory(), pat.DiagOffset().DeviceMemory(),
			pat.OwnerOffset().DeviceMemory(), pat.NeighbourOffset().DeviceMemory(),
			sys.Values().DeviceMemory(),
		}, coeff.deviceArgs(dev)...)
		boundary.OKL = divImplicitBoundaryOKL(boundary.Name)
		boundary.Args = append([]interface{}{
			faceFlux.DeviceMemory(),
			m.BoundaryOwner().DeviceMemory(),
			pat.RowOffsets().DeviceMemory(), pat.DiagOffset().DeviceMemory(),
			bcs.ValueFraction.DeviceMemory(), bcs.RefValue.DeviceMemory(),
			sys.Values().DeviceMemory(), sys.RHS().DeviceMemory(),
		}, coeff.deviceArgs(dev)...)
	}

	if err := executor.ForEach(exec, executor.Range{Start: 0, End: nInt}, internal); err != nil {
		return err
	}
	if err := executor.ForEach(exec, executor.Range{Start: nInt, End: nFaces}, boundary); err != nil {
		return err
	}

	// the assembled system may be read or consumed by a solver after this
	exec.Synchronize()
	return nil
}
