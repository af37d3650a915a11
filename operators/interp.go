package operators

import (
	"fmt"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
)

// Interpolation produces a face-centred field from a cell-centred one,
// possibly weighted by the face flux. The assembly algorithms consume the
// result; richer schemes (linear, limited) plug in through this interface.
type Interpolation interface {
	// Interpolate writes one value per face (internal faces first, then
	// boundary faces) into out.
	Interpolate(faceFlux, phi, out *field.Vector[field.Scalar]) error
}

// Upwind interpolates each internal face from its upwind cell: the owner
// when the flux through the face is non-negative, the neighbour otherwise.
// Boundary faces take their owner cell value.
type Upwind struct {
	m *mesh.Mesh
}

// NewUpwind returns the upwind interpolation over m.
func NewUpwind(m *mesh.Mesh) *Upwind { return &Upwind{m: m} }

func (u *Upwind) Interpolate(faceFlux, phi, out *field.Vector[field.Scalar]) error {
	m := u.m
	exec := m.Exec()
	if faceFlux.Size() != m.NFaces() || out.Size() != m.NFaces() || phi.Size() != m.NCells() {
		return fmt.Errorf("operators: upwind operand sizes (flux %d, phi %d, out %d) do not fit mesh (%d faces, %d cells): %w",
			faceFlux.Size(), phi.Size(), out.Size(), m.NFaces(), m.NCells(), field.ErrSizeMismatch)
	}
	if !faceFlux.Exec().Equal(exec) || !phi.Exec().Equal(exec) || !out.Exec().Equal(exec) {
		return field.ErrExecutorMismatch
	}

	nInt := m.NInternalFaces()

	internal := executor.Op{Name: "gofvm_upwind_int"}
	boundary := executor.Op{Name: "gofvm_upwind_bnd"}
	if exec.IsHostAddressable() {
		outV, err := out.View()
		if err != nil {
			return err
		}
		res := outV.Slice()
		flux := mustRead(faceFlux)
		phiV := mustRead(phi)
		owner := mustReadIdx(m.Owner())
		neighbour := mustReadIdx(m.Neighbour())
		bOwner := mustReadIdx(m.BoundaryOwner())

		internal.Host = func(i int) {
			cell := owner.At(i)
			if flux.At(i) < 0 {
				cell = neighbour.At(i)
			}
			res[i] = phiV.At(int(cell))
		}
		boundary.Host = func(i int) {
			res[i] = phiV.At(int(bOwner.At(i - nInt)))
		}
	} else {
		internal.OKL = upwindInternalOKL(internal.Name)
		internal.Args = []interface{}{
			faceFlux.DeviceMemory(), phi.DeviceMemory(),
			m.Owner().DeviceMemory(), m.Neighbour().DeviceMemory(),
			out.DeviceMemory(),
		}
		boundary.OKL = upwindBoundaryOKL(boundary.Name)
		boundary.Args = []interface{}{
			phi.DeviceMemory(), m.BoundaryOwner().DeviceMemory(),
			out.DeviceMemory(),
		}
	}

	if err := executor.ForEach(exec, executor.Range{Start: 0, End: nInt}, internal); err != nil {
		return err
	}
	return executor.ForEach(exec, executor.Range{Start: nInt, End: m.NFaces()}, boundary)
}

// mustRead returns the host read view of a vector already checked to be
// host addressable.
func mustRead(v *field.Vector[field.Scalar]) field.ReadView[field.Scalar] {
	rv, err := v.ReadView()
	if err != nil {
		panic(err)
	}
	return rv
}

func mustReadIdx(v *field.Vector[field.Idx]) field.ReadView[field.Idx] {
	rv, err := v.ReadView()
	if err != nil {
		panic(err)
	}
	return rv
}
