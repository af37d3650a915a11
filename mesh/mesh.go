// Package mesh holds the read-only unstructured mesh connectivity consumed
// by the assembly algorithms: per-face owner and neighbour cells, boundary
// face owners and cell volumes, all bound to one executor for the lifetime
// of the mesh. Mesh construction and topology parsing happen elsewhere; this
// package only binds already-built connectivity arrays to a backend.
package mesh

import (
	"fmt"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
)

// Mesh is an immutable connectivity set. Internal face i joins cells
// Owner[i] and Neighbour[i], with the face normal pointing owner to
// neighbour. Boundary face j touches only cell BoundaryOwner[j]. In face
// flux arrays boundary faces follow the internal faces, so boundary face j
// lives at flat index NInternalFaces()+j.
type Mesh struct {
	exec   executor.Executor
	nCells int

	owner         *field.Vector[field.Idx]
	neighbour     *field.Vector[field.Idx]
	boundaryOwner *field.Vector[field.Idx]
	cellVolumes   *field.Vector[field.Scalar]
}

// NewFromArrays binds host connectivity to exec. owner and neighbour list
// the two cells of each internal face, boundaryOwner the single cell of
// each boundary face, volumes the per-cell volumes (its length fixes the
// cell count).
func NewFromArrays(exec executor.Executor, owner, neighbour, boundaryOwner []field.Idx,
	volumes []field.Scalar) (*Mesh, error) {

	nCells := len(volumes)
	if nCells == 0 {
		return nil, fmt.Errorf("mesh: no cells")
	}
	if len(owner) != len(neighbour) {
		return nil, fmt.Errorf("mesh: owner count %d != neighbour count %d",
			len(owner), len(neighbour))
	}
	for i := range owner {
		if err := checkCell(owner[i], nCells, "owner", i); err != nil {
			return nil, err
		}
		if err := checkCell(neighbour[i], nCells, "neighbour", i); err != nil {
			return nil, err
		}
		if owner[i] == neighbour[i] {
			return nil, fmt.Errorf("mesh: face %d joins cell %d to itself", i, owner[i])
		}
	}
	for j := range boundaryOwner {
		if err := checkCell(boundaryOwner[j], nCells, "boundary owner", j); err != nil {
			return nil, err
		}
	}

	return &Mesh{
		exec:          exec,
		nCells:        nCells,
		owner:         field.NewFromSlice(exec, owner),
		neighbour:     field.NewFromSlice(exec, neighbour),
		boundaryOwner: field.NewFromSlice(exec, boundaryOwner),
		cellVolumes:   field.NewFromSlice(exec, volumes),
	}, nil
}

func checkCell(c field.Idx, nCells int, what string, i int) error {
	if c < 0 || int(c) >= nCells {
		return fmt.Errorf("mesh: %s of face %d is cell %d, outside [0,%d)", what, i, c, nCells)
	}
	return nil
}

// NewSingleCell builds a one-cell mesh of unit volume with no faces. It is
// the smallest geometry that exercises the cell-local operators.
func NewSingleCell(exec executor.Executor) (*Mesh, error) {
	return NewFromArrays(exec, nil, nil, nil, []field.Scalar{1})
}

// NewUniform1D builds a one-dimensional chain of nCells unit-volume cells:
// internal face i joins cell i (owner) to cell i+1 (neighbour), and the two
// boundary faces sit on cells 0 and nCells-1.
func NewUniform1D(exec executor.Executor, nCells int) (*Mesh, error) {
	if nCells < 2 {
		return nil, fmt.Errorf("mesh: 1D mesh needs at least 2 cells, got %d", nCells)
	}
	owner := make([]field.Idx, nCells-1)
	neighbour := make([]field.Idx, nCells-1)
	for i := 0; i < nCells-1; i++ {
		owner[i] = field.Idx(i)
		neighbour[i] = field.Idx(i + 1)
	}
	boundaryOwner := []field.Idx{0, field.Idx(nCells - 1)}
	volumes := make([]field.Scalar, nCells)
	for i := range volumes {
		volumes[i] = 1
	}
	return NewFromArrays(exec, owner, neighbour, boundaryOwner, volumes)
}

// Exec returns the executor the mesh arrays are bound to.
func (m *Mesh) Exec() executor.Executor { return m.exec }

// NCells returns the cell count.
func (m *Mesh) NCells() int { return m.nCells }

// NInternalFaces returns the internal face count.
func (m *Mesh) NInternalFaces() int { return m.owner.Size() }

// NBoundaryFaces returns the boundary face count.
func (m *Mesh) NBoundaryFaces() int { return m.boundaryOwner.Size() }

// NFaces returns the total face count, internal plus boundary.
func (m *Mesh) NFaces() int { return m.NInternalFaces() + m.NBoundaryFaces() }

// Owner returns the per-internal-face owner cell indices.
func (m *Mesh) Owner() *field.Vector[field.Idx] { return m.owner }

// Neighbour returns the per-internal-face neighbour cell indices.
func (m *Mesh) Neighbour() *field.Vector[field.Idx] { return m.neighbour }

// BoundaryOwner returns the per-boundary-face owner cell indices.
func (m *Mesh) BoundaryOwner() *field.Vector[field.Idx] { return m.boundaryOwner }

// CellVolumes returns the per-cell volumes.
func (m *Mesh) CellVolumes() *field.Vector[field.Scalar] { return m.cellVolumes }

// Free releases the connectivity arrays (device memory for an accelerator
// mesh).
func (m *Mesh) Free() {
	m.owner.Free()
	m.neighbour.Free()
	m.boundaryOwner.Free()
	m.cellVolumes.Free()
}
