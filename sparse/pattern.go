// Package sparse provides the precomputed sparsity pattern mapping mesh
// adjacency to flat matrix storage, and the linear system assembled through
// it. A Pattern is built once per topology and reused for every assembly
// against it; topology changes are out of scope, so there is no rebuild
// mechanism.
package sparse

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
)

// Pattern is the CSR-oriented offset table for one mesh topology. Matrix
// slot addressing is row-relative: the entry for column c in row r lives at
// values[RowOffsets[r] + off], where off is DiagOffset[r] for the diagonal,
// OwnerOffset[f] for the (owner,neighbour) entry of internal face f, and
// NeighbourOffset[f] for its (neighbour,owner) twin. All offsets of a row
// address distinct slots inside one contiguous row segment.
type Pattern struct {
	exec  executor.Executor
	nRows int
	nnz   int

	rowOffs  *field.Vector[field.Idx] // nRows+1
	colIdx   *field.Vector[field.Idx] // nnz, ascending within each row
	diagOff  *field.Vector[field.Idx] // per cell
	ownerOff *field.Vector[field.Idx] // per internal face
	neighOff *field.Vector[field.Idx] // per internal face
}

// NewPattern builds the sparsity pattern of m: one row per cell, one
// off-diagonal entry per internal face side, a diagonal entry per cell.
// The tables are bound to the mesh executor so assembly kernels can consume
// them on any backend.
func NewPattern(m *mesh.Mesh) (*Pattern, error) {
	nCells := m.NCells()
	owner := m.Owner().HostCopy()
	neighbour := m.Neighbour().HostCopy()
	nFaces := len(owner)

	// adjacency including self: the columns of each row
	cols := make([][]field.Idx, nCells)
	for c := 0; c < nCells; c++ {
		cols[c] = append(cols[c], field.Idx(c))
	}
	for f := 0; f < nFaces; f++ {
		cols[owner[f]] = append(cols[owner[f]], neighbour[f])
		cols[neighbour[f]] = append(cols[neighbour[f]], owner[f])
	}

	rowOffs := make([]field.Idx, nCells+1)
	seen := bitset.New(uint(nCells))
	nnz := 0
	for c := 0; c < nCells; c++ {
		row := cols[c]
		sort.Slice(row, func(i, j int) bool { return row[i] < row[j] })
		for _, col := range row {
			if seen.Test(uint(col)) {
				return nil, fmt.Errorf("sparse: duplicate face between cells %d and %d", c, col)
			}
			seen.Set(uint(col))
		}
		seen.ClearAll()
		nnz += len(row)
		rowOffs[c+1] = field.Idx(nnz)
	}

	colIdx := make([]field.Idx, 0, nnz)
	for c := 0; c < nCells; c++ {
		colIdx = append(colIdx, cols[c]...)
	}

	// offset of column col inside row r, by binary search over the sorted row
	offsetOf := func(r, col field.Idx) field.Idx {
		row := colIdx[rowOffs[r]:rowOffs[r+1]]
		i := sort.Search(len(row), func(i int) bool { return row[i] >= col })
		return field.Idx(i)
	}

	diagOff := make([]field.Idx, nCells)
	for c := 0; c < nCells; c++ {
		diagOff[c] = offsetOf(field.Idx(c), field.Idx(c))
	}
	ownerOff := make([]field.Idx, nFaces)
	neighOff := make([]field.Idx, nFaces)
	for f := 0; f < nFaces; f++ {
		ownerOff[f] = offsetOf(owner[f], neighbour[f])
		neighOff[f] = offsetOf(neighbour[f], owner[f])
	}

	exec := m.Exec()
	return &Pattern{
		exec:     exec,
		nRows:    nCells,
		nnz:      nnz,
		rowOffs:  field.NewFromSlice(exec, rowOffs),
		colIdx:   field.NewFromSlice(exec, colIdx),
		diagOff:  field.NewFromSlice(exec, diagOff),
		ownerOff: field.NewFromSlice(exec, ownerOff),
		neighOff: field.NewFromSlice(exec, neighOff),
	}, nil
}

// Exec returns the executor the pattern tables are bound to.
func (p *Pattern) Exec() executor.Executor { return p.exec }

// NRows returns the row (cell) count.
func (p *Pattern) NRows() int { return p.nRows }

// NNZ returns the number of stored matrix entries.
func (p *Pattern) NNZ() int { return p.nnz }

// RowOffsets returns the CSR row start table (length NRows+1).
func (p *Pattern) RowOffsets() *field.Vector[field.Idx] { return p.rowOffs }

// ColIndices returns the flat column index table (length NNZ).
func (p *Pattern) ColIndices() *field.Vector[field.Idx] { return p.colIdx }

// DiagOffset returns the per-cell offset of the diagonal slot within its
// row segment.
func (p *Pattern) DiagOffset() *field.Vector[field.Idx] { return p.diagOff }

// OwnerOffset returns the per-internal-face offset of the
// (owner,neighbour) slot within the owner's row segment.
func (p *Pattern) OwnerOffset() *field.Vector[field.Idx] { return p.ownerOff }

// NeighbourOffset returns the per-internal-face offset of the
// (neighbour,owner) slot within the neighbour's row segment.
func (p *Pattern) NeighbourOffset() *field.Vector[field.Idx] { return p.neighOff }

// Free releases the offset tables.
func (p *Pattern) Free() {
	p.rowOffs.Free()
	p.colIdx.Free()
	p.diagOff.Free()
	p.ownerOff.Free()
	p.neighOff.Free()
}
