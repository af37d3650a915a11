package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
)

// 4-cell 1D chain: rows {0,1}, {0,1,2}, {1,2,3}, {2,3}.
func TestPattern1D(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewUniform1D(seq, 4)
	require.NoError(t, err)
	defer m.Free()

	pat, err := NewPattern(m)
	require.NoError(t, err)
	defer pat.Free()

	assert.Equal(t, 4, pat.NRows())
	assert.Equal(t, 10, pat.NNZ())

	assert.Equal(t, []field.Idx{0, 2, 5, 8, 10}, pat.RowOffsets().HostCopy())
	assert.Equal(t, []field.Idx{0, 1, 0, 1, 2, 1, 2, 3, 2, 3}, pat.ColIndices().HostCopy())
	assert.Equal(t, []field.Idx{0, 1, 1, 1}, pat.DiagOffset().HostCopy())
	assert.Equal(t, []field.Idx{1, 2, 2}, pat.OwnerOffset().HostCopy())
	assert.Equal(t, []field.Idx{0, 0, 0}, pat.NeighbourOffset().HostCopy())
}

// Offsets must address the slot whose column index matches the face's far
// cell, for every face and both orientations.
func TestPatternOffsetsResolveColumns(t *testing.T) {
	seq := executor.NewSequential()
	// a small, irregular topology: cell 2 touches everything
	owner := []field.Idx{0, 1, 2, 2}
	neighbour := []field.Idx{2, 2, 3, 4}
	m, err := mesh.NewFromArrays(seq, owner, neighbour, nil,
		[]field.Scalar{1, 1, 1, 1, 1})
	require.NoError(t, err)
	defer m.Free()

	pat, err := NewPattern(m)
	require.NoError(t, err)
	defer pat.Free()

	rowOffs := pat.RowOffsets().HostCopy()
	colIdx := pat.ColIndices().HostCopy()
	diagOff := pat.DiagOffset().HostCopy()
	ownerOff := pat.OwnerOffset().HostCopy()
	neighOff := pat.NeighbourOffset().HostCopy()

	for c := 0; c < m.NCells(); c++ {
		assert.Equal(t, field.Idx(c), colIdx[rowOffs[c]+diagOff[c]], "diag of row %d", c)
	}
	for f := range owner {
		assert.Equal(t, neighbour[f], colIdx[rowOffs[owner[f]]+ownerOff[f]], "owner slot of face %d", f)
		assert.Equal(t, owner[f], colIdx[rowOffs[neighbour[f]]+neighOff[f]], "neighbour slot of face %d", f)
	}
}

func TestPatternColumnsSortedWithinRows(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewFromArrays(seq,
		[]field.Idx{3, 0, 2},
		[]field.Idx{0, 1, 3},
		nil, []field.Scalar{1, 1, 1, 1})
	require.NoError(t, err)
	defer m.Free()

	pat, err := NewPattern(m)
	require.NoError(t, err)
	defer pat.Free()

	rowOffs := pat.RowOffsets().HostCopy()
	colIdx := pat.ColIndices().HostCopy()
	for r := 0; r < pat.NRows(); r++ {
		for k := rowOffs[r] + 1; k < rowOffs[r+1]; k++ {
			assert.Less(t, colIdx[k-1], colIdx[k], "row %d", r)
		}
	}
}

func TestPatternRejectsDuplicateFaces(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewFromArrays(seq,
		[]field.Idx{0, 0},
		[]field.Idx{1, 1},
		nil, []field.Scalar{1, 1})
	require.NoError(t, err)
	defer m.Free()

	_, err = NewPattern(m)
	assert.Error(t, err)
}

func TestPatternSingleCell(t *testing.T) {
	m, err := mesh.NewSingleCell(executor.NewSequential())
	require.NoError(t, err)
	defer m.Free()

	pat, err := NewPattern(m)
	require.NoError(t, err)
	defer pat.Free()

	assert.Equal(t, 1, pat.NRows())
	assert.Equal(t, 1, pat.NNZ())
	assert.Equal(t, []field.Idx{0, 1}, pat.RowOffsets().HostCopy())
	assert.Equal(t, []field.Idx{0}, pat.ColIndices().HostCopy())
	assert.Equal(t, []field.Idx{0}, pat.DiagOffset().HostCopy())
}
