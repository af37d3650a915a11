package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
)

// phi=10, phiOld=-1, dt=0.5: the backward difference contributes
// (10-(-1))/0.5 = 22 per unit volume.
func TestDdtExplicit(t *testing.T) {
	for _, exec := range testExecutors(t) {
		t.Run(exec.Name(), func(t *testing.T) {
			m, err := mesh.NewSingleCell(exec)
			require.NoError(t, err)
			defer m.Free()

			phi := newCellField(t, exec, 1, 10)
			phiOld := newCellField(t, exec, 1, -1)
			source := newCellField(t, exec, 1, 0)

			require.NoError(t, DdtExplicit(source, phi, phiOld, 0.5, m, OneCoeff()))
			assert.Equal(t, []field.Scalar{22}, source.HostCopy())

			// accumulates on top of existing content
			require.NoError(t, DdtExplicit(source, phi, phiOld, 0.5, m, OneCoeff()))
			assert.Equal(t, []field.Scalar{44}, source.HostCopy())
		})
	}
}

func TestDdtExplicitScalesByVolumeAndCoeff(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewFromArrays(seq, nil, nil, nil, []field.Scalar{2.5})
	require.NoError(t, err)
	defer m.Free()

	phi := newCellField(t, seq, 1, 10)
	phiOld := newCellField(t, seq, 1, -1)
	source := newCellField(t, seq, 1, 0)

	require.NoError(t, DdtExplicit(source, phi, phiOld, 0.5, m, UniformCoeff(2)))
	assert.Equal(t, []field.Scalar{110}, source.HostCopy())
}

// The implicit pair on the same data: diagonal 1/0.5 per unit volume, right
// hand side -1/0.5 per unit volume.
func TestDdtImplicit(t *testing.T) {
	for _, exec := range testExecutors(t) {
		t.Run(exec.Name(), func(t *testing.T) {
			m, err := mesh.NewSingleCell(exec)
			require.NoError(t, err)
			defer m.Free()
			sys := buildSystem(t, m)

			phiOld := newCellField(t, exec, 1, -1)

			require.NoError(t, DdtImplicit(sys, phiOld, 0.5, m, OneCoeff()))
			assert.Equal(t, 2.0, sys.Dense().At(0, 0))
			assert.Equal(t, []field.Scalar{-2}, sys.RHS().HostCopy())
		})
	}
}

func TestDdtImplicitOnChain(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewUniform1D(seq, 3)
	require.NoError(t, err)
	defer m.Free()
	sys := buildSystem(t, m)

	phiOld := field.NewFromSlice(seq, []field.Scalar{1, 2, 3})

	require.NoError(t, DdtImplicit(sys, phiOld, 0.25, m, OneCoeff()))

	d := sys.Dense()
	for c := 0; c < 3; c++ {
		assert.Equal(t, 4.0, d.At(c, c))
	}
	assert.Equal(t, []field.Scalar{4, 8, 12}, sys.RHS().HostCopy())
}

func TestDdtZeroTimeStep(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewSingleCell(seq)
	require.NoError(t, err)
	defer m.Free()
	sys := buildSystem(t, m)

	phi := newCellField(t, seq, 1, 1)
	phiOld := newCellField(t, seq, 1, 1)
	source := newCellField(t, seq, 1, 0)

	assert.Error(t, DdtExplicit(source, phi, phiOld, 0, m, OneCoeff()))
	assert.Error(t, DdtImplicit(sys, phiOld, 0, m, OneCoeff()))
}

func TestDdtValidation(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewSingleCell(seq)
	require.NoError(t, err)
	defer m.Free()
	sys := buildSystem(t, m)

	good := newCellField(t, seq, 1, 0)
	short := newCellField(t, seq, 2, 0)
	assert.ErrorIs(t, DdtExplicit(short, good, good, 0.5, m, OneCoeff()), field.ErrSizeMismatch)
	assert.ErrorIs(t, DdtImplicit(sys, short, 0.5, m, OneCoeff()), field.ErrSizeMismatch)

	other := field.New[field.Scalar](executor.NewHostParallel(), 1)
	assert.ErrorIs(t, DdtExplicit(good, other, good, 0.5, m, OneCoeff()), field.ErrExecutorMismatch)
}
