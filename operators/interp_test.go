package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofvm/executor"
	"github.com/notargets/gofvm/field"
	"github.com/notargets/gofvm/mesh"
)

func testExecutors(t *testing.T) []executor.Executor {
	t.Helper()
	execs := executor.Available()
	t.Cleanup(func() {
		for _, e := range execs {
			e.Free()
		}
	})
	return execs
}

func TestUpwindSelectsUpstreamCell(t *testing.T) {
	for _, exec := range testExecutors(t) {
		t.Run(exec.Name(), func(t *testing.T) {
			m, err := mesh.NewUniform1D(exec, 4)
			require.NoError(t, err)
			defer m.Free()

			phi := field.NewFromSlice(exec, []field.Scalar{10, 20, 30, 40})
			defer phi.Free()
			// internal faces: downstream, upstream, downstream; boundary flux 0
			flux := field.NewFromSlice(exec, []field.Scalar{1, -1, 1, 0, 0})
			defer flux.Free()
			out := field.New[field.Scalar](exec, m.NFaces())
			defer out.Free()

			require.NoError(t, NewUpwind(m).Interpolate(flux, phi, out))
			exec.Synchronize()

			assert.Equal(t, []field.Scalar{10, 30, 30, 10, 40}, out.HostCopy())
		})
	}
}

func TestUpwindZeroFluxTakesOwner(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewUniform1D(seq, 3)
	require.NoError(t, err)
	defer m.Free()

	phi := field.NewFromSlice(seq, []field.Scalar{1, 2, 3})
	flux, _ := field.NewWithValue[field.Scalar](seq, m.NFaces(), 0)
	out := field.New[field.Scalar](seq, m.NFaces())

	require.NoError(t, NewUpwind(m).Interpolate(flux, phi, out))
	assert.Equal(t, []field.Scalar{1, 2, 1, 3}, out.HostCopy())
}

func TestUpwindValidation(t *testing.T) {
	seq := executor.NewSequential()
	m, err := mesh.NewUniform1D(seq, 3)
	require.NoError(t, err)
	defer m.Free()

	phi := field.New[field.Scalar](seq, 3)
	flux := field.New[field.Scalar](seq, m.NFaces())
	short := field.New[field.Scalar](seq, 1)

	u := NewUpwind(m)
	assert.ErrorIs(t, u.Interpolate(short, phi, flux), field.ErrSizeMismatch)
	assert.ErrorIs(t, u.Interpolate(flux, short, flux), field.ErrSizeMismatch)

	other := field.New[field.Scalar](executor.NewHostParallel(), m.NFaces())
	assert.ErrorIs(t, u.Interpolate(other, phi, flux), field.ErrExecutorMismatch)
}
