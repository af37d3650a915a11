package field

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementwiseOps(t *testing.T) {
	for _, exec := range testExecutors(t) {
		t.Run(exec.Name(), func(t *testing.T) {
			a := NewFromSlice(exec, []Scalar{1, 2, 3, 4})
			defer a.Free()
			b := NewFromSlice(exec, []Scalar{10, 20, 30, 40})
			defer b.Free()

			require.NoError(t, a.Add(b))
			assert.Equal(t, []Scalar{11, 22, 33, 44}, a.HostCopy())

			require.NoError(t, a.Sub(b))
			assert.Equal(t, []Scalar{1, 2, 3, 4}, a.HostCopy())

			require.NoError(t, a.Mul(b))
			assert.Equal(t, []Scalar{10, 40, 90, 160}, a.HostCopy())

			require.NoError(t, a.Scale(0.5))
			assert.Equal(t, []Scalar{5, 20, 45, 80}, a.HostCopy())
		})
	}
}

func TestAdditionProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	genData := gen.SliceOfN(64, gen.Float64Range(-1e6, 1e6))

	for _, exec := range testExecutors(t) {
		exec := exec
		properties := gopter.NewProperties(params)

		properties.Property("sum matches scalar loop", prop.ForAll(
			func(a, b []float64) bool {
				va := NewFromSlice(exec, a)
				defer va.Free()
				vb := NewFromSlice(exec, b)
				defer vb.Free()
				sum := va.Clone()
				defer sum.Free()
				if err := sum.Add(vb); err != nil {
					return false
				}
				for i, x := range sum.HostCopy() {
					if x != a[i]+b[i] {
						return false
					}
				}
				return true
			}, genData, genData))

		properties.Property("add then sub restores operand", prop.ForAll(
			func(a, b []float64) bool {
				va := NewFromSlice(exec, a)
				defer va.Free()
				vb := NewFromSlice(exec, b)
				defer vb.Free()
				out := va.Clone()
				defer out.Free()
				if err := out.Add(vb); err != nil {
					return false
				}
				if err := out.Sub(vb); err != nil {
					return false
				}
				for i, x := range out.HostCopy() {
					tol := 1e-9 * math.Max(1, math.Abs(a[i]))
					if math.Abs(x-a[i]) > tol {
						return false
					}
				}
				return true
			}, genData, genData))

		t.Run(exec.Name(), func(t *testing.T) {
			properties.TestingRun(t)
		})
	}
}
