package executor

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindEquality(t *testing.T) {
	seq := NewSequential()
	par := NewHostParallel()

	assert.True(t, seq.Equal(NewSequential()))
	assert.True(t, par.Equal(NewHostParallelN(2)))
	assert.False(t, seq.Equal(par))

	assert.Equal(t, "Sequential", seq.Name())
	assert.Equal(t, "HostParallel", par.Name())
}

func TestHostAddressable(t *testing.T) {
	assert.True(t, NewSequential().IsHostAddressable())
	assert.True(t, NewHostParallel().IsHostAddressable())
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 1, NewSequential().Workers())
	assert.Equal(t, 4, NewHostParallelN(4).Workers())
	assert.Equal(t, 1, NewHostParallelN(-1).Workers())
	assert.GreaterOrEqual(t, NewHostParallel().Workers(), 1)
}

func TestForEachSequentialOrder(t *testing.T) {
	var visited []int
	err := ForEach(NewSequential(), Range{Start: 3, End: 8}, Op{
		Name: "record",
		Host: func(i int) { visited = append(visited, i) },
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, visited)
}

func TestForEachHostParallelCoversRange(t *testing.T) {
	const n = 10000
	counts := make([]int32, n)
	err := ForEach(NewHostParallel(), Range{Start: 0, End: n}, Op{
		Name: "mark",
		Host: func(i int) { counts[i]++ },
	})
	require.NoError(t, err)
	for i, c := range counts {
		require.Equal(t, int32(1), c, "index %d visited %d times", i, c)
	}
}

func TestForEachHostParallelAtomicScatter(t *testing.T) {
	// every index targets the same accumulator; atomic adds must not lose
	// any contribution
	const n = 100000
	var acc float64
	err := ForEach(NewHostParallelN(8), Range{Start: 0, End: n}, Op{
		Name: "scatter",
		Host: func(i int) { AtomicAdd(&acc, 1) },
	})
	require.NoError(t, err)
	assert.Equal(t, float64(n), acc)
}

func TestForEachEmptyRange(t *testing.T) {
	called := false
	err := ForEach(NewSequential(), Range{Start: 5, End: 5}, Op{
		Name: "never",
		Host: func(i int) { called = true },
	})
	require.NoError(t, err)
	assert.False(t, called)

	// inverted ranges are treated as empty
	err = ForEach(NewHostParallel(), Range{Start: 5, End: 2}, Op{
		Name: "never",
		Host: func(i int) { called = true },
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestForEachMissingHostBody(t *testing.T) {
	err := ForEach(NewSequential(), Range{Start: 0, End: 1}, Op{Name: "empty"})
	assert.Error(t, err)
}

func TestAtomicAddConcurrent(t *testing.T) {
	var acc float64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				AtomicAdd(&acc, 0.5)
				AtomicSub(&acc, 0.25)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8*10000*0.25, acc)
}

func TestAvailableAlwaysHasHostBackends(t *testing.T) {
	execs := Available()
	require.GreaterOrEqual(t, len(execs), 2)
	assert.Equal(t, Sequential, execs[0].Kind())
	assert.Equal(t, HostParallel, execs[1].Kind())
	for _, e := range execs {
		e.Free()
	}
}

func TestAcceleratorDispatch(t *testing.T) {
	acc, err := NewAccelerator()
	if err != nil {
		t.Skipf("no accelerator available: %v", err)
	}
	defer acc.Free()

	const n = 1000
	mem := acc.Device().Malloc(n*8, nil)
	defer mem.Free()

	src := `
@kernel void writeIndex(const int lo, const int hi, double *out) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		out[i] = (double)i;
	}
}
`
	err = ForEach(acc, Range{Start: 0, End: n}, Op{
		Name: "writeIndex",
		OKL:  src,
		Args: []interface{}{mem},
	})
	require.NoError(t, err)

	// results are only trustworthy after the fence
	acc.Synchronize()

	out := make([]float64, n)
	mem.CopyTo(unsafe.Pointer(&out[0]), n*8)
	for i := range out {
		require.Equal(t, float64(i), out[i])
	}
}
