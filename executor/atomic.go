package executor

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// AtomicAdd adds delta to *addr atomically. This is the accumulation
// discipline for scatter writes on the HostParallel backend, where multiple
// range partitions may target the same cell.
func AtomicAdd(addr *float64, delta float64) {
	bits := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(bits)
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(bits, old, next) {
			return
		}
	}
}

// AtomicSub subtracts delta from *addr atomically.
func AtomicSub(addr *float64, delta float64) {
	AtomicAdd(addr, -delta)
}
