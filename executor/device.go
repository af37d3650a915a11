package executor

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/notargets/gofvm/logger"
)

// defaultDeviceProps is the probe order for accelerator device creation,
// preferring the parallel OCCA backends.
var defaultDeviceProps = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// Device wraps an OCCA device together with a cache of compiled kernels.
// Kernel sources are compiled once per name and reused across dispatches.
type Device struct {
	occa *gocca.OCCADevice

	mu      sync.Mutex
	kernels map[string]*gocca.OCCAKernel
	scratch *gocca.OCCAMemory // one-element placeholder for optional kernel args
}

func newDevice(propsJSON []string) (*Device, error) {
	probe := propsJSON
	if len(probe) == 0 {
		probe = defaultDeviceProps
	}

	var lastErr error
	for _, props := range probe {
		occaDev, err := gocca.NewDevice(props)
		if err != nil {
			lastErr = err
			continue
		}
		log := logger.Logger()
		log.Info().Str("mode", occaDev.Mode()).Msg("created OCCA device")
		return &Device{
			occa:    occaDev,
			kernels: make(map[string]*gocca.OCCAKernel),
		}, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no device properties supplied")
	}
	return nil, fmt.Errorf("no OCCA device available: %w", lastErr)
}

// Mode returns the OCCA device mode, e.g. "OpenMP" or "CUDA".
func (d *Device) Mode() string { return d.occa.Mode() }

// Malloc allocates bytes of device memory, optionally initialized from src.
// Allocation failure is unrecoverable and aborts.
func (d *Device) Malloc(bytes int64, src unsafe.Pointer) *gocca.OCCAMemory {
	mem := d.occa.Malloc(bytes, src, nil)
	if mem == nil {
		log := logger.Logger()
		log.Error().Int64("bytes", bytes).Str("mode", d.Mode()).
			Msg("device allocation failed")
		panic(fmt.Sprintf("executor: device allocation of %d bytes failed", bytes))
	}
	return mem
}

// Kernel returns the compiled kernel for name, building it from source on
// first use. The name must match the @kernel function name in the source.
func (d *Device) Kernel(name, source string) (*gocca.OCCAKernel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if k, ok := d.kernels[name]; ok {
		return k, nil
	}

	var kernel *gocca.OCCAKernel
	var err error
	if d.occa.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = d.occa.BuildKernelFromString(source, name, props)
	} else {
		kernel, err = d.occa.BuildKernelFromString(source, name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}

	log := logger.Logger()
	log.Debug().Str("kernel", name).Str("mode", d.Mode()).Msg("compiled kernel")
	d.kernels[name] = kernel
	return kernel, nil
}

// ScratchUnit returns a persistent one-element double buffer. Kernels with
// an optional array argument receive it in place of a null pointer; guarded
// by a flag argument, it is never read.
func (d *Device) ScratchUnit() *gocca.OCCAMemory {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scratch == nil {
		d.scratch = d.Malloc(8, nil)
	}
	return d.scratch
}

// Finish blocks until all enqueued device work has completed.
func (d *Device) Finish() { d.occa.Finish() }

// Free releases all compiled kernels and the device itself.
func (d *Device) Free() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range d.kernels {
		k.Free()
	}
	d.kernels = map[string]*gocca.OCCAKernel{}
	if d.scratch != nil {
		d.scratch.Free()
		d.scratch = nil
	}
	d.occa.Free()
}
