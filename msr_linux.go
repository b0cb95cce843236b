//go:build linux && amd64

package vtx

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"gvisor.dev/gvisor/pkg/hostarch"
	"gvisor.dev/gvisor/pkg/log"
)

// DevMSR reads MSRs of one logical CPU through the Linux msr driver
// (/dev/cpu/N/msr). The kernel runs each read on CPU N, so the caller's
// affinity does not matter. Reads use pread and are safe for concurrent use.
type DevMSR struct {
	cpu int
	fd  int
}

// OpenMSR opens the msr device for cpu. It fails with an error wrapping
// ErrMSRUnavailable when the msr module is not loaded or the caller lacks
// CAP_SYS_RAWIO.
func OpenMSR(cpu int) (*DevMSR, error) {
	path := fmt.Sprintf("/dev/cpu/%d/msr", cpu)
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		switch {
		case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO),
			errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
			return nil, fmt.Errorf("%w: open %s: %v", ErrMSRUnavailable, path, err)
		}
		return nil, fmt.Errorf("vtx: open %s: %w", path, err)
	}
	log.Debugf("vtx: opened %s (fd %d)", path, fd)
	return &DevMSR{cpu: cpu, fd: fd}, nil
}

// CPU is the logical CPU this reader is bound to.
func (d *DevMSR) CPU() int { return d.cpu }

// ReadMSR reads m on the reader's CPU. The driver returns EIO for an MSR
// the processor does not implement.
func (d *DevMSR) ReadMSR(m MSR) (uint64, error) {
	var buf [8]byte
	recordMSRRead()
	n, err := unix.Pread(d.fd, buf[:], int64(m))
	if err != nil {
		recordMSRError()
		return 0, fmt.Errorf("vtx: read %s on cpu %d: %w", m, d.cpu, err)
	}
	if n != len(buf) {
		recordMSRError()
		return 0, fmt.Errorf("vtx: read %s on cpu %d: short read of %d bytes", m, d.cpu, n)
	}
	return hostarch.ByteOrder.Uint64(buf[:]), nil
}

// Close releases the device.
func (d *DevMSR) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// OnlineCPUs returns the logical CPUs the calling thread may run on.
func OnlineCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("vtx: sched_getaffinity: %w", err)
	}
	want := set.Count()
	cpus := make([]int, 0, want)
	for cpu := 0; len(cpus) < want; cpu++ {
		if set.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}
