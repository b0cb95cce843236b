//go:build !linux || !amd64

package vtx

import "fmt"

// DevMSR is only implemented on linux/amd64.
type DevMSR struct{}

// OpenMSR returns an error wrapping ErrMSRUnavailable on this platform.
func OpenMSR(cpu int) (*DevMSR, error) {
	return nil, fmt.Errorf("%w: no msr driver on this platform", ErrMSRUnavailable)
}

// CPU returns 0; a DevMSR cannot be opened on this platform.
func (d *DevMSR) CPU() int { return 0 }

// ReadMSR always fails with ErrMSRUnavailable.
func (d *DevMSR) ReadMSR(m MSR) (uint64, error) {
	return 0, fmt.Errorf("%w: no msr driver on this platform", ErrMSRUnavailable)
}

// Close is a no-op.
func (d *DevMSR) Close() error { return nil }

// OnlineCPUs returns an error wrapping ErrMSRUnavailable on this platform.
func OnlineCPUs() ([]int, error) {
	return nil, fmt.Errorf("%w: cpu enumeration not supported on this platform", ErrMSRUnavailable)
}
