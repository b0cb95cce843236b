//go:build linux && amd64

package vtx

import (
	"sync"

	"gvisor.dev/gvisor/pkg/cpuid"
)

var initCPUID sync.Once

// Supported returns true if the host CPU advertises VMX (CPUID.1:ECX[5]).
// Firmware may still disable VMX through IA32_FEATURE_CONTROL; see
// FeatureControl.VMXAllowed.
func Supported() (bool, error) {
	initCPUID.Do(cpuid.Initialize)
	return cpuid.HostFeatureSet().HasFeature(cpuid.X86FeatureVMX), nil
}
