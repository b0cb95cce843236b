package vtx

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MSR is a model-specific register address.
type MSR uint32

// VMX capability reporting MSRs (SDM Vol 3D, Appendix A).
const (
	IA32FeatureControl       MSR = 0x03a
	IA32VMXBasic             MSR = 0x480
	IA32VMXPinBasedCtls      MSR = 0x481
	IA32VMXProcBasedCtls     MSR = 0x482
	IA32VMXExitCtls          MSR = 0x483
	IA32VMXEntryCtls         MSR = 0x484
	IA32VMXMisc              MSR = 0x485
	IA32VMXCR0Fixed0         MSR = 0x486
	IA32VMXCR0Fixed1         MSR = 0x487
	IA32VMXCR4Fixed0         MSR = 0x488
	IA32VMXCR4Fixed1         MSR = 0x489
	IA32VMXVMCSEnum          MSR = 0x48a
	IA32VMXProcBasedCtls2    MSR = 0x48b
	IA32VMXEPTVPIDCap        MSR = 0x48c
	IA32VMXTruePinBasedCtls  MSR = 0x48d
	IA32VMXTrueProcBasedCtls MSR = 0x48e
	IA32VMXTrueExitCtls      MSR = 0x48f
	IA32VMXTrueEntryCtls     MSR = 0x490
	IA32VMXVMFunc            MSR = 0x491
)

var msrNames = map[MSR]string{
	IA32FeatureControl:       "IA32_FEATURE_CONTROL",
	IA32VMXBasic:             "IA32_VMX_BASIC",
	IA32VMXPinBasedCtls:      "IA32_VMX_PINBASED_CTLS",
	IA32VMXProcBasedCtls:     "IA32_VMX_PROCBASED_CTLS",
	IA32VMXExitCtls:          "IA32_VMX_EXIT_CTLS",
	IA32VMXEntryCtls:         "IA32_VMX_ENTRY_CTLS",
	IA32VMXMisc:              "IA32_VMX_MISC",
	IA32VMXCR0Fixed0:         "IA32_VMX_CR0_FIXED0",
	IA32VMXCR0Fixed1:         "IA32_VMX_CR0_FIXED1",
	IA32VMXCR4Fixed0:         "IA32_VMX_CR4_FIXED0",
	IA32VMXCR4Fixed1:         "IA32_VMX_CR4_FIXED1",
	IA32VMXVMCSEnum:          "IA32_VMX_VMCS_ENUM",
	IA32VMXProcBasedCtls2:    "IA32_VMX_PROCBASED_CTLS2",
	IA32VMXEPTVPIDCap:        "IA32_VMX_EPT_VPID_CAP",
	IA32VMXTruePinBasedCtls:  "IA32_VMX_TRUE_PINBASED_CTLS",
	IA32VMXTrueProcBasedCtls: "IA32_VMX_TRUE_PROCBASED_CTLS",
	IA32VMXTrueExitCtls:      "IA32_VMX_TRUE_EXIT_CTLS",
	IA32VMXTrueEntryCtls:     "IA32_VMX_TRUE_ENTRY_CTLS",
	IA32VMXVMFunc:            "IA32_VMX_VMFUNC",
}

func (m MSR) String() string {
	if s, ok := msrNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MSR(%#x)", uint32(m))
}

// ParseMSR accepts an architectural name ("IA32_VMX_BASIC", any case) or a
// numeric address ("0x480").
func ParseMSR(s string) (MSR, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for m, n := range msrNames {
		if n == name {
			return m, nil
		}
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("vtx: unknown MSR %q", s)
	}
	return MSR(v), nil
}

// CapabilityMSRs lists the MSRs a capability snapshot records, in address
// order.
func CapabilityMSRs() []MSR {
	out := make([]MSR, 0, len(msrNames))
	for m := range msrNames {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ErrMSRUnavailable is returned when no MSR source is available on this
// host, for instance without the msr kernel module or root privileges.
var ErrMSRUnavailable = errors.New("vtx: MSR access unavailable")

// MSRReader reads a 64-bit model-specific register.
type MSRReader interface {
	ReadMSR(m MSR) (uint64, error)
}

// MSRValues is an in-memory MSRReader.
type MSRValues map[MSR]uint64

// ReadMSR returns the stored value or an error wrapping
// ErrMSRNotInSnapshot.
func (v MSRValues) ReadMSR(m MSR) (uint64, error) {
	val, ok := v[m]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMSRNotInSnapshot, m)
	}
	return val, nil
}

// VMXBasic is IA32_VMX_BASIC (SDM Vol 3D, A.1).
type VMXBasic uint64

const (
	BasicAddressWidth32 VMXBasic = 1 << 48 // VMXON/VMCS addresses limited to 32 bits
	BasicDualMonitor    VMXBasic = 1 << 49
	BasicInsOutsInfo    VMXBasic = 1 << 54
	BasicTrueControls   VMXBasic = 1 << 55
	BasicNoErrorCode    VMXBasic = 1 << 56 // entry may inject hardware exceptions with or without an error code
)

var (
	basicRevision   = bitField("Revision", 0, 31)
	basicRegionSize = bitField("RegionSize", 32, 13)
	basicMemoryType = bitField("MemoryType", 50, 4)
)

func (b VMXBasic) Has(f VMXBasic) bool { return hasFlag(b, f) }

// Revision is the VMCS revision identifier written to VMXON and VMCS regions.
func (b VMXBasic) Revision() uint32 { return uint32(getField(b, basicRevision)) }

// RegionSize is the number of bytes to allocate for VMXON and VMCS regions.
func (b VMXBasic) RegionSize() uint32 { return uint32(getField(b, basicRegionSize)) }

// MemoryType is the memory type for VMCS accesses (0 UC, 6 WB).
func (b VMXBasic) MemoryType() uint8 { return uint8(getField(b, basicMemoryType)) }

// FeatureControl is IA32_FEATURE_CONTROL.
type FeatureControl uint64

const (
	FeatureControlLocked        FeatureControl = 1 << 0
	FeatureControlVMXInSMX      FeatureControl = 1 << 1
	FeatureControlVMXOutsideSMX FeatureControl = 1 << 2
)

func (f FeatureControl) Has(b FeatureControl) bool { return hasFlag(f, b) }

// VMXAllowed reports whether VMXON outside SMX will succeed: either the MSR
// is unlocked (the OS may still enable VMX) or it is locked with VMX on.
func (f FeatureControl) VMXAllowed() bool {
	return !f.Has(FeatureControlLocked) || f.Has(FeatureControlVMXOutsideSMX)
}

var (
	vmxBasicLayout = &Layout{Name: "IA32_VMX_BASIC", Size: 8, Fields: []Field{
		basicRevision,
		reservedField("Reserved0", 31, 1),
		basicRegionSize,
		reservedField("Reserved1", 45, 3),
		flagField("AddressWidth32", BasicAddressWidth32),
		flagField("DualMonitor", BasicDualMonitor),
		basicMemoryType,
		flagField("InsOutsInfo", BasicInsOutsInfo),
		flagField("TrueControls", BasicTrueControls),
		flagField("NoErrorCode", BasicNoErrorCode),
		reservedField("Reserved2", 57, 7),
	}}
	featureControlLayout = &Layout{Name: "IA32_FEATURE_CONTROL", Size: 8, Fields: []Field{
		flagField("Lock", FeatureControlLocked),
		flagField("VMXInSMX", FeatureControlVMXInSMX),
		flagField("VMXOutsideSMX", FeatureControlVMXOutsideSMX),
		reservedField("Other", 3, 61),
	}}
)

func init() {
	registerLayouts(vmxBasicLayout, featureControlLayout)
}
