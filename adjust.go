package vtx

import (
	"fmt"

	"gvisor.dev/gvisor/pkg/log"
)

// Clamp forces a control word into the range a processor accepts: bits clear
// in allowed1 are cleared, then bits set in required are set. A bit present
// in both masks is always 1.
func Clamp(desired, allowed1, required uint32) uint32 {
	return (desired & allowed1) | required
}

// ControlMasks are the two masks a capability reports for a 32-bit control.
type ControlMasks struct {
	Allowed  uint32 // allowed 1-settings: a 0 bit must stay 0
	Required uint32 // a 1 bit must be 1
}

// Apply clamps desired against m.
func (m ControlMasks) Apply(desired uint32) uint32 {
	return Clamp(desired, m.Allowed, m.Required)
}

// CapabilityMasks splits a VMX capability MSR (SDM Vol 3D, A.3). Bits 31:0
// are the allowed 0-settings: a 1 there means the control may not be 0.
// Bits 63:32 are the allowed 1-settings: a 0 there means the control may not
// be 1.
func CapabilityMasks(v uint64) ControlMasks {
	return ControlMasks{
		Allowed:  uint32(v >> 32),
		Required: uint32(v),
	}
}

// FixedMasks converts an IA32_VMX_CRn_FIXED0/FIXED1 pair (SDM Vol 3D, A.7
// and A.8). FIXED0 bits are forced to 1; FIXED1 clear bits are forced to 0.
// Only the low 32 bits are modelled since CR0 and CR4 are 32-bit types here.
func FixedMasks(fixed0, fixed1 uint64) ControlMasks {
	return ControlMasks{
		Allowed:  uint32(fixed1),
		Required: uint32(fixed0),
	}
}

// ControlKind names one of the VMX control words.
type ControlKind int

const (
	PinBased ControlKind = iota
	ProcBased
	ProcBased2
	Exit
	Entry
)

var controlKinds = [...]struct {
	name    string
	msr     MSR
	trueMSR MSR
	layout  *Layout
}{
	PinBased:   {"pinbased", IA32VMXPinBasedCtls, IA32VMXTruePinBasedCtls, pinBasedLayout},
	ProcBased:  {"procbased", IA32VMXProcBasedCtls, IA32VMXTrueProcBasedCtls, procBasedLayout},
	ProcBased2: {"procbased2", IA32VMXProcBasedCtls2, 0, procBased2Layout},
	Exit:       {"exit", IA32VMXExitCtls, IA32VMXTrueExitCtls, exitLayout},
	Entry:      {"entry", IA32VMXEntryCtls, IA32VMXTrueEntryCtls, entryLayout},
}

// ControlKinds lists every control word kind.
func ControlKinds() []ControlKind {
	return []ControlKind{PinBased, ProcBased, ProcBased2, Exit, Entry}
}

func (k ControlKind) valid() bool { return k >= 0 && int(k) < len(controlKinds) }

func (k ControlKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("ControlKind(%d)", int(k))
	}
	return controlKinds[k].name
}

// ParseControlKind accepts the names printed by ControlKind.String.
func ParseControlKind(s string) (ControlKind, error) {
	for _, k := range ControlKinds() {
		if controlKinds[k].name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("vtx: unknown control %q", s)
}

// MSR is the legacy capability MSR for the control word.
func (k ControlKind) MSR() MSR {
	if !k.valid() {
		return 0
	}
	return controlKinds[k].msr
}

// Layout is the bit layout of the control word, or nil for an unknown kind.
func (k ControlKind) Layout() *Layout {
	if !k.valid() {
		return nil
	}
	return controlKinds[k].layout
}

// CapabilityMSR selects the capability MSR to clamp against. When
// IA32_VMX_BASIC[55] is set the TRUE variant reports default1 controls that
// may be cleared, so it takes precedence. The secondary controls have no
// TRUE variant. An unknown kind has no capability MSR.
func (k ControlKind) CapabilityMSR(basic VMXBasic) MSR {
	if !k.valid() {
		return 0
	}
	c := controlKinds[k]
	if c.trueMSR != 0 && basic.Has(BasicTrueControls) {
		return c.trueMSR
	}
	return c.msr
}

// AdjustControl reads the capability MSR code and clamps desired against
// it. The MSR is read on every call.
func AdjustControl(r MSRReader, code MSR, desired uint32) (uint32, error) {
	v, err := r.ReadMSR(code)
	if err != nil {
		return 0, fmt.Errorf("vtx: adjust against %s: %w", code, err)
	}
	adjusted := CapabilityMasks(v).Apply(desired)
	recordAdjustment()
	log.Debugf("vtx: adjust %s: %#08x -> %#08x (msr %#016x)", code, desired, adjusted, v)
	return adjusted, nil
}

// AdjustKind clamps desired against the capability MSR for kind, reading
// IA32_VMX_BASIC first to choose between the legacy and TRUE variants.
func AdjustKind(r MSRReader, kind ControlKind, desired uint32) (uint32, error) {
	if !kind.valid() {
		return 0, fmt.Errorf("vtx: unknown control kind %d", int(kind))
	}
	basic, err := r.ReadMSR(IA32VMXBasic)
	if err != nil {
		return 0, fmt.Errorf("vtx: adjust %s: %w", kind, err)
	}
	return AdjustControl(r, kind.CapabilityMSR(VMXBasic(basic)), desired)
}

// AdjustPinBased clamps the pin-based controls c.
func AdjustPinBased(r MSRReader, c PinBasedControls) (PinBasedControls, error) {
	v, err := AdjustKind(r, PinBased, uint32(c))
	return PinBasedControls(v), err
}

// AdjustProcBased clamps the primary processor-based controls c.
func AdjustProcBased(r MSRReader, c ProcBasedControls) (ProcBasedControls, error) {
	v, err := AdjustKind(r, ProcBased, uint32(c))
	return ProcBasedControls(v), err
}

// AdjustProcBased2 clamps the secondary processor-based controls c.
func AdjustProcBased2(r MSRReader, c ProcBasedControls2) (ProcBasedControls2, error) {
	v, err := AdjustKind(r, ProcBased2, uint32(c))
	return ProcBasedControls2(v), err
}

// AdjustExit clamps the VM-exit controls c.
func AdjustExit(r MSRReader, c ExitControls) (ExitControls, error) {
	v, err := AdjustKind(r, Exit, uint32(c))
	return ExitControls(v), err
}

// AdjustEntry clamps the VM-entry controls c.
func AdjustEntry(r MSRReader, c EntryControls) (EntryControls, error) {
	v, err := AdjustKind(r, Entry, uint32(c))
	return EntryControls(v), err
}

func adjustFixed(r MSRReader, fixed0, fixed1 MSR, desired uint32) (uint32, error) {
	f0, err := r.ReadMSR(fixed0)
	if err != nil {
		return 0, fmt.Errorf("vtx: adjust against %s: %w", fixed0, err)
	}
	f1, err := r.ReadMSR(fixed1)
	if err != nil {
		return 0, fmt.Errorf("vtx: adjust against %s: %w", fixed1, err)
	}
	adjusted := FixedMasks(f0, f1).Apply(desired)
	recordAdjustment()
	log.Debugf("vtx: adjust %s/%s: %#08x -> %#08x", fixed0, fixed1, desired, adjusted)
	return adjusted, nil
}

// AdjustCR0 applies IA32_VMX_CR0_FIXED0/FIXED1 to c.
func AdjustCR0(r MSRReader, c CR0) (CR0, error) {
	v, err := adjustFixed(r, IA32VMXCR0Fixed0, IA32VMXCR0Fixed1, uint32(c))
	return CR0(v), err
}

// AdjustCR4 applies IA32_VMX_CR4_FIXED0/FIXED1 to c.
func AdjustCR4(r MSRReader, c CR4) (CR4, error) {
	v, err := adjustFixed(r, IA32VMXCR4Fixed0, IA32VMXCR4Fixed1, uint32(c))
	return CR4(v), err
}
