package vtx

import (
	"errors"
	"fmt"
)

// VM-execution, VM-exit and VM-entry control words (SDM Vol 3C, 24.6-24.8).
// Controls without a name here are carried as reserved bits.

// PinBasedControls is the pin-based VM-execution control word (Table 24-5).
type PinBasedControls uint32

const (
	PinExternalInterruptExiting PinBasedControls = 1 << 0
	PinNMIExiting               PinBasedControls = 1 << 3
	PinVirtualNMIs              PinBasedControls = 1 << 5
	PinPreemptionTimer          PinBasedControls = 1 << 6
)

func (c PinBasedControls) Has(f PinBasedControls) bool      { return hasFlag(c, f) }
func (c *PinBasedControls) Set(f PinBasedControls, on bool) { setFlag(c, f, on) }

// ProcBasedControls is the primary processor-based VM-execution control
// word (Table 24-6).
type ProcBasedControls uint32

const (
	ProcInterruptWindowExiting ProcBasedControls = 1 << 2
	ProcUseTSCOffsetting       ProcBasedControls = 1 << 3
	ProcHLTExiting             ProcBasedControls = 1 << 7
	ProcINVLPGExiting          ProcBasedControls = 1 << 9
	ProcMWAITExiting           ProcBasedControls = 1 << 10
	ProcRDPMCExiting           ProcBasedControls = 1 << 11
	ProcRDTSCExiting           ProcBasedControls = 1 << 12
	ProcCR3LoadExiting         ProcBasedControls = 1 << 15
	ProcCR3StoreExiting        ProcBasedControls = 1 << 16
	ProcCR8LoadExiting         ProcBasedControls = 1 << 19
	ProcCR8StoreExiting        ProcBasedControls = 1 << 20
	ProcUseTPRShadow           ProcBasedControls = 1 << 21
	ProcNMIWindowExiting       ProcBasedControls = 1 << 22
	ProcMovDRExiting           ProcBasedControls = 1 << 23
	ProcUnconditionalIOExiting ProcBasedControls = 1 << 24
	ProcUseIOBitmaps           ProcBasedControls = 1 << 25
	ProcMonitorTrapFlag        ProcBasedControls = 1 << 27
	ProcUseMSRBitmaps          ProcBasedControls = 1 << 28
	ProcMONITORExiting         ProcBasedControls = 1 << 29
	ProcPAUSEExiting           ProcBasedControls = 1 << 30
	ProcActivateSecondary      ProcBasedControls = 1 << 31
)

func (c ProcBasedControls) Has(f ProcBasedControls) bool      { return hasFlag(c, f) }
func (c *ProcBasedControls) Set(f ProcBasedControls, on bool) { setFlag(c, f, on) }

// ProcBasedControls2 is the secondary processor-based control word
// (Table 24-7). It only takes effect with ProcActivateSecondary set.
type ProcBasedControls2 uint32

const (
	Proc2VirtualizeAPICAccesses ProcBasedControls2 = 1 << 0
	Proc2EnableEPT              ProcBasedControls2 = 1 << 1
	Proc2DescriptorTableExiting ProcBasedControls2 = 1 << 2
	Proc2EnableRDTSCP           ProcBasedControls2 = 1 << 3
	Proc2VirtualizeX2APIC       ProcBasedControls2 = 1 << 4
	Proc2EnableVPID             ProcBasedControls2 = 1 << 5
	Proc2WBINVDExiting          ProcBasedControls2 = 1 << 6
	Proc2UnrestrictedGuest      ProcBasedControls2 = 1 << 7
	Proc2PAUSELoopExiting       ProcBasedControls2 = 1 << 10
)

func (c ProcBasedControls2) Has(f ProcBasedControls2) bool      { return hasFlag(c, f) }
func (c *ProcBasedControls2) Set(f ProcBasedControls2, on bool) { setFlag(c, f, on) }

// ExitControls is the VM-exit control word (Table 24-11).
type ExitControls uint32

const (
	ExitSaveDebugControls    ExitControls = 1 << 2
	ExitHostAddressSpaceSize ExitControls = 1 << 9
	ExitLoadPerfGlobalCtrl   ExitControls = 1 << 12
	ExitAcknowledgeInterrupt ExitControls = 1 << 15
	ExitSavePAT              ExitControls = 1 << 18
	ExitLoadPAT              ExitControls = 1 << 19
	ExitSaveEFER             ExitControls = 1 << 20
	ExitLoadEFER             ExitControls = 1 << 21
	ExitSavePreemptionTimer  ExitControls = 1 << 22
)

func (c ExitControls) Has(f ExitControls) bool      { return hasFlag(c, f) }
func (c *ExitControls) Set(f ExitControls, on bool) { setFlag(c, f, on) }

// EntryControls is the VM-entry control word (Table 24-13).
type EntryControls uint32

const (
	EntryLoadDebugControls     EntryControls = 1 << 2
	EntryIA32eModeGuest        EntryControls = 1 << 9
	EntryToSMM                 EntryControls = 1 << 10
	EntryDeactivateDualMonitor EntryControls = 1 << 11
	EntryLoadPerfGlobalCtrl    EntryControls = 1 << 13
	EntryLoadPAT               EntryControls = 1 << 14
	EntryLoadEFER              EntryControls = 1 << 15
)

func (c EntryControls) Has(f EntryControls) bool      { return hasFlag(c, f) }
func (c *EntryControls) Set(f EntryControls, on bool) { setFlag(c, f, on) }

// ExceptionBitmap selects which exception vectors cause a VM exit; bit n
// corresponds to vector n.
type ExceptionBitmap uint32

// Intercepts reports whether vector v causes a VM exit.
func (b ExceptionBitmap) Intercepts(v Vector) bool {
	return v < 32 && b&(1<<v) != 0
}

// Intercept sets or clears the exit bit for v. Vectors above 31 are ignored.
func (b *ExceptionBitmap) Intercept(v Vector, on bool) {
	if v >= 32 {
		return
	}
	setFlag(b, ExceptionBitmap(1)<<v, on)
}

// Vectors lists the intercepted vectors in ascending order.
func (b ExceptionBitmap) Vectors() []Vector {
	var out []Vector
	for v := Vector(0); v < 32; v++ {
		if b.Intercepts(v) {
			out = append(out, v)
		}
	}
	return out
}

var (
	pinBasedLayout = flagLayout("PinBasedControls", []Field{
		flagField("ExternalInterruptExiting", PinExternalInterruptExiting),
		flagField("NMIExiting", PinNMIExiting),
		flagField("VirtualNMIs", PinVirtualNMIs),
		flagField("PreemptionTimer", PinPreemptionTimer),
	})
	procBasedLayout = flagLayout("ProcBasedControls", []Field{
		flagField("InterruptWindowExiting", ProcInterruptWindowExiting),
		flagField("UseTSCOffsetting", ProcUseTSCOffsetting),
		flagField("HLTExiting", ProcHLTExiting),
		flagField("INVLPGExiting", ProcINVLPGExiting),
		flagField("MWAITExiting", ProcMWAITExiting),
		flagField("RDPMCExiting", ProcRDPMCExiting),
		flagField("RDTSCExiting", ProcRDTSCExiting),
		flagField("CR3LoadExiting", ProcCR3LoadExiting),
		flagField("CR3StoreExiting", ProcCR3StoreExiting),
		flagField("CR8LoadExiting", ProcCR8LoadExiting),
		flagField("CR8StoreExiting", ProcCR8StoreExiting),
		flagField("UseTPRShadow", ProcUseTPRShadow),
		flagField("NMIWindowExiting", ProcNMIWindowExiting),
		flagField("MovDRExiting", ProcMovDRExiting),
		flagField("UnconditionalIOExiting", ProcUnconditionalIOExiting),
		flagField("UseIOBitmaps", ProcUseIOBitmaps),
		flagField("MonitorTrapFlag", ProcMonitorTrapFlag),
		flagField("UseMSRBitmaps", ProcUseMSRBitmaps),
		flagField("MONITORExiting", ProcMONITORExiting),
		flagField("PAUSEExiting", ProcPAUSEExiting),
		flagField("ActivateSecondary", ProcActivateSecondary),
	})
	procBased2Layout = flagLayout("ProcBasedControls2", []Field{
		flagField("VirtualizeAPICAccesses", Proc2VirtualizeAPICAccesses),
		flagField("EnableEPT", Proc2EnableEPT),
		flagField("DescriptorTableExiting", Proc2DescriptorTableExiting),
		flagField("EnableRDTSCP", Proc2EnableRDTSCP),
		flagField("VirtualizeX2APIC", Proc2VirtualizeX2APIC),
		flagField("EnableVPID", Proc2EnableVPID),
		flagField("WBINVDExiting", Proc2WBINVDExiting),
		flagField("UnrestrictedGuest", Proc2UnrestrictedGuest),
		flagField("PAUSELoopExiting", Proc2PAUSELoopExiting),
	})
	exitLayout = flagLayout("ExitControls", []Field{
		flagField("SaveDebugControls", ExitSaveDebugControls),
		flagField("HostAddressSpaceSize", ExitHostAddressSpaceSize),
		flagField("LoadPerfGlobalCtrl", ExitLoadPerfGlobalCtrl),
		flagField("AcknowledgeInterrupt", ExitAcknowledgeInterrupt),
		flagField("SavePAT", ExitSavePAT),
		flagField("LoadPAT", ExitLoadPAT),
		flagField("SaveEFER", ExitSaveEFER),
		flagField("LoadEFER", ExitLoadEFER),
		flagField("SavePreemptionTimer", ExitSavePreemptionTimer),
	})
	entryLayout = flagLayout("EntryControls", []Field{
		flagField("LoadDebugControls", EntryLoadDebugControls),
		flagField("IA32eModeGuest", EntryIA32eModeGuest),
		flagField("EntryToSMM", EntryToSMM),
		flagField("DeactivateDualMonitor", EntryDeactivateDualMonitor),
		flagField("LoadPerfGlobalCtrl", EntryLoadPerfGlobalCtrl),
		flagField("LoadPAT", EntryLoadPAT),
		flagField("LoadEFER", EntryLoadEFER),
	})
	exceptionBitmapLayout = flagLayout("ExceptionBitmap", exceptionFields())
)

func exceptionFields() []Field {
	var fs []Field
	for v := Vector(0); v < 32; v++ {
		if v.Defined() {
			fs = append(fs, flagField(v.String(), ExceptionBitmap(1)<<v))
		}
	}
	return fs
}

func init() {
	registerLayouts(pinBasedLayout, procBasedLayout, procBased2Layout, exitLayout, entryLayout, exceptionBitmapLayout)
}

// bitmapPage is the size of one VMX bitmap page.
const bitmapPage = 4096

// IOBitmaps holds I/O bitmaps A and B (SDM Vol 3C, 24.6.4). Bitmap A
// covers ports 0x0000-0x7FFF and bitmap B ports 0x8000-0xFFFF. With
// ProcUseIOBitmaps set, an access to a port whose bit is set exits.
type IOBitmaps [2][bitmapPage]byte

// Intercept sets or clears the exit bit for port.
func (b *IOBitmaps) Intercept(port uint16, on bool) {
	setBitmapBit(b[port>>15][:], uint32(port&0x7FFF), on)
}

// Intercepts reports whether an access to port exits.
func (b *IOBitmaps) Intercepts(port uint16) bool {
	return bitmapBit(b[port>>15][:], uint32(port&0x7FFF))
}

// ErrMSRNotInBitmap is returned for an MSR the MSR bitmap cannot describe.
var ErrMSRNotInBitmap = errors.New("vtx: MSR outside the MSR-bitmap ranges")

// MSR ranges covered by the MSR bitmap.
const (
	msrBitmapLow  MSR = 0x00000000
	msrBitmapHigh MSR = 0xC0000000
	msrBitmapSpan     = 0x2000
)

// Offsets of the four 1 KB regions inside the MSR bitmap.
const (
	msrReadLow   = 0
	msrReadHigh  = 1024
	msrWriteLow  = 2048
	msrWriteHigh = 3072
)

// MSRBitmap is the MSR-bitmap page (SDM Vol 3C, 24.6.9). It is split into
// read and write bitmaps for MSRs 0x00000000-0x00001FFF and
// 0xC0000000-0xC0001FFF. With ProcUseMSRBitmaps set, RDMSR or WRMSR of an
// MSR whose bit is set exits. Accesses to MSRs outside both ranges always
// exit.
type MSRBitmap [bitmapPage]byte

// msrBitmapRegion returns the region for m and the bit index inside it.
func msrBitmapRegion(m MSR, write bool) (region, bit uint32, err error) {
	switch {
	case m < msrBitmapLow+msrBitmapSpan:
		region, bit = msrReadLow, uint32(m-msrBitmapLow)
	case m >= msrBitmapHigh && m < msrBitmapHigh+msrBitmapSpan:
		region, bit = msrReadHigh, uint32(m-msrBitmapHigh)
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrMSRNotInBitmap, m)
	}
	if write {
		region += msrWriteLow
	}
	return region, bit, nil
}

func (b *MSRBitmap) intercept(m MSR, write, on bool) error {
	region, bit, err := msrBitmapRegion(m, write)
	if err != nil {
		return err
	}
	setBitmapBit(b[region:region+bitmapPage/4], bit, on)
	return nil
}

func (b *MSRBitmap) intercepts(m MSR, write bool) bool {
	region, bit, err := msrBitmapRegion(m, write)
	if err != nil {
		return true
	}
	return bitmapBit(b[region:region+bitmapPage/4], bit)
}

// InterceptRead sets or clears the RDMSR exit bit for m.
func (b *MSRBitmap) InterceptRead(m MSR, on bool) error { return b.intercept(m, false, on) }

// InterceptWrite sets or clears the WRMSR exit bit for m.
func (b *MSRBitmap) InterceptWrite(m MSR, on bool) error { return b.intercept(m, true, on) }

// InterceptsRead reports whether RDMSR of m exits.
func (b *MSRBitmap) InterceptsRead(m MSR) bool { return b.intercepts(m, false) }

// InterceptsWrite reports whether WRMSR of m exits.
func (b *MSRBitmap) InterceptsWrite(m MSR) bool { return b.intercepts(m, true) }

func bitmapBit(page []byte, i uint32) bool {
	return page[i/8]&(1<<(i%8)) != 0
}

func setBitmapBit(page []byte, i uint32, on bool) {
	if on {
		page[i/8] |= 1 << (i % 8)
	} else {
		page[i/8] &^= 1 << (i % 8)
	}
}
