package vtx

import "fmt"

// VT-d DMA-remapping registers and in-memory translation structures
// (Intel VT-d specification, chapters 9 and 10). Registers are read from
// the remapping unit's MMIO page at the offsets below.

// RegisterOffset is the byte offset of a remapping-unit register.
type RegisterOffset uint32

const (
	RegCapability       RegisterOffset = 0x08
	RegExtCapability    RegisterOffset = 0x10
	RegGlobalCommand    RegisterOffset = 0x18
	RegGlobalStatus     RegisterOffset = 0x1c
	RegRootTableAddress RegisterOffset = 0x20
	RegContextCommand   RegisterOffset = 0x28
)

var vtdRegisters = map[RegisterOffset]*Layout{
	RegCapability:       capabilityLayout,
	RegExtCapability:    extCapabilityLayout,
	RegGlobalCommand:    globalCommandLayout,
	RegGlobalStatus:     globalStatusLayout,
	RegRootTableAddress: rootTableAddressLayout,
	RegContextCommand:   contextCommandLayout,
}

// Layout returns the layout of the register at o.
func (o RegisterOffset) Layout() (*Layout, bool) {
	l, ok := vtdRegisters[o]
	return l, ok
}

func (o RegisterOffset) String() string {
	if l, ok := vtdRegisters[o]; ok {
		return l.Name
	}
	return fmt.Sprintf("RegisterOffset(%#x)", uint32(o))
}

// Registers and entries with several multi-bit fields take a field type of
// their own, so a field can only be used with the structure it belongs to.
// The descriptors stay unexported and cannot change after the layouts are
// checked.

func wordGet(ws []uint64, f Field) uint64 {
	if f.Word < 0 || f.Word >= len(ws) {
		return 0
	}
	return f.Extract(ws[f.Word])
}

func wordSet(ws []uint64, f Field, v uint64) {
	if f.Word < 0 || f.Word >= len(ws) {
		return
	}
	ws[f.Word] = f.Insert(ws[f.Word], v)
}

// Capability is the capability register (CAP_REG).
type Capability uint64

// CapabilityField selects a CAP_REG field.
type CapabilityField struct{ f Field }

var (
	CapND    = CapabilityField{bitField("ND", 0, 3)} // number of domains
	CapAFL   = CapabilityField{bitField("AFL", 3, 1)}
	CapRWBF  = CapabilityField{bitField("RWBF", 4, 1)}
	CapPLMR  = CapabilityField{bitField("PLMR", 5, 1)}
	CapPHMR  = CapabilityField{bitField("PHMR", 6, 1)}
	CapCM    = CapabilityField{bitField("CM", 7, 1)} // caching mode
	CapSAGAW = CapabilityField{bitField("SAGAW", 8, 5)}
	CapMGAW  = CapabilityField{bitField("MGAW", 16, 6)}
	CapZLR   = CapabilityField{bitField("ZLR", 22, 1)}
	CapFRO   = CapabilityField{bitField("FRO", 24, 10)} // fault-recording register offset, in 16-byte units
	CapSLLPS = CapabilityField{bitField("SLLPS", 34, 4)}
	CapPSI   = CapabilityField{bitField("PSI", 39, 1)}
	CapNFR   = CapabilityField{bitField("NFR", 40, 8)}
	CapMAMV  = CapabilityField{bitField("MAMV", 48, 6)}
	CapDWD   = CapabilityField{bitField("DWD", 54, 1)}
	CapDRD   = CapabilityField{bitField("DRD", 55, 1)}
	CapFL1GP = CapabilityField{bitField("FL1GP", 56, 1)}
	CapPI    = CapabilityField{bitField("PI", 59, 1)} // posted interrupts
)

func (c Capability) Get(f CapabilityField) uint64     { return getField(c, f.f) }
func (c *Capability) Set(f CapabilityField, v uint64) { setField(c, f.f, v) }
func (c Capability) Has(f CapabilityField) bool       { return c.Get(f) != 0 }

// Domains is the number of domain identifiers the unit supports.
func (c Capability) Domains() uint64 { return 1 << (4 + 2*c.Get(CapND)) }

// MaxGuestAddressWidth is MGAW in bits.
func (c Capability) MaxGuestAddressWidth() uint { return uint(c.Get(CapMGAW)) + 1 }

// FaultRecordingOffset is the byte offset of the first fault-recording
// register.
func (c Capability) FaultRecordingOffset() uint64 { return c.Get(CapFRO) * 16 }

// ExtCapability is the extended capability register (ECAP_REG).
type ExtCapability uint64

// ExtCapabilityField selects an ECAP_REG field.
type ExtCapabilityField struct{ f Field }

var (
	ECapC     = ExtCapabilityField{bitField("C", 0, 1)} // page-walk coherency
	ECapQI    = ExtCapabilityField{bitField("QI", 1, 1)}
	ECapDT    = ExtCapabilityField{bitField("DT", 2, 1)}
	ECapIR    = ExtCapabilityField{bitField("IR", 3, 1)}
	ECapEIM   = ExtCapabilityField{bitField("EIM", 4, 1)}
	ECapPT    = ExtCapabilityField{bitField("PT", 6, 1)}
	ECapSC    = ExtCapabilityField{bitField("SC", 7, 1)}
	ECapIRO   = ExtCapabilityField{bitField("IRO", 8, 10)} // IOTLB register offset, in 16-byte units
	ECapMHMV  = ExtCapabilityField{bitField("MHMV", 20, 4)}
	ECapECS   = ExtCapabilityField{bitField("ECS", 24, 1)}
	ECapMTS   = ExtCapabilityField{bitField("MTS", 25, 1)}
	ECapNEST  = ExtCapabilityField{bitField("NEST", 26, 1)}
	ECapDIS   = ExtCapabilityField{bitField("DIS", 27, 1)}
	ECapPRS   = ExtCapabilityField{bitField("PRS", 29, 1)}
	ECapERS   = ExtCapabilityField{bitField("ERS", 30, 1)}
	ECapSRS   = ExtCapabilityField{bitField("SRS", 31, 1)}
	ECapNWFS  = ExtCapabilityField{bitField("NWFS", 33, 1)}
	ECapEAFS  = ExtCapabilityField{bitField("EAFS", 34, 1)}
	ECapPSS   = ExtCapabilityField{bitField("PSS", 35, 5)}
	ECapPASID = ExtCapabilityField{bitField("PASID", 40, 1)}
	ECapDIT   = ExtCapabilityField{bitField("DIT", 41, 1)}
	ECapPDS   = ExtCapabilityField{bitField("PDS", 42, 1)}
)

func (c ExtCapability) Get(f ExtCapabilityField) uint64     { return getField(c, f.f) }
func (c *ExtCapability) Set(f ExtCapabilityField, v uint64) { setField(c, f.f, v) }
func (c ExtCapability) Has(f ExtCapabilityField) bool       { return c.Get(f) != 0 }

// IOTLBOffset is the byte offset of the IOTLB registers.
func (c ExtCapability) IOTLBOffset() uint64 { return c.Get(ECapIRO) * 16 }

// GlobalCommand is the global command register (GCMD_REG).
type GlobalCommand uint32

const (
	GCmdCFI   GlobalCommand = 1 << 23 // compatibility format interrupt
	GCmdSIRTP GlobalCommand = 1 << 24 // set interrupt remap table pointer
	GCmdIRE   GlobalCommand = 1 << 25 // interrupt remapping enable
	GCmdQIE   GlobalCommand = 1 << 26 // queued invalidation enable
	GCmdWBF   GlobalCommand = 1 << 27 // write buffer flush
	GCmdEAFL  GlobalCommand = 1 << 28 // enable advanced fault logging
	GCmdSFL   GlobalCommand = 1 << 29 // set fault log
	GCmdSRTP  GlobalCommand = 1 << 30 // set root table pointer
	GCmdTE    GlobalCommand = 1 << 31 // translation enable
)

func (c GlobalCommand) Has(f GlobalCommand) bool      { return hasFlag(c, f) }
func (c *GlobalCommand) Set(f GlobalCommand, on bool) { setFlag(c, f, on) }

// GlobalStatus is the global status register (GSTS_REG). Each status bit
// sits at the same position as its command bit.
type GlobalStatus uint32

const (
	GStsCFIS  GlobalStatus = 1 << 23
	GStsIRTPS GlobalStatus = 1 << 24
	GStsIRES  GlobalStatus = 1 << 25
	GStsQIES  GlobalStatus = 1 << 26
	GStsWBFS  GlobalStatus = 1 << 27
	GStsAFLS  GlobalStatus = 1 << 28
	GStsFLS   GlobalStatus = 1 << 29
	GStsRTPS  GlobalStatus = 1 << 30
	GStsTES   GlobalStatus = 1 << 31
)

func (s GlobalStatus) Has(f GlobalStatus) bool      { return hasFlag(s, f) }
func (s *GlobalStatus) Set(f GlobalStatus, on bool) { setFlag(s, f, on) }

// Command returns the GCMD value that keeps the current persistent state.
// One-shot bits (SIRTP, WBF, SFL, SRTP) are cleared.
func (s GlobalStatus) Command() GlobalCommand {
	const oneShot = GCmdSIRTP | GCmdWBF | GCmdSFL | GCmdSRTP
	return GlobalCommand(s) &^ oneShot
}

// RootTableAddress is the root table address register (RTADDR_REG).
type RootTableAddress uint64

// RootTableAddressField selects an RTADDR_REG field.
type RootTableAddressField struct{ f Field }

var (
	RTAddrTTM = RootTableAddressField{bitField("TTM", 11, 1)} // 1 selects the extended root table
	RTAddrRTA = RootTableAddressField{bitField("RTA", 12, 52)}
)

func (r RootTableAddress) Get(f RootTableAddressField) uint64     { return getField(r, f.f) }
func (r *RootTableAddress) Set(f RootTableAddressField, v uint64) { setField(r, f.f, v) }

// Address is the physical address of the root table.
func (r RootTableAddress) Address() uint64 { return uint64(r) & RTAddrRTA.f.Mask }

// Extended reports whether the root table uses extended entries.
func (r RootTableAddress) Extended() bool { return r.Get(RTAddrTTM) != 0 }

// Invalidation granularities for the context and IOTLB commands.
const (
	InvalidateGlobal uint64 = 1
	InvalidateDomain uint64 = 2
	InvalidateDevice uint64 = 3 // context command
	InvalidatePage   uint64 = 3 // IOTLB command
)

// IOTLBCommand is the IOTLB invalidate register (IOTLB_REG).
type IOTLBCommand uint64

// IOTLBField selects an IOTLB_REG field.
type IOTLBField struct{ f Field }

var (
	IOTLBDID  = IOTLBField{bitField("DID", 32, 16)}
	IOTLBDW   = IOTLBField{bitField("DW", 48, 1)}
	IOTLBDR   = IOTLBField{bitField("DR", 49, 1)}
	IOTLBIAIG = IOTLBField{bitField("IAIG", 57, 2)} // actual granularity, set by hardware
	IOTLBIIRG = IOTLBField{bitField("IIRG", 60, 2)} // requested granularity
	IOTLBIVT  = IOTLBField{bitField("IVT", 63, 1)}
)

func (c IOTLBCommand) Get(f IOTLBField) uint64     { return getField(c, f.f) }
func (c *IOTLBCommand) Set(f IOTLBField, v uint64) { setField(c, f.f, v) }

// ContextCommand is the context command register (CCMD_REG).
type ContextCommand uint64

// ContextCommandField selects a CCMD_REG field.
type ContextCommandField struct{ f Field }

var (
	CCmdDID  = ContextCommandField{bitField("DID", 0, 16)}
	CCmdSID  = ContextCommandField{bitField("SID", 16, 16)}
	CCmdFM   = ContextCommandField{bitField("FM", 32, 2)}
	CCmdCAIG = ContextCommandField{bitField("CAIG", 59, 2)}
	CCmdCIRG = ContextCommandField{bitField("CIRG", 61, 2)}
	CCmdICC  = ContextCommandField{bitField("ICC", 63, 1)}
)

func (c ContextCommand) Get(f ContextCommandField) uint64     { return getField(c, f.f) }
func (c *ContextCommand) Set(f ContextCommandField, v uint64) { setField(c, f.f, v) }

// GlobalContextInvalidation returns a CCMD value requesting a global
// context-cache invalidation.
func GlobalContextInvalidation() ContextCommand {
	var c ContextCommand
	c.Set(CCmdCIRG, InvalidateGlobal)
	c.Set(CCmdICC, 1)
	return c
}

// GlobalIOTLBInvalidation returns an IOTLB_REG value requesting a global
// invalidation with write draining.
func GlobalIOTLBInvalidation() IOTLBCommand {
	var c IOTLBCommand
	c.Set(IOTLBIIRG, InvalidateGlobal)
	c.Set(IOTLBDW, 1)
	c.Set(IOTLBIVT, 1)
	return c
}

// RootEntry is one 16-byte entry of the root table, indexed by bus number.
type RootEntry [2]uint64

// RootEntryField selects a RootEntry field.
type RootEntryField struct{ f Field }

var (
	RootP   = RootEntryField{bitField("P", 0, 1)}
	RootCTP = RootEntryField{bitField("CTP", 12, 52)} // context-table pointer
)

func (e RootEntry) Get(f RootEntryField) uint64     { return wordGet(e[:], f.f) }
func (e *RootEntry) Set(f RootEntryField, v uint64) { wordSet(e[:], f.f, v) }
func (e RootEntry) Present() bool                   { return e.Get(RootP) != 0 }

// ContextTable is the physical address of the context table.
func (e RootEntry) ContextTable() uint64 { return e[0] & RootCTP.f.Mask }

// ExtRootEntry is one entry of the extended root table. The lower half
// covers device numbers 0-15, the upper half 16-31.
type ExtRootEntry [2]uint64

// ExtRootEntryField selects an ExtRootEntry field.
type ExtRootEntryField struct{ f Field }

var (
	ExtRootLP   = ExtRootEntryField{bitField("LP", 0, 1)}
	ExtRootLCTP = ExtRootEntryField{bitField("LCTP", 12, 52)}
	ExtRootUP   = ExtRootEntryField{bitField("UP", 0, 1).inWord(1)}
	ExtRootUCTP = ExtRootEntryField{bitField("UCTP", 12, 52).inWord(1)}
)

func (e ExtRootEntry) Get(f ExtRootEntryField) uint64     { return wordGet(e[:], f.f) }
func (e *ExtRootEntry) Set(f ExtRootEntryField, v uint64) { wordSet(e[:], f.f, v) }

// Translation types for ContextEntry.TT.
const (
	TranslateUntranslated uint64 = 0 // untranslated requests only
	TranslateAll          uint64 = 1 // device-TLB translated requests too
	TranslatePassThrough  uint64 = 2
)

// ContextEntry is one 16-byte entry of a context table, indexed by
// device and function.
type ContextEntry [2]uint64

// ContextEntryField selects a ContextEntry field.
type ContextEntryField struct{ f Field }

var (
	CtxP       = ContextEntryField{bitField("P", 0, 1)}
	CtxFPD     = ContextEntryField{bitField("FPD", 1, 1)}
	CtxTT      = ContextEntryField{bitField("TT", 2, 2)}
	CtxSLPTPTR = ContextEntryField{bitField("SLPTPTR", 12, 52)}
	CtxAW      = ContextEntryField{bitField("AW", 0, 3).inWord(1)}
	CtxDID     = ContextEntryField{bitField("DID", 8, 16).inWord(1)}
)

func (e ContextEntry) Get(f ContextEntryField) uint64     { return wordGet(e[:], f.f) }
func (e *ContextEntry) Set(f ContextEntryField, v uint64) { wordSet(e[:], f.f, v) }
func (e ContextEntry) Present() bool                      { return e.Get(CtxP) != 0 }

// SecondLevelTable is the physical address of the second-level page table.
func (e ContextEntry) SecondLevelTable() uint64 { return e[0] & CtxSLPTPTR.f.Mask }

// ExtContextEntry is one 32-byte entry of an extended context table.
type ExtContextEntry [4]uint64

// ExtContextEntryField selects an ExtContextEntry field.
type ExtContextEntryField struct{ f Field }

var (
	ExtCtxP          = ExtContextEntryField{bitField("P", 0, 1)}
	ExtCtxFPD        = ExtContextEntryField{bitField("FPD", 1, 1)}
	ExtCtxTT         = ExtContextEntryField{bitField("TT", 2, 3)}
	ExtCtxEMT        = ExtContextEntryField{bitField("EMT", 5, 3)}
	ExtCtxDINVE      = ExtContextEntryField{bitField("DINVE", 8, 1)}
	ExtCtxPRE        = ExtContextEntryField{bitField("PRE", 9, 1)}
	ExtCtxNESTE      = ExtContextEntryField{bitField("NESTE", 10, 1)}
	ExtCtxPASIDE     = ExtContextEntryField{bitField("PASIDE", 11, 1)}
	ExtCtxSLPTPTR    = ExtContextEntryField{bitField("SLPTPTR", 12, 52)}
	ExtCtxAW         = ExtContextEntryField{bitField("AW", 0, 3).inWord(1)}
	ExtCtxPGE        = ExtContextEntryField{bitField("PGE", 3, 1).inWord(1)}
	ExtCtxNXE        = ExtContextEntryField{bitField("NXE", 4, 1).inWord(1)}
	ExtCtxWPE        = ExtContextEntryField{bitField("WPE", 5, 1).inWord(1)}
	ExtCtxCD         = ExtContextEntryField{bitField("CD", 6, 1).inWord(1)}
	ExtCtxEMTE       = ExtContextEntryField{bitField("EMTE", 7, 1).inWord(1)}
	ExtCtxDID        = ExtContextEntryField{bitField("DID", 8, 16).inWord(1)}
	ExtCtxSMEP       = ExtContextEntryField{bitField("SMEP", 24, 1).inWord(1)}
	ExtCtxEAFE       = ExtContextEntryField{bitField("EAFE", 25, 1).inWord(1)}
	ExtCtxERE        = ExtContextEntryField{bitField("ERE", 26, 1).inWord(1)}
	ExtCtxSLEE       = ExtContextEntryField{bitField("SLEE", 27, 1).inWord(1)}
	ExtCtxPAT        = ExtContextEntryField{bitField("PAT", 32, 32).inWord(1)}
	ExtCtxPTS        = ExtContextEntryField{bitField("PTS", 0, 4).inWord(2)}
	ExtCtxPASIDPTR   = ExtContextEntryField{bitField("PASIDPTR", 12, 52).inWord(2)}
	ExtCtxPASIDSTPTR = ExtContextEntryField{bitField("PASIDSTPTR", 12, 52).inWord(3)}
)

func (e ExtContextEntry) Get(f ExtContextEntryField) uint64     { return wordGet(e[:], f.f) }
func (e *ExtContextEntry) Set(f ExtContextEntryField, v uint64) { wordSet(e[:], f.f, v) }
func (e ExtContextEntry) Present() bool                         { return e.Get(ExtCtxP) != 0 }

// PASIDTableEntries is the number of entries in the PASID table.
func (e ExtContextEntry) PASIDTableEntries() uint64 { return 1 << (e.Get(ExtCtxPTS) + 5) }

// PASIDEntry is one entry of the PASID table.
type PASIDEntry uint64

// PASIDEntryField selects a PASIDEntry field.
type PASIDEntryField struct{ f Field }

var (
	PASIDP       = PASIDEntryField{bitField("P", 0, 1)}
	PASIDPWT     = PASIDEntryField{bitField("PWT", 3, 1)}
	PASIDPCD     = PASIDEntryField{bitField("PCD", 4, 1)}
	PASIDSRE     = PASIDEntryField{bitField("SRE", 11, 1)}
	PASIDFLPTPTR = PASIDEntryField{bitField("FLPTPTR", 12, 52)}
)

func (e PASIDEntry) Get(f PASIDEntryField) uint64     { return getField(e, f.f) }
func (e *PASIDEntry) Set(f PASIDEntryField, v uint64) { setField(e, f.f, v) }

// PASIDStateEntry is one entry of the PASID-state table.
type PASIDStateEntry uint64

// PASIDStateEntryField selects a PASIDStateEntry field.
type PASIDStateEntryField struct{ f Field }

var (
	PASIDStateARC  = PASIDStateEntryField{bitField("ARC", 32, 16)} // active reference count
	PASIDStateDINV = PASIDStateEntryField{bitField("DINV", 63, 1)}
)

func (e PASIDStateEntry) Get(f PASIDStateEntryField) uint64     { return getField(e, f.f) }
func (e *PASIDStateEntry) Set(f PASIDStateEntryField, v uint64) { setField(e, f.f, v) }

var (
	capabilityLayout = &Layout{Name: "VTd.CAP", Size: 8, Fields: []Field{
		CapND.f, CapAFL.f, CapRWBF.f, CapPLMR.f, CapPHMR.f, CapCM.f, CapSAGAW.f,
		reservedField("Reserved0", 13, 3),
		CapMGAW.f, CapZLR.f,
		reservedField("Reserved1", 23, 1),
		CapFRO.f, CapSLLPS.f,
		reservedField("Reserved2", 38, 1),
		CapPSI.f, CapNFR.f, CapMAMV.f, CapDWD.f, CapDRD.f, CapFL1GP.f,
		reservedField("Reserved3", 57, 2),
		CapPI.f,
		reservedField("Reserved4", 60, 4),
	}}
	extCapabilityLayout = &Layout{Name: "VTd.ECAP", Size: 8, Fields: []Field{
		ECapC.f, ECapQI.f, ECapDT.f, ECapIR.f, ECapEIM.f,
		reservedField("Reserved0", 5, 1),
		ECapPT.f, ECapSC.f, ECapIRO.f,
		reservedField("Reserved1", 18, 2),
		ECapMHMV.f, ECapECS.f, ECapMTS.f, ECapNEST.f, ECapDIS.f,
		reservedField("Reserved2", 28, 1),
		ECapPRS.f, ECapERS.f, ECapSRS.f,
		reservedField("Reserved3", 32, 1),
		ECapNWFS.f, ECapEAFS.f, ECapPSS.f, ECapPASID.f, ECapDIT.f, ECapPDS.f,
		reservedField("Reserved4", 43, 21),
	}}
	globalCommandLayout = flagLayout("VTd.GCMD", []Field{
		flagField("CFI", GCmdCFI), flagField("SIRTP", GCmdSIRTP), flagField("IRE", GCmdIRE),
		flagField("QIE", GCmdQIE), flagField("WBF", GCmdWBF), flagField("EAFL", GCmdEAFL),
		flagField("SFL", GCmdSFL), flagField("SRTP", GCmdSRTP), flagField("TE", GCmdTE),
	})
	globalStatusLayout = flagLayout("VTd.GSTS", []Field{
		flagField("CFIS", GStsCFIS), flagField("IRTPS", GStsIRTPS), flagField("IRES", GStsIRES),
		flagField("QIES", GStsQIES), flagField("WBFS", GStsWBFS), flagField("AFLS", GStsAFLS),
		flagField("FLS", GStsFLS), flagField("RTPS", GStsRTPS), flagField("TES", GStsTES),
	})
	rootTableAddressLayout = &Layout{Name: "VTd.RTADDR", Size: 8, Fields: []Field{
		reservedField("Reserved0", 0, 11),
		RTAddrTTM.f, RTAddrRTA.f,
	}}
	iotlbLayout = &Layout{Name: "VTd.IOTLB", Size: 8, Fields: []Field{
		reservedField("Reserved0", 0, 32),
		IOTLBDID.f, IOTLBDW.f, IOTLBDR.f,
		reservedField("Reserved1", 50, 7),
		IOTLBIAIG.f,
		reservedField("Reserved2", 59, 1),
		IOTLBIIRG.f,
		reservedField("Reserved3", 62, 1),
		IOTLBIVT.f,
	}}
	contextCommandLayout = &Layout{Name: "VTd.CCMD", Size: 8, Fields: []Field{
		CCmdDID.f, CCmdSID.f, CCmdFM.f,
		reservedField("Reserved0", 34, 25),
		CCmdCAIG.f, CCmdCIRG.f, CCmdICC.f,
	}}
	rootEntryLayout = &Layout{Name: "VTd.RootEntry", Size: 16, Fields: []Field{
		RootP.f,
		reservedField("Reserved0", 1, 11),
		RootCTP.f,
		reservedField("Reserved1", 0, 64).inWord(1),
	}}
	extRootEntryLayout = &Layout{Name: "VTd.ExtRootEntry", Size: 16, Fields: []Field{
		ExtRootLP.f,
		reservedField("Reserved0", 1, 11),
		ExtRootLCTP.f,
		ExtRootUP.f,
		reservedField("Reserved1", 1, 11).inWord(1),
		ExtRootUCTP.f,
	}}
	contextEntryLayout = &Layout{Name: "VTd.ContextEntry", Size: 16, Fields: []Field{
		CtxP.f, CtxFPD.f, CtxTT.f,
		reservedField("Reserved0", 4, 8),
		CtxSLPTPTR.f,
		CtxAW.f,
		reservedField("Ignored0", 3, 4).inWord(1),
		reservedField("Reserved1", 7, 1).inWord(1),
		CtxDID.f,
		reservedField("Reserved2", 24, 40).inWord(1),
	}}
	extContextEntryLayout = &Layout{Name: "VTd.ExtContextEntry", Size: 32, Fields: []Field{
		ExtCtxP.f, ExtCtxFPD.f, ExtCtxTT.f, ExtCtxEMT.f, ExtCtxDINVE.f, ExtCtxPRE.f, ExtCtxNESTE.f, ExtCtxPASIDE.f, ExtCtxSLPTPTR.f,
		ExtCtxAW.f, ExtCtxPGE.f, ExtCtxNXE.f, ExtCtxWPE.f, ExtCtxCD.f, ExtCtxEMTE.f, ExtCtxDID.f,
		ExtCtxSMEP.f, ExtCtxEAFE.f, ExtCtxERE.f, ExtCtxSLEE.f,
		reservedField("Reserved0", 28, 4).inWord(1),
		ExtCtxPAT.f,
		ExtCtxPTS.f,
		reservedField("Reserved1", 4, 8).inWord(2),
		ExtCtxPASIDPTR.f,
		reservedField("Reserved2", 0, 12).inWord(3),
		ExtCtxPASIDSTPTR.f,
	}}
	pasidEntryLayout = &Layout{Name: "VTd.PASIDEntry", Size: 8, Fields: []Field{
		PASIDP.f,
		reservedField("Reserved0", 1, 2),
		PASIDPWT.f, PASIDPCD.f,
		reservedField("Reserved1", 5, 6),
		PASIDSRE.f, PASIDFLPTPTR.f,
	}}
	pasidStateEntryLayout = &Layout{Name: "VTd.PASIDStateEntry", Size: 8, Fields: []Field{
		reservedField("Reserved0", 0, 32),
		PASIDStateARC.f,
		reservedField("Reserved1", 48, 15),
		PASIDStateDINV.f,
	}}
)

func init() {
	registerLayouts(
		capabilityLayout, extCapabilityLayout, globalCommandLayout, globalStatusLayout,
		rootTableAddressLayout, iotlbLayout, contextCommandLayout,
		rootEntryLayout, extRootEntryLayout, contextEntryLayout, extContextEntryLayout,
		pasidEntryLayout, pasidStateEntryLayout,
	)
}
