package vtx

// CR0 is the 32-bit view of control register 0 (SDM Vol 3A, Figure 2-7).
type CR0 uint32

const (
	CR0PE CR0 = 1 << 0  // protection enable
	CR0MP CR0 = 1 << 1  // monitor coprocessor
	CR0EM CR0 = 1 << 2  // emulation
	CR0TS CR0 = 1 << 3  // task switched
	CR0ET CR0 = 1 << 4  // extension type
	CR0NE CR0 = 1 << 5  // numeric error
	CR0WP CR0 = 1 << 16 // write protect
	CR0AM CR0 = 1 << 18 // alignment mask
	CR0NW CR0 = 1 << 29 // not write-through
	CR0CD CR0 = 1 << 30 // cache disable
	CR0PG CR0 = 1 << 31 // paging
)

func (c CR0) Has(f CR0) bool      { return hasFlag(c, f) }
func (c *CR0) Set(f CR0, on bool) { setFlag(c, f, on) }

// CR4 is the 32-bit view of control register 4.
type CR4 uint32

const (
	CR4VME        CR4 = 1 << 0  // virtual-8086 mode extensions
	CR4PVI        CR4 = 1 << 1  // protected-mode virtual interrupts
	CR4TSD        CR4 = 1 << 2  // time stamp disable
	CR4DE         CR4 = 1 << 3  // debugging extensions
	CR4PSE        CR4 = 1 << 4  // page size extensions
	CR4PAE        CR4 = 1 << 5  // physical address extension
	CR4MCE        CR4 = 1 << 6  // machine-check enable
	CR4PGE        CR4 = 1 << 7  // page global enable
	CR4PCE        CR4 = 1 << 8  // performance-monitoring counter enable
	CR4OSFXSR     CR4 = 1 << 9  // OS support for FXSAVE/FXRSTOR
	CR4OSXMMEXCPT CR4 = 1 << 10 // OS support for unmasked SIMD FP exceptions
	CR4VMXE       CR4 = 1 << 13 // VMX enable
	CR4SMXE       CR4 = 1 << 14 // SMX enable
	CR4PCIDE      CR4 = 1 << 17 // PCID enable
	CR4OSXSAVE    CR4 = 1 << 18 // XSAVE and processor extended states enable
	CR4SMEP       CR4 = 1 << 20 // supervisor-mode execution prevention
	CR4SMAP       CR4 = 1 << 21 // supervisor-mode access prevention
	CR4PKE        CR4 = 1 << 22 // protection keys (PKRU)
)

func (c CR4) Has(f CR4) bool      { return hasFlag(c, f) }
func (c *CR4) Set(f CR4, on bool) { setFlag(c, f, on) }

// CR3 holds the PML4 base under IA-32e paging. The low twelve bits are
// either PWT/PCD (CR4.PCIDE = 0, SDM Table 4-12) or a process-context
// identifier (CR4.PCIDE = 1, Table 4-13); the PML4 field is shared.
type CR3 uint64

const (
	CR3PWT CR3 = 1 << 3
	CR3PCD CR3 = 1 << 4
)

var (
	cr3PCID = bitField("PCID", 0, 12)
	cr3PML4 = bitField("PML4", 12, 52)
)

func (c CR3) Has(f CR3) bool      { return hasFlag(c, f) }
func (c *CR3) Set(f CR3, on bool) { setFlag(c, f, on) }

// PML4 is the page frame number of the PML4 table.
func (c CR3) PML4() uint64        { return getField(c, cr3PML4) }
func (c *CR3) SetPML4(pfn uint64) { setField(c, cr3PML4, pfn) }

// PML4Address is the physical address of the PML4 table.
func (c CR3) PML4Address() uint64 { return uint64(c) & cr3PML4.Mask }

// PCID is only meaningful when CR4.PCIDE = 1.
func (c CR3) PCID() uint16         { return uint16(getField(c, cr3PCID)) }
func (c *CR3) SetPCID(pcid uint16) { setField(c, cr3PCID, uint64(pcid)) }

var (
	cr0Layout = flagLayout("CR0", []Field{
		flagField("PE", CR0PE), flagField("MP", CR0MP), flagField("EM", CR0EM),
		flagField("TS", CR0TS), flagField("ET", CR0ET), flagField("NE", CR0NE),
		flagField("WP", CR0WP), flagField("AM", CR0AM), flagField("NW", CR0NW),
		flagField("CD", CR0CD), flagField("PG", CR0PG),
	})
	cr4Layout = flagLayout("CR4", []Field{
		flagField("VME", CR4VME), flagField("PVI", CR4PVI), flagField("TSD", CR4TSD),
		flagField("DE", CR4DE), flagField("PSE", CR4PSE), flagField("PAE", CR4PAE),
		flagField("MCE", CR4MCE), flagField("PGE", CR4PGE), flagField("PCE", CR4PCE),
		flagField("OSFXSR", CR4OSFXSR), flagField("OSXMMEXCPT", CR4OSXMMEXCPT),
		flagField("VMXE", CR4VMXE), flagField("SMXE", CR4SMXE), flagField("PCIDE", CR4PCIDE),
		flagField("OSXSAVE", CR4OSXSAVE), flagField("SMEP", CR4SMEP), flagField("SMAP", CR4SMAP),
		flagField("PKE", CR4PKE),
	})
	cr3Layout = &Layout{Name: "CR3", Size: 8, Fields: []Field{
		reservedField("Reserved0", 0, 3),
		flagField("PWT", CR3PWT),
		flagField("PCD", CR3PCD),
		reservedField("Reserved1", 5, 7),
		cr3PML4,
	}}
	cr3PCIDLayout = &Layout{Name: "CR3.PCID", Size: 8, Fields: []Field{cr3PCID, cr3PML4}}
)

func init() {
	registerLayouts(cr0Layout, cr4Layout, cr3Layout, cr3PCIDLayout)
}
