package vtx

// IA-32e paging structures (SDM Vol 3A, 4.5). Physical-address fields are
// laid out for the architectural maximum MAXPHYADDR of 52; bits above the
// CPU's actual MAXPHYADDR must be zero but are still preserved here.

// EntriesPerTable is the number of entries in every paging structure.
const EntriesPerTable = 512

// PageSize is the size of a page mapped by a leaf entry.
type PageSize uint64

const (
	PageSize4KB PageSize = 1 << 12
	PageSize2MB PageSize = 1 << 21
	PageSize1GB PageSize = 1 << 30
)

// Shift is log2 of the page size.
func (s PageSize) Shift() uint {
	switch s {
	case PageSize1GB:
		return 30
	case PageSize2MB:
		return 21
	default:
		return 12
	}
}

func (s PageSize) String() string {
	switch s {
	case PageSize1GB:
		return "1GB"
	case PageSize2MB:
		return "2MB"
	default:
		return "4KB"
	}
}

// RoundUp rounds size up to a multiple of the page size. It wraps for sizes
// within one page of the top of the address space.
func (s PageSize) RoundUp(size uint64) uint64 {
	return (size + uint64(s) - 1) &^ (uint64(s) - 1)
}

// BytesToPages is the number of pages needed to hold size bytes.
func (s PageSize) BytesToPages(size uint64) uint64 {
	n := size >> s.Shift()
	if size&(uint64(s)-1) != 0 {
		n++
	}
	return n
}

// ByteOffset is the offset of addr inside its page.
func (s PageSize) ByteOffset(addr uint64) uint64 {
	return addr & (uint64(s) - 1)
}

// Align rounds addr down to the start of its page.
func (s PageSize) Align(addr uint64) uint64 {
	return addr &^ (uint64(s) - 1)
}

// SpanPages is the number of pages touched by [addr, addr+size).
func (s PageSize) SpanPages(addr, size uint64) uint64 {
	return (s.ByteOffset(addr) + size + uint64(s) - 1) >> s.Shift()
}

// EntryFlag is a single-bit attribute shared by the paging-structure
// entries. Not every flag is defined for every entry type; see the layouts.
type EntryFlag uint64

const (
	Present        EntryFlag = 1 << 0
	Writable       EntryFlag = 1 << 1
	User           EntryFlag = 1 << 2
	WriteThrough   EntryFlag = 1 << 3
	CacheDisable   EntryFlag = 1 << 4
	Accessed       EntryFlag = 1 << 5
	Dirty          EntryFlag = 1 << 6 // leaf entries only
	PageSizeBit    EntryFlag = 1 << 7 // PDPTE/PDE; must be 0 in a PML4E
	PTEPAT         EntryFlag = 1 << 7 // PTE only; aliases PageSizeBit
	Global         EntryFlag = 1 << 8 // leaf entries only
	LargePAT       EntryFlag = 1 << 12
	ExecuteDisable EntryFlag = 1 << 63
)

var (
	frame4KB      = bitField("Frame", 12, 40)
	frame2MB      = bitField("Frame", 21, 31)
	frame1GB      = bitField("Frame", 30, 22)
	protectionKey = bitField("ProtectionKey", 59, 4)
)

func entryHas[T ~uint64](e T, f EntryFlag) bool { return hasFlag(uint64(e), uint64(f)) }

func entrySet[T ~uint64](e *T, f EntryFlag, on bool) {
	v := uint64(*e)
	setFlag(&v, uint64(f), on)
	*e = T(v)
}

// PML4E references a page-directory-pointer table (SDM Table 4-14).
type PML4E uint64

func (e PML4E) Has(f EntryFlag) bool      { return entryHas(e, f) }
func (e *PML4E) Set(f EntryFlag, on bool) { entrySet(e, f, on) }

// Frame is the page frame number of the referenced PDPT.
func (e PML4E) Frame() uint64        { return getField(e, frame4KB) }
func (e *PML4E) SetFrame(pfn uint64) { setField(e, frame4KB, pfn) }
func (e PML4E) Address() uint64      { return uint64(e) & frame4KB.Mask }

// PDPTE is a raw page-directory-pointer-table entry. Its PS bit selects
// one of two layouts; use Classify before reading any other field.
type PDPTE uint64

// PS reports whether the entry maps a 1 GB page.
func (e PDPTE) PS() bool { return entryHas(e, PageSizeBit) }

// PDPTEView is one interpretation of a PDPTE: PDPTE1GB or PDPTEDirectory.
type PDPTEView interface {
	Raw() uint64
	isPDPTE()
}

// Classify inspects the PS bit once and returns the matching view.
func (e PDPTE) Classify() PDPTEView {
	if e.PS() {
		return PDPTE1GB(e)
	}
	return PDPTEDirectory(e)
}

// PDPTE1GB maps a 1 GB page (SDM Table 4-15).
type PDPTE1GB uint64

// NewPDPTE1GB returns a present 1 GB mapping of the page at addr.
func NewPDPTE1GB(addr uint64, flags EntryFlag) PDPTE1GB {
	return PDPTE1GB(addr&frame1GB.Mask) | PDPTE1GB(flags|Present|PageSizeBit)
}

func (e PDPTE1GB) Raw() uint64               { return uint64(e) }
func (PDPTE1GB) isPDPTE()                    {}
func (e PDPTE1GB) Has(f EntryFlag) bool      { return entryHas(e, f) }
func (e *PDPTE1GB) Set(f EntryFlag, on bool) { entrySet(e, f, on) }
func (e PDPTE1GB) Frame() uint64             { return getField(e, frame1GB) }
func (e *PDPTE1GB) SetFrame(pfn uint64)      { setField(e, frame1GB, pfn) }
func (e PDPTE1GB) Address() uint64           { return uint64(e) & frame1GB.Mask }
func (e PDPTE1GB) ProtectionKey() uint8      { return uint8(getField(e, protectionKey)) }
func (e *PDPTE1GB) SetProtectionKey(k uint8) { setField(e, protectionKey, uint64(k)) }

// PDPTEDirectory references a page directory (SDM Table 4-16).
type PDPTEDirectory uint64

// NewPDPTEDirectory returns a present entry referencing the directory at addr.
func NewPDPTEDirectory(addr uint64, flags EntryFlag) PDPTEDirectory {
	return PDPTEDirectory(addr&frame4KB.Mask) | PDPTEDirectory((flags|Present)&^PageSizeBit)
}

func (e PDPTEDirectory) Raw() uint64               { return uint64(e) }
func (PDPTEDirectory) isPDPTE()                    {}
func (e PDPTEDirectory) Has(f EntryFlag) bool      { return entryHas(e, f) }
func (e *PDPTEDirectory) Set(f EntryFlag, on bool) { entrySet(e, f, on) }
func (e PDPTEDirectory) Frame() uint64             { return getField(e, frame4KB) }
func (e *PDPTEDirectory) SetFrame(pfn uint64)      { setField(e, frame4KB, pfn) }
func (e PDPTEDirectory) Address() uint64           { return uint64(e) & frame4KB.Mask }

// PDE is a raw page-directory entry, split by PS like PDPTE.
type PDE uint64

// PS reports whether the entry maps a 2 MB page.
func (e PDE) PS() bool { return entryHas(e, PageSizeBit) }

// PDEView is one interpretation of a PDE: PDE2MB or PDETable.
type PDEView interface {
	Raw() uint64
	isPDE()
}

// Classify returns the PDE2MB or PDETable view selected by PS.
func (e PDE) Classify() PDEView {
	if e.PS() {
		return PDE2MB(e)
	}
	return PDETable(e)
}

// PDE2MB maps a 2 MB page (SDM Table 4-17).
type PDE2MB uint64

// NewPDE2MB returns a present 2 MB mapping of the page at addr.
func NewPDE2MB(addr uint64, flags EntryFlag) PDE2MB {
	return PDE2MB(addr&frame2MB.Mask) | PDE2MB(flags|Present|PageSizeBit)
}

func (e PDE2MB) Raw() uint64               { return uint64(e) }
func (PDE2MB) isPDE()                      {}
func (e PDE2MB) Has(f EntryFlag) bool      { return entryHas(e, f) }
func (e *PDE2MB) Set(f EntryFlag, on bool) { entrySet(e, f, on) }
func (e PDE2MB) Frame() uint64             { return getField(e, frame2MB) }
func (e *PDE2MB) SetFrame(pfn uint64)      { setField(e, frame2MB, pfn) }
func (e PDE2MB) Address() uint64           { return uint64(e) & frame2MB.Mask }
func (e PDE2MB) ProtectionKey() uint8      { return uint8(getField(e, protectionKey)) }
func (e *PDE2MB) SetProtectionKey(k uint8) { setField(e, protectionKey, uint64(k)) }

// PDETable references a page table (SDM Table 4-18).
type PDETable uint64

// NewPDETable returns a present entry referencing the page table at addr.
func NewPDETable(addr uint64, flags EntryFlag) PDETable {
	return PDETable(addr&frame4KB.Mask) | PDETable((flags|Present)&^PageSizeBit)
}

func (e PDETable) Raw() uint64               { return uint64(e) }
func (PDETable) isPDE()                      {}
func (e PDETable) Has(f EntryFlag) bool      { return entryHas(e, f) }
func (e *PDETable) Set(f EntryFlag, on bool) { entrySet(e, f, on) }
func (e PDETable) Frame() uint64             { return getField(e, frame4KB) }
func (e *PDETable) SetFrame(pfn uint64)      { setField(e, frame4KB, pfn) }
func (e PDETable) Address() uint64           { return uint64(e) & frame4KB.Mask }

// PTE maps a 4 KB page (SDM Table 4-19).
type PTE uint64

func (e PTE) Has(f EntryFlag) bool      { return entryHas(e, f) }
func (e *PTE) Set(f EntryFlag, on bool) { entrySet(e, f, on) }
func (e PTE) Frame() uint64             { return getField(e, frame4KB) }
func (e *PTE) SetFrame(pfn uint64)      { setField(e, frame4KB, pfn) }
func (e PTE) Address() uint64           { return uint64(e) & frame4KB.Mask }
func (e PTE) ProtectionKey() uint8      { return uint8(getField(e, protectionKey)) }
func (e *PTE) SetProtectionKey(k uint8) { setField(e, protectionKey, uint64(k)) }

// LinearAddress is a 64-bit linear address decomposed for a 4-level walk
// (SDM Figures 4-8, 4-9, 4-10). The three page-size views share the
// PML4 and PDPT indices; they differ only in how many low bits are offset.
type LinearAddress uint64

var (
	laOffset4KB = bitField("Offset", 0, 12)
	laOffset2MB = bitField("Offset", 0, 21)
	laOffset1GB = bitField("Offset", 0, 30)
	laPT        = bitField("PTIndex", 12, 9)
	laPD        = bitField("PDIndex", 21, 9)
	laPDPT      = bitField("PDPTIndex", 30, 9)
	laPML4      = bitField("PML4Index", 39, 9)
	laHigh      = reservedField("Reserved0", 48, 16)
)

func (a LinearAddress) PML4Index() uint64 { return getField(a, laPML4) }
func (a LinearAddress) PDPTIndex() uint64 { return getField(a, laPDPT) }
func (a LinearAddress) PDIndex() uint64   { return getField(a, laPD) }
func (a LinearAddress) PTIndex() uint64   { return getField(a, laPT) }

func (a *LinearAddress) SetPML4Index(i uint64) { setField(a, laPML4, i) }
func (a *LinearAddress) SetPDPTIndex(i uint64) { setField(a, laPDPT, i) }
func (a *LinearAddress) SetPDIndex(i uint64)   { setField(a, laPD, i) }
func (a *LinearAddress) SetPTIndex(i uint64)   { setField(a, laPT, i) }

// Offset is the byte offset into a page of the given size.
func (a LinearAddress) Offset(s PageSize) uint64 {
	return s.ByteOffset(uint64(a))
}

// SetOffset replaces the page offset for the given page size.
func (a *LinearAddress) SetOffset(s PageSize, off uint64) {
	*a = LinearAddress(s.Align(uint64(*a)) | s.ByteOffset(off))
}

// Canonical reports whether bits 63:47 are a sign extension of bit 47.
func (a LinearAddress) Canonical() bool {
	top := uint64(a) >> 47
	return top == 0 || top == 0x1ffff
}

var (
	pml4eLayout = &Layout{Name: "PML4E", Size: 8, Fields: []Field{
		flagField("P", Present), flagField("RW", Writable), flagField("US", User),
		flagField("PWT", WriteThrough), flagField("PCD", CacheDisable), flagField("A", Accessed),
		reservedField("Ignored0", 6, 1),
		flagField("PS", PageSizeBit),
		reservedField("Ignored1", 8, 4),
		frame4KB,
		reservedField("Ignored2", 52, 11),
		flagField("XD", ExecuteDisable),
	}}
	pdpte1GBLayout = &Layout{Name: "PDPTE.1GB", Size: 8, Fields: []Field{
		flagField("P", Present), flagField("RW", Writable), flagField("US", User),
		flagField("PWT", WriteThrough), flagField("PCD", CacheDisable), flagField("A", Accessed),
		flagField("D", Dirty), flagField("PS", PageSizeBit), flagField("G", Global),
		reservedField("Ignored0", 9, 3),
		flagField("PAT", LargePAT),
		reservedField("Reserved0", 13, 17),
		frame1GB,
		reservedField("Ignored1", 52, 7),
		protectionKey,
		flagField("XD", ExecuteDisable),
	}}
	pdpteDirectoryLayout = &Layout{Name: "PDPTE", Size: 8, Fields: []Field{
		flagField("P", Present), flagField("RW", Writable), flagField("US", User),
		flagField("PWT", WriteThrough), flagField("PCD", CacheDisable), flagField("A", Accessed),
		reservedField("Ignored0", 6, 1),
		flagField("PS", PageSizeBit),
		reservedField("Ignored1", 8, 4),
		frame4KB,
		reservedField("Ignored2", 52, 11),
		flagField("XD", ExecuteDisable),
	}}
	pde2MBLayout = &Layout{Name: "PDE.2MB", Size: 8, Fields: []Field{
		flagField("P", Present), flagField("RW", Writable), flagField("US", User),
		flagField("PWT", WriteThrough), flagField("PCD", CacheDisable), flagField("A", Accessed),
		flagField("D", Dirty), flagField("PS", PageSizeBit), flagField("G", Global),
		reservedField("Ignored0", 9, 3),
		flagField("PAT", LargePAT),
		reservedField("Reserved0", 13, 8),
		frame2MB,
		reservedField("Ignored1", 52, 7),
		protectionKey,
		flagField("XD", ExecuteDisable),
	}}
	pdeTableLayout = &Layout{Name: "PDE", Size: 8, Fields: []Field{
		flagField("P", Present), flagField("RW", Writable), flagField("US", User),
		flagField("PWT", WriteThrough), flagField("PCD", CacheDisable), flagField("A", Accessed),
		reservedField("Ignored0", 6, 1),
		flagField("PS", PageSizeBit),
		reservedField("Ignored1", 8, 4),
		frame4KB,
		reservedField("Ignored2", 52, 11),
		flagField("XD", ExecuteDisable),
	}}
	pteLayout = &Layout{Name: "PTE", Size: 8, Fields: []Field{
		flagField("P", Present), flagField("RW", Writable), flagField("US", User),
		flagField("PWT", WriteThrough), flagField("PCD", CacheDisable), flagField("A", Accessed),
		flagField("D", Dirty), flagField("PAT", PTEPAT), flagField("G", Global),
		reservedField("Ignored0", 9, 3),
		frame4KB,
		reservedField("Ignored1", 52, 7),
		protectionKey,
		flagField("XD", ExecuteDisable),
	}}
	la4KBLayout = &Layout{Name: "LinearAddress.4KB", Size: 8, Fields: []Field{laOffset4KB, laPT, laPD, laPDPT, laPML4, laHigh}}
	la2MBLayout = &Layout{Name: "LinearAddress.2MB", Size: 8, Fields: []Field{laOffset2MB, laPD, laPDPT, laPML4, laHigh}}
	la1GBLayout = &Layout{Name: "LinearAddress.1GB", Size: 8, Fields: []Field{laOffset1GB, laPDPT, laPML4, laHigh}}
)

func init() {
	registerLayouts(
		pml4eLayout, pdpte1GBLayout, pdpteDirectoryLayout,
		pde2MBLayout, pdeTableLayout, pteLayout,
		la4KBLayout, la2MBLayout, la1GBLayout,
	)
}
