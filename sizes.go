package vtx

import "unsafe"

// Width contracts. Each pair fails to compile unless the type has exactly
// the architectural size.
var (
	_ [unsafe.Sizeof(CR0(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(CR0(0))]struct{}
	_ [unsafe.Sizeof(CR4(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(CR4(0))]struct{}
	_ [unsafe.Sizeof(CR3(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(CR3(0))]struct{}
	_ [unsafe.Sizeof(PML4E(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PML4E(0))]struct{}
	_ [unsafe.Sizeof(PDPTE(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PDPTE(0))]struct{}
	_ [unsafe.Sizeof(PDPTE1GB(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PDPTE1GB(0))]struct{}
	_ [unsafe.Sizeof(PDPTEDirectory(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PDPTEDirectory(0))]struct{}
	_ [unsafe.Sizeof(PDE(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PDE(0))]struct{}
	_ [unsafe.Sizeof(PDE2MB(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PDE2MB(0))]struct{}
	_ [unsafe.Sizeof(PDETable(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PDETable(0))]struct{}
	_ [unsafe.Sizeof(PTE(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PTE(0))]struct{}
	_ [unsafe.Sizeof(LinearAddress(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(LinearAddress(0))]struct{}
	_ [unsafe.Sizeof(PinBasedControls(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(PinBasedControls(0))]struct{}
	_ [unsafe.Sizeof(ProcBasedControls(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(ProcBasedControls(0))]struct{}
	_ [unsafe.Sizeof(ProcBasedControls2(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(ProcBasedControls2(0))]struct{}
	_ [unsafe.Sizeof(ExitControls(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(ExitControls(0))]struct{}
	_ [unsafe.Sizeof(EntryControls(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(EntryControls(0))]struct{}
	_ [unsafe.Sizeof(ExceptionBitmap(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(ExceptionBitmap(0))]struct{}
	_ [unsafe.Sizeof(ComponentEncoding(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(ComponentEncoding(0))]struct{}
	_ [unsafe.Sizeof(ExitReasonField(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(ExitReasonField(0))]struct{}
	_ [unsafe.Sizeof(VMXBasic(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(VMXBasic(0))]struct{}
	_ [unsafe.Sizeof(FeatureControl(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(FeatureControl(0))]struct{}
	_ [unsafe.Sizeof(Capability(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(Capability(0))]struct{}
	_ [unsafe.Sizeof(ExtCapability(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(ExtCapability(0))]struct{}
	_ [unsafe.Sizeof(GlobalCommand(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(GlobalCommand(0))]struct{}
	_ [unsafe.Sizeof(GlobalStatus(0)) - 4]struct{}
	_ [4 - unsafe.Sizeof(GlobalStatus(0))]struct{}
	_ [unsafe.Sizeof(RootTableAddress(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(RootTableAddress(0))]struct{}
	_ [unsafe.Sizeof(IOTLBCommand(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(IOTLBCommand(0))]struct{}
	_ [unsafe.Sizeof(ContextCommand(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(ContextCommand(0))]struct{}
	_ [unsafe.Sizeof(RootEntry{}) - 16]struct{}
	_ [16 - unsafe.Sizeof(RootEntry{})]struct{}
	_ [unsafe.Sizeof(ExtRootEntry{}) - 16]struct{}
	_ [16 - unsafe.Sizeof(ExtRootEntry{})]struct{}
	_ [unsafe.Sizeof(ContextEntry{}) - 16]struct{}
	_ [16 - unsafe.Sizeof(ContextEntry{})]struct{}
	_ [unsafe.Sizeof(ExtContextEntry{}) - 32]struct{}
	_ [32 - unsafe.Sizeof(ExtContextEntry{})]struct{}
	_ [unsafe.Sizeof(PASIDEntry(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PASIDEntry(0))]struct{}
	_ [unsafe.Sizeof(PASIDStateEntry(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(PASIDStateEntry(0))]struct{}
	_ [unsafe.Sizeof(IOBitmaps{}) - 8192]struct{}
	_ [8192 - unsafe.Sizeof(IOBitmaps{})]struct{}
	_ [unsafe.Sizeof(MSRBitmap{}) - 4096]struct{}
	_ [4096 - unsafe.Sizeof(MSRBitmap{})]struct{}
)
