package vtx

import (
	"testing"
	"unsafe"
)

func TestLayoutSizesMatchTypes(t *testing.T) {
	tests := []struct {
		layout string
		size   uintptr
	}{
		{"CR0", unsafe.Sizeof(CR0(0))},
		{"CR4", unsafe.Sizeof(CR4(0))},
		{"CR3", unsafe.Sizeof(CR3(0))},
		{"PML4E", unsafe.Sizeof(PML4E(0))},
		{"PDPTE", unsafe.Sizeof(PDPTEDirectory(0))},
		{"PDPTE.1GB", unsafe.Sizeof(PDPTE1GB(0))},
		{"PDE", unsafe.Sizeof(PDETable(0))},
		{"PDE.2MB", unsafe.Sizeof(PDE2MB(0))},
		{"PTE", unsafe.Sizeof(PTE(0))},
		{"LinearAddress.4KB", unsafe.Sizeof(LinearAddress(0))},
		{"PinBasedControls", unsafe.Sizeof(PinBasedControls(0))},
		{"ProcBasedControls", unsafe.Sizeof(ProcBasedControls(0))},
		{"ProcBasedControls2", unsafe.Sizeof(ProcBasedControls2(0))},
		{"ExitControls", unsafe.Sizeof(ExitControls(0))},
		{"EntryControls", unsafe.Sizeof(EntryControls(0))},
		{"ExceptionBitmap", unsafe.Sizeof(ExceptionBitmap(0))},
		{"ComponentEncoding", unsafe.Sizeof(ComponentEncoding(0))},
		{"ExitReasonField", unsafe.Sizeof(ExitReasonField(0))},
		{"IA32_VMX_BASIC", unsafe.Sizeof(VMXBasic(0))},
		{"IA32_FEATURE_CONTROL", unsafe.Sizeof(FeatureControl(0))},
		{"VTd.CAP", unsafe.Sizeof(Capability(0))},
		{"VTd.ECAP", unsafe.Sizeof(ExtCapability(0))},
		{"VTd.GCMD", unsafe.Sizeof(GlobalCommand(0))},
		{"VTd.GSTS", unsafe.Sizeof(GlobalStatus(0))},
		{"VTd.RTADDR", unsafe.Sizeof(RootTableAddress(0))},
		{"VTd.IOTLB", unsafe.Sizeof(IOTLBCommand(0))},
		{"VTd.CCMD", unsafe.Sizeof(ContextCommand(0))},
		{"VTd.RootEntry", unsafe.Sizeof(RootEntry{})},
		{"VTd.ExtRootEntry", unsafe.Sizeof(ExtRootEntry{})},
		{"VTd.ContextEntry", unsafe.Sizeof(ContextEntry{})},
		{"VTd.ExtContextEntry", unsafe.Sizeof(ExtContextEntry{})},
		{"VTd.PASIDEntry", unsafe.Sizeof(PASIDEntry(0))},
		{"VTd.PASIDStateEntry", unsafe.Sizeof(PASIDStateEntry(0))},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			l, ok := LookupLayout(tt.layout)
			if !ok {
				t.Fatalf("layout %s not registered", tt.layout)
			}
			if uintptr(l.Size) != tt.size {
				t.Errorf("layout size %d, type size %d", l.Size, tt.size)
			}
		})
	}
}
