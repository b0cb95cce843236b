// Package vtx provides bit-exact Go types for the x86-64 hardware
// structures a VT-x hypervisor and a VT-d IOMMU driver program: control
// registers, 4-level paging entries, VMX control words, VMCS component
// encodings and the VT-d register and table entry formats.
//
// Every structure is a named integer (or a fixed array of uint64 words for
// the 128- and 256-bit VT-d entries) with typed accessors. The package
// never touches hardware except to read capability MSRs.
//
// # Layouts
//
// Each structure also has a Layout that names every bit exactly once.
// Layouts are checked when the package initializes and can be looked up by
// name to decode raw values:
//
//	l, _ := vtx.LookupLayout("PDE.2MB")
//	for _, f := range l.Decode(0x80000000_0020_0083) {
//		fmt.Printf("%-16s %-6s %#x\n", f.Name, f.Bits(), f.Value)
//	}
//
// # Adjusting controls
//
// VMX control words must be clamped against the capability MSRs before
// they are written to the VMCS:
//
//	msr, err := vtx.OpenMSR(0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer msr.Close()
//
//	proc, err := vtx.AdjustProcBased(msr, vtx.ProcHLTExiting|vtx.ProcActivateSecondary)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The Adjust helpers read the MSR on every call. ReadCapabilities takes a
// one-time snapshot when the caller prefers to read once and clamp many
// times. Snapshot files allow the same on a machine without VMX.
//
// # Error Handling
//
// VM-instruction error codes map to messages through MessageFor. VMXError
// carries a code; its message is sanitized when VTX_ENV=production or
// VTX_DEBUG=false.
//
// # Platform Support
//
// The layouts are portable. Supported and OpenMSR need linux/amd64, and
// OpenMSR also needs the msr kernel module. Elsewhere Supported returns an
// error and OpenMSR returns ErrMSRUnavailable.
package vtx
