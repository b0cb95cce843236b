package vtx

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ComponentEncoding is the 32-bit operand VMREAD and VMWRITE take to name a
// VMCS field (SDM Vol 3C, Table 24-21).
type ComponentEncoding uint32

// AccessType selects the full field or, for 64-bit fields, its high half.
type AccessType uint8

const (
	AccessFull AccessType = 0
	AccessHigh AccessType = 1
)

// FieldType is the class of state a VMCS field holds.
type FieldType uint8

const (
	FieldControl  FieldType = 0
	FieldReadOnly FieldType = 1 // VM-exit information
	FieldGuest    FieldType = 2
	FieldHost     FieldType = 3
)

var fieldTypeNames = [...]string{"control", "read-only", "guest-state", "host-state"}

func (t FieldType) String() string { return fieldTypeNames[t&3] }

// FieldWidth is the size class of a VMCS field.
type FieldWidth uint8

const (
	Width16      FieldWidth = 0
	Width64      FieldWidth = 1
	Width32      FieldWidth = 2
	WidthNatural FieldWidth = 3
)

var fieldWidthNames = [...]string{"16-bit", "64-bit", "32-bit", "natural-width"}

func (w FieldWidth) String() string { return fieldWidthNames[w&3] }

var (
	encAccessType = bitField("AccessType", 0, 1)
	encIndex      = bitField("Index", 1, 9)
	encType       = bitField("Type", 10, 2)
	encWidth      = bitField("Width", 13, 2)
)

func (e ComponentEncoding) AccessType() AccessType { return AccessType(getField(e, encAccessType)) }
func (e ComponentEncoding) Index() uint16          { return uint16(getField(e, encIndex)) }
func (e ComponentEncoding) Type() FieldType        { return FieldType(getField(e, encType)) }
func (e ComponentEncoding) Width() FieldWidth      { return FieldWidth(getField(e, encWidth)) }

func (e *ComponentEncoding) SetAccessType(a AccessType) { setField(e, encAccessType, uint64(a)) }
func (e *ComponentEncoding) SetIndex(i uint16)          { setField(e, encIndex, uint64(i)) }
func (e *ComponentEncoding) SetType(t FieldType)        { setField(e, encType, uint64(t)) }
func (e *ComponentEncoding) SetWidth(w FieldWidth)      { setField(e, encWidth, uint64(w)) }

// Encode builds a component encoding with the reserved bits clear.
func Encode(w FieldWidth, t FieldType, index uint16, a AccessType) ComponentEncoding {
	var e ComponentEncoding
	e.SetWidth(w)
	e.SetType(t)
	e.SetIndex(index)
	e.SetAccessType(a)
	return e
}

// Valid reports whether the reserved bits are clear and the high access
// type is only used on a 64-bit field.
func (e ComponentEncoding) Valid() bool {
	if uint32(e)&^uint32(encAccessType.Mask|encIndex.Mask|encType.Mask|encWidth.Mask) != 0 {
		return false
	}
	return e.AccessType() == AccessFull || e.Width() == Width64
}

func (e ComponentEncoding) String() string {
	s := fmt.Sprintf("%s %s index=%d", e.Width(), e.Type(), e.Index())
	if e.AccessType() == AccessHigh {
		s += " high"
	}
	return s
}

var componentEncodingLayout = &Layout{Name: "ComponentEncoding", Size: 4, Fields: []Field{
	encAccessType,
	encIndex,
	encType,
	reservedField("Reserved0", 12, 1),
	encWidth,
	reservedField("Reserved1", 15, 17),
}}

// VMCSField names a VMCS field by its component encoding (SDM Vol 3D,
// Appendix B).
type VMCSField uint32

// Encoding returns the field's component encoding.
func (f VMCSField) Encoding() ComponentEncoding { return ComponentEncoding(f) }

func (f VMCSField) String() string {
	if s, ok := vmcsFieldNames[f]; ok {
		return s
	}
	return fmt.Sprintf("VMCSField(%#x)", uint32(f))
}

// ParseVMCSField accepts a field name such as "GUEST_RIP" (any case) or a
// numeric encoding such as "0x681e".
func ParseVMCSField(s string) (VMCSField, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for f, n := range vmcsFieldNames {
		if n == name {
			return f, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("vtx: unknown VMCS field %q", s)
	}
	return VMCSField(v), nil
}

// VMCSFields returns every named field in encoding order.
func VMCSFields() []VMCSField {
	out := make([]VMCSField, 0, len(vmcsFieldNames))
	for f := range vmcsFieldNames {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

const (
	// Encodings for 16-Bit Control Fields
	VMCSVPID                         VMCSField = 0x00000000
	VMCSPostedIntrNotificationVector VMCSField = 0x00000002
	VMCSEPTPIndex                    VMCSField = 0x00000004

	// Encodings for 16-Bit Guest-State Fields
	VMCSGuestESSelector   VMCSField = 0x00000800
	VMCSGuestCSSelector   VMCSField = 0x00000802
	VMCSGuestSSSelector   VMCSField = 0x00000804
	VMCSGuestDSSelector   VMCSField = 0x00000806
	VMCSGuestFSSelector   VMCSField = 0x00000808
	VMCSGuestGSSelector   VMCSField = 0x0000080a
	VMCSGuestLDTRSelector VMCSField = 0x0000080c
	VMCSGuestTRSelector   VMCSField = 0x0000080e
	VMCSGuestIntrStatus   VMCSField = 0x00000810
	VMCSGuestPMLIndex     VMCSField = 0x00000812

	// Encodings for 16-Bit Host-State Fields
	VMCSHostESSelector VMCSField = 0x00000c00
	VMCSHostCSSelector VMCSField = 0x00000c02
	VMCSHostSSSelector VMCSField = 0x00000c04
	VMCSHostDSSelector VMCSField = 0x00000c06
	VMCSHostFSSelector VMCSField = 0x00000c08
	VMCSHostGSSelector VMCSField = 0x00000c0a
	VMCSHostTRSelector VMCSField = 0x00000c0c

	// Encodings for 64-Bit Control Fields
	VMCSIOBitmapAFull           VMCSField = 0x00002000
	VMCSIOBitmapAHigh           VMCSField = 0x00002001
	VMCSIOBitmapBFull           VMCSField = 0x00002002
	VMCSIOBitmapBHigh           VMCSField = 0x00002003
	VMCSMSRBitmapFull           VMCSField = 0x00002004
	VMCSMSRBitmapHigh           VMCSField = 0x00002005
	VMCSVMExitMSRStoreAddrFull  VMCSField = 0x00002006
	VMCSVMExitMSRStoreAddrHigh  VMCSField = 0x00002007
	VMCSVMExitMSRLoadAddrFull   VMCSField = 0x00002008
	VMCSVMExitMSRLoadAddrHigh   VMCSField = 0x00002009
	VMCSVMEntryMSRLoadAddrFull  VMCSField = 0x0000200a
	VMCSVMEntryMSRLoadAddrHigh  VMCSField = 0x0000200b
	VMCSExecutiveVMCSPtrFull    VMCSField = 0x0000200c
	VMCSExecutiveVMCSPtrHigh    VMCSField = 0x0000200d
	VMCSPMLAddressFull          VMCSField = 0x0000200e
	VMCSPMLAddressHigh          VMCSField = 0x0000200f
	VMCSTSCOffsetFull           VMCSField = 0x00002010
	VMCSTSCOffsetHigh           VMCSField = 0x00002011
	VMCSVirtualAPICPageAddrFull VMCSField = 0x00002012
	VMCSVirtualAPICPageAddrHigh VMCSField = 0x00002013
	VMCSAPICAccessAddrFull      VMCSField = 0x00002014
	VMCSAPICAccessAddrHigh      VMCSField = 0x00002015
	VMCSPIDescAddrFull          VMCSField = 0x00002016
	VMCSPIDescAddrHigh          VMCSField = 0x00002017
	VMCSVMFunctionControlFull   VMCSField = 0x00002018
	VMCSVMFunctionControlHigh   VMCSField = 0x00002019
	VMCSEPTPointerFull          VMCSField = 0x0000201a
	VMCSEPTPointerHigh          VMCSField = 0x0000201b
	VMCSEOIExitBitmap0Full      VMCSField = 0x0000201c
	VMCSEOIExitBitmap0High      VMCSField = 0x0000201d
	VMCSEPTPListAddrFull        VMCSField = 0x00002024
	VMCSEPTPListAddrHigh        VMCSField = 0x00002025
	VMCSVMREADBitmapFull        VMCSField = 0x00002026
	VMCSVMREADBitmapHigh        VMCSField = 0x00002027
	VMCSVMWRITEBitmapFull       VMCSField = 0x00002028
	VMCSVMWRITEBitmapHigh       VMCSField = 0x00002029
	VMCSVirtExceptionInfoFull   VMCSField = 0x0000202a
	VMCSVirtExceptionInfoHigh   VMCSField = 0x0000202b
	VMCSXSSExitBitmapFull       VMCSField = 0x0000202c
	VMCSXSSExitBitmapHigh       VMCSField = 0x0000202d
	VMCSTSCMultiplierFull       VMCSField = 0x00002032
	VMCSTSCMultiplierHigh       VMCSField = 0x00002033

	// Encodings for 64-Bit Read-Only Data Fields
	VMCSGuestPhysicalAddressFull VMCSField = 0x00002400
	VMCSGuestPhysicalAddressHigh VMCSField = 0x00002401

	// Encodings for 64-Bit Guest-State Fields
	VMCSLinkPointerFull         VMCSField = 0x00002800
	VMCSLinkPointerHigh         VMCSField = 0x00002801
	VMCSGuestIA32DebugCtlFull   VMCSField = 0x00002802
	VMCSGuestIA32DebugCtlHigh   VMCSField = 0x00002803
	VMCSGuestPATFull            VMCSField = 0x00002804
	VMCSGuestPATHigh            VMCSField = 0x00002805
	VMCSGuestEFERFull           VMCSField = 0x00002806
	VMCSGuestEFERHigh           VMCSField = 0x00002807
	VMCSGuestPerfGlobalCtrlFull VMCSField = 0x00002808
	VMCSGuestPerfGlobalCtrlHigh VMCSField = 0x00002809
	VMCSGuestPDPTE0Full         VMCSField = 0x0000280a
	VMCSGuestPDPTE0High         VMCSField = 0x0000280b
	VMCSGuestPDPTE1Full         VMCSField = 0x0000280c
	VMCSGuestPDPTE1High         VMCSField = 0x0000280d
	VMCSGuestPDPTE2Full         VMCSField = 0x0000280e
	VMCSGuestPDPTE2High         VMCSField = 0x0000280f
	VMCSGuestPDPTE3Full         VMCSField = 0x00002810
	VMCSGuestPDPTE3High         VMCSField = 0x00002811
	VMCSGuestBNDCFGSFull        VMCSField = 0x00002812
	VMCSGuestBNDCFGSHigh        VMCSField = 0x00002813

	// Encodings for 64-Bit Host-State Fields
	VMCSHostPATFull            VMCSField = 0x00002c00
	VMCSHostPATHigh            VMCSField = 0x00002c01
	VMCSHostEFERFull           VMCSField = 0x00002c02
	VMCSHostEFERHigh           VMCSField = 0x00002c03
	VMCSHostPerfGlobalCtrlFull VMCSField = 0x00002c04
	VMCSHostPerfGlobalCtrlHigh VMCSField = 0x00002c05

	// Encodings for 32-Bit Control Fields
	VMCSPinBasedVMExecControl     VMCSField = 0x00004000
	VMCSCPUBasedVMExecControl     VMCSField = 0x00004002
	VMCSExceptionBitmap           VMCSField = 0x00004004
	VMCSPageFaultErrorCodeMask    VMCSField = 0x00004006
	VMCSPageFaultErrorCodeMatch   VMCSField = 0x00004008
	VMCSCR3TargetCount            VMCSField = 0x0000400a
	VMCSVMExitControls            VMCSField = 0x0000400c
	VMCSVMExitMSRStoreCount       VMCSField = 0x0000400e
	VMCSVMExitMSRLoadCount        VMCSField = 0x00004010
	VMCSVMEntryControls           VMCSField = 0x00004012
	VMCSVMEntryMSRLoadCount       VMCSField = 0x00004014
	VMCSVMEntryIntrInfo           VMCSField = 0x00004016
	VMCSVMEntryExceptionErrorCode VMCSField = 0x00004018
	VMCSVMEntryInstructionLen     VMCSField = 0x0000401a
	VMCSTPRThreshold              VMCSField = 0x0000401c
	VMCSSecondaryVMExecControl    VMCSField = 0x0000401e
	VMCSPLEGap                    VMCSField = 0x00004020
	VMCSPLEWindow                 VMCSField = 0x00004022

	// Encodings for 32-Bit Read-Only Data Fields
	VMCSVMInstructionError    VMCSField = 0x00004400
	VMCSVMExitReason          VMCSField = 0x00004402
	VMCSVMExitIntrInfo        VMCSField = 0x00004404
	VMCSVMExitIntrErrorCode   VMCSField = 0x00004406
	VMCSIDTVectoringInfo      VMCSField = 0x00004408
	VMCSIDTVectoringErrorCode VMCSField = 0x0000440a
	VMCSVMExitInstructionLen  VMCSField = 0x0000440c
	VMCSVMXInstructionInfo    VMCSField = 0x0000440e

	// Encodings for 32-Bit Guest-State Fields
	VMCSGuestESLimit              VMCSField = 0x00004800
	VMCSGuestCSLimit              VMCSField = 0x00004802
	VMCSGuestSSLimit              VMCSField = 0x00004804
	VMCSGuestDSLimit              VMCSField = 0x00004806
	VMCSGuestFSLimit              VMCSField = 0x00004808
	VMCSGuestGSLimit              VMCSField = 0x0000480a
	VMCSGuestLDTRLimit            VMCSField = 0x0000480c
	VMCSGuestTRLimit              VMCSField = 0x0000480e
	VMCSGuestGDTRLimit            VMCSField = 0x00004810
	VMCSGuestIDTRLimit            VMCSField = 0x00004812
	VMCSGuestESARBytes            VMCSField = 0x00004814
	VMCSGuestCSARBytes            VMCSField = 0x00004816
	VMCSGuestSSARBytes            VMCSField = 0x00004818
	VMCSGuestDSARBytes            VMCSField = 0x0000481a
	VMCSGuestFSARBytes            VMCSField = 0x0000481c
	VMCSGuestGSARBytes            VMCSField = 0x0000481e
	VMCSGuestLDTRARBytes          VMCSField = 0x00004820
	VMCSGuestTRARBytes            VMCSField = 0x00004822
	VMCSGuestInterruptibilityInfo VMCSField = 0x00004824
	VMCSGuestActivityState        VMCSField = 0x00004826
	VMCSGuestSMBASE               VMCSField = 0x00004828
	VMCSGuestSysenterCS           VMCSField = 0x0000482a
	VMCSGuestPreemptionTimer      VMCSField = 0x0000482e

	// Encoding for 32-Bit Host-State Field
	VMCSHostSysenterCS VMCSField = 0x00004c00

	// Encodings for Natural-Width Control Fields
	VMCSCR0GuestHostMask VMCSField = 0x00006000
	VMCSCR4GuestHostMask VMCSField = 0x00006002
	VMCSCR0ReadShadow    VMCSField = 0x00006004
	VMCSCR4ReadShadow    VMCSField = 0x00006006
	VMCSCR3TargetValue0  VMCSField = 0x00006008
	VMCSCR3TargetValue1  VMCSField = 0x0000600a
	VMCSCR3TargetValue2  VMCSField = 0x0000600c
	VMCSCR3TargetValue3  VMCSField = 0x0000600e

	// Encodings for Natural-Width Read-Only Data Fields
	VMCSExitQualification  VMCSField = 0x00006400
	VMCSIORCX              VMCSField = 0x00006402
	VMCSIORSI              VMCSField = 0x00006404
	VMCSIORDI              VMCSField = 0x00006406
	VMCSIORIP              VMCSField = 0x00006408
	VMCSGuestLinearAddress VMCSField = 0x0000640a

	// Encodings for Natural-Width Guest-State Fields
	VMCSGuestCR0                    VMCSField = 0x00006800
	VMCSGuestCR3                    VMCSField = 0x00006802
	VMCSGuestCR4                    VMCSField = 0x00006804
	VMCSGuestESBase                 VMCSField = 0x00006806
	VMCSGuestCSBase                 VMCSField = 0x00006808
	VMCSGuestSSBase                 VMCSField = 0x0000680a
	VMCSGuestDSBase                 VMCSField = 0x0000680c
	VMCSGuestFSBase                 VMCSField = 0x0000680e
	VMCSGuestGSBase                 VMCSField = 0x00006810
	VMCSGuestLDTRBase               VMCSField = 0x00006812
	VMCSGuestTRBase                 VMCSField = 0x00006814
	VMCSGuestGDTRBase               VMCSField = 0x00006816
	VMCSGuestIDTRBase               VMCSField = 0x00006818
	VMCSGuestDR7                    VMCSField = 0x0000681a
	VMCSGuestRSP                    VMCSField = 0x0000681c
	VMCSGuestRIP                    VMCSField = 0x0000681e
	VMCSGuestRFLAGS                 VMCSField = 0x00006820
	VMCSGuestPendingDebugExceptions VMCSField = 0x00006822
	VMCSGuestSysenterESP            VMCSField = 0x00006824
	VMCSGuestSysenterEIP            VMCSField = 0x00006826

	// Encodings for Natural-Width Host-State Fields
	VMCSHostCR0         VMCSField = 0x00006c00
	VMCSHostCR3         VMCSField = 0x00006c02
	VMCSHostCR4         VMCSField = 0x00006c04
	VMCSHostFSBase      VMCSField = 0x00006c06
	VMCSHostGSBase      VMCSField = 0x00006c08
	VMCSHostTRBase      VMCSField = 0x00006c0a
	VMCSHostGDTRBase    VMCSField = 0x00006c0c
	VMCSHostIDTRBase    VMCSField = 0x00006c0e
	VMCSHostSysenterESP VMCSField = 0x00006c10
	VMCSHostSysenterEIP VMCSField = 0x00006c12
	VMCSHostRSP         VMCSField = 0x00006c14
	VMCSHostRIP         VMCSField = 0x00006c16
)

var vmcsFieldNames = map[VMCSField]string{
	VMCSVPID:                         "VPID",
	VMCSPostedIntrNotificationVector: "POSTED_INTR_NOTIFICATION_VECTOR",
	VMCSEPTPIndex:                    "EPTP_INDEX",
	VMCSGuestESSelector:              "GUEST_ES_SELECTOR",
	VMCSGuestCSSelector:              "GUEST_CS_SELECTOR",
	VMCSGuestSSSelector:              "GUEST_SS_SELECTOR",
	VMCSGuestDSSelector:              "GUEST_DS_SELECTOR",
	VMCSGuestFSSelector:              "GUEST_FS_SELECTOR",
	VMCSGuestGSSelector:              "GUEST_GS_SELECTOR",
	VMCSGuestLDTRSelector:            "GUEST_LDTR_SELECTOR",
	VMCSGuestTRSelector:              "GUEST_TR_SELECTOR",
	VMCSGuestIntrStatus:              "GUEST_INTR_STATUS",
	VMCSGuestPMLIndex:                "GUEST_PML_INDEX",
	VMCSHostESSelector:               "HOST_ES_SELECTOR",
	VMCSHostCSSelector:               "HOST_CS_SELECTOR",
	VMCSHostSSSelector:               "HOST_SS_SELECTOR",
	VMCSHostDSSelector:               "HOST_DS_SELECTOR",
	VMCSHostFSSelector:               "HOST_FS_SELECTOR",
	VMCSHostGSSelector:               "HOST_GS_SELECTOR",
	VMCSHostTRSelector:               "HOST_TR_SELECTOR",
	VMCSIOBitmapAFull:                "IO_BITMAP_A_FULL",
	VMCSIOBitmapAHigh:                "IO_BITMAP_A_HIGH",
	VMCSIOBitmapBFull:                "IO_BITMAP_B_FULL",
	VMCSIOBitmapBHigh:                "IO_BITMAP_B_HIGH",
	VMCSMSRBitmapFull:                "MSR_BITMAP_FULL",
	VMCSMSRBitmapHigh:                "MSR_BITMAP_HIGH",
	VMCSVMExitMSRStoreAddrFull:       "VM_EXIT_MSR_STORE_ADDR_FULL",
	VMCSVMExitMSRStoreAddrHigh:       "VM_EXIT_MSR_STORE_ADDR_HIGH",
	VMCSVMExitMSRLoadAddrFull:        "VM_EXIT_MSR_LOAD_ADDR_FULL",
	VMCSVMExitMSRLoadAddrHigh:        "VM_EXIT_MSR_LOAD_ADDR_HIGH",
	VMCSVMEntryMSRLoadAddrFull:       "VM_ENTRY_MSR_LOAD_ADDR_FULL",
	VMCSVMEntryMSRLoadAddrHigh:       "VM_ENTRY_MSR_LOAD_ADDR_HIGH",
	VMCSExecutiveVMCSPtrFull:         "EXECUTIVE_VMCS_PTR_FULL",
	VMCSExecutiveVMCSPtrHigh:         "EXECUTIVE_VMCS_PTR_HIGH",
	VMCSPMLAddressFull:               "PML_ADDRESS_FULL",
	VMCSPMLAddressHigh:               "PML_ADDRESS_HIGH",
	VMCSTSCOffsetFull:                "TSC_OFFSET_FULL",
	VMCSTSCOffsetHigh:                "TSC_OFFSET_HIGH",
	VMCSVirtualAPICPageAddrFull:      "VIRTUAL_APIC_PAGE_ADDR_FULL",
	VMCSVirtualAPICPageAddrHigh:      "VIRTUAL_APIC_PAGE_ADDR_HIGH",
	VMCSAPICAccessAddrFull:           "APIC_ACCESS_ADDR_FULL",
	VMCSAPICAccessAddrHigh:           "APIC_ACCESS_ADDR_HIGH",
	VMCSPIDescAddrFull:               "PI_DESC_ADDR_FULL",
	VMCSPIDescAddrHigh:               "PI_DESC_ADDR_HIGH",
	VMCSVMFunctionControlFull:        "VM_FUNCTION_CONTROL_FULL",
	VMCSVMFunctionControlHigh:        "VM_FUNCTION_CONTROL_HIGH",
	VMCSEPTPointerFull:               "EPT_POINTER_FULL",
	VMCSEPTPointerHigh:               "EPT_POINTER_HIGH",
	VMCSEOIExitBitmap0Full:           "EOI_EXIT_BITMAP0_FULL",
	VMCSEOIExitBitmap0High:           "EOI_EXIT_BITMAP0_HIGH",
	VMCSEPTPListAddrFull:             "EPTP_LIST_ADDR_FULL",
	VMCSEPTPListAddrHigh:             "EPTP_LIST_ADDR_HIGH",
	VMCSVMREADBitmapFull:             "VMREAD_BITMAP_FULL",
	VMCSVMREADBitmapHigh:             "VMREAD_BITMAP_HIGH",
	VMCSVMWRITEBitmapFull:            "VMWRITE_BITMAP_FULL",
	VMCSVMWRITEBitmapHigh:            "VMWRITE_BITMAP_HIGH",
	VMCSVirtExceptionInfoFull:        "VIRT_EXCEPTION_INFO_FULL",
	VMCSVirtExceptionInfoHigh:        "VIRT_EXCEPTION_INFO_HIGH",
	VMCSXSSExitBitmapFull:            "XSS_EXIT_BITMAP_FULL",
	VMCSXSSExitBitmapHigh:            "XSS_EXIT_BITMAP_HIGH",
	VMCSTSCMultiplierFull:            "TSC_MULTIPLIER_FULL",
	VMCSTSCMultiplierHigh:            "TSC_MULTIPLIER_HIGH",
	VMCSGuestPhysicalAddressFull:     "GUEST_PHYSICAL_ADDRESS_FULL",
	VMCSGuestPhysicalAddressHigh:     "GUEST_PHYSICAL_ADDRESS_HIGH",
	VMCSLinkPointerFull:              "VMCS_LINK_POINTER_FULL",
	VMCSLinkPointerHigh:              "VMCS_LINK_POINTER_HIGH",
	VMCSGuestIA32DebugCtlFull:        "GUEST_IA32_DEBUGCTL_FULL",
	VMCSGuestIA32DebugCtlHigh:        "GUEST_IA32_DEBUGCTL_HIGH",
	VMCSGuestPATFull:                 "GUEST_PAT_FULL",
	VMCSGuestPATHigh:                 "GUEST_PAT_HIGH",
	VMCSGuestEFERFull:                "GUEST_EFER_FULL",
	VMCSGuestEFERHigh:                "GUEST_EFER_HIGH",
	VMCSGuestPerfGlobalCtrlFull:      "GUEST_PERF_GLOBAL_CTRL_FULL",
	VMCSGuestPerfGlobalCtrlHigh:      "GUEST_PERF_GLOBAL_CTRL_HIGH",
	VMCSGuestPDPTE0Full:              "GUEST_PDPTE0_FULL",
	VMCSGuestPDPTE0High:              "GUEST_PDPTE0_HIGH",
	VMCSGuestPDPTE1Full:              "GUEST_PDPTE1_FULL",
	VMCSGuestPDPTE1High:              "GUEST_PDPTE1_HIGH",
	VMCSGuestPDPTE2Full:              "GUEST_PDPTE2_FULL",
	VMCSGuestPDPTE2High:              "GUEST_PDPTE2_HIGH",
	VMCSGuestPDPTE3Full:              "GUEST_PDPTE3_FULL",
	VMCSGuestPDPTE3High:              "GUEST_PDPTE3_HIGH",
	VMCSGuestBNDCFGSFull:             "GUEST_BNDCFGS_FULL",
	VMCSGuestBNDCFGSHigh:             "GUEST_BNDCFGS_HIGH",
	VMCSHostPATFull:                  "HOST_PAT_FULL",
	VMCSHostPATHigh:                  "HOST_PAT_HIGH",
	VMCSHostEFERFull:                 "HOST_EFER_FULL",
	VMCSHostEFERHigh:                 "HOST_EFER_HIGH",
	VMCSHostPerfGlobalCtrlFull:       "HOST_PERF_GLOBAL_CTRL_FULL",
	VMCSHostPerfGlobalCtrlHigh:       "HOST_PERF_GLOBAL_CTRL_HIGH",
	VMCSPinBasedVMExecControl:        "PIN_BASED_VM_EXEC_CONTROL",
	VMCSCPUBasedVMExecControl:        "CPU_BASED_VM_EXEC_CONTROL",
	VMCSExceptionBitmap:              "EXCEPTION_BITMAP",
	VMCSPageFaultErrorCodeMask:       "PAGE_FAULT_ERROR_CODE_MASK",
	VMCSPageFaultErrorCodeMatch:      "PAGE_FAULT_ERROR_CODE_MATCH",
	VMCSCR3TargetCount:               "CR3_TARGET_COUNT",
	VMCSVMExitControls:               "VM_EXIT_CONTROLS",
	VMCSVMExitMSRStoreCount:          "VM_EXIT_MSR_STORE_COUNT",
	VMCSVMExitMSRLoadCount:           "VM_EXIT_MSR_LOAD_COUNT",
	VMCSVMEntryControls:              "VM_ENTRY_CONTROLS",
	VMCSVMEntryMSRLoadCount:          "VM_ENTRY_MSR_LOAD_COUNT",
	VMCSVMEntryIntrInfo:              "VM_ENTRY_INTR_INFO",
	VMCSVMEntryExceptionErrorCode:    "VM_ENTRY_EXCEPTION_ERROR_CODE",
	VMCSVMEntryInstructionLen:        "VM_ENTRY_INSTRUCTION_LEN",
	VMCSTPRThreshold:                 "TPR_THRESHOLD",
	VMCSSecondaryVMExecControl:       "SECONDARY_VM_EXEC_CONTROL",
	VMCSPLEGap:                       "PLE_GAP",
	VMCSPLEWindow:                    "PLE_WINDOW",
	VMCSVMInstructionError:           "VM_INSTRUCTION_ERROR",
	VMCSVMExitReason:                 "VM_EXIT_REASON",
	VMCSVMExitIntrInfo:               "VM_EXIT_INTR_INFO",
	VMCSVMExitIntrErrorCode:          "VM_EXIT_INTR_ERROR_CODE",
	VMCSIDTVectoringInfo:             "IDT_VECTORING_INFO",
	VMCSIDTVectoringErrorCode:        "IDT_VECTORING_ERROR_CODE",
	VMCSVMExitInstructionLen:         "VM_EXIT_INSTRUCTION_LEN",
	VMCSVMXInstructionInfo:           "VMX_INSTRUCTION_INFO",
	VMCSGuestESLimit:                 "GUEST_ES_LIMIT",
	VMCSGuestCSLimit:                 "GUEST_CS_LIMIT",
	VMCSGuestSSLimit:                 "GUEST_SS_LIMIT",
	VMCSGuestDSLimit:                 "GUEST_DS_LIMIT",
	VMCSGuestFSLimit:                 "GUEST_FS_LIMIT",
	VMCSGuestGSLimit:                 "GUEST_GS_LIMIT",
	VMCSGuestLDTRLimit:               "GUEST_LDTR_LIMIT",
	VMCSGuestTRLimit:                 "GUEST_TR_LIMIT",
	VMCSGuestGDTRLimit:               "GUEST_GDTR_LIMIT",
	VMCSGuestIDTRLimit:               "GUEST_IDTR_LIMIT",
	VMCSGuestESARBytes:               "GUEST_ES_AR_BYTES",
	VMCSGuestCSARBytes:               "GUEST_CS_AR_BYTES",
	VMCSGuestSSARBytes:               "GUEST_SS_AR_BYTES",
	VMCSGuestDSARBytes:               "GUEST_DS_AR_BYTES",
	VMCSGuestFSARBytes:               "GUEST_FS_AR_BYTES",
	VMCSGuestGSARBytes:               "GUEST_GS_AR_BYTES",
	VMCSGuestLDTRARBytes:             "GUEST_LDTR_AR_BYTES",
	VMCSGuestTRARBytes:               "GUEST_TR_AR_BYTES",
	VMCSGuestInterruptibilityInfo:    "GUEST_INTERRUPTIBILITY_INFO",
	VMCSGuestActivityState:           "GUEST_ACTIVITY_STATE",
	VMCSGuestSMBASE:                  "GUEST_SMBASE",
	VMCSGuestSysenterCS:              "GUEST_SYSENTER_CS",
	VMCSGuestPreemptionTimer:         "GUEST_PREEMPTION_TIMER",
	VMCSHostSysenterCS:               "HOST_SYSENTER_CS",
	VMCSCR0GuestHostMask:             "CR0_GUEST_HOST_MASK",
	VMCSCR4GuestHostMask:             "CR4_GUEST_HOST_MASK",
	VMCSCR0ReadShadow:                "CR0_READ_SHADOW",
	VMCSCR4ReadShadow:                "CR4_READ_SHADOW",
	VMCSCR3TargetValue0:              "CR3_TARGET_VALUE0",
	VMCSCR3TargetValue1:              "CR3_TARGET_VALUE1",
	VMCSCR3TargetValue2:              "CR3_TARGET_VALUE2",
	VMCSCR3TargetValue3:              "CR3_TARGET_VALUE3",
	VMCSExitQualification:            "EXIT_QUALIFICATION",
	VMCSIORCX:                        "IO_RCX",
	VMCSIORSI:                        "IO_RSI",
	VMCSIORDI:                        "IO_RDI",
	VMCSIORIP:                        "IO_RIP",
	VMCSGuestLinearAddress:           "GUEST_LINEAR_ADDRESS",
	VMCSGuestCR0:                     "GUEST_CR0",
	VMCSGuestCR3:                     "GUEST_CR3",
	VMCSGuestCR4:                     "GUEST_CR4",
	VMCSGuestESBase:                  "GUEST_ES_BASE",
	VMCSGuestCSBase:                  "GUEST_CS_BASE",
	VMCSGuestSSBase:                  "GUEST_SS_BASE",
	VMCSGuestDSBase:                  "GUEST_DS_BASE",
	VMCSGuestFSBase:                  "GUEST_FS_BASE",
	VMCSGuestGSBase:                  "GUEST_GS_BASE",
	VMCSGuestLDTRBase:                "GUEST_LDTR_BASE",
	VMCSGuestTRBase:                  "GUEST_TR_BASE",
	VMCSGuestGDTRBase:                "GUEST_GDTR_BASE",
	VMCSGuestIDTRBase:                "GUEST_IDTR_BASE",
	VMCSGuestDR7:                     "GUEST_DR7",
	VMCSGuestRSP:                     "GUEST_RSP",
	VMCSGuestRIP:                     "GUEST_RIP",
	VMCSGuestRFLAGS:                  "GUEST_RFLAGS",
	VMCSGuestPendingDebugExceptions:  "GUEST_PENDING_DBG_EXCEPTIONS",
	VMCSGuestSysenterESP:             "GUEST_SYSENTER_ESP",
	VMCSGuestSysenterEIP:             "GUEST_SYSENTER_EIP",
	VMCSHostCR0:                      "HOST_CR0",
	VMCSHostCR3:                      "HOST_CR3",
	VMCSHostCR4:                      "HOST_CR4",
	VMCSHostFSBase:                   "HOST_FS_BASE",
	VMCSHostGSBase:                   "HOST_GS_BASE",
	VMCSHostTRBase:                   "HOST_TR_BASE",
	VMCSHostGDTRBase:                 "HOST_GDTR_BASE",
	VMCSHostIDTRBase:                 "HOST_IDTR_BASE",
	VMCSHostSysenterESP:              "HOST_SYSENTER_ESP",
	VMCSHostSysenterEIP:              "HOST_SYSENTER_EIP",
	VMCSHostRSP:                      "HOST_RSP",
	VMCSHostRIP:                      "HOST_RIP",
}

// ExitReason is the basic exit reason, bits 15:0 of the exit-reason field
// (SDM Vol 3D, Appendix C).
type ExitReason uint16

const (
	ExitReasonExceptionNMI              ExitReason = 0
	ExitReasonExternalInterrupt         ExitReason = 1
	ExitReasonTripleFault               ExitReason = 2
	ExitReasonINIT                      ExitReason = 3
	ExitReasonSIPI                      ExitReason = 4
	ExitReasonIOSMI                     ExitReason = 5
	ExitReasonOtherSMI                  ExitReason = 6
	ExitReasonPendingVirtIntr           ExitReason = 7
	ExitReasonPendingVirtNMI            ExitReason = 8
	ExitReasonTaskSwitch                ExitReason = 9
	ExitReasonCPUID                     ExitReason = 10
	ExitReasonGETSEC                    ExitReason = 11
	ExitReasonHLT                       ExitReason = 12
	ExitReasonINVD                      ExitReason = 13
	ExitReasonINVLPG                    ExitReason = 14
	ExitReasonRDPMC                     ExitReason = 15
	ExitReasonRDTSC                     ExitReason = 16
	ExitReasonRSM                       ExitReason = 17
	ExitReasonVMCALL                    ExitReason = 18
	ExitReasonVMCLEAR                   ExitReason = 19
	ExitReasonVMLAUNCH                  ExitReason = 20
	ExitReasonVMPTRLD                   ExitReason = 21
	ExitReasonVMPTRST                   ExitReason = 22
	ExitReasonVMREAD                    ExitReason = 23
	ExitReasonVMRESUME                  ExitReason = 24
	ExitReasonVMWRITE                   ExitReason = 25
	ExitReasonVMXOFF                    ExitReason = 26
	ExitReasonVMXON                     ExitReason = 27
	ExitReasonCRAccess                  ExitReason = 28
	ExitReasonDRAccess                  ExitReason = 29
	ExitReasonIOInstruction             ExitReason = 30
	ExitReasonMSRRead                   ExitReason = 31
	ExitReasonMSRWrite                  ExitReason = 32
	ExitReasonInvalidGuestState         ExitReason = 33
	ExitReasonMSRLoading                ExitReason = 34
	ExitReasonMWAITInstruction          ExitReason = 36
	ExitReasonMonitorTrapFlag           ExitReason = 37
	ExitReasonMonitorInstruction        ExitReason = 39
	ExitReasonPauseInstruction          ExitReason = 40
	ExitReasonMCEDuringVMEntry          ExitReason = 41
	ExitReasonTPRBelowThreshold         ExitReason = 43
	ExitReasonAPICAccess                ExitReason = 44
	ExitReasonAccessGDTROrIDTR          ExitReason = 46
	ExitReasonAccessLDTROrTR            ExitReason = 47
	ExitReasonEPTViolation              ExitReason = 48
	ExitReasonEPTMisconfig              ExitReason = 49
	ExitReasonINVEPT                    ExitReason = 50
	ExitReasonRDTSCP                    ExitReason = 51
	ExitReasonVMXPreemptionTimerExpired ExitReason = 52
	ExitReasonINVVPID                   ExitReason = 53
	ExitReasonWBINVD                    ExitReason = 54
	ExitReasonXSETBV                    ExitReason = 55
	ExitReasonAPICWrite                 ExitReason = 56
	ExitReasonRDRAND                    ExitReason = 57
	ExitReasonINVPCID                   ExitReason = 58
	ExitReasonRDSEED                    ExitReason = 61
	ExitReasonPMLFull                   ExitReason = 62
	ExitReasonXSAVES                    ExitReason = 63
	ExitReasonXRSTORS                   ExitReason = 64
	ExitReasonPCOMMIT                   ExitReason = 65
)

var exitReasonNames = map[ExitReason]string{
	ExitReasonExceptionNMI:              "EXCEPTION_NMI",
	ExitReasonExternalInterrupt:         "EXTERNAL_INTERRUPT",
	ExitReasonTripleFault:               "TRIPLE_FAULT",
	ExitReasonINIT:                      "INIT",
	ExitReasonSIPI:                      "SIPI",
	ExitReasonIOSMI:                     "IO_SMI",
	ExitReasonOtherSMI:                  "OTHER_SMI",
	ExitReasonPendingVirtIntr:           "PENDING_VIRT_INTR",
	ExitReasonPendingVirtNMI:            "PENDING_VIRT_NMI",
	ExitReasonTaskSwitch:                "TASK_SWITCH",
	ExitReasonCPUID:                     "CPUID",
	ExitReasonGETSEC:                    "GETSEC",
	ExitReasonHLT:                       "HLT",
	ExitReasonINVD:                      "INVD",
	ExitReasonINVLPG:                    "INVLPG",
	ExitReasonRDPMC:                     "RDPMC",
	ExitReasonRDTSC:                     "RDTSC",
	ExitReasonRSM:                       "RSM",
	ExitReasonVMCALL:                    "VMCALL",
	ExitReasonVMCLEAR:                   "VMCLEAR",
	ExitReasonVMLAUNCH:                  "VMLAUNCH",
	ExitReasonVMPTRLD:                   "VMPTRLD",
	ExitReasonVMPTRST:                   "VMPTRST",
	ExitReasonVMREAD:                    "VMREAD",
	ExitReasonVMRESUME:                  "VMRESUME",
	ExitReasonVMWRITE:                   "VMWRITE",
	ExitReasonVMXOFF:                    "VMXOFF",
	ExitReasonVMXON:                     "VMXON",
	ExitReasonCRAccess:                  "CR_ACCESS",
	ExitReasonDRAccess:                  "DR_ACCESS",
	ExitReasonIOInstruction:             "IO_INSTRUCTION",
	ExitReasonMSRRead:                   "MSR_READ",
	ExitReasonMSRWrite:                  "MSR_WRITE",
	ExitReasonInvalidGuestState:         "INVALID_GUEST_STATE",
	ExitReasonMSRLoading:                "MSR_LOADING",
	ExitReasonMWAITInstruction:          "MWAIT_INSTRUCTION",
	ExitReasonMonitorTrapFlag:           "MONITOR_TRAP_FLAG",
	ExitReasonMonitorInstruction:        "MONITOR_INSTRUCTION",
	ExitReasonPauseInstruction:          "PAUSE_INSTRUCTION",
	ExitReasonMCEDuringVMEntry:          "MCE_DURING_VMENTRY",
	ExitReasonTPRBelowThreshold:         "TPR_BELOW_THRESHOLD",
	ExitReasonAPICAccess:                "APIC_ACCESS",
	ExitReasonAccessGDTROrIDTR:          "ACCESS_GDTR_OR_IDTR",
	ExitReasonAccessLDTROrTR:            "ACCESS_LDTR_OR_TR",
	ExitReasonEPTViolation:              "EPT_VIOLATION",
	ExitReasonEPTMisconfig:              "EPT_MISCONFIG",
	ExitReasonINVEPT:                    "INVEPT",
	ExitReasonRDTSCP:                    "RDTSCP",
	ExitReasonVMXPreemptionTimerExpired: "VMX_PREEMPTION_TIMER_EXPIRED",
	ExitReasonINVVPID:                   "INVVPID",
	ExitReasonWBINVD:                    "WBINVD",
	ExitReasonXSETBV:                    "XSETBV",
	ExitReasonAPICWrite:                 "APIC_WRITE",
	ExitReasonRDRAND:                    "RDRAND",
	ExitReasonINVPCID:                   "INVPCID",
	ExitReasonRDSEED:                    "RDSEED",
	ExitReasonPMLFull:                   "PML_FULL",
	ExitReasonXSAVES:                    "XSAVES",
	ExitReasonXRSTORS:                   "XRSTORS",
	ExitReasonPCOMMIT:                   "PCOMMIT",
}

func (r ExitReason) String() string {
	if s, ok := exitReasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ExitReason(%d)", uint16(r))
}

// ExitReasonField is the full 32-bit exit-reason VMCS field.
type ExitReasonField uint32

const (
	ExitFromEnclave  ExitReasonField = 1 << 27
	ExitPendingMTF   ExitReasonField = 1 << 28
	ExitFromRoot     ExitReasonField = 1 << 29
	ExitEntryFailure ExitReasonField = 1 << 31
)

var exitBasic = bitField("Basic", 0, 16)

func (f ExitReasonField) Has(b ExitReasonField) bool { return hasFlag(f, b) }
func (f ExitReasonField) Basic() ExitReason          { return ExitReason(getField(f, exitBasic)) }

var exitReasonFieldLayout = flagLayout("ExitReasonField", []Field{
	exitBasic,
	flagField("Enclave", ExitFromEnclave),
	flagField("PendingMTF", ExitPendingMTF),
	flagField("FromRoot", ExitFromRoot),
	flagField("EntryFailure", ExitEntryFailure),
})

func init() {
	registerLayouts(componentEncodingLayout, exitReasonFieldLayout)
}
