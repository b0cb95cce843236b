package vtx

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// VMInstructionError is the value of the VM-instruction error field after a
// VMX instruction fails with VMfailValid (SDM Vol 3C, Table 31-1).
type VMInstructionError uint32

const (
	VMErrVMCALLInRoot                  VMInstructionError = 1
	VMErrVMCLEARInvalidAddress         VMInstructionError = 2
	VMErrVMCLEARWithVMXON              VMInstructionError = 3
	VMErrVMLAUNCHNonClear              VMInstructionError = 4
	VMErrVMRESUMENonLaunched           VMInstructionError = 5
	VMErrVMRESUMEAfterVMXOFF           VMInstructionError = 6
	VMErrEntryInvalidControls          VMInstructionError = 7
	VMErrEntryInvalidHostState         VMInstructionError = 8
	VMErrVMPTRLDInvalidAddress         VMInstructionError = 9
	VMErrVMPTRLDWithVMXON              VMInstructionError = 10
	VMErrVMPTRLDBadRevision            VMInstructionError = 11
	VMErrUnsupportedComponent          VMInstructionError = 12
	VMErrVMWRITEReadOnly               VMInstructionError = 13
	VMErrVMXONInRoot                   VMInstructionError = 15
	VMErrEntryInvalidExecutivePointer  VMInstructionError = 16
	VMErrEntryNonLaunchedExecutive     VMInstructionError = 17
	VMErrEntryExecutiveNotVMXON        VMInstructionError = 18
	VMErrVMCALLNonClear                VMInstructionError = 19
	VMErrVMCALLInvalidExitControls     VMInstructionError = 20
	VMErrVMCALLBadMSEGRevision         VMInstructionError = 22
	VMErrVMXOFFDualMonitor             VMInstructionError = 23
	VMErrVMCALLInvalidSMMFeatures      VMInstructionError = 24
	VMErrEntryInvalidExecutiveControls VMInstructionError = 25
	VMErrEntryBlockedByMovSS           VMInstructionError = 26
	VMErrInvalidINVEPTOperand          VMInstructionError = 28
)

// vmInstructionErrors is the only source of message text. Codes 14, 21
// and 27 are not assigned.
var vmInstructionErrors = map[VMInstructionError]string{
	VMErrVMCALLInRoot:                  "VMCALL executed in VMX root operation",
	VMErrVMCLEARInvalidAddress:         "VMCLEAR with invalid physical address",
	VMErrVMCLEARWithVMXON:              "VMCLEAR with VMXON pointer",
	VMErrVMLAUNCHNonClear:              "VMLAUNCH with non-clear VMCS",
	VMErrVMRESUMENonLaunched:           "VMRESUME with non-launched VMCS",
	VMErrVMRESUMEAfterVMXOFF:           "VMRESUME after VMXOFF (VMXOFF and VMXON between VMLAUNCH and VMRESUME)",
	VMErrEntryInvalidControls:          "VM entry with invalid control field(s)",
	VMErrEntryInvalidHostState:         "VM entry with invalid host-state field(s)",
	VMErrVMPTRLDInvalidAddress:         "VMPTRLD with invalid physical address",
	VMErrVMPTRLDWithVMXON:              "VMPTRLD with VMXON pointer",
	VMErrVMPTRLDBadRevision:            "VMPTRLD with incorrect VMCS revision identifier",
	VMErrUnsupportedComponent:          "VMREAD/VMWRITE from/to unsupported VMCS component",
	VMErrVMWRITEReadOnly:               "VMWRITE to read-only VMCS component",
	VMErrVMXONInRoot:                   "VMXON executed in VMX root operation",
	VMErrEntryInvalidExecutivePointer:  "VM entry with invalid executive-VMCS pointer",
	VMErrEntryNonLaunchedExecutive:     "VM entry with non-launched executive VMCS",
	VMErrEntryExecutiveNotVMXON:        "VM entry with executive-VMCS pointer not VMXON pointer (when attempting to deactivate the dual-monitor treatment of SMIs and SMM)",
	VMErrVMCALLNonClear:                "VMCALL with non-clear VMCS (when attempting to activate the dual-monitor treatment of SMIs and SMM)",
	VMErrVMCALLInvalidExitControls:     "VMCALL with invalid VM-exit control fields",
	VMErrVMCALLBadMSEGRevision:         "VMCALL with incorrect MSEG revision identifier (when attempting to activate the dual-monitor treatment of SMIs and SMM)",
	VMErrVMXOFFDualMonitor:             "VMXOFF under dual-monitor treatment of SMIs and SMM",
	VMErrVMCALLInvalidSMMFeatures:      "VMCALL with invalid SMM-monitor features (when attempting to activate the dual-monitor treatment of SMIs and SMM)",
	VMErrEntryInvalidExecutiveControls: "VM entry with invalid VM-execution control fields in executive VMCS (when attempting to return from SMM)",
	VMErrEntryBlockedByMovSS:           "VM entry with events blocked by MOV SS",
	VMErrInvalidINVEPTOperand:          "Invalid operand to INVEPT/INVVPID",
}

// ErrUnknownInstructionError is returned for codes with no assigned meaning.
var ErrUnknownInstructionError = errors.New("vtx: unknown VM-instruction error")

// MessageFor returns the message for a VM-instruction error code.
func MessageFor(code uint32) (string, error) {
	msg, ok := vmInstructionErrors[VMInstructionError(code)]
	if !ok {
		recordUnknownError()
		return "", fmt.Errorf("%w %d", ErrUnknownInstructionError, code)
	}
	return msg, nil
}

// VMInstructionErrors returns every assigned code in ascending order.
func VMInstructionErrors() []VMInstructionError {
	out := make([]VMInstructionError, 0, len(vmInstructionErrors))
	for c := VMInstructionError(0); c <= VMErrInvalidINVEPTOperand; c++ {
		if _, ok := vmInstructionErrors[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (c VMInstructionError) String() string {
	if msg, ok := vmInstructionErrors[c]; ok {
		return msg
	}
	return fmt.Sprintf("VMInstructionError(%d)", uint32(c))
}

// VMXError reports a failed VMX instruction. Code is zero for VMfailInvalid,
// where no VM-instruction error field is available.
type VMXError struct {
	Op      string // instruction mnemonic, e.g. "VMLAUNCH"
	Code    VMInstructionError
	message string
}

func (e VMXError) Error() string {
	if e.message != "" {
		return e.message
	}
	if isProductionEnv() {
		return e.sanitizedError()
	}
	return e.detailedError()
}

func (e VMXError) prefix() string {
	if e.Op == "" {
		return "vtx: "
	}
	return "vtx: " + e.Op + ": "
}

// detailedError includes the architectural message for the code.
func (e VMXError) detailedError() string {
	if e.Code == 0 {
		return e.prefix() + "VMfailInvalid (no current VMCS) - check the VMCS pointer and VMXON region"
	}
	msg, ok := vmInstructionErrors[e.Code]
	if !ok {
		return fmt.Sprintf("%sunknown VM-instruction error %d - consult SDM Vol 3C Table 31-1", e.prefix(), e.Code)
	}
	return fmt.Sprintf("%sVM-instruction error %d (%s)", e.prefix(), e.Code, msg)
}

// sanitizedError reports only the numeric code.
func (e VMXError) sanitizedError() string {
	if e.Code == 0 {
		return e.prefix() + "VMfailInvalid"
	}
	return fmt.Sprintf("%sVM-instruction error %d", e.prefix(), e.Code)
}

// Is lets errors.Is match an unassigned code against
// ErrUnknownInstructionError.
func (e VMXError) Is(target error) bool {
	if target != ErrUnknownInstructionError || e.Code == 0 {
		return false
	}
	_, ok := vmInstructionErrors[e.Code]
	return !ok
}

// isProductionEnv checks whether error messages should be sanitized.
func isProductionEnv() bool {
	env := os.Getenv("VTX_ENV")
	if env == "production" || env == "prod" {
		return true
	}
	if debug := os.Getenv("VTX_DEBUG"); debug != "" {
		if val, err := strconv.ParseBool(debug); err == nil && !val {
			return true
		}
	}
	return false
}

// OpcodeResult is the outcome of a VMX instruction as signalled in RFLAGS
// (SDM Vol 3C, 31.2).
type OpcodeResult uint8

const (
	VMXSuccess     OpcodeResult = iota // CF = ZF = 0
	VMXFailValid                       // ZF = 1; read the VM-instruction error field
	VMXFailInvalid                     // CF = 1; no current VMCS
)

const (
	rflagsCF = 1 << 0
	rflagsZF = 1 << 6
)

// OpcodeResultFromFlags decodes RFLAGS as left by a VMX instruction.
func OpcodeResultFromFlags(rflags uint64) OpcodeResult {
	switch {
	case rflags&rflagsCF != 0:
		return VMXFailInvalid
	case rflags&rflagsZF != 0:
		return VMXFailValid
	default:
		return VMXSuccess
	}
}

func (r OpcodeResult) String() string {
	switch r {
	case VMXSuccess:
		return "VMsucceed"
	case VMXFailValid:
		return "VMfailValid"
	case VMXFailInvalid:
		return "VMfailInvalid"
	}
	return fmt.Sprintf("OpcodeResult(%d)", uint8(r))
}

// Err converts the result into an error. code is the VM-instruction error
// field, consulted only for VMXFailValid.
func (r OpcodeResult) Err(op string, code uint32) error {
	switch r {
	case VMXSuccess:
		return nil
	case VMXFailInvalid:
		return VMXError{Op: op}
	default:
		return VMXError{Op: op, Code: VMInstructionError(code)}
	}
}

// Common errors for API consumers.
var (
	ErrVMXUnsupported = &VMXError{message: "vtx: VMX not supported by this processor"}
	ErrVMXDisabled    = &VMXError{message: "vtx: VMX disabled by IA32_FEATURE_CONTROL"}
)
