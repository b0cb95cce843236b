package vtx

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name                        string
		desired, allowed1, required uint32
		want                        uint32
	}{
		{"disallowed bits cleared", 0xFFFFFFFF, 0x0000000F, 0x00000003, 0x0000000F},
		{"required bits forced on", 0x00000000, 0xFFFFFFFF, 0x00000005, 0x00000005},
		{"pass through", 0x12345678, 0xFFFFFFFF, 0, 0x12345678},
		{"required wins over allowed", 0, 0, 0x80000000, 0x80000000},
		{"zero masks", 0xFFFFFFFF, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.desired, tt.allowed1, tt.required)
			if got != tt.want {
				t.Errorf("Clamp(%#x, %#x, %#x) = %#x, want %#x", tt.desired, tt.allowed1, tt.required, got, tt.want)
			}
			if got&tt.required != tt.required {
				t.Errorf("result %#x misses required bits %#x", got, tt.required)
			}
			if got&^(tt.allowed1|tt.required) != 0 {
				t.Errorf("result %#x has bits outside %#x", got, tt.allowed1|tt.required)
			}
		})
	}
}

func TestCapabilityMasks(t *testing.T) {
	got := CapabilityMasks(0x0000000F_00000003)
	want := ControlMasks{Allowed: 0x0000000F, Required: 0x00000003}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CapabilityMasks mismatch (-want +got):\n%s", diff)
	}
	if v := got.Apply(0xFFFFFFFF); v != 0x0000000F {
		t.Errorf("Apply(0xffffffff) = %#x, want 0xf", v)
	}
}

func TestFixedMasks(t *testing.T) {
	// Typical CR0 pair without unrestricted guest: PE, NE and PG fixed to 1.
	m := FixedMasks(0x80000021, 0xFFFFFFFF)
	got := CR0(m.Apply(uint32(CR0PE | CR0WP)))
	if got != CR0PE|CR0NE|CR0WP|CR0PG {
		t.Errorf("CR0 = %#x", uint32(got))
	}

	// CR4 pair where only VMXE is required and bits 23+ are unsupported.
	m = FixedMasks(0x2000, 0x007FFFFF)
	got4 := CR4(m.Apply(uint32(CR4PAE) | 1<<25))
	if got4 != CR4PAE|CR4VMXE {
		t.Errorf("CR4 = %#x", uint32(got4))
	}
}

func TestCapabilityMSRSelection(t *testing.T) {
	tests := []struct {
		kind     ControlKind
		legacy   MSR
		withTrue MSR
	}{
		{PinBased, IA32VMXPinBasedCtls, IA32VMXTruePinBasedCtls},
		{ProcBased, IA32VMXProcBasedCtls, IA32VMXTrueProcBasedCtls},
		{ProcBased2, IA32VMXProcBasedCtls2, IA32VMXProcBasedCtls2},
		{Exit, IA32VMXExitCtls, IA32VMXTrueExitCtls},
		{Entry, IA32VMXEntryCtls, IA32VMXTrueEntryCtls},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.CapabilityMSR(0); got != tt.legacy {
				t.Errorf("CapabilityMSR(no TRUE) = %s, want %s", got, tt.legacy)
			}
			if got := tt.kind.CapabilityMSR(BasicTrueControls); got != tt.withTrue {
				t.Errorf("CapabilityMSR(TRUE) = %s, want %s", got, tt.withTrue)
			}
		})
	}
}

func TestUnknownControlKind(t *testing.T) {
	for _, k := range []ControlKind{-1, ControlKind(len(ControlKinds())), 7} {
		t.Run(k.String(), func(t *testing.T) {
			if got := k.MSR(); got != 0 {
				t.Errorf("MSR() = %s, want 0", got)
			}
			if got := k.Layout(); got != nil {
				t.Errorf("Layout() = %s, want nil", got.Name)
			}
			if got := k.CapabilityMSR(BasicTrueControls); got != 0 {
				t.Errorf("CapabilityMSR() = %s, want 0", got)
			}
			if _, err := AdjustKind(sampleMSRs(), k, 0); err == nil {
				t.Error("AdjustKind succeeded")
			}
		})
	}
}

func TestParseControlKind(t *testing.T) {
	for _, k := range ControlKinds() {
		got, err := ParseControlKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseControlKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseControlKind("cr0"); err == nil {
		t.Error("ParseControlKind(cr0) succeeded")
	}
}

// countingReader counts reads so tests can check that nothing is cached.
type countingReader struct {
	MSRValues
	reads map[MSR]int
}

func (r *countingReader) ReadMSR(m MSR) (uint64, error) {
	if r.reads == nil {
		r.reads = make(map[MSR]int)
	}
	r.reads[m]++
	return r.MSRValues.ReadMSR(m)
}

func TestAdjustControl(t *testing.T) {
	r := &countingReader{MSRValues: MSRValues{IA32VMXProcBasedCtls2: 0x0000000F_00000003}}

	for i := 0; i < 2; i++ {
		got, err := AdjustControl(r, IA32VMXProcBasedCtls2, 0xFFFFFFFF)
		if err != nil {
			t.Fatal(err)
		}
		if got != 0xF {
			t.Errorf("AdjustControl() = %#x, want 0xf", got)
		}
	}
	if r.reads[IA32VMXProcBasedCtls2] != 2 {
		t.Errorf("MSR read %d times for two adjustments, want 2", r.reads[IA32VMXProcBasedCtls2])
	}

	_, err := AdjustControl(r, IA32VMXExitCtls, 0)
	if !errors.Is(err, ErrMSRNotInSnapshot) {
		t.Errorf("AdjustControl(missing MSR) error = %v, want ErrMSRNotInSnapshot", err)
	}
}

func TestTypedAdjust(t *testing.T) {
	msrs := sampleMSRs()

	t.Run("pin-based uses TRUE MSR", func(t *testing.T) {
		got, err := AdjustPinBased(msrs, PinExternalInterruptExiting|PinNMIExiting)
		if err != nil {
			t.Fatal(err)
		}
		if got != PinExternalInterruptExiting|PinNMIExiting|1<<1|1<<2 {
			t.Errorf("AdjustPinBased() = %#x", uint32(got))
		}
	})

	t.Run("proc-based keeps secondary", func(t *testing.T) {
		got, err := AdjustProcBased(msrs, ProcHLTExiting|ProcActivateSecondary|ProcUseMSRBitmaps)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Has(ProcActivateSecondary) || !got.Has(ProcHLTExiting) || !got.Has(ProcUseMSRBitmaps) {
			t.Errorf("AdjustProcBased() = %#x dropped a supported control", uint32(got))
		}
		if got.Has(ProcCR3LoadExiting) {
			t.Errorf("AdjustProcBased() = %#x forced CR3-load exiting despite the TRUE MSR", uint32(got))
		}
	})

	t.Run("secondary clears unsupported", func(t *testing.T) {
		got, err := AdjustProcBased2(msrs, Proc2EnableEPT|Proc2PAUSELoopExiting)
		if err != nil {
			t.Fatal(err)
		}
		if got != Proc2EnableEPT {
			t.Errorf("AdjustProcBased2() = %#x, want EPT only", uint32(got))
		}
	})

	t.Run("exit and entry", func(t *testing.T) {
		exit, err := AdjustExit(msrs, ExitHostAddressSpaceSize|ExitLoadEFER)
		if err != nil {
			t.Fatal(err)
		}
		if !exit.Has(ExitHostAddressSpaceSize) || !exit.Has(ExitLoadEFER) || exit.Has(ExitSaveDebugControls) {
			t.Errorf("AdjustExit() = %#x", uint32(exit))
		}
		entry, err := AdjustEntry(msrs, EntryIA32eModeGuest)
		if err != nil {
			t.Fatal(err)
		}
		if !entry.Has(EntryIA32eModeGuest) || entry.Has(EntryLoadDebugControls) {
			t.Errorf("AdjustEntry() = %#x", uint32(entry))
		}
	})

	t.Run("control registers", func(t *testing.T) {
		cr0, err := AdjustCR0(msrs, CR0PE)
		if err != nil {
			t.Fatal(err)
		}
		if cr0 != CR0PE|CR0NE|CR0PG {
			t.Errorf("AdjustCR0() = %#x", uint32(cr0))
		}
		cr4, err := AdjustCR4(msrs, CR4PAE|CR4PKE)
		if err != nil {
			t.Fatal(err)
		}
		if cr4 != CR4PAE|CR4VMXE {
			t.Errorf("AdjustCR4() = %#x", uint32(cr4))
		}
	})

	t.Run("missing basic", func(t *testing.T) {
		_, err := AdjustEntry(MSRValues{}, 0)
		if !errors.Is(err, ErrMSRNotInSnapshot) {
			t.Errorf("AdjustEntry() error = %v", err)
		}
	})
}
