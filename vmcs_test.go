package vtx

import (
	"strings"
	"testing"
)

func TestComponentEncoding(t *testing.T) {
	tests := []struct {
		field  VMCSField
		width  FieldWidth
		typ    FieldType
		index  uint16
		access AccessType
	}{
		{VMCSVPID, Width16, FieldControl, 0, AccessFull},
		{VMCSGuestESSelector, Width16, FieldGuest, 0, AccessFull},
		{VMCSHostESSelector, Width16, FieldHost, 0, AccessFull},
		{VMCSIOBitmapAHigh, Width64, FieldControl, 0, AccessHigh},
		{VMCSVMInstructionError, Width32, FieldReadOnly, 0, AccessFull},
		{VMCSGuestESLimit, Width32, FieldGuest, 0, AccessFull},
		{VMCSExitQualification, WidthNatural, FieldReadOnly, 0, AccessFull},
		{VMCSGuestCR0, WidthNatural, FieldGuest, 0, AccessFull},
		{VMCSGuestRIP, WidthNatural, FieldGuest, 15, AccessFull},
		{VMCSHostRIP, WidthNatural, FieldHost, 11, AccessFull},
	}

	for _, tt := range tests {
		t.Run(tt.field.String(), func(t *testing.T) {
			e := tt.field.Encoding()
			if e.Width() != tt.width || e.Type() != tt.typ || e.Index() != tt.index || e.AccessType() != tt.access {
				t.Errorf("%#x decodes to %s, want %s %s index=%d access=%d",
					uint32(tt.field), e, tt.width, tt.typ, tt.index, tt.access)
			}
			if got := Encode(tt.width, tt.typ, tt.index, tt.access); got != e {
				t.Errorf("Encode() = %#x, want %#x", uint32(got), uint32(e))
			}
		})
	}
}

func TestVMCSFieldsMatchTheirGroups(t *testing.T) {
	for _, f := range VMCSFields() {
		e := f.Encoding()
		name := f.String()
		if !e.Valid() {
			t.Errorf("%s (%#x) is not a valid encoding", name, uint32(f))
		}
		if strings.HasSuffix(name, "_HIGH") != (e.AccessType() == AccessHigh) {
			t.Errorf("%s (%#x) access type %d", name, uint32(f), e.AccessType())
		}
		switch {
		case strings.HasPrefix(name, "GUEST_") && !strings.HasPrefix(name, "GUEST_PHYSICAL_ADDRESS") && !strings.HasPrefix(name, "GUEST_LINEAR_ADDRESS"):
			if e.Type() != FieldGuest {
				t.Errorf("%s (%#x) type %s, want guest-state", name, uint32(f), e.Type())
			}
		case strings.HasPrefix(name, "HOST_"):
			if e.Type() != FieldHost {
				t.Errorf("%s (%#x) type %s, want host-state", name, uint32(f), e.Type())
			}
		}
	}
}

func TestComponentEncodingValid(t *testing.T) {
	tests := []struct {
		enc  ComponentEncoding
		want bool
	}{
		{0x681e, true},
		{0x2001, true},  // 64-bit high
		{0x4401, false}, // high access on a 32-bit field
		{0x1000, false}, // bit 12 reserved
		{0x8000, false}, // bit 15 reserved
	}
	for _, tt := range tests {
		if got := tt.enc.Valid(); got != tt.want {
			t.Errorf("%#x.Valid() = %t, want %t", uint32(tt.enc), got, tt.want)
		}
	}
}

func TestComponentEncodingSetters(t *testing.T) {
	var e ComponentEncoding
	e.SetIndex(0x1FF)
	if e != 0x3FE {
		t.Errorf("SetIndex(0x1ff) = %#x, want 0x3fe", uint32(e))
	}
	e.SetIndex(0x200)
	if e != 0 {
		t.Errorf("SetIndex(0x200) = %#x, want 0 (index is 9 bits)", uint32(e))
	}
	e.SetWidth(WidthNatural)
	e.SetType(FieldHost)
	if e != 0x6C00 {
		t.Errorf("encoding = %#x, want 0x6c00", uint32(e))
	}
}

func TestParseVMCSField(t *testing.T) {
	tests := []struct {
		in      string
		want    VMCSField
		wantErr bool
	}{
		{in: "GUEST_RIP", want: VMCSGuestRIP},
		{in: "guest_rip", want: VMCSGuestRIP},
		{in: "0x681e", want: VMCSGuestRIP},
		{in: "26654", want: VMCSGuestRIP},
		{in: "NOT_A_FIELD", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVMCSField(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVMCSField(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseVMCSField(%q) = %#x, want %#x", tt.in, uint32(got), uint32(tt.want))
			}
		})
	}
}

func TestExitReasonField(t *testing.T) {
	f := ExitReasonField(uint32(ExitReasonEPTViolation) | uint32(ExitEntryFailure))
	if f.Basic() != ExitReasonEPTViolation || !f.Has(ExitEntryFailure) || f.Has(ExitFromRoot) {
		t.Errorf("ExitReasonField(%#x) = basic %s", uint32(f), f.Basic())
	}
	if got := ExitReasonHLT.String(); got != "HLT" {
		t.Errorf("ExitReasonHLT.String() = %q", got)
	}
	if got := ExitReason(1000).String(); got != "ExitReason(1000)" {
		t.Errorf("ExitReason(1000).String() = %q", got)
	}
}
