package vtx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCapability(t *testing.T) {
	// CAP_REG of a client chipset remapping unit.
	c := Capability(0x00C0_0000_C066_0462)
	tests := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"ND", c.Get(CapND), 2},
		{"SAGAW", c.Get(CapSAGAW), 0x4},
		{"MGAW", c.Get(CapMGAW), 0x26},
		{"FRO", c.Get(CapFRO), 0xC0},
		{"NFR", c.Get(CapNFR), 0},
		{"DWD", c.Get(CapDWD), 1},
		{"DRD", c.Get(CapDRD), 1},
		{"Domains", c.Domains(), 256},
		{"MaxGuestAddressWidth", uint64(c.MaxGuestAddressWidth()), 39},
		{"FaultRecordingOffset", c.FaultRecordingOffset(), 0xC00},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %#x, want %#x", tt.name, tt.got, tt.want)
		}
	}
	if c.Has(CapCM) {
		t.Error("Has(CM) = true")
	}
}

func TestExtCapability(t *testing.T) {
	var c ExtCapability
	c.Set(ECapIRO, 0x50)
	c.Set(ECapQI, 1)
	c.Set(ECapPASID, 1)
	if c.IOTLBOffset() != 0x500 {
		t.Errorf("IOTLBOffset() = %#x, want 0x500", c.IOTLBOffset())
	}
	if uint64(c) != 0x50<<8|1<<1|1<<40 {
		t.Errorf("ECAP = %#x", uint64(c))
	}
	if !c.Has(ECapQI) || c.Has(ECapIR) {
		t.Errorf("Has(QI), Has(IR) = %t, %t", c.Has(ECapQI), c.Has(ECapIR))
	}
}

func TestGlobalStatusCommand(t *testing.T) {
	s := GStsTES | GStsRTPS | GStsQIES | GStsIRES
	cmd := s.Command()
	if !cmd.Has(GCmdTE) || !cmd.Has(GCmdQIE) || !cmd.Has(GCmdIRE) {
		t.Errorf("Command() = %#x lost persistent bits", uint32(cmd))
	}
	if cmd.Has(GCmdSRTP) {
		t.Errorf("Command() = %#x kept one-shot SRTP", uint32(cmd))
	}
	cmd.Set(GCmdSRTP, true)
	if uint32(cmd) != uint32(GCmdTE|GCmdQIE|GCmdIRE|GCmdSRTP) {
		t.Errorf("Set(SRTP) = %#x", uint32(cmd))
	}
}

func TestRootTableAddress(t *testing.T) {
	var r RootTableAddress
	r.Set(RTAddrRTA, 0x12345)
	if r.Address() != 0x12345000 || r.Extended() {
		t.Errorf("RTADDR = %#x", uint64(r))
	}
	r.Set(RTAddrTTM, 1)
	if !r.Extended() || r.Address() != 0x12345000 {
		t.Errorf("RTADDR = %#x after setting TTM", uint64(r))
	}
}

func TestInvalidationCommands(t *testing.T) {
	if got := uint64(GlobalContextInvalidation()); got != 1<<63|1<<61 {
		t.Errorf("GlobalContextInvalidation() = %#x", got)
	}
	if got := uint64(GlobalIOTLBInvalidation()); got != 1<<63|1<<60|1<<48 {
		t.Errorf("GlobalIOTLBInvalidation() = %#x", got)
	}

	var c ContextCommand
	c.Set(CCmdCIRG, InvalidateDevice)
	c.Set(CCmdSID, 0x00F8)
	c.Set(CCmdDID, 7)
	if c.Get(CCmdSID) != 0xF8 || c.Get(CCmdDID) != 7 || c.Get(CCmdCIRG) != 3 {
		t.Errorf("CCMD = %#x", uint64(c))
	}
}

func TestRootAndContextEntries(t *testing.T) {
	t.Run("root entry", func(t *testing.T) {
		var e RootEntry
		e.Set(RootCTP, 0xABCDE)
		e.Set(RootP, 1)
		if diff := cmp.Diff(RootEntry{0xABCDE001, 0}, e); diff != "" {
			t.Errorf("RootEntry mismatch (-want +got):\n%s", diff)
		}
		if !e.Present() || e.ContextTable() != 0xABCDE000 {
			t.Errorf("Present, ContextTable = %t, %#x", e.Present(), e.ContextTable())
		}
	})

	t.Run("extended root entry halves", func(t *testing.T) {
		var e ExtRootEntry
		e.Set(ExtRootUCTP, 0x77)
		e.Set(ExtRootUP, 1)
		if diff := cmp.Diff(ExtRootEntry{0, 0x77001}, e); diff != "" {
			t.Errorf("ExtRootEntry mismatch (-want +got):\n%s", diff)
		}
		if e.Get(ExtRootLP) != 0 {
			t.Error("upper-half write leaked into the lower half")
		}
	})

	t.Run("context entry", func(t *testing.T) {
		var e ContextEntry
		e.Set(CtxP, 1)
		e.Set(CtxTT, TranslatePassThrough)
		e.Set(CtxSLPTPTR, 0x1000)
		e.Set(CtxAW, 2)
		e.Set(CtxDID, 0x42)
		want := ContextEntry{0x1000000 | 2<<2 | 1, 0x42<<8 | 2}
		if diff := cmp.Diff(want, e); diff != "" {
			t.Errorf("ContextEntry mismatch (-want +got):\n%s", diff)
		}
		if e.SecondLevelTable() != 0x1000000 {
			t.Errorf("SecondLevelTable() = %#x", e.SecondLevelTable())
		}
	})

	t.Run("extended context entry", func(t *testing.T) {
		var e ExtContextEntry
		e.Set(ExtCtxP, 1)
		e.Set(ExtCtxPTS, 3)
		e.Set(ExtCtxPASIDSTPTR, 0x9)
		e.Set(ExtCtxPAT, 0x0007040600070406)
		if !e.Present() || e.PASIDTableEntries() != 256 {
			t.Errorf("Present, PASIDTableEntries = %t, %d", e.Present(), e.PASIDTableEntries())
		}
		want := ExtContextEntry{1, 0x00070406 << 32, 3, 0x9000}
		if diff := cmp.Diff(want, e); diff != "" {
			t.Errorf("ExtContextEntry mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestPASIDEntries(t *testing.T) {
	var e PASIDEntry
	e.Set(PASIDFLPTPTR, 0x4321)
	e.Set(PASIDP, 1)
	e.Set(PASIDSRE, 1)
	if uint64(e) != 0x4321000|1<<11|1 {
		t.Errorf("PASIDEntry = %#x", uint64(e))
	}

	var s PASIDStateEntry
	s.Set(PASIDStateARC, 0xFFFF)
	s.Set(PASIDStateDINV, 1)
	if uint64(s) != 0xFFFF<<32|1<<63 {
		t.Errorf("PASIDStateEntry = %#x", uint64(s))
	}
}

func TestRegisterOffsets(t *testing.T) {
	tests := []struct {
		off  RegisterOffset
		name string
	}{
		{RegCapability, "VTd.CAP"},
		{RegExtCapability, "VTd.ECAP"},
		{RegGlobalCommand, "VTd.GCMD"},
		{RegGlobalStatus, "VTd.GSTS"},
		{RegRootTableAddress, "VTd.RTADDR"},
		{RegContextCommand, "VTd.CCMD"},
	}
	for _, tt := range tests {
		l, ok := tt.off.Layout()
		if !ok || l.Name != tt.name || tt.off.String() != tt.name {
			t.Errorf("offset %#x: layout %v, %t", uint32(tt.off), l, ok)
		}
	}
	if _, ok := RegisterOffset(0x4).Layout(); ok {
		t.Error("offset 0x4 has a layout")
	}
}

func TestVTdFieldTruncation(t *testing.T) {
	tests := []struct {
		name  string
		start Capability
		v     uint64
		want  Capability
	}{
		{"wide value", 0, 0xFFFF, 0x7},
		{"keeps other bits", ^Capability(0x7), 0xFFFF, ^Capability(0)},
		{"clear", ^Capability(0), 0, ^Capability(0x7)},
		{"in range", 0x00C0_0000_C066_0460, 2, 0x00C0_0000_C066_0462},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.start
			c.Set(CapND, tt.v)
			if c != tt.want {
				t.Errorf("Set(ND, %#x) = %#x, want %#x", tt.v, uint64(c), uint64(tt.want))
			}
			if got := c.Get(CapND); got != tt.v&7 {
				t.Errorf("Get(ND) = %#x, want %#x", got, tt.v&7)
			}
		})
	}
}

func TestWordFieldOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		f    Field
	}{
		{"word 2 of a 2-word entry", ExtCtxPASIDPTR.f},
		{"word 3 of a 2-word entry", ExtCtxPASIDSTPTR.f},
		{"negative word", bitField("X", 0, 8).inWord(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := RootEntry{0x1234, 0x5678}
			if got := wordGet(e[:], tt.f); got != 0 {
				t.Errorf("wordGet() = %#x, want 0", got)
			}
			wordSet(e[:], tt.f, ^uint64(0))
			if diff := cmp.Diff(RootEntry{0x1234, 0x5678}, e); diff != "" {
				t.Errorf("wordSet() changed entry (-want +got):\n%s", diff)
			}
		})
	}
}
