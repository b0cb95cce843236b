package vtx

import "testing"

func TestCR0Flags(t *testing.T) {
	var c CR0
	c.Set(CR0PE, true)
	c.Set(CR0PG, true)
	c.Set(CR0NE, true)
	if c != 0x80000021 {
		t.Errorf("CR0 = %#x, want 0x80000021", uint32(c))
	}
	if !c.Has(CR0PG) || c.Has(CR0CD) {
		t.Errorf("Has(PG), Has(CD) = %t, %t; want true, false", c.Has(CR0PG), c.Has(CR0CD))
	}
	c.Set(CR0PG, false)
	if c.Has(CR0PG) || !c.Has(CR0PE) {
		t.Errorf("clearing PG changed other bits: %#x", uint32(c))
	}
}

func TestCR4Flags(t *testing.T) {
	tests := []struct {
		flag CR4
		bit  uint
	}{
		{CR4VME, 0}, {CR4PAE, 5}, {CR4PGE, 7}, {CR4OSFXSR, 9},
		{CR4VMXE, 13}, {CR4SMXE, 14}, {CR4PCIDE, 17}, {CR4OSXSAVE, 18},
		{CR4SMEP, 20}, {CR4SMAP, 21}, {CR4PKE, 22},
	}
	for _, tt := range tests {
		if tt.flag != 1<<tt.bit {
			t.Errorf("flag %#x, want bit %d", uint32(tt.flag), tt.bit)
		}
	}
}

func TestCR3(t *testing.T) {
	t.Run("PML4 base", func(t *testing.T) {
		var c CR3
		c.SetPML4(0x12345)
		c.Set(CR3PCD, true)
		if got := c.PML4Address(); got != 0x12345000 {
			t.Errorf("PML4Address() = %#x, want 0x12345000", got)
		}
		if got := c.PML4(); got != 0x12345 {
			t.Errorf("PML4() = %#x, want 0x12345", got)
		}
		if uint64(c) != 0x12345010 {
			t.Errorf("CR3 = %#x, want 0x12345010", uint64(c))
		}
	})

	t.Run("PCID shares the low bits", func(t *testing.T) {
		c := CR3(0xABC000)
		c.SetPCID(0xFFF)
		if c.PCID() != 0xFFF || c.PML4Address() != 0xABC000 {
			t.Errorf("PCID, base = %#x, %#x", c.PCID(), c.PML4Address())
		}
		c.SetPCID(0x1001)
		if c.PCID() != 0x001 {
			t.Errorf("PCID() = %#x after oversized write, want 0x1", c.PCID())
		}
	})

	t.Run("high PML4 bits", func(t *testing.T) {
		var c CR3
		c.SetPML4(1<<40 - 1)
		if got := c.PML4Address(); got != 0x000FFFFFFFFFF000 {
			t.Errorf("PML4Address() = %#x, want 0xffffffffff000", got)
		}
	})
}
