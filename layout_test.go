package vtx

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegisteredLayoutsValidate(t *testing.T) {
	ls := Layouts()
	if len(ls) == 0 {
		t.Fatal("no layouts registered")
	}
	for _, l := range ls {
		t.Run(l.Name, func(t *testing.T) {
			if err := l.Validate(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	patterns := []uint64{0, ^uint64(0), 0x5555555555555555, 0xAAAAAAAAAAAAAAAA, 0x0123456789ABCDEF}

	for _, l := range Layouts() {
		t.Run(l.Name, func(t *testing.T) {
			for _, f := range l.Fields {
				max := f.Mask >> f.Shift()
				for _, p := range patterns {
					w := p & l.wordMask(f.Word)
					for _, v := range []uint64{0, 1, max, max >> 1, 0x5555555555555555 & max} {
						got := f.Insert(w, v)
						if x := f.Extract(got); x != v {
							t.Fatalf("%s: Extract(Insert(%#x, %#x)) = %#x", f.Name, w, v, x)
						}
						if got&^f.Mask != w&^f.Mask {
							t.Fatalf("%s: Insert(%#x, %#x) = %#x changed bits outside the field", f.Name, w, v, got)
						}
					}
				}
			}
		})
	}
}

func TestFieldIsolation(t *testing.T) {
	for _, l := range Layouts() {
		t.Run(l.Name, func(t *testing.T) {
			words := make([]uint64, l.words())
			for i := range words {
				words[i] = 0x0123456789ABCDEF & l.wordMask(i)
			}
			before := l.Decode(words...)
			for i, f := range l.Fields {
				w := append([]uint64(nil), words...)
				w[f.Word] = f.Insert(w[f.Word], ^w[f.Word]>>f.Shift())
				after := l.Decode(w...)
				for j := range after {
					if j == i {
						continue
					}
					if diff := cmp.Diff(before[j], after[j]); diff != "" {
						t.Errorf("writing %s changed %s (-before +after):\n%s", f.Name, after[j].Name, diff)
					}
				}
			}
		})
	}
}

func TestFieldInsertTruncates(t *testing.T) {
	f := bitField("Test", 4, 4)
	if got := f.Insert(0, 0x1F); got != 0xF0 {
		t.Errorf("Insert(0, 0x1f) = %#x, want 0xf0", got)
	}
	if got := f.Insert(^uint64(0), 0); got != ^uint64(0xF0) {
		t.Errorf("Insert(^0, 0) = %#x, want %#x", got, ^uint64(0xF0))
	}
	if f.Shift() != 4 || f.Width() != 4 {
		t.Errorf("Shift, Width = %d, %d; want 4, 4", f.Shift(), f.Width())
	}
}

func TestLayoutValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		layout *Layout
		errHas string
	}{
		{
			name: "gap",
			layout: &Layout{Name: "gap", Size: 4, Fields: []Field{
				bitField("A", 0, 8), bitField("B", 9, 23),
			}},
			errHas: "not named",
		},
		{
			name: "overlap",
			layout: &Layout{Name: "overlap", Size: 4, Fields: []Field{
				bitField("A", 0, 16), bitField("B", 15, 17),
			}},
			errHas: "overlaps",
		},
		{
			name: "non-contiguous",
			layout: &Layout{Name: "split", Size: 4, Fields: []Field{
				{Name: "A", Mask: 0x5}, bitField("B", 1, 1), bitField("C", 3, 29),
			}},
			errHas: "contiguous",
		},
		{
			name: "too wide",
			layout: &Layout{Name: "wide", Size: 4, Fields: []Field{
				bitField("A", 0, 33),
			}},
			errHas: "exceeds",
		},
		{
			name: "word out of range",
			layout: &Layout{Name: "words", Size: 8, Fields: []Field{
				bitField("A", 0, 64), bitField("B", 0, 64).inWord(1),
			}},
			errHas: "outside",
		},
		{
			name: "duplicate name",
			layout: &Layout{Name: "dup", Size: 4, Fields: []Field{
				bitField("A", 0, 16), bitField("A", 16, 16),
			}},
			errHas: "duplicate",
		},
		{
			name:   "bad size",
			layout: &Layout{Name: "size", Size: 12},
			errHas: "unsupported size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.errHas) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.errHas)
			}
		})
	}
}

func TestFlagLayoutFillsGaps(t *testing.T) {
	l := flagLayout("test", []Field{
		flagField("A", uint32(1<<0)),
		flagField("B", uint32(1<<4)),
		flagField("C", uint32(1<<31)),
	})
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, v := range l.Decode(0) {
		got = append(got, v.Name+"@"+v.Bits())
	}
	want := []string{"A@0", "Reserved0@1-3", "B@4", "Reserved1@5-30", "C@31"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupLayout(t *testing.T) {
	for _, name := range []string{"PDE.2MB", "pde.2mb", "VTd.ExtContextEntry", "cr0"} {
		if _, ok := LookupLayout(name); !ok {
			t.Errorf("LookupLayout(%q) not found", name)
		}
	}
	if _, ok := LookupLayout("PDE.4MB"); ok {
		t.Error("LookupLayout(PDE.4MB) found a layout")
	}
}

func TestDecode(t *testing.T) {
	l, ok := LookupLayout("PDE.2MB")
	if !ok {
		t.Fatal("PDE.2MB not registered")
	}
	e := NewPDE2MB(0x40200000, Writable|ExecuteDisable)

	got := map[string]uint64{}
	for _, v := range l.Decode(uint64(e)) {
		got[v.Name] = v.Value
	}
	want := map[string]uint64{
		"P": 1, "RW": 1, "US": 0, "PWT": 0, "PCD": 0, "A": 0, "D": 0, "PS": 1, "G": 0,
		"Ignored0": 0, "PAT": 0, "Reserved0": 0,
		"Frame":    0x40200000 >> 21,
		"Ignored1": 0, "ProtectionKey": 0, "XD": 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMultiWord(t *testing.T) {
	l, ok := LookupLayout("VTd.ContextEntry")
	if !ok {
		t.Fatal("VTd.ContextEntry not registered")
	}
	// Missing trailing words read as zero.
	for _, v := range l.Decode(1) {
		if v.Word == 1 && v.Value != 0 {
			t.Errorf("%s = %#x, want 0 for a missing word", v.Name, v.Value)
		}
	}

	v := FieldValue{Word: 1, Shift: 8, Width: 16}
	if got := v.Bits(); got != "72-87" {
		t.Errorf("Bits() = %q, want 72-87", got)
	}
}
