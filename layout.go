package vtx

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	gbits "gvisor.dev/gvisor/pkg/bits"
)

// Field is a named, contiguous bit range inside one 64-bit word of a
// hardware structure. Bit 0 is the least significant bit of the word.
type Field struct {
	Name     string
	Word     int // index of the 64-bit word holding the field
	Mask     uint64
	Reserved bool
}

// bitField returns a field covering bits [lo, lo+width) of word 0.
func bitField(name string, lo, width uint) Field {
	return Field{Name: name, Mask: fieldMask(lo, width)}
}

// flagField names the bits of a typed flag constant.
func flagField[T ~uint32 | ~uint64](name string, f T) Field {
	return Field{Name: name, Mask: uint64(f)}
}

func reservedField(name string, lo, width uint) Field {
	f := bitField(name, lo, width)
	f.Reserved = true
	return f
}

// inWord moves f to another word of a multi-word entry.
func (f Field) inWord(w int) Field {
	f.Word = w
	return f
}

func fieldMask(lo, width uint) uint64 {
	return ((uint64(1) << width) - 1) << lo
}

// Shift is the position of the field's least significant bit.
func (f Field) Shift() uint {
	return uint(gbits.TrailingZeros64(f.Mask))
}

// Width is the number of bits in the field.
func (f Field) Width() uint {
	if f.Mask == 0 {
		return 0
	}
	return uint(gbits.MostSignificantOne64(f.Mask)) - f.Shift() + 1
}

// Extract returns the field value held in w, right-aligned.
func (f Field) Extract(w uint64) uint64 {
	return (w & f.Mask) >> f.Shift()
}

// Insert returns w with the field replaced by v. Bits of v that do not fit
// in the field are dropped; every bit outside the field is kept.
func (f Field) Insert(w, v uint64) uint64 {
	return (w &^ f.Mask) | ((v << f.Shift()) & f.Mask)
}

func (f Field) contiguous() bool {
	return f.Mask != 0 && uint(bits.OnesCount64(f.Mask)) == f.Width()
}

// Layout describes a fixed-size hardware structure as an ordered list of
// fields. A valid layout names every bit exactly once.
type Layout struct {
	Name   string
	Size   int // bytes
	Fields []Field
}

func (l *Layout) words() int {
	return (l.Size + 7) / 8
}

// wordMask is the set of bits a word of this layout actually has; 32-bit
// registers only use the low half of word 0.
func (l *Layout) wordMask(w int) uint64 {
	if l.Size < 8 {
		return fieldMask(0, uint(l.Size*8))
	}
	return ^uint64(0)
}

// Validate checks the structural invariant: fields are contiguous, do not
// overlap, fit inside the structure and together cover every bit.
func (l *Layout) Validate() error {
	if l.Size <= 0 || (l.Size != 4 && l.Size%8 != 0) {
		return fmt.Errorf("vtx: layout %s: unsupported size %d", l.Name, l.Size)
	}
	covered := make([]uint64, l.words())
	names := make(map[string]bool, len(l.Fields))
	for _, f := range l.Fields {
		if names[f.Name] {
			return fmt.Errorf("vtx: layout %s: duplicate field %s", l.Name, f.Name)
		}
		names[f.Name] = true
		if f.Word < 0 || f.Word >= len(covered) {
			return fmt.Errorf("vtx: layout %s: field %s in word %d outside %d-byte structure", l.Name, f.Name, f.Word, l.Size)
		}
		if !f.contiguous() {
			return fmt.Errorf("vtx: layout %s: field %s mask %#x is not a contiguous range", l.Name, f.Name, f.Mask)
		}
		if f.Mask&^l.wordMask(f.Word) != 0 {
			return fmt.Errorf("vtx: layout %s: field %s mask %#x exceeds %d-byte structure", l.Name, f.Name, f.Mask, l.Size)
		}
		if overlap := covered[f.Word] & f.Mask; overlap != 0 {
			return fmt.Errorf("vtx: layout %s: field %s overlaps bits %#x", l.Name, f.Name, overlap)
		}
		covered[f.Word] |= f.Mask
	}
	for w, c := range covered {
		if missing := l.wordMask(w) &^ c; missing != 0 {
			return fmt.Errorf("vtx: layout %s: word %d bits %#x are not named", l.Name, w, missing)
		}
	}
	return nil
}

// Field returns the field with the given name.
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldValue is one decoded field.
type FieldValue struct {
	Name     string `json:"name" yaml:"name"`
	Word     int    `json:"word" yaml:"word"`
	Shift    uint   `json:"shift" yaml:"shift"`
	Width    uint   `json:"width" yaml:"width"`
	Value    uint64 `json:"value" yaml:"value"`
	Reserved bool   `json:"reserved,omitempty" yaml:"reserved,omitempty"`
}

// Bits renders the field position the way the SDM tables do ("7" or "12-50").
func (v FieldValue) Bits() string {
	lo := v.Shift + uint(v.Word)*64
	if v.Width == 1 {
		return fmt.Sprint(lo)
	}
	return fmt.Sprintf("%d-%d", lo, lo+v.Width-1)
}

// Decode splits raw words into named field values. Missing trailing words
// read as zero.
func (l *Layout) Decode(words ...uint64) []FieldValue {
	out := make([]FieldValue, 0, len(l.Fields))
	for _, f := range l.Fields {
		var w uint64
		if f.Word < len(words) {
			w = words[f.Word]
		}
		out = append(out, FieldValue{
			Name:     f.Name,
			Word:     f.Word,
			Shift:    f.Shift(),
			Width:    f.Width(),
			Value:    f.Extract(w),
			Reserved: f.Reserved,
		})
	}
	return out
}

var layouts = map[string]*Layout{}

func registerLayouts(ls ...*Layout) {
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			panic(err)
		}
		key := strings.ToLower(l.Name)
		if _, ok := layouts[key]; ok {
			panic("vtx: layout registered twice: " + l.Name)
		}
		layouts[key] = l
	}
}

// LookupLayout finds a registered layout by case-insensitive name.
func LookupLayout(name string) (*Layout, bool) {
	l, ok := layouts[strings.ToLower(name)]
	return l, ok
}

// Layouts returns every registered layout, sorted by name.
func Layouts() []*Layout {
	out := make([]*Layout, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// flagLayout builds a layout for a 32-bit flag register from its named
// single-bit flags, naming the gaps between them as reserved ranges.
func flagLayout(name string, flags []Field) *Layout {
	l := &Layout{Name: name, Size: 4}
	var used uint64
	for _, f := range flags {
		used |= f.Mask
	}
	n := 0
	for lo := uint(0); lo < 32; {
		if used&(1<<lo) != 0 {
			lo++
			continue
		}
		hi := lo
		for hi+1 < 32 && used&(1<<(hi+1)) == 0 {
			hi++
		}
		flags = append(flags, reservedField(fmt.Sprintf("Reserved%d", n), lo, hi-lo+1))
		n++
		lo = hi + 1
	}
	sort.SliceStable(flags, func(i, j int) bool { return flags[i].Mask < flags[j].Mask })
	l.Fields = flags
	return l
}

// Small generic helpers shared by the single-bit flag types.

func hasFlag[T ~uint32 | ~uint64](v, f T) bool {
	return gbits.IsOn64(uint64(v), uint64(f))
}

func setFlag[T ~uint32 | ~uint64](v *T, f T, on bool) {
	if on {
		*v |= f
	} else {
		*v &^= f
	}
}

func getField[T ~uint32 | ~uint64](v T, f Field) uint64 {
	return f.Extract(uint64(v))
}

func setField[T ~uint32 | ~uint64](v *T, f Field, x uint64) {
	*v = T(f.Insert(uint64(*v), x))
}
