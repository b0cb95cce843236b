package vtx

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	gbits "gvisor.dev/gvisor/pkg/bits"
	"gvisor.dev/gvisor/pkg/log"
)

// Support classifies what a processor allows for one control bit.
type Support int

const (
	Unsupported Support = iota // must be 0
	Forced                     // must be 1
	Optional                   // may be 0 or 1
	Default                    // may be 0 or 1, but the legacy MSR forces it to 1
)

var supportNames = [...]string{
	Unsupported: "no",
	Forced:      "forced",
	Optional:    "yes",
	Default:     "default",
}

func (s Support) String() string {
	if s < 0 || int(s) >= len(supportNames) {
		return fmt.Sprintf("Support(%d)", int(s))
	}
	return supportNames[s]
}

func (s Support) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Capabilities is a one-time read of every VMX capability MSR a hypervisor
// needs to clamp its controls. Taking one is an explicit opt-in: the
// Adjust helpers always read the MSRs again.
type Capabilities struct {
	CPU            int
	Basic          VMXBasic
	FeatureControl FeatureControl
	Controls       map[ControlKind]ControlMasks // effective masks, TRUE variants when reported
	Legacy         map[ControlKind]ControlMasks
	CR0            ControlMasks
	CR4            ControlMasks
}

// ReadCapabilities reads the capability MSRs through r. Secondary
// processor-based controls are only read when the primary controls allow
// activating them.
func ReadCapabilities(r MSRReader) (*Capabilities, error) {
	read := func(m MSR) (uint64, error) {
		v, err := r.ReadMSR(m)
		if err != nil {
			return 0, fmt.Errorf("vtx: read capabilities: %w", err)
		}
		return v, nil
	}

	basic, err := read(IA32VMXBasic)
	if err != nil {
		return nil, err
	}
	c := &Capabilities{
		Basic:    VMXBasic(basic),
		Controls: make(map[ControlKind]ControlMasks),
		Legacy:   make(map[ControlKind]ControlMasks),
	}
	if fc, err := r.ReadMSR(IA32FeatureControl); err == nil {
		c.FeatureControl = FeatureControl(fc)
	}

	for _, k := range ControlKinds() {
		if k == ProcBased2 && !ProcBasedControls(c.Controls[ProcBased].Allowed).Has(ProcActivateSecondary) {
			continue
		}
		v, err := read(k.MSR())
		if err != nil {
			return nil, err
		}
		c.Legacy[k] = CapabilityMasks(v)
		c.Controls[k] = c.Legacy[k]
		if m := k.CapabilityMSR(c.Basic); m != k.MSR() {
			v, err := read(m)
			if err != nil {
				return nil, err
			}
			c.Controls[k] = CapabilityMasks(v)
		}
	}

	for _, cr := range []struct {
		fixed0, fixed1 MSR
		dst            *ControlMasks
	}{
		{IA32VMXCR0Fixed0, IA32VMXCR0Fixed1, &c.CR0},
		{IA32VMXCR4Fixed0, IA32VMXCR4Fixed1, &c.CR4},
	} {
		f0, err := read(cr.fixed0)
		if err != nil {
			return nil, err
		}
		f1, err := read(cr.fixed1)
		if err != nil {
			return nil, err
		}
		*cr.dst = FixedMasks(f0, f1)
	}

	log.Debugf("vtx: capabilities: revision %#x, true controls %t", c.Basic.Revision(), c.Basic.Has(BasicTrueControls))
	return c, nil
}

// Support classifies bit of the given control word. A control whose
// capability MSR was not read reports Unsupported for every bit.
func (c *Capabilities) Support(kind ControlKind, bit uint) Support {
	m, ok := c.Controls[kind]
	if !ok || bit >= 32 {
		return Unsupported
	}
	mask := uint32(1) << bit
	switch {
	case m.Required&mask != 0:
		return Forced
	case m.Allowed&mask == 0:
		return Unsupported
	case c.Legacy[kind].Required&mask != 0:
		return Default
	default:
		return Optional
	}
}

// Adjust clamps desired against the masks captured for kind.
func (c *Capabilities) Adjust(kind ControlKind, desired uint32) (uint32, error) {
	m, ok := c.Controls[kind]
	if !ok {
		return 0, fmt.Errorf("vtx: %s controls not available", kind)
	}
	recordAdjustment()
	return m.Apply(desired), nil
}

// ControlSupport is the classification of one named control bit.
type ControlSupport struct {
	Name    string  `json:"name" yaml:"name"`
	Bit     uint    `json:"bit" yaml:"bit"`
	Support Support `json:"support" yaml:"support"`
}

// Report classifies every named bit of kind, then every reserved bit the
// processor nonetheless forces to 1.
func (c *Capabilities) Report(kind ControlKind) []ControlSupport {
	if !kind.valid() {
		return nil
	}
	var out []ControlSupport
	named := uint64(0)
	for _, f := range kind.Layout().Fields {
		if f.Reserved || f.Width() != 1 {
			continue
		}
		named |= f.Mask
		out = append(out, ControlSupport{Name: f.Name, Bit: f.Shift(), Support: c.Support(kind, f.Shift())})
	}
	gbits.ForEachSetBit64(uint64(c.Controls[kind].Required)&^named, func(i int) {
		out = append(out, ControlSupport{Name: fmt.Sprintf("Reserved%d", i), Bit: uint(i), Support: Forced})
	})
	return out
}

// CPUCapabilities pairs a logical CPU with its capabilities or the error
// reading them.
type CPUCapabilities struct {
	CPU  int
	Caps *Capabilities
	Err  error
}

// ReadAllCapabilities reads capabilities on every cpu concurrently. open is
// called once per CPU and the reader is closed afterwards when it
// implements io.Closer. Per-CPU read failures are reported in the result;
// only a cancelled context aborts the whole read.
func ReadAllCapabilities(ctx context.Context, cpus []int, open func(cpu int) (MSRReader, error)) ([]CPUCapabilities, error) {
	out := make([]CPUCapabilities, len(cpus))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, cpu := range cpus {
		i, cpu := i, cpu
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i].CPU = cpu
			r, err := open(cpu)
			if err != nil {
				out[i].Err = err
				return nil
			}
			if cl, ok := r.(interface{ Close() error }); ok {
				defer cl.Close()
			}
			caps, err := ReadCapabilities(r)
			if err != nil {
				out[i].Err = err
				return nil
			}
			caps.CPU = cpu
			out[i].Caps = caps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CPU < out[j].CPU })
	return out, nil
}

// Uniform reports whether every CPU produced the same capabilities. Hybrid
// parts and broken firmware occasionally disagree between cores.
func Uniform(all []CPUCapabilities) (bool, error) {
	var first *Capabilities
	for _, c := range all {
		if c.Err != nil {
			return false, c.Err
		}
		if first == nil {
			first = c.Caps
			continue
		}
		if !c.Caps.sameAs(first) {
			return false, nil
		}
	}
	if first == nil {
		return false, errors.New("vtx: no CPUs read")
	}
	return true, nil
}

func (c *Capabilities) sameAs(o *Capabilities) bool {
	if c.Basic != o.Basic || c.CR0 != o.CR0 || c.CR4 != o.CR4 {
		return false
	}
	return sameMasks(c.Controls, o.Controls) && sameMasks(c.Legacy, o.Legacy)
}

func sameMasks(a, b map[ControlKind]ControlMasks) bool {
	if len(a) != len(b) {
		return false
	}
	for k, m := range a {
		if n, ok := b[k]; !ok || n != m {
			return false
		}
	}
	return true
}
