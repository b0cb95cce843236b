package vtx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"gvisor.dev/gvisor/pkg/log"
)

// ErrMSRNotInSnapshot is returned by offline readers for an MSR they do not
// hold.
var ErrMSRNotInSnapshot = errors.New("vtx: MSR not in snapshot")

// Snapshot is a captured set of capability MSRs that stands in for the
// live msr device, so capabilities can be inspected on another machine.
//
// Values are hex strings since TOML integers are signed 64-bit.
//
//	cpu = 0
//	[msrs]
//	IA32_VMX_BASIC = "0x00da040000000004"
//	"0x48b" = "0x0000000f00000000"
type Snapshot struct {
	CPU  int               `toml:"cpu" yaml:"cpu"`
	MSRs map[string]string `toml:"msrs" yaml:"msrs"`
}

// CaptureSnapshot reads every capability MSR through r. MSRs that fail to
// read, typically ones the processor does not implement, are left out.
func CaptureSnapshot(r MSRReader, cpu int) (*Snapshot, error) {
	s := &Snapshot{CPU: cpu, MSRs: make(map[string]string)}
	var firstErr error
	for _, m := range CapabilityMSRs() {
		v, err := r.ReadMSR(m)
		if err != nil {
			log.Debugf("vtx: snapshot: skipping %s: %v", m, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.Set(m, v)
	}
	if len(s.MSRs) == 0 {
		return nil, fmt.Errorf("vtx: snapshot cpu %d: %w", cpu, firstErr)
	}
	return s, nil
}

// Set records v for m under the MSR's architectural name, replacing any
// entry that names m another way.
func (s *Snapshot) Set(m MSR, v uint64) {
	if s.MSRs == nil {
		s.MSRs = make(map[string]string)
	}
	for k := range s.MSRs {
		if got, err := ParseMSR(k); err == nil && got == m {
			delete(s.MSRs, k)
		}
	}
	s.MSRs[m.String()] = fmt.Sprintf("%#016x", v)
}

// Values parses the snapshot into an MSRValues map. An MSR given under two
// keys, such as "IA32_VMX_BASIC" and "0x480", is an error.
func (s *Snapshot) Values() (MSRValues, error) {
	out := make(MSRValues, len(s.MSRs))
	seen := make(map[MSR]string, len(s.MSRs))
	for k, v := range s.MSRs {
		m, err := ParseMSR(k)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[m]; dup {
			a, b := prev, k
			if b < a {
				a, b = b, a
			}
			return nil, fmt.Errorf("vtx: snapshot: %s given twice as %q and %q", m, a, b)
		}
		seen[m] = k
		val, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("vtx: snapshot %s: bad value %q: %w", k, v, err)
		}
		out[m] = val
	}
	return out, nil
}

// ReadMSR implements MSRReader.
func (s *Snapshot) ReadMSR(m MSR) (uint64, error) {
	var (
		val   uint64
		found string
	)
	for k, v := range s.MSRs {
		got, err := ParseMSR(k)
		if err != nil || got != m {
			continue
		}
		if found != "" {
			return 0, fmt.Errorf("vtx: snapshot: %s given twice", m)
		}
		val, err = strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("vtx: snapshot %s: bad value %q: %w", k, v, err)
		}
		found = k
	}
	if found == "" {
		return 0, fmt.Errorf("%w: %s", ErrMSRNotInSnapshot, m)
	}
	return val, nil
}

// LoadSnapshot reads a snapshot file. The format follows the extension:
// .yaml or .yml for YAML, anything else is TOML.
func LoadSnapshot(path string) (*Snapshot, error) {
	var s Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("vtx: load snapshot: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("vtx: load snapshot %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return nil, fmt.Errorf("vtx: load snapshot %s: %w", path, err)
		}
	}
	if _, err := s.Values(); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteTOML encodes s as TOML.
func (s *Snapshot) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}

// WriteYAML encodes s as YAML.
func (s *Snapshot) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes s to path, choosing the format from the extension the same
// way LoadSnapshot does.
func (s *Snapshot) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vtx: save snapshot: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = s.WriteYAML(f)
	default:
		err = s.WriteTOML(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("vtx: save snapshot %s: %w", path, err)
	}
	return nil
}
