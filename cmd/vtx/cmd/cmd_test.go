/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testSnapshot describes a processor with TRUE controls and VMCS
// revision 4.
const testSnapshot = `cpu = 0

[msrs]
IA32_FEATURE_CONTROL = "0x0000000000000005"
IA32_VMX_BASIC = "0x00da040000000004"
IA32_VMX_PINBASED_CTLS = "0x0000007f00000016"
IA32_VMX_TRUE_PINBASED_CTLS = "0x0000007f00000006"
IA32_VMX_PROCBASED_CTLS = "0xfff9fffe0401e172"
IA32_VMX_TRUE_PROCBASED_CTLS = "0xfff9fffe04006172"
IA32_VMX_PROCBASED_CTLS2 = "0x000000ff00000000"
IA32_VMX_EXIT_CTLS = "0x01ffffff00036dff"
IA32_VMX_TRUE_EXIT_CTLS = "0x01ffffff00036dfb"
IA32_VMX_ENTRY_CTLS = "0x0003ffff000011ff"
IA32_VMX_TRUE_ENTRY_CTLS = "0x0003ffff000011fb"
IA32_VMX_CR0_FIXED0 = "0x0000000080000021"
IA32_VMX_CR0_FIXED1 = "0x00000000ffffffff"
IA32_VMX_CR4_FIXED0 = "0x0000000000002000"
IA32_VMX_CR4_FIXED1 = "0x00000000003727ff"
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "caps.toml")
	if err := os.WriteFile(path, []byte(testSnapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag variables outlive a single Execute.
	debug, cpu, snapshotPath = false, 0, ""
	allCPUs, format, showReserved, outPath = false, "text", false, ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCapsJSON(t *testing.T) {
	snap := writeSnapshot(t)
	out, err := run(t, "caps", "--snapshot", snap, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}

	type bit struct {
		Name    string
		Bit     uint
		Support string
	}
	var got []struct {
		CPU      int
		Revision uint32
		Controls map[string][]bit
		Fixed    map[string]map[string]string
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0].Revision != 4 {
		t.Fatalf("got %+v", got)
	}
	if len(got[0].Controls) != 5 {
		t.Errorf("%d control words reported, want 5", len(got[0].Controls))
	}
	want := []bit{
		{"ExternalInterruptExiting", 0, "yes"},
		{"NMIExiting", 3, "yes"},
		{"VirtualNMIs", 5, "yes"},
		{"PreemptionTimer", 6, "yes"},
		{"Reserved1", 1, "forced"},
		{"Reserved2", 2, "forced"},
	}
	if diff := cmp.Diff(want, got[0].Controls["pinbased"]); diff != "" {
		t.Errorf("pinbased mismatch (-want +got):\n%s", diff)
	}
	if s := got[0].Fixed["cr0"]["bit31"]; s != "forced" {
		t.Errorf("CR0.PG = %q, want forced", s)
	}
	if s := got[0].Fixed["cr4"]["bit13"]; s != "forced" {
		t.Errorf("CR4.VMXE = %q, want forced", s)
	}
}

func TestCapsBadFormat(t *testing.T) {
	if _, err := run(t, "caps", "--snapshot", writeSnapshot(t), "--format", "xml"); err == nil {
		t.Error("caps --format xml succeeded")
	}
}

func TestAdjust(t *testing.T) {
	snap := writeSnapshot(t)
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"adjust", "procbased2", "0xffffffff"}, []string{"desired:  0xffffffff", "adjusted: 0x000000ff"}},
		{[]string{"adjust", "cr0", "1"}, []string{"desired:  0x00000001", "adjusted: 0x80000021"}},
		{[]string{"adjust", "pinbased", "0x9"}, []string{"adjusted: 0x0000000f", "forced:   0x00000006"}},
		{[]string{"adjust", "EXIT", "0"}, []string{"desired:  0x00000000", "adjusted: 0x00036dfb"}},
		{[]string{"adjust", "entry", "0", "--debug"}, []string{"adjusted: 0x000011fb"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, append(tt.args, "--snapshot", snap)...)
			if err != nil {
				t.Fatal(err)
			}
			lines := strings.Split(out, "\n")
			for _, want := range tt.want {
				if !slices.Contains(lines, want) {
					t.Errorf("output missing line %q:\n%s", want, out)
				}
			}
		})
	}

	if _, err := run(t, "adjust", "vmfunc", "0", "--snapshot", snap); err == nil {
		t.Error("adjust vmfunc succeeded")
	}
	if _, err := run(t, "adjust", "exit", "0x1_0000_0000", "--snapshot", snap); err == nil {
		t.Error("adjust with a 33-bit value succeeded")
	}
}

func TestDecode(t *testing.T) {
	out, err := run(t, "decode", "PDE.2MB", "0x600083")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`21-51\s+Frame\s+0x3\n`).MatchString(out) {
		t.Errorf("frame not decoded:\n%s", out)
	}
	if strings.Contains(out, "Ignored0") {
		t.Errorf("zero reserved field printed without --reserved:\n%s", out)
	}

	out, err = run(t, "decode")
	if err != nil || !strings.Contains(out, "VTd.ContextEntry") {
		t.Errorf("layout list = %q, %v", out, err)
	}
	if _, err := run(t, "decode", "NoSuchLayout", "0"); err == nil {
		t.Error("decode of an unknown layout succeeded")
	}
}

func TestLookups(t *testing.T) {
	out, err := run(t, "vmerror", "4")
	if err != nil || !strings.Contains(out, "VMLAUNCH with non-clear VMCS") {
		t.Errorf("vmerror 4 = %q, %v", out, err)
	}
	if _, err := run(t, "vmerror", "14"); err == nil {
		t.Error("vmerror 14 succeeded")
	}

	out, err = run(t, "vmcs", "0x681e")
	if err != nil || !strings.Contains(out, "GUEST_RIP") || !strings.Contains(out, "guest-state") {
		t.Errorf("vmcs 0x681e = %q, %v", out, err)
	}
	if !slices.Contains(strings.Split(out, "\n"), "encoding: 0x681e") {
		t.Errorf("vmcs 0x681e encoding line:\n%s", out)
	}
}
