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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/blacktop/go-vtx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	allCPUs bool
	format  string
)

func init() {
	rootCmd.AddCommand(capsCmd)
	capsCmd.Flags().BoolVarP(&allCPUs, "all-cpus", "a", false, "Read every online CPU and report whether they agree")
	capsCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")
}

// capsReport is the machine-readable form of one CPU's capabilities.
type capsReport struct {
	CPU      int                               `json:"cpu" yaml:"cpu"`
	Revision uint32                            `json:"revision" yaml:"revision"`
	Controls map[string][]vtx.ControlSupport   `json:"controls" yaml:"controls"`
	Fixed    map[string]map[string]vtx.Support `json:"fixed" yaml:"fixed"`
	Error    string                            `json:"error,omitempty" yaml:"error,omitempty"`
}

var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "Classify every VM-execution, exit and entry control the CPU supports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown format %q", format)
		}

		if !allCPUs || snapshotPath != "" {
			r, done, err := openReader(cpu)
			if err != nil {
				return err
			}
			defer done()
			caps, err := vtx.ReadCapabilities(r)
			if err != nil {
				return err
			}
			caps.CPU = cpu
			return printCaps(out, []vtx.CPUCapabilities{{CPU: cpu, Caps: caps}})
		}

		cpus, err := vtx.OnlineCPUs()
		if err != nil {
			return err
		}
		all, err := vtx.ReadAllCapabilities(cmd.Context(), cpus, func(cpu int) (vtx.MSRReader, error) {
			d, err := vtx.OpenMSR(cpu)
			if err != nil {
				return nil, err
			}
			return d, nil
		})
		if err != nil {
			return err
		}
		if err := printCaps(out, all); err != nil {
			return err
		}
		if format == "text" {
			if same, err := vtx.Uniform(all); err != nil {
				fmt.Fprintf(out, "\nuniform: unknown (%v)\n", err)
			} else {
				fmt.Fprintf(out, "\nuniform: %v\n", same)
			}
		}
		return nil
	},
}

func report(c vtx.CPUCapabilities) capsReport {
	r := capsReport{CPU: c.CPU}
	if c.Err != nil {
		r.Error = c.Err.Error()
		return r
	}
	r.Revision = c.Caps.Basic.Revision()
	r.Controls = make(map[string][]vtx.ControlSupport)
	for _, k := range vtx.ControlKinds() {
		if _, ok := c.Caps.Controls[k]; ok {
			r.Controls[k.String()] = c.Caps.Report(k)
		}
	}
	r.Fixed = map[string]map[string]vtx.Support{
		"cr0": fixedReport(c.Caps.CR0),
		"cr4": fixedReport(c.Caps.CR4),
	}
	return r
}

// fixedReport classifies the CR bits that are not freely settable.
func fixedReport(m vtx.ControlMasks) map[string]vtx.Support {
	out := make(map[string]vtx.Support)
	for bit := uint(0); bit < 32; bit++ {
		mask := uint32(1) << bit
		switch {
		case m.Required&mask != 0:
			out[fmt.Sprintf("bit%d", bit)] = vtx.Forced
		case m.Allowed&mask == 0:
			out[fmt.Sprintf("bit%d", bit)] = vtx.Unsupported
		}
	}
	return out
}

func printCaps(w io.Writer, all []vtx.CPUCapabilities) error {
	reports := make([]capsReport, 0, len(all))
	for _, c := range all {
		reports = append(reports, report(c))
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}

	for _, r := range reports {
		fmt.Fprintf(w, "cpu %d", r.CPU)
		if r.Error != "" {
			fmt.Fprintf(w, ": %s\n", r.Error)
			continue
		}
		fmt.Fprintf(w, " (vmcs revision %#x)\n", r.Revision)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, k := range vtx.ControlKinds() {
			bits, ok := r.Controls[k.String()]
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "\n%s\n", k)
			for _, b := range bits {
				fmt.Fprintf(tw, "  %d\t%s\t%s\n", b.Bit, b.Name, b.Support)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
