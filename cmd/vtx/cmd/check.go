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
	"errors"
	"fmt"

	"github.com/blacktop/go-vtx"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check VMX support, firmware enablement and msr device access",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ok, err := vtx.Supported()
		if err != nil {
			fmt.Fprintf(out, "vmx support: error: %v\n", err)
		} else {
			fmt.Fprintf(out, "vmx support: %v\n", ok)
		}

		r, done, err := openReader(cpu)
		if err != nil {
			if errors.Is(err, vtx.ErrMSRUnavailable) {
				fmt.Fprintln(out, "msr access: unavailable (load the msr module and run as root)")
				return nil
			}
			return err
		}
		defer done()
		fmt.Fprintln(out, "msr access: ok")

		if fc, err := r.ReadMSR(vtx.IA32FeatureControl); err == nil {
			fc := vtx.FeatureControl(fc)
			fmt.Fprintf(out, "feature control: locked=%v vmx-outside-smx=%v\n",
				fc.Has(vtx.FeatureControlLocked), fc.Has(vtx.FeatureControlVMXOutsideSMX))
			if !fc.VMXAllowed() {
				fmt.Fprintf(out, "vmx enabled: false (%v)\n", vtx.ErrVMXDisabled)
				return nil
			}
			fmt.Fprintln(out, "vmx enabled: true")
		}

		basic, err := r.ReadMSR(vtx.IA32VMXBasic)
		if err != nil {
			return err
		}
		b := vtx.VMXBasic(basic)
		fmt.Fprintf(out, "vmcs revision: %#x\n", b.Revision())
		fmt.Fprintf(out, "vmcs region size: %d bytes\n", b.RegionSize())
		fmt.Fprintf(out, "true controls: %v\n", b.Has(vtx.BasicTrueControls))
		return nil
	},
}
