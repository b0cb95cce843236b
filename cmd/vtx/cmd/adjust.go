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
	"fmt"
	"strings"

	"github.com/blacktop/go-vtx"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(adjustCmd)
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <pinbased|procbased|procbased2|exit|entry|cr0|cr4> <value>",
	Short: "Clamp a control word to what the CPU allows",
	Long: `Clamp a desired control word against the capability MSRs.

Bits the CPU cannot set are cleared and bits it requires are forced on.
The TRUE capability MSRs are used when IA32_VMX_BASIC reports them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		desired, err := parseUint(args[1], 32)
		if err != nil {
			return err
		}

		r, done, err := openReader(cpu)
		if err != nil {
			return err
		}
		defer done()

		var got uint32
		var layout string
		switch name := strings.ToLower(args[0]); name {
		case "cr0":
			v, err := vtx.AdjustCR0(r, vtx.CR0(desired))
			if err != nil {
				return err
			}
			got, layout = uint32(v), "CR0"
		case "cr4":
			v, err := vtx.AdjustCR4(r, vtx.CR4(desired))
			if err != nil {
				return err
			}
			got, layout = uint32(v), "CR4"
		default:
			kind, err := vtx.ParseControlKind(name)
			if err != nil {
				return err
			}
			got, err = vtx.AdjustKind(r, kind, uint32(desired))
			if err != nil {
				return err
			}
			layout = kind.Layout().Name
		}

		fmt.Fprintf(out, "desired:  0x%08x\n", uint32(desired))
		fmt.Fprintf(out, "adjusted: 0x%08x\n", got)
		if cleared := uint32(desired) &^ got; cleared != 0 {
			fmt.Fprintf(out, "cleared:  0x%08x\n", cleared)
		}
		if forced := got &^ uint32(desired); forced != 0 {
			fmt.Fprintf(out, "forced:   0x%08x\n", forced)
		}
		if l, ok := vtx.LookupLayout(layout); ok {
			printFields(out, l.Decode(uint64(got)), false)
		}
		return nil
	},
}
