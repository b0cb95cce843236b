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

	"github.com/blacktop/go-vtx"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(vmcsCmd)
}

var vmcsCmd = &cobra.Command{
	Use:   "vmcs <encoding|name>",
	Short: "Look up a VMCS field by name or component encoding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		f, err := vtx.ParseVMCSField(args[0])
		if err != nil {
			return err
		}
		e := f.Encoding()
		fmt.Fprintf(out, "name:     %s\n", f)
		fmt.Fprintf(out, "encoding: 0x%04x\n", uint32(e))
		fmt.Fprintf(out, "width:    %s\n", e.Width())
		fmt.Fprintf(out, "type:     %s\n", e.Type())
		fmt.Fprintf(out, "index:    %d\n", e.Index())
		if e.AccessType() == vtx.AccessHigh {
			fmt.Fprintln(out, "access:   high")
		} else {
			fmt.Fprintln(out, "access:   full")
		}
		if !e.Valid() {
			fmt.Fprintln(out, "warning:  reserved bits set or high access on a non-64-bit field")
		}
		return nil
	},
}
