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
	rootCmd.AddCommand(vmerrorCmd)
}

var vmerrorCmd = &cobra.Command{
	Use:   "vmerror [code]",
	Short: "Describe a VM-instruction error code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, c := range vtx.VMInstructionErrors() {
				msg, _ := vtx.MessageFor(uint32(c))
				fmt.Fprintf(out, "%2d  %s\n", uint32(c), msg)
			}
			return nil
		}
		code, err := parseUint(args[0], 32)
		if err != nil {
			return err
		}
		msg, err := vtx.MessageFor(uint32(code))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d  %s\n", code, msg)
		return nil
	},
}
