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
	"io"
	"sort"
	"text/tabwriter"

	"github.com/blacktop/go-vtx"
	"github.com/spf13/cobra"
)

var showReserved bool

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVarP(&showReserved, "reserved", "r", false, "Also print reserved fields")
}

var decodeCmd = &cobra.Command{
	Use:   "decode <layout> <word>...",
	Short: "Decode raw words with a registered register or table-entry layout",
	Long: `Decode raw 64-bit words with one of the registered layouts.

Multi-word structures such as VTd.ContextEntry take their words low first.
Run with no arguments to list the layouts.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			ls := vtx.Layouts()
			sort.Slice(ls, func(i, j int) bool { return ls[i].Name < ls[j].Name })
			for _, l := range ls {
				fmt.Fprintf(out, "%-24s %3d bytes\n", l.Name, l.Size)
			}
			return nil
		}

		l, ok := vtx.LookupLayout(args[0])
		if !ok {
			return fmt.Errorf("unknown layout %q (run 'vtx decode' to list them)", args[0])
		}
		if len(args) < 2 {
			return fmt.Errorf("%s needs at least one word", l.Name)
		}
		words := make([]uint64, 0, len(args)-1)
		for _, a := range args[1:] {
			v, err := parseUint(a, 64)
			if err != nil {
				return err
			}
			words = append(words, v)
		}
		fmt.Fprintf(out, "%s (%d bytes)\n", l.Name, l.Size)
		printFields(out, l.Decode(words...), showReserved)
		return nil
	},
}

func printFields(w io.Writer, fields []vtx.FieldValue, reserved bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		if f.Reserved && !reserved && f.Value == 0 {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\t%#x\n", f.Bits(), f.Name, f.Value)
	}
	tw.Flush()
}
