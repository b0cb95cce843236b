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

var outPath string

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (.toml, .yaml or .yml); stdout as TOML when empty")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture the VMX capability MSRs of one CPU",
	Long: `Capture every VMX capability MSR of one CPU into a file that
the other commands accept through --snapshot.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		d, err := vtx.OpenMSR(cpu)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := vtx.CaptureSnapshot(d, cpu)
		if err != nil {
			return err
		}
		if outPath == "" {
			return s.WriteTOML(out)
		}
		if err := s.Save(outPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %d MSRs of cpu %d to %s\n", len(s.MSRs), cpu, outPath)
		return nil
	},
}
