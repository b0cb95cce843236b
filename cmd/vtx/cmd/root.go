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
	"os"
	"strconv"

	"github.com/blacktop/go-vtx"
	"github.com/spf13/cobra"
	"gvisor.dev/gvisor/pkg/log"
)

var (
	debug        bool
	cpu          int
	snapshotPath string
)

var rootCmd = &cobra.Command{
	Use:           "vtx",
	Short:         "Inspect VT-x capabilities and decode VMX/VT-d structures",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetTarget(log.GoogleEmitter{Writer: &log.Writer{Next: os.Stderr}})
		if v, err := strconv.ParseBool(os.Getenv("VTX_DEBUG")); err == nil && v {
			debug = true
		}
		if debug {
			log.SetLevel(log.Debug)
		} else {
			log.SetLevel(log.Warning)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vtx: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVarP(&cpu, "cpu", "c", 0, "Logical CPU whose MSRs are read")
	rootCmd.PersistentFlags().StringVarP(&snapshotPath, "snapshot", "s", "", "Read MSRs from a snapshot file instead of /dev/cpu/N/msr")
}

// openReader returns the MSR source for cpu: the --snapshot file when one
// is given, otherwise the msr device.
func openReader(cpu int) (vtx.MSRReader, func(), error) {
	if snapshotPath != "" {
		s, err := vtx.LoadSnapshot(snapshotPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	d, err := vtx.OpenMSR(cpu)
	if err != nil {
		return nil, nil, err
	}
	return d, func() { d.Close() }, nil
}

// parseUint accepts decimal, 0x hex, 0o octal and 0b binary.
func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}
