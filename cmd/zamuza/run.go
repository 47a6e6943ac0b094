// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zamuza/internal/vm"
)

var runFlags struct {
	stackSize int
	trace     bool
	timing    bool
}

var runCmd = &cobra.Command{
	Use:   "run [input...]",
	Short: "Compile and run in-process",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&runFlags.stackSize, "stack-size", vm.DefaultStackSize, "runtime equation stack size")
	runCmd.Flags().BoolVar(&runFlags.trace, "trace", false, "trace every reduction to stderr")
	runCmd.Flags().BoolVar(&runFlags.timing, "timing", false, "report reduction statistics")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	program, err := compileSources(args)
	if err != nil {
		return err
	}

	machine := vm.New(program, vm.Options{
		StackSize: runFlags.stackSize,
		Trace:     runFlags.trace,
		Timing:    runFlags.timing,
		Logger:    newLogger(runFlags.trace),
	})

	outputs, err := machine.Run()
	if err != nil {
		return err
	}

	for _, output := range outputs {
		fmt.Println(output)
	}
	return nil
}
