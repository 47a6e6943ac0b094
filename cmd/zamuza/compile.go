// SPDX-License-Identifier: Apache-2.0
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zamuza/internal/codegen"
	"zamuza/internal/ir"
)

var compileFlags struct {
	output    string
	format    string
	stackSize int
	trace     bool
	timing    bool
}

var compileCmd = &cobra.Command{
	Use:   "compile [input...]",
	Short: "Compile sources to C or a native executable",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileFlags.output, "output", "o", "-", `output file, or "-" for stdout`)
	compileCmd.Flags().StringVar(&compileFlags.format, "format", "c", `output format: "c" or "exe"`)
	compileCmd.Flags().IntVar(&compileFlags.stackSize, "stack-size", codegen.DefaultStackSize, "runtime equation stack size")
	compileCmd.Flags().BoolVar(&compileFlags.trace, "trace", false, "emit a runtime that traces every reduction")
	compileCmd.Flags().BoolVar(&compileFlags.timing, "timing", false, "emit a runtime that reports reduction statistics")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	program, err := compileSources(args)
	if err != nil {
		return err
	}

	opts := codegen.Options{
		StackSize: compileFlags.stackSize,
		Trace:     compileFlags.trace,
		Timing:    compileFlags.timing,
	}

	switch compileFlags.format {
	case "c":
		return writeC(program, opts)
	case "exe":
		return writeExecutable(program, opts)
	default:
		return fmt.Errorf("unknown format %q (want \"c\" or \"exe\")", compileFlags.format)
	}
}

func writeC(program *ir.Program, opts codegen.Options) error {
	if compileFlags.output == "-" {
		return codegen.EmitC(os.Stdout, program, opts)
	}

	file, err := os.Create(compileFlags.output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer file.Close()

	if err := codegen.EmitC(file, program, opts); err != nil {
		return err
	}
	color.Green("wrote %s", compileFlags.output)
	return nil
}

// writeExecutable pipes the emitted C through the system C compiler. The
// compiler defaults to "cc" and is overridable via $CC.
func writeExecutable(program *ir.Program, opts codegen.Options) error {
	if compileFlags.output == "-" {
		return fmt.Errorf("--format exe needs an output path")
	}

	var source bytes.Buffer
	if err := codegen.EmitC(&source, program, opts); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "zamuza-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	cPath := filepath.Join(dir, "out.c")
	if err := os.WriteFile(cPath, source.Bytes(), 0o644); err != nil {
		return err
	}

	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}

	build := exec.Command(cc, "-O2", "-o", compileFlags.output, cPath)
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", cc, err)
	}
	color.Green("wrote %s", compileFlags.output)
	return nil
}
