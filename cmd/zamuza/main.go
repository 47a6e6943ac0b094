// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"zamuza/internal/compiler"
	"zamuza/internal/errors"
	"zamuza/internal/ir"
)

var rootCmd = &cobra.Command{
	Use:           "zamuza",
	Short:         "An interaction nets compiler",
	Long:          "zamuza compiles interaction-net programs to C or runs them in-process.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "error: ")
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// readSources loads every input path; "-" reads stdin.
func readSources(paths []string) ([]compiler.Source, error) {
	sources := make([]compiler.Source, 0, len(paths))
	for _, path := range paths {
		if path == "-" {
			text, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			sources = append(sources, compiler.Source{Filename: "<stdin>", Text: string(text)})
			continue
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		sources = append(sources, compiler.Source{Filename: path, Text: string(text)})
	}
	return sources, nil
}

// compileSources runs the front half of the pipeline and renders any
// diagnostics to stderr, file by file.
func compileSources(paths []string) (*ir.Program, error) {
	sources, err := readSources(paths)
	if err != nil {
		return nil, err
	}

	program, diags, err := compiler.Compile(sources)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		reportDiagnostics(sources, diags)
		return nil, fmt.Errorf("exiting due to %d previous error(s)", len(diags))
	}

	return program, nil
}

// reportDiagnostics renders each diagnostic, in the order given, against
// the source text of the file its position names.
func reportDiagnostics(sources []compiler.Source, diags []errors.CompilerError) {
	reporters := make(map[string]*errors.Reporter, len(sources))
	for _, source := range sources {
		reporters[source.Filename] = errors.NewReporter(source.Filename, source.Text)
	}

	fallback := errors.NewReporter("<input>", "")
	for _, diag := range diags {
		reporter, ok := reporters[diag.Position.Filename]
		if !ok {
			reporter = fallback
		}
		fmt.Fprint(os.Stderr, reporter.Format(diag))
	}
}

// newLogger builds the stderr logger used for trace and timing output.
func newLogger(trace bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if trace {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
