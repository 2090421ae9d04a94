// Package main provides the CLI entrypoint for transformer.
//
// transformer turns a YAML scenario description into a locustfile, running the
// configured plugins at the stages they are tagged for:
//   - OnTaskSequence on each scenario's task list
//   - OnTask on each task
//   - OnScenario on each scenario
//   - OnPythonProgram on the generated program
package main

import (
	"os"

	_ "transformer/internal/builtin"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
