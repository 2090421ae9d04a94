// Package contract defines the pipeline stages a plugin may declare.
//
// A Contract is a set of stages. Single stages are distinct bits, and a plugin
// that runs at several stages declares their union:
//
//	contract.Combine(contract.OnTask, contract.OnScenario)
//
// # Stages
//
//   - OnTask: operates on one task, independently of every other task.
//   - OnScenario: operates on one scenario, the root of a subtree of scenarios and
//     tasks. It is applied to every scenario by the pipeline, so plugins must not
//     recurse into children themselves.
//   - OnPythonProgram: operates on the complete generated program.
//   - OnTaskSequence: operates on the ordered task list of one scenario. This is the
//     historical stage and remains supported next to the finer-grained ones.
package contract

import (
	"errors"
	"fmt"
	"strings"
)

type Contract uint8

const (
	OnTask          Contract = 1 << iota // one task
	OnScenario                           // one scenario subtree root
	OnPythonProgram                      // the whole generated program
	OnTaskSequence                       // the task list of a scenario (legacy)

	All  Contract = (1 << iota) - 1 // all stages combined
	None Contract = 0               // no stage selected
)

// ErrUnknownStage is returned when a stage name is not part of the enumeration.
var ErrUnknownStage = errors.New("unknown contract stage")

// declared lists the stages in declaration order, for names and suggestions.
var declared = []struct {
	c    Contract
	name string
}{
	{OnTask, "OnTask"},
	{OnScenario, "OnScenario"},
	{OnPythonProgram, "OnPythonProgram"},
	{OnTaskSequence, "OnTaskSequence"},
}

// base is the closed list of stages used for grouping.
var base = []Contract{OnTask, OnTaskSequence, OnScenario, OnPythonProgram}

// Base returns the stages plugins are grouped by, in grouping order.
func Base() []Contract {
	return append([]Contract(nil), base...)
}

// Names returns the single-stage names in declaration order.
func Names() []string {
	names := make([]string, 0, len(declared))
	for _, d := range declared {
		names = append(names, d.name)
	}

	return names
}

// Combine returns the union of the given contracts.
func Combine(cs ...Contract) Contract {
	var res Contract
	for _, c := range cs {
		res |= c
	}

	return res
}

// Includes reports whether c and stage share at least one stage.
func (c Contract) Includes(stage Contract) bool {
	return c&stage != 0
}

// Union returns c combined with other.
func (c Contract) Union(other Contract) Contract {
	return c | other
}

// Intersect returns the stages present in both c and other.
func (c Contract) Intersect(other Contract) Contract {
	return c & other
}

// IsValid reports whether c names at least one stage and nothing outside All.
func (c Contract) IsValid() bool {
	return c != None && c&^All == 0
}

// Stages returns the base stages included in c, in grouping order.
func (c Contract) Stages() []Contract {
	var res []Contract
	for _, s := range base {
		if c.Includes(s) {
			res = append(res, s)
		}
	}

	return res
}

func (c Contract) String() string {
	if c == None {
		return "None"
	}

	if c&^All != 0 {
		return fmt.Sprintf("Contract(%#x)", uint8(c))
	}

	parts := make([]string, 0, len(declared))
	for _, d := range declared {
		if c.Includes(d.c) {
			parts = append(parts, d.name)
		}
	}

	return strings.Join(parts, "|")
}

// Parse parses a stage name or a union of names separated by "|" or ",".
func Parse(s string) (Contract, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ','
	})

	var res Contract

	for _, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			continue
		}

		c, ok := lookup(name)
		if !ok {
			return None, fmt.Errorf("%w: %q (expected one of %s)",
				ErrUnknownStage, name, strings.Join(Names(), ", "))
		}

		res |= c
	}

	if res == None {
		return None, fmt.Errorf("%w: empty contract %q", ErrUnknownStage, s)
	}

	return res, nil
}

func lookup(name string) (Contract, bool) {
	for _, d := range declared {
		if d.name == name {
			return d.c, true
		}
	}

	return None, false
}
