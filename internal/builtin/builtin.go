// Package builtin provides the plugins shipped with transformer. Importing the
// package registers them into registry.Default.
package builtin

import (
	"errors"
	"fmt"
	"strconv"

	"transformer/contract"
	"transformer/internal/program"
	"transformer/internal/registry"
	"transformer/internal/scenario"
	"transformer/plugin"
)

// ErrMissingOption is returned by factories when a required option is absent.
var ErrMissingOption = errors.New("missing plugin option")

func init() {
	for _, f := range Factories() {
		registry.Register(f)
	}
}

// Factories returns the built-in plugin factories in registration order.
func Factories() []registry.Factory {
	return []registry.Factory{
		{
			Name:        "header",
			Contract:    contract.OnTask,
			Description: "sets header <name> to <value> on every task",
			Create:      newHeader,
		},
		{
			Name:        "dedupe",
			Contract:    contract.OnTaskSequence,
			Description: "drops consecutive tasks repeating the same method and url",
			Create:      newDedupe,
		},
		{
			Name:        "weight",
			Contract:    contract.OnScenario,
			Description: "sets weight <default> on scenarios without a positive weight",
			Create:      newWeight,
		},
		{
			Name:        "prefix",
			Contract:    contract.Combine(contract.OnTask, contract.OnScenario),
			Description: "prefixes task and scenario names with <value>",
			Create:      newPrefix,
		},
		{
			Name:        "global",
			Contract:    contract.OnPythonProgram,
			Description: "adds <import> and <code> to the program's module scope",
			Create:      newGlobal,
		},
	}
}

func requireOption(opts registry.Options, key string) (string, error) {
	v := opts.Get(key, "")
	if v == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingOption, key)
	}

	return v, nil
}

func newHeader(opts registry.Options) (plugin.Plugin, error) {
	name, err := requireOption(opts, "name")
	if err != nil {
		return plugin.Plugin{}, err
	}

	value := opts.Get("value", "")

	return plugin.Mark(contract.OnTask, "header", func(t scenario.Task) (scenario.Task, error) {
		return t.WithHeader(name, value), nil
	})
}

func newDedupe(registry.Options) (plugin.Plugin, error) {
	return plugin.Mark(contract.OnTaskSequence, "dedupe", func(tasks []scenario.Task) ([]scenario.Task, error) {
		out := make([]scenario.Task, 0, len(tasks))

		for i, t := range tasks {
			if i > 0 && t.Method == tasks[i-1].Method && t.URL == tasks[i-1].URL {
				continue
			}

			out = append(out, t)
		}

		return out, nil
	})
}

func newWeight(opts registry.Options) (plugin.Plugin, error) {
	def, err := strconv.Atoi(opts.Get("default", "1"))
	if err != nil || def <= 0 {
		return plugin.Plugin{}, fmt.Errorf("option %q must be a positive integer, got %q", "default", opts.Get("default", ""))
	}

	return plugin.Mark(contract.OnScenario, "weight", func(s *scenario.Scenario) (*scenario.Scenario, error) {
		if s.Weight <= 0 {
			s.Weight = def
		}

		return s, nil
	})
}

func newPrefix(opts registry.Options) (plugin.Plugin, error) {
	prefix, err := requireOption(opts, "value")
	if err != nil {
		return plugin.Plugin{}, err
	}

	c := contract.Combine(contract.OnTask, contract.OnScenario)

	return plugin.New(c, "prefix", func(v any) (any, error) {
		switch x := v.(type) {
		case scenario.Task:
			x.Name = prefix + x.Name
			return x, nil
		case *scenario.Scenario:
			x.Name = prefix + x.Name
			return x, nil
		default:
			return nil, fmt.Errorf("%w: prefix cannot handle %T", plugin.ErrPayloadType, v)
		}
	})
}

func newGlobal(opts registry.Options) (plugin.Plugin, error) {
	imp := opts.Get("import", "")
	code := opts.Get("code", "")

	if imp == "" && code == "" {
		return plugin.Plugin{}, fmt.Errorf("%w: %q or %q", ErrMissingOption, "import", "code")
	}

	return plugin.Mark(contract.OnPythonProgram, "global", func(p *program.Program) (*program.Program, error) {
		if imp != "" {
			p.AddImport(imp)
		}

		if code != "" {
			p.Globals = append(p.Globals, code)
		}

		return p, nil
	})
}
