package contract

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalText implements encoding.TextMarshaler.
func (c Contract) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid contract %s", c)
	}

	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Contract) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// MarshalYAML implements yaml.Marshaler. Unions are written as a flow sequence.
func (c Contract) MarshalYAML() (interface{}, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid contract %s", c)
	}

	stages := make([]string, 0, len(declared))
	for _, d := range declared {
		if c.Includes(d.c) {
			stages = append(stages, d.name)
		}
	}

	if len(stages) == 1 {
		return stages[0], nil
	}

	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range stages {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: s})
	}

	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Both "OnTask|OnScenario" and
// [OnTask, OnScenario] are accepted.
func (c *Contract) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return c.UnmarshalText([]byte(value.Value))

	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}

		var res Contract

		for _, name := range names {
			parsed, err := Parse(name)
			if err != nil {
				return fmt.Errorf("line %d: %w", value.Line, err)
			}

			res |= parsed
		}

		if res == None {
			return fmt.Errorf("line %d: %w: empty contract", value.Line, ErrUnknownStage)
		}

		*c = res

		return nil

	default:
		return fmt.Errorf("line %d: contract must be a string or a list of strings", value.Line)
	}
}
