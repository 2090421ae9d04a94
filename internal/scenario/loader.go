package scenario

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDescription is returned for structurally invalid descriptions.
var ErrInvalidDescription = errors.New("invalid scenario description")

// LoadFile loads and parses a YAML scenario description from the given path.
func LoadFile(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Description.
func Parse(data []byte) (*Description, error) {
	var d Description

	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	applyDefaults(&d)

	if err := validate(&d); err != nil {
		return nil, err
	}

	return &d, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(d *Description) {
	if d.Version == "" {
		d.Version = "1"
	}

	for _, root := range d.Scenarios {
		if root == nil {
			continue
		}

		_ = root.Walk(func(s *Scenario) error {
			for i := range s.Tasks {
				t := &s.Tasks[i]
				if t.Method == "" {
					t.Method = http.MethodGet
				}

				t.Method = strings.ToUpper(t.Method)
			}

			return nil
		})
	}
}

func validate(d *Description) error {
	if len(d.Scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios", ErrInvalidDescription)
	}

	for i, root := range d.Scenarios {
		if root == nil {
			return fmt.Errorf("%w: scenarios[%d] is empty", ErrInvalidDescription, i)
		}

		err := root.Walk(func(s *Scenario) error {
			if s.Name == "" {
				return fmt.Errorf("%w: scenario without a name under scenarios[%d]", ErrInvalidDescription, i)
			}

			for j, c := range s.Children {
				if c == nil {
					return fmt.Errorf("%w: scenario %q: children[%d] is empty", ErrInvalidDescription, s.Name, j)
				}
			}

			for j, t := range s.Tasks {
				if t.URL == "" {
					return fmt.Errorf("%w: scenario %q: task %d has no url", ErrInvalidDescription, s.Name, j)
				}
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Marshal serializes a Description to YAML.
func Marshal(d *Description) ([]byte, error) {
	return yaml.Marshal(d)
}
