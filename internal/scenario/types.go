// Package scenario models the load-test description the pipeline transforms:
// a forest of scenarios whose leaves are HTTP tasks.
package scenario

import "time"

// Task is a single HTTP request of a scenario.
type Task struct {
	Name      string            `yaml:"name"`
	Method    string            `yaml:"method,omitempty"`
	URL       string            `yaml:"url"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	Body      string            `yaml:"body,omitempty"`
	ThinkTime time.Duration     `yaml:"think_time,omitempty"`
}

// WithHeader returns a copy of t with the header set. The receiver's header map
// is never modified.
func (t Task) WithHeader(name, value string) Task {
	headers := make(map[string]string, len(t.Headers)+1)
	for k, v := range t.Headers {
		headers[k] = v
	}

	headers[name] = value
	t.Headers = headers

	return t
}

// Scenario is the root of a subtree of scenarios and tasks.
type Scenario struct {
	Name     string      `yaml:"name"`
	Weight   int         `yaml:"weight,omitempty"`
	Tasks    []Task      `yaml:"tasks,omitempty"`
	Children []*Scenario `yaml:"children,omitempty"`
}

// Walk calls fn on every scenario of the subtree, children before their parent.
// It stops at the first error. Nil children are skipped.
func (s *Scenario) Walk(fn func(*Scenario) error) error {
	for _, c := range s.Children {
		if c == nil {
			continue
		}

		if err := c.Walk(fn); err != nil {
			return err
		}
	}

	return fn(s)
}

// AllTasks returns the tasks of the subtree in pre-order: own tasks first, then
// each child's.
func (s *Scenario) AllTasks() []Task {
	res := append([]Task(nil), s.Tasks...)
	for _, c := range s.Children {
		if c == nil {
			continue
		}

		res = append(res, c.AllTasks()...)
	}

	return res
}

// Description is the parsed input of a pipeline run.
type Description struct {
	Version   string      `yaml:"version"`
	Host      string      `yaml:"host,omitempty"`
	Scenarios []*Scenario `yaml:"scenarios"`
}
