package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
host: https://shop.example.com
scenarios:
  - name: Checkout
    weight: 2
    tasks:
      - name: home
        url: /
      - name: add to cart
        method: post
        url: /cart
        body: '{"sku": 42}'
        headers:
          Content-Type: application/json
    children:
      - name: Payment
        tasks:
          - name: pay
            method: PUT
            url: /pay
            think_time: 500ms
  - name: Browse
    tasks:
      - name: catalog
        url: /catalog
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "1", d.Version)
	assert.Equal(t, "https://shop.example.com", d.Host)
	require.Len(t, d.Scenarios, 2)

	checkout := d.Scenarios[0]
	assert.Equal(t, "Checkout", checkout.Name)
	assert.Equal(t, 2, checkout.Weight)
	require.Len(t, checkout.Tasks, 2)

	assert.Equal(t, "GET", checkout.Tasks[0].Method)
	assert.Equal(t, "POST", checkout.Tasks[1].Method)
	assert.Equal(t, "application/json", checkout.Tasks[1].Headers["Content-Type"])
	assert.Equal(t, `{"sku": 42}`, checkout.Tasks[1].Body)

	require.Len(t, checkout.Children, 1)
	payment := checkout.Children[0]
	assert.Zero(t, payment.Weight, "weights are left to plugins and the program builder")
	assert.Equal(t, 500*time.Millisecond, payment.Tasks[0].ThinkTime)

	assert.Zero(t, d.Scenarios[1].Weight)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no scenarios", "scenarios: []"},
		{"missing name", "scenarios:\n  - tasks: [{url: /}]"},
		{"missing url", "scenarios:\n  - name: A\n    tasks: [{name: t}]"},
		{"nested missing name", "scenarios:\n  - name: A\n    children:\n      - tasks: [{url: /}]"},
		{"null scenario", "scenarios:\n  -\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidDescription)
		})
	}

	_, err := Parse([]byte("scenarios: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, d.Scenarios, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)

	out, err := Marshal(d)
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestWalk_PostOrder(t *testing.T) {
	root := &Scenario{
		Name: "root",
		Children: []*Scenario{
			{Name: "a", Children: []*Scenario{{Name: "a1"}, nil}},
			{Name: "b"},
		},
	}

	var visited []string

	require.NoError(t, root.Walk(func(s *Scenario) error {
		visited = append(visited, s.Name)
		return nil
	}))

	assert.Equal(t, []string{"a1", "a", "b", "root"}, visited)
}

func TestAllTasks(t *testing.T) {
	root := &Scenario{
		Name:  "root",
		Tasks: []Task{{Name: "r1"}},
		Children: []*Scenario{
			{Name: "a", Tasks: []Task{{Name: "a1"}, {Name: "a2"}}},
			{Name: "b", Tasks: []Task{{Name: "b1"}}},
		},
	}

	var names []string
	for _, task := range root.AllTasks() {
		names = append(names, task.Name)
	}

	assert.Equal(t, []string{"r1", "a1", "a2", "b1"}, names)
}

func TestWithHeader(t *testing.T) {
	orig := Task{Name: "t", Headers: map[string]string{"A": "1"}}

	changed := orig.WithHeader("B", "2")

	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, changed.Headers)
	assert.Equal(t, map[string]string{"A": "1"}, orig.Headers)
}
