package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformer/contract"
	"transformer/plugin"
)

func passthrough(c contract.Contract, name string) func(Options) (plugin.Plugin, error) {
	return func(Options) (plugin.Plugin, error) {
		return plugin.New(c, name, func(v any) (any, error) { return v, nil })
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r := New()
	require.NoError(t, r.Register(Factory{Name: "header", Contract: contract.OnTask, Create: passthrough(contract.OnTask, "header")}))
	require.NoError(t, r.Register(Factory{Name: "dedupe", Contract: contract.OnTaskSequence, Create: passthrough(contract.OnTaskSequence, "dedupe")}))
	require.NoError(t, r.Register(Factory{Name: "global", Contract: contract.OnPythonProgram, Create: passthrough(contract.OnPythonProgram, "global")}))

	return r
}

func TestRegister(t *testing.T) {
	r := testRegistry(t)

	assert.True(t, r.Has("header"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, []string{"dedupe", "global", "header"}, r.Names())

	var order []string
	for _, f := range r.Factories() {
		order = append(order, f.Name)
	}

	assert.Equal(t, []string{"header", "dedupe", "global"}, order)

	f, ok := r.Get("dedupe")
	require.True(t, ok)
	assert.Equal(t, contract.OnTaskSequence, f.Contract)
}

func TestRegister_Errors(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name    string
		factory Factory
		want    error
	}{
		{"empty name", Factory{Contract: contract.OnTask, Create: passthrough(contract.OnTask, "x")}, ErrInvalidFactory},
		{"nil create", Factory{Name: "x", Contract: contract.OnTask}, ErrInvalidFactory},
		{"invalid contract", Factory{Name: "x", Contract: contract.Contract(0x20), Create: passthrough(contract.OnTask, "x")}, plugin.ErrInvalidContract},
		{"duplicate", Factory{Name: "header", Contract: contract.OnTask, Create: passthrough(contract.OnTask, "header")}, ErrDuplicatePlugin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.factory)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolve_KeepsOrder(t *testing.T) {
	r := testRegistry(t)

	plugins, err := r.Resolve([]Ref{{Name: "global"}, {Name: "header"}, {Name: "dedupe"}, {Name: "header"}})
	require.NoError(t, err)

	var names []string
	for _, p := range plugins {
		names = append(names, p.Name())
	}

	assert.Equal(t, []string{"global", "header", "dedupe", "header"}, names)
}

func TestResolve_Unknown(t *testing.T) {
	r := testRegistry(t)

	_, err := r.Resolve([]Ref{{Name: "header"}, {Name: "hedaer"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlugin)
	assert.Contains(t, err.Error(), "did you mean header?")

	_, err = r.Resolve([]Ref{{Name: "completely-different"}})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestResolve_CreateErrors(t *testing.T) {
	r := New()
	boom := errors.New("missing option")

	require.NoError(t, r.Register(Factory{
		Name:     "broken",
		Contract: contract.OnTask,
		Create:   func(Options) (plugin.Plugin, error) { return plugin.Plugin{}, boom },
	}))
	require.NoError(t, r.Register(Factory{
		Name:     "unmarked",
		Contract: contract.OnTask,
		Create:   func(Options) (plugin.Plugin, error) { return plugin.Plugin{}, nil },
	}))
	require.NoError(t, r.Register(Factory{
		Name:     "liar",
		Contract: contract.OnTask,
		Create:   passthrough(contract.OnScenario, "liar"),
	}))

	_, err := r.Resolve([]Ref{{Name: "broken"}})
	assert.ErrorIs(t, err, boom)

	_, err = r.Resolve([]Ref{{Name: "unmarked"}})
	assert.ErrorIs(t, err, plugin.ErrInvalidPlugin)

	_, err = r.Resolve([]Ref{{Name: "liar"}})
	assert.ErrorIs(t, err, ErrContractMismatch)
}

func TestResolve_PassesOptions(t *testing.T) {
	r := New()

	var seen Options

	require.NoError(t, r.Register(Factory{
		Name:     "opt",
		Contract: contract.OnTask,
		Create: func(o Options) (plugin.Plugin, error) {
			seen = o
			return passthrough(contract.OnTask, "opt")(o)
		},
	}))

	_, err := r.Resolve([]Ref{{Name: "opt", Options: Options{"value": "42"}}})
	require.NoError(t, err)
	assert.Equal(t, "42", seen.Get("value", ""))
	assert.Equal(t, "def", seen.Get("missing", "def"))
}

func TestClosest(t *testing.T) {
	candidates := []string{"dedupe", "global", "header", "prefix", "weight"}

	assert.Equal(t, []string{"header"}, closest("Header", candidates, 3))
	assert.Equal(t, []string{"dedupe"}, closest("dedup", candidates, 3))
	assert.Equal(t, []string{"header"}, closest("hedaer", candidates, 3))
	assert.Empty(t, closest("zzzzzzzz", candidates, 3))
	assert.Len(t, closest("x", []string{"a", "b", "c", "d"}, 2), 2)
}
