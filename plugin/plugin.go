// Package plugin pairs transformation functions with the contract that says
// at which pipeline stages they may run, groups them by stage and applies them.
//
// A Plugin can only be built by marking a function with a valid contract:
//
//	var AddHeader = plugin.MustMark(contract.OnTask, "add-header",
//	    func(t scenario.Task) (scenario.Task, error) { ... })
//
// The pipeline then groups its plugins once per run and threads each item through
// the list of its stage:
//
//	groups, err := plugin.GroupByContract(plugins)
//	task, err = plugin.Apply(groups.Get(contract.OnTask), task)
package plugin

import (
	"errors"
	"fmt"
	"strings"

	"transformer/contract"
)

var (
	// ErrInvalidContract is returned when marking a function with a value that is
	// not a stage of the contract enumeration or a union of such stages.
	ErrInvalidContract = errors.New("invalid plugin contract")

	// ErrInvalidPlugin is returned when a value used as a plugin was never marked.
	ErrInvalidPlugin = errors.New("invalid plugin")

	// ErrPayloadType is returned by typed plugins called with a value of another type.
	ErrPayloadType = errors.New("unexpected plugin payload type")
)

// Func is the untyped shape of every plugin function.
type Func func(any) (any, error)

// Plugin is a function marked with its contract. The zero value is not a plugin.
type Plugin struct {
	name     string
	contract contract.Contract
	fn       Func
}

// New marks fn with contract c.
func New(c contract.Contract, name string, fn Func) (Plugin, error) {
	if !c.IsValid() {
		return Plugin{}, invalidContract(c)
	}

	if fn == nil {
		return Plugin{}, fmt.Errorf("%w: %q has a nil function", ErrInvalidPlugin, name)
	}

	return Plugin{name: name, contract: c, fn: fn}, nil
}

// Mark marks a function of a concrete payload type with contract c.
func Mark[T any](c contract.Contract, name string, fn func(T) (T, error)) (Plugin, error) {
	if fn == nil {
		return New(c, name, nil)
	}

	return New(c, name, func(v any) (any, error) {
		in, ok := v.(T)
		if !ok {
			var want T
			return nil, fmt.Errorf("%w: plugin %q expects %T, got %T", ErrPayloadType, name, want, v)
		}

		return fn(in)
	})
}

// MustNew is like New but panics on error. It is meant for package-level declarations.
func MustNew(c contract.Contract, name string, fn Func) Plugin {
	p, err := New(c, name, fn)
	if err != nil {
		panic(err)
	}

	return p
}

// MustMark is like Mark but panics on error.
func MustMark[T any](c contract.Contract, name string, fn func(T) (T, error)) Plugin {
	p, err := Mark(c, name, fn)
	if err != nil {
		panic(err)
	}

	return p
}

// ContractOf returns the contract p was marked with.
func ContractOf(p Plugin) (contract.Contract, error) {
	if p.fn == nil {
		return contract.None, fmt.Errorf("%w: %s was never marked with a contract", ErrInvalidPlugin, p)
	}

	return p.contract, nil
}

// Name returns the name given when marking.
func (p Plugin) Name() string { return p.name }

// Contract returns the contract of p, or contract.None for the zero Plugin.
func (p Plugin) Contract() contract.Contract { return p.contract }

// Call invokes the plugin function on v.
func (p Plugin) Call(v any) (any, error) {
	if p.fn == nil {
		return nil, fmt.Errorf("%w: %s cannot be called", ErrInvalidPlugin, p)
	}

	return p.fn(v)
}

func (p Plugin) String() string {
	if p.fn == nil {
		return "Plugin(<unmarked>)"
	}

	return fmt.Sprintf("Plugin(%s %s)", p.name, p.contract)
}

func invalidContract(c contract.Contract) error {
	names := contract.Names()

	suggestions := make([]string, 0, len(names))
	for _, n := range names {
		suggestions = append(suggestions, "contract."+n)
	}

	return fmt.Errorf("%w: %s is not a contract, did you mean %s?",
		ErrInvalidContract, c, strings.Join(suggestions, ", "))
}
