// Package registry provides plugin factory registration and lookup by name.
//
// # Adding a Plugin
//
// Each plugin package registers its factories from init():
//
//	func init() {
//	    registry.Register(registry.Factory{
//	        Name:        "header",
//	        Contract:    contract.OnTask,
//	        Description: "sets a header on every task",
//	        Create:      newHeader,
//	    })
//	}
//
// Plugin packages must be imported (via blank import) by the binary so that
// their init() functions run.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"transformer/contract"
	"transformer/plugin"
)

var (
	ErrUnknownPlugin    = errors.New("unknown plugin")
	ErrDuplicatePlugin  = errors.New("plugin already registered")
	ErrInvalidFactory   = errors.New("invalid plugin factory")
	ErrContractMismatch = errors.New("plugin contract does not match its factory")
)

// Options are the free-form settings of one configured plugin.
type Options map[string]string

// Get returns the value of key, or def when the key is absent or empty.
func (o Options) Get(key, def string) string {
	if v, ok := o[key]; ok && v != "" {
		return v
	}

	return def
}

// Ref selects a registered plugin by name, with its options.
type Ref struct {
	Name    string
	Options Options
}

// Factory defines how to create a plugin of a given name.
type Factory struct {
	// Name is the identifier used in pipeline configuration.
	Name string

	// Contract is the set of stages the created plugins run at.
	Contract contract.Contract

	// Description is shown by "transformer plugins".
	Description string

	// Create builds the plugin from its configured options.
	Create func(opts Options) (plugin.Plugin, error)
}

// Registry holds plugin factories by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory. Names are unique within a registry.
func (r *Registry) Register(f Factory) error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFactory)
	}

	if f.Create == nil {
		return fmt.Errorf("%w: %q must have a Create function", ErrInvalidFactory, f.Name)
	}

	if !f.Contract.IsValid() {
		return fmt.Errorf("%w: %q declares %s: %w", ErrInvalidFactory, f.Name, f.Contract, plugin.ErrInvalidContract)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[f.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, f.Name)
	}

	r.factories[f.Name] = f
	r.order = append(r.order, f.Name)

	return nil
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]

	return f, ok
}

// Has returns true if a factory with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)

	return names
}

// Factories returns all factories in registration order.
func (r *Registry) Factories() []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]Factory, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.factories[name])
	}

	return res
}

// Suggest returns registered names close to name, closest first.
func (r *Registry) Suggest(name string) []string {
	return closest(name, r.Names(), maxSuggestions)
}

// Resolve creates one plugin per ref, keeping the order of refs.
func (r *Registry) Resolve(refs []Ref) ([]plugin.Plugin, error) {
	plugins := make([]plugin.Plugin, 0, len(refs))

	for _, ref := range refs {
		f, ok := r.Get(ref.Name)
		if !ok {
			err := fmt.Errorf("%w: %q", ErrUnknownPlugin, ref.Name)
			if s := r.Suggest(ref.Name); len(s) > 0 {
				err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
			}

			return nil, err
		}

		p, err := f.Create(ref.Options)
		if err != nil {
			return nil, fmt.Errorf("creating plugin %q: %w", ref.Name, err)
		}

		c, err := plugin.ContractOf(p)
		if err != nil {
			return nil, fmt.Errorf("creating plugin %q: %w", ref.Name, err)
		}

		if c != f.Contract {
			return nil, fmt.Errorf("%w: %q declares %s, created plugin has %s",
				ErrContractMismatch, ref.Name, f.Contract, c)
		}

		plugins = append(plugins, p)
	}

	return plugins, nil
}

// Default is the registry built-in plugins register into.
var Default = New()

// Register adds f to the Default registry and panics on error.
// It is meant to be called from init().
func Register(f Factory) {
	if err := Default.Register(f); err != nil {
		panic(err)
	}
}
