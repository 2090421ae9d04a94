package plugin

import (
	"fmt"

	"transformer/contract"
)

// Groups maps each base stage to the plugins including it, in input order.
// Stages without plugins are absent.
type Groups map[contract.Contract][]Plugin

// GroupByContract partitions plugins by base stage in a single pass. A plugin whose
// contract includes several stages appears once in each of their lists.
func GroupByContract(plugins []Plugin) (Groups, error) {
	res := make(Groups)

	for i, p := range plugins {
		c, err := ContractOf(p)
		if err != nil {
			return nil, fmt.Errorf("plugin #%d: %w", i, err)
		}

		for _, stage := range contract.Base() {
			if c.Includes(stage) {
				res[stage] = append(res[stage], p)
			}
		}
	}

	return res, nil
}

// Get returns the plugins of stage; an absent stage yields an empty list.
func (g Groups) Get(stage contract.Contract) []Plugin {
	return g[stage]
}

// Stages returns the stages holding at least one plugin, in grouping order.
func (g Groups) Stages() []contract.Contract {
	var res []contract.Contract
	for _, s := range contract.Base() {
		if len(g[s]) > 0 {
			res = append(res, s)
		}
	}

	return res
}

// Len returns the number of stage entries, counting multi-stage plugins once per stage.
func (g Groups) Len() int {
	n := 0
	for _, ps := range g {
		n += len(ps)
	}

	return n
}

// Apply threads init through plugins in order and returns the last result.
// A plugin error is returned as is and stops the chain.
func Apply[T any](plugins []Plugin, init T) (T, error) {
	if len(plugins) == 0 {
		return init, nil
	}

	var cur any = init

	for _, p := range plugins {
		next, err := p.Call(cur)
		if err != nil {
			var zero T
			return zero, err
		}

		cur = next
	}

	res, ok := cur.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: chain ended with %T, expected %T", ErrPayloadType, cur, init)
	}

	return res, nil
}
