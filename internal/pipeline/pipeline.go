// Package pipeline turns a scenario description into a program, running every
// configured plugin at the stage(s) its contract declares.
//
// Stage order for one run:
//  1. OnTaskSequence on the task list of each scenario
//  2. OnTask on each task
//  3. OnScenario on each scenario, children before their parent, once each
//  4. OnPythonProgram on the built program
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"transformer/contract"
	"transformer/internal/program"
	"transformer/internal/scenario"
	"transformer/plugin"
)

// ErrNoDescription is returned by Run when given a nil description.
var ErrNoDescription = errors.New("no scenario description")

// Pipeline runs a fixed, ordered set of plugins.
type Pipeline struct {
	groups plugin.Groups
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for run progress.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New groups plugins by stage, keeping their relative order.
func New(plugins []plugin.Plugin, opts ...Option) (*Pipeline, error) {
	groups, err := plugin.GroupByContract(plugins)
	if err != nil {
		return nil, fmt.Errorf("grouping plugins: %w", err)
	}

	p := &Pipeline{
		groups: groups,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Groups returns the plugins of each stage.
func (p *Pipeline) Groups() plugin.Groups {
	return p.groups
}

// Run transforms d in place and returns the resulting program.
// The context is checked between top-level scenarios.
func (p *Pipeline) Run(ctx context.Context, d *scenario.Description) (*program.Program, error) {
	if d == nil {
		return nil, ErrNoDescription
	}

	log := p.logger.With(slog.String("run_id", uuid.NewString()))
	log.Info("pipeline started",
		slog.Int("scenarios", len(d.Scenarios)),
		slog.Any("stages", p.groups.Stages()))

	for i, root := range d.Scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if root == nil {
			continue
		}

		if err := root.Walk(func(s *scenario.Scenario) error {
			return p.transformScenario(log, s)
		}); err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
	}

	prog, err := plugin.Apply(p.groups.Get(contract.OnPythonProgram), program.Build(d))
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", contract.OnPythonProgram, err)
	}

	if prog == nil {
		return nil, fmt.Errorf("stage %s: plugins returned no program", contract.OnPythonProgram)
	}

	log.Info("pipeline finished", slog.Int("users", len(prog.Users)))

	return prog, nil
}

// transformScenario runs the task and scenario stages for s. Children were
// already handled by the post-order walk.
func (p *Pipeline) transformScenario(log *slog.Logger, s *scenario.Scenario) error {
	tasks, err := plugin.Apply(p.groups.Get(contract.OnTaskSequence), s.Tasks)
	if err != nil {
		return fmt.Errorf("scenario %q: stage %s: %w", s.Name, contract.OnTaskSequence, err)
	}

	onTask := p.groups.Get(contract.OnTask)
	if len(onTask) > 0 {
		out := make([]scenario.Task, 0, len(tasks))

		for _, t := range tasks {
			next, err := plugin.Apply(onTask, t)
			if err != nil {
				return fmt.Errorf("scenario %q: task %q: stage %s: %w", s.Name, t.Name, contract.OnTask, err)
			}

			out = append(out, next)
		}

		tasks = out
	}

	s.Tasks = tasks

	res, err := plugin.Apply(p.groups.Get(contract.OnScenario), s)
	if err != nil {
		return fmt.Errorf("scenario %q: stage %s: %w", s.Name, contract.OnScenario, err)
	}

	if res == nil {
		return fmt.Errorf("scenario %q: stage %s: plugins returned no scenario", s.Name, contract.OnScenario)
	}

	if res != s {
		*s = *res
	}

	log.Debug("scenario transformed",
		slog.String("scenario", s.Name),
		slog.Int("tasks", len(s.Tasks)))

	return nil
}
