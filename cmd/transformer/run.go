package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"transformer/internal/config"
	"transformer/internal/diagnostic"
	"transformer/internal/pipeline"
	"transformer/internal/program"
	"transformer/internal/registry"
	"transformer/internal/scenario"
)

type runOptions struct {
	configPath string
	input      string
	output     string
	dumpGroups bool
	verbose    bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run --input <scenarios.yaml>",
		Short: "Runs the plugin pipeline and writes the generated program.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return run(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Pipeline configuration file")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Required. Scenario description file.")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (overrides the configured output)")
	cmd.Flags().BoolVar(&opts.dumpGroups, "dump-groups", false, "Print the plugins of each stage before running")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts *runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	level := cfg.SlogLevel()
	if opts.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	diags := config.Validate(cfg, registry.Default)
	for _, d := range diags.All() {
		logger.Log(ctx, logLevel(d.Severity), d.String())
	}

	if err := diags.Error(); err != nil {
		return err
	}

	plugins, err := registry.Default.Resolve(cfg.EnabledPlugins())
	if err != nil {
		return err
	}

	p, err := pipeline.New(plugins, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	if opts.dumpGroups {
		spew.Fdump(cmd.OutOrStdout(), p.Groups())
	}

	desc, err := scenario.LoadFile(opts.input)
	if err != nil {
		return err
	}

	prog, err := p.Run(ctx, desc)
	if err != nil {
		return err
	}

	output := cfg.Output
	if opts.output != "" {
		output = opts.output
	}

	if err := program.WriteFile(prog, output); err != nil {
		return err
	}

	logger.Info("program written", slog.String("path", output), slog.Int("users", len(prog.Users)))

	return nil
}

func logLevel(s diagnostic.Severity) slog.Level {
	switch s {
	case diagnostic.SeverityError:
		return slog.LevelError
	case diagnostic.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
