package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"transformer/internal/registry"
)

// These are set during build time using -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transformer",
		Short: "Generates load-test programs from scenario descriptions.",
		Long: `transformer reads a YAML scenario description, runs the plugins listed in
the pipeline configuration over it and writes the resulting locustfile.

Every plugin is tagged with the stages it runs at. Plugins of one stage run
in the order they are listed in the configuration.`,
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newPluginsCmd(registry.Default))

	return root
}

func newPluginsCmd(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "Lists the registered plugins and their stages.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTAGES\tDESCRIPTION")

			for _, f := range reg.Factories() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Contract, f.Description)
			}

			return w.Flush()
		},
	}
}
