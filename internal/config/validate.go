package config

import (
	"fmt"

	"transformer/internal/diagnostic"
)

// Catalog is the view of the plugin registry that validation needs.
type Catalog interface {
	Has(name string) bool
	Suggest(name string) []string
}

// Validate checks the configuration against the plugins known to catalog.
func Validate(cfg *Config, catalog Catalog) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if cfg == nil {
		res.AddError("config_is_nil", "config is nil", "", "")
		return res
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		res.AddError("invalid_log_level", fmt.Sprintf("unknown log level %q", cfg.LogLevel), "", "log_level",
			"debug", "info", "warn", "error")
	}

	if cfg.Output == "" {
		res.AddError("missing_output", "output path is empty", "", "output")
	}

	seen := map[string]int{}

	for i, e := range cfg.Plugins {
		path := fmt.Sprintf("plugins[%d]", i)

		if e.Name == "" {
			res.AddError("missing_plugin_name", "plugin entry has no name", "", path+".name")
			continue
		}

		if catalog != nil && !catalog.Has(e.Name) {
			res.AddError("unknown_plugin", fmt.Sprintf("plugin %q is not registered", e.Name),
				e.Name, path+".name", catalog.Suggest(e.Name)...)

			continue
		}

		if !e.IsEnabled() {
			res.AddInfo("disabled_plugin", "plugin is disabled", e.Name, path)
			continue
		}

		if first, ok := seen[e.Name]; ok {
			res.AddWarning("duplicate_plugin",
				fmt.Sprintf("plugin is already enabled at plugins[%d] and will run again", first),
				e.Name, path)

			continue
		}

		seen[e.Name] = i
	}

	if len(seen) == 0 && !res.HasErrors() {
		res.AddWarning("no_plugins", "no plugin is enabled, the program is generated unchanged", "", "plugins")
	}

	return res
}
