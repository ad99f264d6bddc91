package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/slyguy/settings/pkg/config"
)

const redacted = "[REDACTED]"

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management and diagnostics",
	}

	cmd.AddCommand(
		configShowCmd(),
		configValidateCmd(),
	)

	return cmd
}

// configShowCmd shows the current configuration with source information
func configShowCmd() *cobra.Command {
	var (
		format      string
		showSources bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration values and their sources",
		Long: `Display the current configuration with optional source information.
This command shows which source (CLI, YAML, environment, or default) provided each value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := config.ManagerFromContext(cmd.Context())
			entries, err := configEntries(manager.Get(), manager.Service)
			if err != nil {
				return err
			}
			return formatConfigOutput(cmd.OutOrStdout(), entries, format, showSources)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (json, yaml, table)")
	cmd.Flags().BoolVarP(&showSources, "sources", "s", false, "Show configuration sources")
	return cmd
}

// configValidateCmd validates the loaded configuration
func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := config.ManagerFromContext(cmd.Context())
			if err := manager.Service.Validate(manager.Get()); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
}

// configEntry is one flattened configuration value.
type configEntry struct {
	Key    string            `json:"key"    yaml:"key"`
	Value  any               `json:"value"  yaml:"value"`
	Source config.SourceType `json:"source" yaml:"source"`
}

// configEntries flattens cfg into koanf paths with secrets redacted.
func configEntries(cfg *config.Config, service config.Service) ([]configEntry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten configuration: %w", err)
	}
	keys := k.Keys()
	sort.Strings(keys)
	entries := make([]configEntry, 0, len(keys))
	for _, key := range keys {
		value := k.Get(key)
		if s, ok := value.(config.SensitiveString); ok {
			value = s.String()
		}
		if config.IsSensitiveConfigPath(key) && value != "" {
			value = redacted
		}
		entry := configEntry{Key: key, Value: value, Source: config.SourceDefault}
		if service != nil {
			if source := service.GetSource(key); source != "" {
				entry.Source = source
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// formatConfigOutput formats and outputs configuration based on requested format
func formatConfigOutput(out io.Writer, entries []configEntry, format string, showSources bool) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(configOutput(entries, showSources))
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		return encoder.Encode(configOutput(entries, showSources))
	case "table":
		return outputTable(out, entries, showSources)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func configOutput(entries []configEntry, showSources bool) map[string]any {
	values := make(map[string]any, len(entries))
	sources := make(map[string]config.SourceType, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
		sources[e.Key] = e.Source
	}
	output := map[string]any{"config": values}
	if showSources {
		output["sources"] = sources
	}
	return output
}

func outputTable(out io.Writer, entries []configEntry, showSources bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if showSources {
		fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
	} else {
		fmt.Fprintln(w, "KEY\tVALUE")
	}
	for _, e := range entries {
		if showSources {
			fmt.Fprintf(w, "%s\t%v\t%s\n", e.Key, e.Value, e.Source)
			continue
		}
		fmt.Fprintf(w, "%s\t%v\n", e.Key, e.Value)
	}
	return w.Flush()
}
