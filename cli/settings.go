package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/slyguy/settings/engine/builtin"
	"github.com/slyguy/settings/engine/plugin"
	"github.com/slyguy/settings/engine/settings"
	"github.com/slyguy/settings/pkg/config"
	"github.com/slyguy/settings/pkg/logger"
)

// pluginModules maps plugin ids to the declaration modules they ship.
var pluginModules = map[string]func() settings.Module{
	"slyguy.disney.plus":       builtin.Disney,
	"plugin.video.disney.plus": builtin.Disney,
}

// newPrompter builds the prompter used by interactive commands.
var newPrompter = func(cmd *cobra.Command) settings.Prompter {
	return NewFormPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), !isTerminal(cmd.OutOrStdout()))
}

// printHost reports commands returned by actions instead of running them.
type printHost struct {
	out io.Writer
}

func (h printHost) Execute(ctx context.Context, command string) error {
	logger.FromContext(ctx).Debug("Host command", "command", command)
	_, err := fmt.Fprintf(h.out, "host: %s\n", command)
	return err
}

// withRegistry opens the engine for the configured plugin, runs fn inside
// one dispatch cycle and closes it again.
func withRegistry(
	cmd *cobra.Command,
	mutate func(cfg *config.Config),
	fn func(ctx context.Context, p *plugin.Plugin, reg *settings.Registry) error,
) error {
	ctx := cmd.Context()
	cfg := *config.FromContext(ctx)
	if mutate != nil {
		mutate(&cfg)
	}
	opts := []plugin.Option{plugin.WithHost(printHost{out: cmd.ErrOrStderr()})}
	if module, ok := pluginModules[cfg.Plugin.ID]; ok {
		opts = append(opts, plugin.WithModules(module()))
	}
	p, err := plugin.New(ctx, &cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(ctx); err != nil {
			logger.FromContext(ctx).Error("Failed to close settings engine", "error", err)
		}
	}()
	return p.Dispatch(ctx, func(ctx context.Context, reg *settings.Registry) error {
		return fn(ctx, p, reg)
	})
}

func lookup(reg *settings.Registry, id string) (*settings.Setting, error) {
	s, ok := reg.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", settings.ErrNotDeclared, id)
	}
	return s, nil
}

// settingView is the machine-readable form of a setting.
type settingView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Owner     string `json:"owner"`
	Value     any    `json:"value"`
	Found     bool   `json:"found"`
	IsDefault bool   `json:"is_default"`
	Enabled   bool   `json:"enabled"`
	Visible   bool   `json:"visible"`
}

func viewOf(ctx context.Context, s *settings.Setting) settingView {
	owner, _, found := s.ValueOwner(ctx)
	var value any = s.Value(ctx)
	if s.IsPrivate() && value != nil && value != "" {
		value = s.ValueLabel(ctx)
	}
	return settingView{
		ID:        s.ID(),
		Title:     s.Title(),
		Kind:      s.Kind().String(),
		Owner:     owner,
		Value:     value,
		Found:     found,
		IsDefault: s.IsDefault(ctx),
		Enabled:   s.IsEnabled(ctx),
		Visible:   s.IsVisible(ctx),
	}
}

func GetCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show the value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, nil, func(ctx context.Context, _ *plugin.Plugin, reg *settings.Registry) error {
				s, err := lookup(reg, args[0])
				if err != nil {
					return err
				}
				switch format {
				case "json":
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(viewOf(ctx, s))
				case "text":
					r := newRenderer(cmd.OutOrStdout())
					r.println(r.label(s.Label(ctx)))
					return nil
				default:
					return fmt.Errorf("unsupported format: %s", format)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

func SetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <value>",
		Short: "Store a setting value given in its text form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, nil, func(ctx context.Context, _ *plugin.Plugin, reg *settings.Registry) error {
				s, err := lookup(reg, args[0])
				if err != nil {
					return err
				}
				value, err := s.FromText(args[1])
				if err != nil {
					return err
				}
				if err := s.SetValue(ctx, value); err != nil {
					return err
				}
				r := newRenderer(cmd.OutOrStdout())
				r.println(r.label(s.Label(ctx)))
				return nil
			})
		},
	}
}

func RemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete the stored value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, nil, func(ctx context.Context, _ *plugin.Plugin, reg *settings.Registry) error {
				s, err := lookup(reg, args[0])
				if err != nil {
					return err
				}
				if !s.CanClear(ctx) {
					return fmt.Errorf("%w: %s", settings.ErrNotClearable, s.ID())
				}
				if err := s.Clear(ctx); err != nil {
					return err
				}
				r := newRenderer(cmd.OutOrStdout())
				r.println(r.label(s.Label(ctx)))
				return nil
			})
		},
	}
}

func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the settings tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRegistry(cmd, nil, func(ctx context.Context, _ *plugin.Plugin, reg *settings.Registry) error {
				newRenderer(cmd.OutOrStdout()).tree(ctx, reg.Root(), 0)
				return nil
			})
		},
	}
}

func EditCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a setting interactively",
		Long: `Select a setting the way a user would: booleans toggle, enums cycle or
offer a picker, text and numbers prompt for input and actions run.
With --clear the setting is reset instead, asking first when required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, nil, func(ctx context.Context, _ *plugin.Plugin, reg *settings.Registry) error {
				s, err := lookup(reg, args[0])
				if err != nil {
					return err
				}
				prompter := newPrompter(cmd)
				var changed bool
				if reset {
					changed, err = s.OnClear(ctx, prompter)
				} else {
					changed, err = s.Select(ctx, prompter)
				}
				if err != nil {
					return err
				}
				r := newRenderer(cmd.OutOrStdout())
				r.println(r.label(s.Label(ctx)))
				if !changed {
					r.println("unchanged")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "clear", false, "Reset the setting instead of selecting it")
	return cmd
}

func ResetAllCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-all",
		Short: "Clear every value the plugin stores for itself",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRegistry(cmd, nil, func(ctx context.Context, _ *plugin.Plugin, reg *settings.Registry) error {
				if !yes {
					ok, err := newPrompter(cmd).Confirm(ctx, reg.PluginName(), "Reset all settings to their defaults?")
					if err != nil || !ok {
						return err
					}
				}
				cleared, err := reg.ClearAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reset %d setting(s)\n", cleared)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Import the legacy settings file",
		Long:  `Import changed values from the legacy settings.xml. The import runs once per plugin.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			disable := func(cfg *config.Config) { cfg.Migration.Enabled = false }
			return withRegistry(cmd, disable, func(ctx context.Context, p *plugin.Plugin, _ *settings.Registry) error {
				report, err := p.Migrate(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !report.Ran {
					fmt.Fprintln(out, "already migrated")
					return nil
				}
				fmt.Fprintf(out, "migrated %d of %d legacy value(s) from %s\n",
					report.Migrated, report.Total, p.Config().LegacyFile())
				return nil
			})
		},
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
