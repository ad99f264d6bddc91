package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/slyguy/settings/pkg/config"
	"github.com/slyguy/settings/pkg/logger"
	"github.com/slyguy/settings/pkg/version"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "settingsctl",
		Short:         "Inspect and edit plugin settings",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("env-file", ".env", "Path to an environment file loaded before configuration")
	flags.String("log-level", "", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Emit JSON logs")
	flags.Bool("log-source", false, "Include source locations in logs")
	addConfigFlags(flags)

	root.AddCommand(
		GetCmd(),
		SetCmd(),
		RemoveCmd(),
		ListCmd(),
		EditCmd(),
		ResetAllCmd(),
		MigrateCmd(),
		ConfigCmd(),
	)

	return root
}

// SetupGlobalConfig loads the configuration and logger for cmd and stores
// both in its context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}

	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, configSources(cmd)...)
	if err != nil {
		return err
	}

	logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") {
		logLevel = cfg.Runtime.LogLevel
	}
	if !cmd.Flags().Changed("log-json") {
		logJSON = cfg.Runtime.LogJSON
	}
	logger.SetupLogger(logLevel, logJSON, logSource)

	ctx = logger.ContextWithLogger(ctx, logger.GetDefault())
	ctx = config.ContextWithManager(ctx, manager)
	cmd.SetContext(ctx)
	logger.FromContext(ctx).Debug("Configuration loaded",
		"plugin", cfg.Plugin.ID,
		"driver", cfg.Store.Driver,
	)
	return nil
}

// configSources lists the sources in precedence order: defaults, the YAML
// file, explicit flags. The environment is applied last by the loader.
func configSources(cmd *cobra.Command) []config.Source {
	sources := []config.Source{config.NewDefaultProvider()}
	if path, err := cmd.Flags().GetString("config"); err == nil && path != "" {
		sources = append(sources, config.NewYAMLProvider(path))
	}
	flags := make(map[string]any)
	extractCLIFlags(cmd, flags)
	return append(sources, config.NewCLIProvider(flags), config.NewEnvProvider())
}
