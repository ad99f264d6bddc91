package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/slyguy/settings/pkg/config/definition"
)

// addConfigFlags declares a flag for every configuration field that has one.
func addConfigFlags(flags *pflag.FlagSet) {
	for _, field := range definition.CreateRegistry().Fields() {
		if field.CLIFlag == "" {
			continue
		}
		switch def := field.Default.(type) {
		case bool:
			flags.BoolP(field.CLIFlag, field.Shorthand, def, field.Help)
		case int:
			flags.IntP(field.CLIFlag, field.Shorthand, def, field.Help)
		case time.Duration:
			flags.DurationP(field.CLIFlag, field.Shorthand, def, field.Help)
		case []string:
			flags.StringSliceP(field.CLIFlag, field.Shorthand, def, field.Help)
		default:
			flags.StringP(field.CLIFlag, field.Shorthand, fmt.Sprint(def), field.Help)
		}
	}
}

// extractCLIFlags extracts command line flags from a cobra command into a map.
// It processes only flags that have been explicitly changed by the user.
func extractCLIFlags(cmd *cobra.Command, flags map[string]any) {
	for _, field := range definition.CreateRegistry().Fields() {
		if field.CLIFlag == "" || !cmd.Flags().Changed(field.CLIFlag) {
			continue
		}
		var (
			value any
			err   error
		)
		switch field.Default.(type) {
		case bool:
			value, err = cmd.Flags().GetBool(field.CLIFlag)
		case int:
			value, err = cmd.Flags().GetInt(field.CLIFlag)
		case time.Duration:
			value, err = cmd.Flags().GetDuration(field.CLIFlag)
		case []string:
			value, err = cmd.Flags().GetStringSlice(field.CLIFlag)
		default:
			value, err = cmd.Flags().GetString(field.CLIFlag)
		}
		if err == nil {
			flags[field.CLIFlag] = value
		}
	}
}

// loadEnvFile loads environment variables from a file with security validation
func loadEnvFile(cmd *cobra.Command) (string, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return "", fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile != "" {
		pwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		if !filepath.IsAbs(envFile) {
			envFile = filepath.Join(pwd, envFile)
		}
		cleanPath := filepath.Clean(envFile)
		absPath, err := filepath.Abs(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve env file path: %w", err)
		}
		if !isPathWithinDirectory(absPath, pwd) {
			return "", fmt.Errorf("env file path '%s' is outside the project directory", envFile)
		}
		fileInfo, err := os.Stat(absPath)
		if err != nil {
			if os.IsNotExist(err) {
				return absPath, nil
			}
			return "", fmt.Errorf("failed to stat env file: %w", err)
		}
		if !fileInfo.Mode().IsRegular() {
			return "", fmt.Errorf("env file path '%s' is not a regular file", envFile)
		}
		if err := godotenv.Load(absPath); err != nil {
			if !os.IsNotExist(err) {
				return "", fmt.Errorf("failed to load env file %s: %w", absPath, err)
			}
		}
		return absPath, nil
	}
	return envFile, nil
}

// isPathWithinDirectory checks if a given path is within the specified directory
func isPathWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}
	return strings.HasPrefix(absPath, absDir) || absPath == strings.TrimSuffix(absDir, string(filepath.Separator))
}
