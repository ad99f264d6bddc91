package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("env-file", "", "")
	addConfigFlags(cmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestExtractCLIFlags(t *testing.T) {
	t.Run("Should extract only changed flags with their types", func(t *testing.T) {
		cmd := flagCommand(t, "--store-driver", "redis", "--cache-size", "32", "--migrate=false")
		flags := make(map[string]any)
		extractCLIFlags(cmd, flags)
		assert.Equal(t, map[string]any{
			"store-driver": "redis",
			"cache-size":   32,
			"migrate":      false,
		}, flags)
	})

	t.Run("Should accept shorthands", func(t *testing.T) {
		cmd := flagCommand(t, "-n", "slyguy.disney.plus")
		flags := make(map[string]any)
		extractCLIFlags(cmd, flags)
		assert.Equal(t, "slyguy.disney.plus", flags["plugin-id"])
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("Should load variables from a file in the working directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.env"), []byte("SLYGUY_TEST_ENV_FILE=loaded\n"), 0o600))
		t.Setenv("SLYGUY_TEST_ENV_FILE", "")
		require.NoError(t, os.Unsetenv("SLYGUY_TEST_ENV_FILE"))

		cmd := flagCommand(t, "--env-file", "test.env")
		path, err := loadEnvFile(cmd)
		require.NoError(t, err)
		assert.Equal(t, "test.env", filepath.Base(path))
		assert.Equal(t, "loaded", os.Getenv("SLYGUY_TEST_ENV_FILE"))
	})

	t.Run("Should ignore a missing file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cmd := flagCommand(t, "--env-file", "missing.env")
		_, err := loadEnvFile(cmd)
		assert.NoError(t, err)
	})

	t.Run("Should refuse files outside the working directory", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cmd := flagCommand(t, "--env-file", "../outside.env")
		_, err := loadEnvFile(cmd)
		assert.Error(t, err)
	})
}

func TestIsPathWithinDirectory(t *testing.T) {
	t.Run("Should accept nested paths and the directory itself", func(t *testing.T) {
		assert.True(t, isPathWithinDirectory("/srv/app/.env", "/srv/app"))
		assert.True(t, isPathWithinDirectory("/srv/app", "/srv/app"))
	})

	t.Run("Should reject siblings sharing a prefix", func(t *testing.T) {
		assert.False(t, isPathWithinDirectory("/srv/application/.env", "/srv/app"))
	})
}
