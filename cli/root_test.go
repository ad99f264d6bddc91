package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slyguy/settings/pkg/config"
)

const disneyID = "slyguy.disney.plus"

// testProfile returns the flags pointing a command at a fresh profile.
func testProfile(t *testing.T) (profile string, flags []string) {
	t.Helper()
	profile = filepath.Join(t.TempDir(), disneyID)
	require.NoError(t, os.MkdirAll(profile, 0o755))
	return profile, []string{
		"--env-file", "",
		"--log-level", "disabled",
		"--plugin-id", disneyID,
		"--plugin-name", "Disney+",
		"--profile-dir", profile,
		"--platform", "linux",
	}
}

func runCLI(t *testing.T, flags []string, args ...string) (string, error) {
	t.Helper()
	cmd := RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, flags...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetupGlobalConfig(t *testing.T) {
	t.Run("Should layer YAML under explicit flags", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "settings.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("cache:\n  size: 64\nplugin:\n  name: FromYAML\n"), 0o600))

		var loaded *config.Config
		root := RootCmd()
		root.AddCommand(&cobra.Command{
			Use: "probe",
			RunE: func(cmd *cobra.Command, _ []string) error {
				loaded = config.FromContext(cmd.Context())
				return nil
			},
		})
		root.SetArgs([]string{
			"probe",
			"--env-file", "",
			"--log-level", "disabled",
			"--config", cfgPath,
			"--plugin-name", "FromFlag",
		})
		require.NoError(t, root.ExecuteContext(context.Background()))

		require.NotNil(t, loaded)
		assert.Equal(t, 64, loaded.Cache.Size)
		assert.Equal(t, "FromFlag", loaded.Plugin.Name)
	})

	t.Run("Should reject an invalid plugin id", func(t *testing.T) {
		_, flags := testProfile(t)
		_, err := runCLI(t, append(flags, "--plugin-id", "bad id!"), "list")
		assert.Error(t, err)
	})
}

func TestConfigCmd(t *testing.T) {
	t.Run("Should show flag sources in the table", func(t *testing.T) {
		_, flags := testProfile(t)
		out, err := runCLI(t, flags, "config", "show", "--sources")
		require.NoError(t, err)
		assert.Contains(t, out, "plugin.id")
		assert.Contains(t, out, disneyID)
		assert.Contains(t, out, "cli")
	})

	t.Run("Should redact secrets", func(t *testing.T) {
		t.Setenv("SLYGUY_STORE_POSTGRES_CONN_STRING", "postgres://user:hunter2@db/settings")
		_, flags := testProfile(t)
		out, err := runCLI(t, flags, "config", "show", "--format", "yaml")
		require.NoError(t, err)
		assert.NotContains(t, out, "hunter2")
		assert.Contains(t, out, redacted)
	})

	t.Run("Should validate the loaded configuration", func(t *testing.T) {
		_, flags := testProfile(t)
		out, err := runCLI(t, flags, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "configuration is valid")
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		_, flags := testProfile(t)
		_, err := runCLI(t, flags, "config", "show", "--format", "xml")
		assert.Error(t, err)
	})
}
