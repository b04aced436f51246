package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(EnvOverrides{}, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.LogLevel)
	assert.Equal(t, "auto", cfg.Logging.LogFormat)
	assert.Equal(t, 4, cfg.Transfers.ParallelUploads)
	assert.NotEmpty(t, cfg.Repo.DBPath)
	assert.NotEmpty(t, cfg.Vault.SecretsFile)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[share]
account_url = "https://acct.file.core.windows.net"
share_name = "docs"
vault_key = "azure-creds"
vault_field = "sasToken"

[logging]
log_level = "debug"
`)

	cfg, err := Load(EnvOverrides{}, CLIOverrides{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "https://acct.file.core.windows.net", cfg.Share.AccountURL)
	assert.Equal(t, "docs", cfg.Share.ShareName)
	assert.Equal(t, "azure-creds", cfg.Share.VaultKey)
	assert.Equal(t, "debug", cfg.Logging.LogLevel)
	// Untouched sections keep defaults.
	assert.Equal(t, 4, cfg.Transfers.ParallelUploads)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[share]
account_url = "https://from-file.file.core.windows.net"
`)

	cfg, err := Load(EnvOverrides{AccountURL: "https://from-env.file.core.windows.net"}, CLIOverrides{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.file.core.windows.net", cfg.Share.AccountURL)
}

func TestLoad_CLIOverridesEnv(t *testing.T) {
	cfg, err := Load(
		EnvOverrides{AccountURL: "https://from-env.file.core.windows.net", ShareName: "env-share"},
		CLIOverrides{AccountURL: "https://from-cli.file.core.windows.net"},
	)
	require.NoError(t, err)

	assert.Equal(t, "https://from-cli.file.core.windows.net", cfg.Share.AccountURL)
	assert.Equal(t, "env-share", cfg.Share.ShareName)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(EnvOverrides{}, CLIOverrides{ConfigPath: filepath.Join(t.TempDir(), "nope.toml")})
	require.Error(t, err)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "[share]\naccont_url = \"typo\"\n")

	_, err := Load(EnvOverrides{}, CLIOverrides{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.Logging.LogLevel = "loud" }, "log_level"},
		{"bad log format", func(c *Config) { c.Logging.LogFormat = "xml" }, "log_format"},
		{"zero parallel uploads", func(c *Config) { c.Transfers.ParallelUploads = 0 }, "parallel_uploads"},
		{"zero rotation size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "max_size_mb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv(EnvAccountURL, "https://acct.file.core.windows.net")
	t.Setenv(EnvLogLevel, "warn")

	env := ReadEnvOverrides()
	assert.Equal(t, "https://acct.file.core.windows.net", env.AccountURL)
	assert.Equal(t, "warn", env.LogLevel)
	assert.Empty(t, env.ShareName)
}
