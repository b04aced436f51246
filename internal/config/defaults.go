package config

import (
	"os"
	"path/filepath"
)

// Default logging and transfer settings.
const (
	defaultLogLevel        = "info"
	defaultLogFormat       = "auto"
	defaultLogMaxSizeMB    = 10
	defaultLogMaxBackups   = 3
	defaultParallelUploads = 4
)

// appDirName is the per-user directory for config and data.
const appDirName = "azshare"

// DefaultConfig returns the built-in configuration, before any file,
// environment, or CLI layer is applied.
func DefaultConfig() *Config {
	dataDir := DataDir()

	return &Config{
		Repo: RepoConfig{
			DBPath:  filepath.Join(dataDir, "catalog.db"),
			BlobDir: filepath.Join(dataDir, "blobs"),
		},
		Vault: VaultConfig{
			SecretsFile: filepath.Join(ConfigDir(), "secrets.toml"),
		},
		Transfers: TransfersConfig{
			ParallelUploads: defaultParallelUploads,
		},
		Logging: LoggingConfig{
			LogLevel:   defaultLogLevel,
			LogFormat:  defaultLogFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
	}
}

// ConfigDir returns the per-user configuration directory. Falls back
// to the working directory when the platform dir cannot be determined.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return appDirName
	}

	return filepath.Join(base, appDirName)
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the per-user data directory for the catalog and
// blobs.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}

	return filepath.Join(home, ".local", "share", appDirName)
}
