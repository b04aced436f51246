package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load resolves the effective configuration from the four-layer
// override chain: defaults, then the config file, then environment
// variables, then CLI flags. A missing config file at the default
// location is fine; an explicitly requested file must exist.
func Load(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	cfg := DefaultConfig()

	path, explicit := configPath(env, cli)

	if err := applyFile(cfg, path, explicit); err != nil {
		return nil, err
	}

	applyEnv(cfg, env)
	applyCLI(cfg, cli)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configPath picks the config file path and whether it was explicitly
// requested. CLI wins over environment, which wins over the default.
func configPath(env EnvOverrides, cli CLIOverrides) (string, bool) {
	if cli.ConfigPath != "" {
		return cli.ConfigPath, true
	}

	if env.ConfigPath != "" {
		return env.ConfigPath, true
	}

	return DefaultConfigPath(), false
}

func applyFile(cfg *Config, path string, explicit bool) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}

		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config: unknown key %q in %s", undecoded[0].String(), path)
	}

	return nil
}

func applyEnv(cfg *Config, env EnvOverrides) {
	if env.AccountURL != "" {
		cfg.Share.AccountURL = env.AccountURL
	}

	if env.ShareName != "" {
		cfg.Share.ShareName = env.ShareName
	}

	if env.SecretsFile != "" {
		cfg.Vault.SecretsFile = env.SecretsFile
	}

	if env.LogLevel != "" {
		cfg.Logging.LogLevel = env.LogLevel
	}
}

func applyCLI(cfg *Config, cli CLIOverrides) {
	if cli.AccountURL != "" {
		cfg.Share.AccountURL = cli.AccountURL
	}

	if cli.ShareName != "" {
		cfg.Share.ShareName = cli.ShareName
	}

	if cli.DirectoryPath != "" {
		cfg.Share.DirectoryPath = cli.DirectoryPath
	}

	if cli.VaultKey != "" {
		cfg.Share.VaultKey = cli.VaultKey
	}

	if cli.VaultField != "" {
		cfg.Share.VaultField = cli.VaultField
	}
}
