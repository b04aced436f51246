// Package config implements TOML configuration loading for azshare-go
// with a defaults -> config file -> environment -> CLI flag override
// chain. Later layers win field by field.
package config

// Config is the top-level configuration structure parsed from a TOML
// file.
type Config struct {
	Share     ShareConfig     `toml:"share"`
	Repo      RepoConfig      `toml:"repo"`
	Vault     VaultConfig     `toml:"vault"`
	Transfers TransfersConfig `toml:"transfers"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ShareConfig carries the remote share coordinates and the default
// credential source. A SAS token itself never lives in the config
// file; it comes from the vault or the --token flag.
type ShareConfig struct {
	AccountURL    string `toml:"account_url"`
	ShareName     string `toml:"share_name"`
	DirectoryPath string `toml:"directory_path"`
	VaultKey      string `toml:"vault_key"`
	VaultField    string `toml:"vault_field"`
}

// RepoConfig locates the local document repository.
type RepoConfig struct {
	DBPath  string `toml:"db_path"`
	BlobDir string `toml:"blob_dir"`
}

// VaultConfig locates the secrets file. Environment-provided secrets
// (AZSHARE_SECRET_*) are always layered ahead of the file.
type VaultConfig struct {
	SecretsFile string `toml:"secrets_file"`
}

// TransfersConfig bounds batch upload concurrency. The transfer chunk
// size is a fixed constant of the pipeline, not a config knob.
type TransfersConfig struct {
	ParallelUploads int `toml:"parallel_uploads"`
}

// LoggingConfig controls log output: level, format, and optional
// rotating file output.
type LoggingConfig struct {
	LogLevel   string `toml:"log_level"`  // debug, info, warn, error
	LogFormat  string `toml:"log_format"` // auto, text, json
	LogFile    string `toml:"log_file"`   // empty = stderr only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// CLIOverrides holds values from CLI flags that override config file
// and environment settings.
type CLIOverrides struct {
	ConfigPath    string // --config flag (empty = use default)
	AccountURL    string
	ShareName     string
	DirectoryPath string
	VaultKey      string
	VaultField    string
}
