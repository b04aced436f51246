package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig      = "AZSHARE_CONFIG"
	EnvAccountURL  = "AZSHARE_ACCOUNT_URL"
	EnvShareName   = "AZSHARE_SHARE_NAME"
	EnvSecretsFile = "AZSHARE_SECRETS_FILE"
	EnvLogLevel    = "AZSHARE_LOG_LEVEL"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath  string // AZSHARE_CONFIG: override config file path
	AccountURL  string // AZSHARE_ACCOUNT_URL
	ShareName   string // AZSHARE_SHARE_NAME
	SecretsFile string // AZSHARE_SECRETS_FILE
	LogLevel    string // AZSHARE_LOG_LEVEL
}

// ReadEnvOverrides reads environment variables and returns any
// overrides found. This does not modify the Config; Load applies the
// relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:  os.Getenv(EnvConfig),
		AccountURL:  os.Getenv(EnvAccountURL),
		ShareName:   os.Getenv(EnvShareName),
		SecretsFile: os.Getenv(EnvSecretsFile),
		LogLevel:    os.Getenv(EnvLogLevel),
	}
}
