package vault

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// envPrefix is the common prefix for environment-provided secrets.
const envPrefix = "AZSHARE_SECRET_"

// EnvStore reads secrets from environment variables named
// AZSHARE_SECRET_<KEY>_<FIELD>, where <KEY> is the secret key
// upper-cased with dashes mapped to underscores and <FIELD> is the
// field name verbatim (environment names are case-sensitive, so mixed
// case like sasToken is legal). Layered ahead of a FileStore it gives
// CI and containers a file-free way to inject credentials.
type EnvStore struct{}

func (EnvStore) GetSecrets(_ context.Context, key string) (map[string]string, error) {
	prefix := envPrefix + envKey(key) + "_"
	secrets := make(map[string]string)

	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}

		field := strings.TrimPrefix(name, prefix)
		if field == "" {
			continue
		}

		secrets[field] = value
	}

	if len(secrets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	return secrets, nil
}

// envKey maps a secret key to its environment-variable spelling.
func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
