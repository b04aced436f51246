package vault

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileStore reads secrets from a TOML file of one table per key:
//
//	[azure-creds]
//	sasToken = "sv=...&sig=..."
//
// The file is re-read on every lookup so credential rotation does not
// require a restart. A missing file behaves like a store with no keys.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the TOML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) GetSecrets(_ context.Context, key string) (map[string]string, error) {
	var doc map[string]map[string]string

	if _, err := toml.DecodeFile(s.path, &doc); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}

		return nil, fmt.Errorf("vault: reading secrets file %s: %w", s.path, err)
	}

	secrets, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	return secrets, nil
}
