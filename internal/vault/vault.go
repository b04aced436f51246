// Package vault resolves named secret fields from a secrets store.
// A store maps an opaque key to a set of named fields; the uploader
// reads one field (the SAS token) from one key. Stores are read-only
// from the pipeline's point of view.
package vault

import (
	"context"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned when a store has no secrets under the
// requested key. Check with errors.Is.
var ErrKeyNotFound = errors.New("vault: key not found")

// Store maps a secret key to its named fields.
type Store interface {
	GetSecrets(ctx context.Context, key string) (map[string]string, error)
}

// Layered tries stores in order and returns the first store's secrets
// for the key. A hit replaces later stores entirely; fields are not
// merged across stores, matching how config profile sections override
// global ones.
type Layered []Store

func (l Layered) GetSecrets(ctx context.Context, key string) (map[string]string, error) {
	for _, store := range l {
		secrets, err := store.GetSecrets(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return secrets, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

// Memory is an in-memory store keyed by secret key. Used in tests and
// as a programmatic store for embedding callers.
type Memory map[string]map[string]string

func (m Memory) GetSecrets(_ context.Context, key string) (map[string]string, error) {
	secrets, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	return secrets, nil
}
