package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tonimelisma/azshare-go/internal/vault"
)

// tokenSource is one strategy in the ordered credential fallback
// chain. Resolve returns an empty string when the source has nothing
// to offer; a non-nil error aborts resolution entirely.
type tokenSource interface {
	Resolve(ctx context.Context) (string, error)
}

// manualToken yields the operator-supplied SAS token, if any.
type manualToken string

func (m manualToken) Resolve(context.Context) (string, error) {
	return strings.TrimSpace(string(m)), nil
}

// vaultToken looks up a named field under a vault key. An incomplete
// (key, field) pair or a missing key yields nothing rather than
// failing, so resolution falls through to the next source.
type vaultToken struct {
	store vault.Store
	key   string
	field string
}

func (v vaultToken) Resolve(ctx context.Context) (string, error) {
	if v.store == nil || v.key == "" || v.field == "" {
		return "", nil
	}

	secrets, err := v.store.GetSecrets(ctx, v.key)
	if errors.Is(err, vault.ErrKeyNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("uploader: reading vault key %q: %w", v.key, err)
	}

	return strings.TrimSpace(secrets[v.field]), nil
}

// resolveToken walks the chain in priority order and returns the first
// non-empty token. Manual input is listed before the vault so an
// operator can always override stored credentials. The token is never
// logged or persisted.
func resolveToken(ctx context.Context, sources []tokenSource) (string, error) {
	for _, src := range sources {
		token, err := src.Resolve(ctx)
		if err != nil {
			return "", wrap(KindConfiguration, err)
		}

		if token != "" {
			return token, nil
		}
	}

	//nolint:staticcheck // ST1005: message text is a workflow-facing contract
	return "", wrap(KindConfiguration, errors.New("No SAS Token provided via SCS or Manual Input."))
}
