package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure KeyringSessionStore implements the interface.
var _ driven.ClientSessionStore = (*KeyringSessionStore)(nil)

const serviceName = "leadsync"

// KeyringSessionStore persists the client session in the OS keyring
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
type KeyringSessionStore struct {
	account string
}

// NewKeyringSessionStore returns a store keyed by profile. An empty profile
// selects "default".
func NewKeyringSessionStore(profile string) *KeyringSessionStore {
	if profile == "" {
		profile = "default"
	}
	return &KeyringSessionStore{account: profile}
}

// Save stores the session.
func (k *KeyringSessionStore) Save(session driven.ClientSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := keyring.Set(serviceName, k.account, string(data)); err != nil {
		return fmt.Errorf("failed to save session to keyring: %w", err)
	}
	return nil
}

// Load retrieves the stored session.
func (k *KeyringSessionStore) Load() (*driven.ClientSession, error) {
	data, err := keyring.Get(serviceName, k.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, domain.ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from keyring: %w", err)
	}
	var session driven.ClientSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the stored session. Deleting nothing is not an error.
func (k *KeyringSessionStore) Delete() error {
	if err := keyring.Delete(serviceName, k.account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}
