package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.AutoReplySettingsStore = (*SettingsStore)(nil)

// SettingsStore is an in-memory implementation of
// driven.AutoReplySettingsStore.
type SettingsStore struct {
	mu       sync.RWMutex
	settings map[string]domain.AutoReplySettings
}

// NewSettingsStore creates a new in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{
		settings: make(map[string]domain.AutoReplySettings),
	}
}

// Get returns saved settings or the defaults.
func (s *SettingsStore) Get(_ context.Context, tenantID string) (domain.AutoReplySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.settings[tenantID]; ok {
		return settings, nil
	}
	return domain.DefaultAutoReplySettings(), nil
}

// Save stores the tenant's settings.
func (s *SettingsStore) Save(_ context.Context, tenantID string, settings domain.AutoReplySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[tenantID] = settings
	return nil
}
