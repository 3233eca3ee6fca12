package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// Ensure SettingsStore implements the interface.
var _ driven.AutoReplySettingsStore = (*SettingsStore)(nil)

// SettingsStore keeps per-tenant auto-reply settings in a TOML file:
//
//	[defaults]
//	tone = "professional"
//	max_daily_replies = 50
//
//	[tenants.acme]
//	enabled = true
//	business_hours_only = true
//
// Tenant tables only need the keys that differ from [defaults].
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	defaults domain.AutoReplySettings
	tenants  map[string]domain.AutoReplySettings
}

type settingsFile struct {
	Defaults domain.AutoReplySettings            `toml:"defaults"`
	Tenants  map[string]domain.AutoReplySettings `toml:"tenants"`
}

type rawSettingsFile struct {
	Defaults map[string]any            `toml:"defaults"`
	Tenants  map[string]map[string]any `toml:"tenants"`
}

// NewSettingsStore opens the settings file at path. A missing file is
// treated as empty and created on the first Save.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".leadsync", "auto_reply.toml")
	}

	s := &SettingsStore{
		filePath: path,
		defaults: domain.DefaultAutoReplySettings(),
		tenants:  make(map[string]domain.AutoReplySettings),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Get returns the tenant's settings, or the file defaults.
func (s *SettingsStore) Get(_ context.Context, tenantID string) (domain.AutoReplySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.tenants[tenantID]; ok {
		return settings, nil
	}
	return s.defaults, nil
}

// Save stores the tenant's settings and rewrites the file.
func (s *SettingsStore) Save(_ context.Context, tenantID string, settings domain.AutoReplySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenantID] = settings
	return s.save()
}

// Tenants returns the IDs with explicit settings, sorted.
func (s *SettingsStore) Tenants() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tenants))
	for id := range s.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// save writes the file atomically (caller must hold lock).
func (s *SettingsStore) save() error {
	data, err := toml.Marshal(settingsFile{Defaults: s.defaults, Tenants: s.tenants})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return os.Rename(tmp, s.filePath)
}

// Load reads the file, replacing the in-memory settings only if every
// table decodes and validates.
func (s *SettingsStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	defaults, tenants, err := decodeSettings(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}

	s.mu.Lock()
	s.defaults = defaults
	s.tenants = tenants
	s.mu.Unlock()
	return nil
}

func decodeSettings(data []byte) (domain.AutoReplySettings, map[string]domain.AutoReplySettings, error) {
	var raw rawSettingsFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return domain.AutoReplySettings{}, nil, err
	}

	defaults, err := overlay(domain.DefaultAutoReplySettings(), raw.Defaults)
	if err != nil {
		return domain.AutoReplySettings{}, nil, fmt.Errorf("defaults: %w", err)
	}

	tenants := make(map[string]domain.AutoReplySettings, len(raw.Tenants))
	for id, table := range raw.Tenants {
		settings, err := overlay(defaults, table)
		if err != nil {
			return domain.AutoReplySettings{}, nil, fmt.Errorf("tenant %s: %w", id, err)
		}
		tenants[id] = settings
	}
	return defaults, tenants, nil
}

// overlay decodes table on top of base so absent keys keep base values.
func overlay(base domain.AutoReplySettings, table map[string]any) (domain.AutoReplySettings, error) {
	if len(table) == 0 {
		return base, nil
	}
	data, err := toml.Marshal(table)
	if err != nil {
		return base, err
	}
	result := base
	if err := toml.Unmarshal(data, &result); err != nil {
		return base, err
	}
	if err := result.Validate(); err != nil {
		return base, err
	}
	return result, nil
}

// Watch reloads the file whenever it changes on disk until ctx is done.
// The directory is watched so editors that replace the file are picked up.
// A file that fails to parse is logged and the previous settings are kept.
func (s *SettingsStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		watcher.Close()
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		name := filepath.Base(s.filePath)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Load(); err != nil {
					logger.Warn("auto-reply settings reload failed: %v", err)
					continue
				}
				logger.Debug("auto-reply settings reloaded from %s", s.filePath)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("settings watcher: %v", err)
			}
		}
	}()
	return nil
}
