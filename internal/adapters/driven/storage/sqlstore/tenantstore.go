package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.TenantStore = (*tenantStore)(nil)

type tenantStore struct {
	store *Store
}

type tenantRow struct {
	ID                string         `db:"id"`
	MailboxAddress    string         `db:"mailbox_address"`
	RefreshCredential sql.NullString `db:"refresh_credential"`
	AutoSyncEnabled   int            `db:"auto_sync_enabled"`
	LastAutoSyncMs    sql.NullInt64  `db:"last_auto_sync_ms"`
	TimeZone          string         `db:"time_zone"`
}

func (r tenantRow) toDomain() domain.TenantSyncProfile {
	return domain.TenantSyncProfile{
		ID:                r.ID,
		MailboxAddress:    r.MailboxAddress,
		RefreshCredential: r.RefreshCredential.String,
		AutoSyncEnabled:   r.AutoSyncEnabled == 1,
		LastAutoSyncAt:    fromMillis(r.LastAutoSyncMs),
		TimeZone:          r.TimeZone,
	}
}

const tenantColumns = `id, mailbox_address, refresh_credential, auto_sync_enabled, last_auto_sync_ms, time_zone`

func (s *tenantStore) ListAutoSyncProfiles(ctx context.Context) ([]domain.TenantSyncProfile, error) {
	var rows []tenantRow
	err := s.store.db.SelectContext(ctx, &rows, `
		SELECT `+tenantColumns+`
		FROM tenant_profiles
		WHERE auto_sync_enabled = 1
		  AND refresh_credential IS NOT NULL AND refresh_credential <> ''
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-sync profiles: %w", err)
	}

	profiles := make([]domain.TenantSyncProfile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.toDomain())
	}
	return profiles, nil
}

func (s *tenantStore) Get(ctx context.Context, tenantID string) (*domain.TenantSyncProfile, error) {
	var row tenantRow
	err := s.store.db.GetContext(ctx, &row,
		s.store.q(`SELECT `+tenantColumns+` FROM tenant_profiles WHERE id = ?`), tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant %s: %w", tenantID, err)
	}
	p := row.toDomain()
	return &p, nil
}

func (s *tenantStore) Save(ctx context.Context, profile domain.TenantSyncProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	_, err := s.store.db.ExecContext(ctx, s.store.q(`
		INSERT INTO tenant_profiles (`+tenantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			mailbox_address = excluded.mailbox_address,
			refresh_credential = excluded.refresh_credential,
			auto_sync_enabled = excluded.auto_sync_enabled,
			last_auto_sync_ms = excluded.last_auto_sync_ms,
			time_zone = excluded.time_zone
	`),
		profile.ID,
		profile.MailboxAddress,
		nullString(profile.RefreshCredential),
		boolToInt(profile.AutoSyncEnabled),
		toMillis(profile.LastAutoSyncAt),
		profile.TimeZone,
	)
	if err != nil {
		return fmt.Errorf("failed to save tenant %s: %w", profile.ID, err)
	}
	return nil
}

func (s *tenantStore) SetAutoSyncEnabled(ctx context.Context, tenantID string, enabled bool) error {
	if !enabled {
		return s.DisableAutoSync(ctx, tenantID)
	}
	res, err := s.store.db.ExecContext(ctx, s.store.q(`
		UPDATE tenant_profiles SET auto_sync_enabled = 1
		WHERE id = ? AND refresh_credential IS NOT NULL AND refresh_credential <> ''
	`), tenantID)
	if err != nil {
		return fmt.Errorf("failed to enable auto-sync for %s: %w", tenantID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, tenantID); err != nil {
		return err
	}
	return domain.ErrCredentialMissing
}

func (s *tenantStore) DisableAutoSync(ctx context.Context, tenantID string) error {
	return s.exec(ctx, tenantID, "disable auto-sync",
		`UPDATE tenant_profiles SET auto_sync_enabled = 0 WHERE id = ?`, tenantID)
}

func (s *tenantStore) UpdateRefreshCredential(ctx context.Context, tenantID, credential string) error {
	return s.exec(ctx, tenantID, "update refresh credential",
		`UPDATE tenant_profiles SET refresh_credential = ? WHERE id = ?`,
		nullString(credential), tenantID)
}

// MarkSynced is a compare-and-set on last_auto_sync_ms. A nil previous
// matches a NULL marker only.
func (s *tenantStore) MarkSynced(ctx context.Context, tenantID string, previous *time.Time, now time.Time) error {
	var (
		res sql.Result
		err error
	)
	if previous == nil {
		res, err = s.store.db.ExecContext(ctx, s.store.q(`
			UPDATE tenant_profiles SET last_auto_sync_ms = ?
			WHERE id = ? AND last_auto_sync_ms IS NULL
		`), now.UnixMilli(), tenantID)
	} else {
		res, err = s.store.db.ExecContext(ctx, s.store.q(`
			UPDATE tenant_profiles SET last_auto_sync_ms = ?
			WHERE id = ? AND last_auto_sync_ms = ?
		`), now.UnixMilli(), tenantID, previous.UnixMilli())
	}
	if err != nil {
		return fmt.Errorf("failed to mark tenant %s synced: %w", tenantID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, tenantID); err != nil {
		return err
	}
	return domain.ErrStaleMarker
}

func (s *tenantStore) Marker(ctx context.Context, tenantID string) (domain.SyncMarker, error) {
	var row struct {
		AutoSyncEnabled int           `db:"auto_sync_enabled"`
		LastAutoSyncMs  sql.NullInt64 `db:"last_auto_sync_ms"`
	}
	err := s.store.db.GetContext(ctx, &row, s.store.q(`
		SELECT auto_sync_enabled, last_auto_sync_ms FROM tenant_profiles WHERE id = ?
	`), tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SyncMarker{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.SyncMarker{}, fmt.Errorf("failed to read marker for %s: %w", tenantID, err)
	}
	return domain.SyncMarker{
		TenantID:        tenantID,
		AutoSyncEnabled: row.AutoSyncEnabled == 1,
		LastAutoSyncAt:  fromMillis(row.LastAutoSyncMs),
	}, nil
}

// exec runs a single-row update and maps zero affected rows to ErrNotFound.
func (s *tenantStore) exec(ctx context.Context, tenantID, action, query string, args ...any) error {
	res, err := s.store.db.ExecContext(ctx, s.store.q(query), args...)
	if err != nil {
		return fmt.Errorf("failed to %s for %s: %w", action, tenantID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
