package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

func saveProfile(t *testing.T, store *Store, id string, enabled bool, credential string) {
	t.Helper()
	err := store.TenantStore().Save(context.Background(), domain.TenantSyncProfile{
		ID:                id,
		MailboxAddress:    id + "@example.com",
		RefreshCredential: credential,
		AutoSyncEnabled:   enabled,
		TimeZone:          "Europe/London",
	})
	require.NoError(t, err)
}

func TestTenantStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	tenants := store.TenantStore()

	last := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	profile := domain.TenantSyncProfile{
		ID:                "t1",
		MailboxAddress:    "sales@example.com",
		RefreshCredential: "refresh-1",
		AutoSyncEnabled:   true,
		LastAutoSyncAt:    &last,
		TimeZone:          "America/New_York",
	}
	require.NoError(t, tenants.Save(ctx, profile))

	got, err := tenants.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, profile.MailboxAddress, got.MailboxAddress)
	assert.Equal(t, profile.RefreshCredential, got.RefreshCredential)
	assert.True(t, got.AutoSyncEnabled)
	require.NotNil(t, got.LastAutoSyncAt)
	assert.True(t, last.Equal(*got.LastAutoSyncAt))
	assert.Equal(t, "America/New_York", got.TimeZone)
}

func TestTenantStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.TenantStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTenantStore_Save_RejectsEnabledWithoutCredential(t *testing.T) {
	store := setupTestStore(t)

	err := store.TenantStore().Save(context.Background(), domain.TenantSyncProfile{
		ID:              "t1",
		AutoSyncEnabled: true,
	})
	assert.ErrorIs(t, err, domain.ErrCredentialMissing)
}

func TestTenantStore_ListAutoSyncProfiles(t *testing.T) {
	store := setupTestStore(t)
	saveProfile(t, store, "b", true, "rb")
	saveProfile(t, store, "a", true, "ra")
	saveProfile(t, store, "off", false, "roff")
	saveProfile(t, store, "nocred", false, "")

	profiles, err := store.TenantStore().ListAutoSyncProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a", profiles[0].ID)
	assert.Equal(t, "b", profiles[1].ID)
}

func TestTenantStore_SetAutoSyncEnabled(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	tenants := store.TenantStore()
	saveProfile(t, store, "t1", false, "r1")
	saveProfile(t, store, "nocred", false, "")

	require.NoError(t, tenants.SetAutoSyncEnabled(ctx, "t1", true))
	got, err := tenants.Get(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.AutoSyncEnabled)

	assert.ErrorIs(t, tenants.SetAutoSyncEnabled(ctx, "nocred", true), domain.ErrCredentialMissing)
	assert.ErrorIs(t, tenants.SetAutoSyncEnabled(ctx, "missing", true), domain.ErrNotFound)

	require.NoError(t, tenants.SetAutoSyncEnabled(ctx, "t1", false))
	got, err = tenants.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.AutoSyncEnabled)
}

func TestTenantStore_DisableAndRotate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	tenants := store.TenantStore()
	saveProfile(t, store, "t1", true, "r1")

	require.NoError(t, tenants.UpdateRefreshCredential(ctx, "t1", "r2"))
	require.NoError(t, tenants.DisableAutoSync(ctx, "t1"))

	got, err := tenants.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "r2", got.RefreshCredential)
	assert.False(t, got.AutoSyncEnabled)

	assert.ErrorIs(t, tenants.DisableAutoSync(ctx, "missing"), domain.ErrNotFound)
}

func TestTenantStore_MarkSynced_CompareAndSet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	tenants := store.TenantStore()
	saveProfile(t, store, "t1", true, "r1")

	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)

	require.NoError(t, tenants.MarkSynced(ctx, "t1", nil, first))

	// A writer still holding the nil snapshot loses.
	assert.ErrorIs(t, tenants.MarkSynced(ctx, "t1", nil, second), domain.ErrStaleMarker)

	require.NoError(t, tenants.MarkSynced(ctx, "t1", &first, second))

	marker, err := tenants.Marker(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, marker.AutoSyncEnabled)
	require.NotNil(t, marker.LastAutoSyncAt)
	assert.True(t, second.Equal(*marker.LastAutoSyncAt))

	assert.ErrorIs(t, tenants.MarkSynced(ctx, "missing", nil, first), domain.ErrNotFound)
}

func TestTenantStore_Marker_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.TenantStore().Marker(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
