package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

func TestTenantStore_ListAutoSyncProfiles(t *testing.T) {
	store := NewTenantStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "b", RefreshCredential: "rt", AutoSyncEnabled: true}))
	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "a", RefreshCredential: "rt", AutoSyncEnabled: true}))
	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "off", RefreshCredential: "rt"}))
	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "nocred"}))

	profiles, err := store.ListAutoSyncProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a", profiles[0].ID)
	assert.Equal(t, "b", profiles[1].ID)
}

func TestTenantStore_Save_RejectsEnabledWithoutCredential(t *testing.T) {
	store := NewTenantStore()

	err := store.Save(context.Background(), domain.TenantSyncProfile{ID: "t1", AutoSyncEnabled: true})
	assert.ErrorIs(t, err, domain.ErrCredentialMissing)
}

func TestTenantStore_Get_NotFound(t *testing.T) {
	store := NewTenantStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTenantStore_DisableAutoSync(t *testing.T) {
	store := NewTenantStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "t1", RefreshCredential: "rt", AutoSyncEnabled: true}))

	require.NoError(t, store.DisableAutoSync(ctx, "t1"))

	p, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, p.AutoSyncEnabled)
	assert.Equal(t, "rt", p.RefreshCredential)
}

func TestTenantStore_SetAutoSyncEnabled_RequiresCredential(t *testing.T) {
	store := NewTenantStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "t1"}))

	err := store.SetAutoSyncEnabled(ctx, "t1", true)
	assert.ErrorIs(t, err, domain.ErrCredentialMissing)
}

func TestTenantStore_MarkSynced_CompareAndSwap(t *testing.T) {
	store := NewTenantStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "t1", RefreshCredential: "rt", AutoSyncEnabled: true}))

	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkSynced(ctx, "t1", nil, first))

	// A writer that still believes the marker is nil loses.
	err := store.MarkSynced(ctx, "t1", nil, first.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrStaleMarker)

	second := first.Add(5 * time.Minute)
	require.NoError(t, store.MarkSynced(ctx, "t1", &first, second))

	marker, err := store.Marker(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, marker.LastAutoSyncAt)
	assert.True(t, marker.LastAutoSyncAt.Equal(second))
	assert.True(t, marker.AutoSyncEnabled)
}

func TestTenantStore_Get_ReturnsCopy(t *testing.T) {
	store := NewTenantStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Save(ctx, domain.TenantSyncProfile{ID: "t1", LastAutoSyncAt: &now}))

	p, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	*p.LastAutoSyncAt = now.Add(time.Hour)

	again, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, again.LastAutoSyncAt.Equal(now))
}
