package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

func TestSettingsStore_DefaultsWhenUnset(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.SettingsStore().Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAutoReplySettings(), got)
}

func TestSettingsStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	settings := store.SettingsStore()

	want := domain.AutoReplySettings{
		Enabled:             true,
		Tone:                domain.ToneFriendly,
		Length:              domain.LengthShort,
		ConfidenceThreshold: 0.5,
		BusinessHoursOnly:   true,
		BusinessHours:       domain.BusinessHours{StartHour: 8, EndHour: 18},
		MaxDailyReplies:     10,
	}
	require.NoError(t, settings.Save(ctx, "t1", want))

	got, err := settings.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Enabled = false
	require.NoError(t, settings.Save(ctx, "t1", want))
	got, err = settings.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
}
