package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

func TestSettingsStore_GetDefaults(t *testing.T) {
	store := NewSettingsStore()

	got, err := store.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAutoReplySettings(), got)
}

func TestSettingsStore_SaveGet(t *testing.T) {
	store := NewSettingsStore()
	ctx := context.Background()

	s := domain.DefaultAutoReplySettings()
	s.Enabled = true
	s.Tone = domain.ToneFriendly
	require.NoError(t, store.Save(ctx, "t1", s))

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
