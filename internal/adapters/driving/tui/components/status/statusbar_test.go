package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

func TestBar_Defaults(t *testing.T) {
	b := NewBar(nil, nil)
	assert.Equal(t, domain.SessionIdle, b.State())
	assert.False(t, b.Busy())
	assert.NotNil(t, b.Init())
}

func TestBar_Busy(t *testing.T) {
	b := NewBar(nil, nil)

	b.SetState(domain.SessionInitialSyncInFlight)
	assert.True(t, b.Busy())
	assert.Contains(t, b.View(), "Initial sync")

	b.SetState(domain.SessionPolling)
	assert.False(t, b.Busy())

	b.SetSyncing(true)
	b.SetLookback(domain.Lookback7Days)
	assert.True(t, b.Busy())
	assert.Contains(t, b.View(), "Syncing last 7d")
}

func TestBar_IdleShowsCountAndHints(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(200)
	b.SetState(domain.SessionPolling)
	b.SetCount(12)

	view := b.View()
	assert.Contains(t, view, "12 leads")
	assert.Contains(t, view, "lookback 1d")
	assert.Contains(t, view, "s: sync")
	assert.Contains(t, view, "q: quit")
}

func TestBar_Stopped(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(domain.SessionStopped)
	assert.Contains(t, b.View(), "Stopped")
}
