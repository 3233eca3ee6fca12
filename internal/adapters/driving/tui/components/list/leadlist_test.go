package list

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

func sampleLeads() []domain.Lead {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return []domain.Lead{
		{ID: "a", Subject: "Pricing question", SenderAddress: "a@example.com", PriorityStatus: domain.PriorityHot, ReceivedAt: at},
		{ID: "b", Subject: "", SenderAddress: "b@example.com", PriorityStatus: domain.PriorityCold, AutoReplied: true, ReceivedAt: at},
		{ID: "c", Subject: "Demo", SenderAddress: "c@example.com", PriorityStatus: domain.PriorityWarm, Answered: true, ReceivedAt: at},
	}
}

func TestLeadList_Empty(t *testing.T) {
	l := NewLeadList(nil)
	assert.Contains(t, l.View(), "No leads yet")
	assert.Nil(t, l.SelectedLead())
}

func TestLeadList_View(t *testing.T) {
	l := NewLeadList(nil)
	l.SetDimensions(100, 20)
	l.SetLeads(sampleLeads())

	view := l.View()
	assert.Contains(t, view, "Leads (3)")
	assert.Contains(t, view, "Pricing question")
	assert.Contains(t, view, "(no subject)")
	assert.Contains(t, view, "auto-replied")
	assert.Contains(t, view, "answered")
	assert.Contains(t, view, "hot")
}

func TestLeadList_Navigation(t *testing.T) {
	l := NewLeadList(nil)
	l.SetLeads(sampleLeads())

	l.MoveUp()
	assert.Equal(t, "a", l.SelectedLead().ID)
	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, "c", l.SelectedLead().ID)
}

func TestLeadList_SetLeadsKeepsSelection(t *testing.T) {
	l := NewLeadList(nil)
	l.SetLeads(sampleLeads())
	l.MoveDown()
	require.Equal(t, "b", l.SelectedLead().ID)

	fresh := append([]domain.Lead{{ID: "new", Subject: "New"}}, sampleLeads()...)
	l.SetLeads(fresh)
	assert.Equal(t, "b", l.SelectedLead().ID)
	assert.Equal(t, 4, l.Count())

	l.SetLeads(fresh[:1])
	assert.Equal(t, "new", l.SelectedLead().ID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
