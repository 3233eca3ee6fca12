package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReplySummary_Add(t *testing.T) {
	var s ReplySummary
	s.Add(ReplyResult{LeadID: "l1"})
	s.Add(ReplyResult{LeadID: "l2", Err: errors.New("send failed")})
	s.Add(ReplyResult{LeadID: "l3"})

	assert.Equal(t, 3, s.Attempted)
	assert.Equal(t, 2, s.Sent)
	assert.Equal(t, 1, s.Failed)
	assert.Len(t, s.Results, 3)
}

func TestSweepSummary_Record(t *testing.T) {
	start := time.Now()
	s := SweepSummary{StartedAt: start}

	s.Record(SyncOutcome{TenantID: "a", Success: true, NewLeadCount: 2, Replies: ReplySummary{Sent: 1, Failed: 1}})
	s.Record(SyncOutcome{TenantID: "b", Success: false, Err: ErrMailboxSync})
	s.EndedAt = start.Add(3 * time.Second)

	assert.Equal(t, 1, s.Successful)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.NewLeads)
	assert.Equal(t, 1, s.RepliesSent)
	assert.Equal(t, 1, s.RepliesFailed)
	assert.Len(t, s.Outcomes, 2)
	assert.Equal(t, 3*time.Second, s.Duration())
}
