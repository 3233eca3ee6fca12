package domain

import "time"

// ReplyResult is the per-lead outcome of one auto-reply attempt.
type ReplyResult struct {
	LeadID string
	Err    error
}

// Succeeded returns true if the reply was sent and recorded.
func (r ReplyResult) Succeeded() bool {
	return r.Err == nil
}

// ReplySummary aggregates the per-lead results of one dispatch.
type ReplySummary struct {
	// Attempted is the number of leads that passed selection.
	Attempted int

	// Sent is the number of replies sent and recorded.
	Sent int

	// Failed is the number of attempts that failed.
	Failed int

	// Results holds one entry per attempted lead.
	Results []ReplyResult
}

// Add folds a result into the summary.
func (s *ReplySummary) Add(r ReplyResult) {
	s.Attempted++
	if r.Succeeded() {
		s.Sent++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// SyncOutcome is the result of processing one tenant during a sweep.
// Not persisted.
type SyncOutcome struct {
	// TenantID identifies the tenant.
	TenantID string

	// Success is true when the mailbox sync itself succeeded. Per-lead reply
	// failures do not affect it.
	Success bool

	// NewLeadCount is the number of leads ingested.
	NewLeadCount int

	// Replies summarises auto-reply attempts.
	Replies ReplySummary

	// Err is the failure cause when Success is false.
	Err error

	// CredentialRevoked is true if auto-sync was disabled by this run.
	CredentialRevoked bool
}

// SweepSummary aggregates one sweep for logging and reporting.
type SweepSummary struct {
	// SweepID is a unique identifier for the sweep.
	SweepID string

	// StartedAt is when the sweep began.
	StartedAt time.Time

	// EndedAt is when the last batch settled.
	EndedAt time.Time

	// Eligible is the number of tenants selected.
	Eligible int

	// Successful is the number of tenants whose sync succeeded.
	Successful int

	// Failed is the number of tenants whose sync failed.
	Failed int

	// NewLeads is the total number of ingested leads.
	NewLeads int

	// RepliesSent is the total number of automatic replies sent.
	RepliesSent int

	// RepliesFailed is the total number of failed reply attempts.
	RepliesFailed int

	// Outcomes holds one entry per eligible tenant.
	Outcomes []SyncOutcome
}

// Record folds a tenant outcome into the summary.
func (s *SweepSummary) Record(o SyncOutcome) {
	if o.Success {
		s.Successful++
	} else {
		s.Failed++
	}
	s.NewLeads += o.NewLeadCount
	s.RepliesSent += o.Replies.Sent
	s.RepliesFailed += o.Replies.Failed
	s.Outcomes = append(s.Outcomes, o)
}

// Duration returns the wall time of the sweep.
func (s *SweepSummary) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
