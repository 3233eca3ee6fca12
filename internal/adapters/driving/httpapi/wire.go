// Package httpapi exposes the orchestrator over HTTP with gin.
//
// Tenant routes authenticate with a Bearer session token whose subject is
// the tenant ID. The sweep trigger authenticates with a shared secret so an
// external scheduler can call it.
package httpapi

import (
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SyncRequest is the body of POST /api/sync.
type SyncRequest struct {
	LookbackDays int `json:"lookback_days"`
}

// ToggleRequest is the body of the switch endpoints.
type ToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// OutcomeResponse is a SyncOutcome on the wire.
type OutcomeResponse struct {
	TenantID          string `json:"tenant_id"`
	Success           bool   `json:"success"`
	NewLeadCount      int    `json:"new_lead_count"`
	RepliesAttempted  int    `json:"replies_attempted"`
	RepliesSent       int    `json:"replies_sent"`
	RepliesFailed     int    `json:"replies_failed"`
	CredentialRevoked bool   `json:"credential_revoked,omitempty"`
	ReauthRequired    bool   `json:"reauth_required,omitempty"`
	ErrorCode         string `json:"error_code,omitempty"`
	Error             string `json:"error,omitempty"`
}

// NewOutcomeResponse converts an outcome for the wire.
func NewOutcomeResponse(o domain.SyncOutcome) OutcomeResponse {
	r := OutcomeResponse{
		TenantID:          o.TenantID,
		Success:           o.Success,
		NewLeadCount:      o.NewLeadCount,
		RepliesAttempted:  o.Replies.Attempted,
		RepliesSent:       o.Replies.Sent,
		RepliesFailed:     o.Replies.Failed,
		CredentialRevoked: o.CredentialRevoked,
	}
	if o.Err != nil {
		r.Error = o.Err.Error()
		r.ErrorCode = domain.ErrorCode(o.Err)
		r.ReauthRequired = domain.IsReauthRequired(o.Err)
	}
	return r
}

// Outcome converts the response back. Per-lead results are not carried.
func (r OutcomeResponse) Outcome() domain.SyncOutcome {
	return domain.SyncOutcome{
		TenantID:     r.TenantID,
		Success:      r.Success,
		NewLeadCount: r.NewLeadCount,
		Replies: domain.ReplySummary{
			Attempted: r.RepliesAttempted,
			Sent:      r.RepliesSent,
			Failed:    r.RepliesFailed,
		},
		Err:               domain.ErrorFromCode(r.ErrorCode, r.Error),
		CredentialRevoked: r.CredentialRevoked,
	}
}

// SweepResponse is a SweepSummary on the wire.
type SweepResponse struct {
	SweepID       string            `json:"sweep_id"`
	StartedAt     time.Time         `json:"started_at"`
	EndedAt       time.Time         `json:"ended_at"`
	DurationMS    int64             `json:"duration_ms"`
	Eligible      int               `json:"eligible"`
	Successful    int               `json:"successful"`
	Failed        int               `json:"failed"`
	NewLeads      int               `json:"new_leads"`
	RepliesSent   int               `json:"replies_sent"`
	RepliesFailed int               `json:"replies_failed"`
	Outcomes      []OutcomeResponse `json:"outcomes"`
}

// NewSweepResponse converts a summary for the wire.
func NewSweepResponse(s *domain.SweepSummary) SweepResponse {
	r := SweepResponse{
		SweepID:       s.SweepID,
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
		DurationMS:    s.Duration().Milliseconds(),
		Eligible:      s.Eligible,
		Successful:    s.Successful,
		Failed:        s.Failed,
		NewLeads:      s.NewLeads,
		RepliesSent:   s.RepliesSent,
		RepliesFailed: s.RepliesFailed,
		Outcomes:      make([]OutcomeResponse, 0, len(s.Outcomes)),
	}
	for _, o := range s.Outcomes {
		r.Outcomes = append(r.Outcomes, NewOutcomeResponse(o))
	}
	return r
}

// LeadsResponse is the body of GET /api/leads.
type LeadsResponse struct {
	Leads []domain.Lead `json:"leads"`
}
