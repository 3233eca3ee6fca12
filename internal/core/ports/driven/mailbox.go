package driven

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// MailboxSyncRequest is the input of one ingestion call.
type MailboxSyncRequest struct {
	TenantID    string
	AccessToken string
	Lookback    domain.Lookback
}

// MailboxSyncResult is the collaborator's answer.
type MailboxSyncResult struct {
	// NewLeads are the leads created by this call, already classified.
	NewLeads []domain.Lead

	// Count is the collaborator-reported number of new leads.
	Count int
}

// MailboxSyncClient invokes the external ingestion procedure. Fetching,
// classification and storage happen on the other side of this boundary.
// Any error is a transient per-tenant failure.
type MailboxSyncClient interface {
	SyncMailbox(ctx context.Context, req MailboxSyncRequest) (*MailboxSyncResult, error)
}
