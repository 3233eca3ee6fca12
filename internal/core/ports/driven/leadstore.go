package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// LeadStore is the orchestrator's view of the shared lead table.
// The durable AutoReplied flag stored here is the only cross-process source
// of truth for "already replied".
type LeadStore interface {
	// RecordIngested inserts leads returned by the mailbox sync collaborator.
	// Leads that already exist are left untouched.
	RecordIngested(ctx context.Context, leads []domain.Lead) error

	// Get retrieves a lead by ID.
	// Returns domain.ErrNotFound if the lead does not exist.
	Get(ctx context.Context, tenantID, leadID string) (*domain.Lead, error)

	// List returns a tenant's leads, newest first.
	List(ctx context.Context, tenantID string, limit int) ([]domain.Lead, error)

	// MarkAutoReplied sets answered, auto_replied and responded_at in one
	// conditional update. Returns domain.ErrAlreadyReplied if the lead was
	// already auto-replied.
	MarkAutoReplied(ctx context.Context, tenantID, leadID string, respondedAt time.Time) error

	// CountAutoRepliedSince counts leads auto-replied at or after since.
	CountAutoRepliedSince(ctx context.Context, tenantID string, since time.Time) (int, error)
}
