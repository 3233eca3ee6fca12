package driven

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// CredentialRefresher exchanges a long-lived refresh credential for a
// short-lived access credential.
//
// Error contract:
//   - wraps domain.ErrCredentialRevoked when the provider answers
//     invalid_grant; the caller must disable auto-sync for the tenant
//   - wraps domain.ErrTokenRefreshFailed for every other failure
type CredentialRefresher interface {
	Refresh(ctx context.Context, refreshCredential string) (*domain.AccessCredential, error)
}
