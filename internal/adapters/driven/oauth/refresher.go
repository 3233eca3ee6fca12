package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure Refresher implements the interface.
var _ driven.CredentialRefresher = (*Refresher)(nil)

// Refresher exchanges refresh credentials at the provider token endpoint.
type Refresher struct {
	cfg ProviderConfig
}

// NewRefresher creates a refresher for the given OAuth client.
func NewRefresher(cfg ProviderConfig) *Refresher {
	return &Refresher{cfg: cfg}
}

// Refresh performs one refresh grant. The returned credential carries the
// new refresh token when the provider rotated it.
func (r *Refresher) Refresh(ctx context.Context, refreshCredential string) (*domain.AccessCredential, error) {
	if refreshCredential == "" {
		return nil, domain.ErrCredentialMissing
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.cfg.httpClient())
	src := r.cfg.oauth2Config("").TokenSource(ctx, &oauth2.Token{RefreshToken: refreshCredential})

	tok, err := src.Token()
	if err != nil {
		return nil, classify(err)
	}

	cred := &domain.AccessCredential{
		Token:  tok.AccessToken,
		Expiry: tok.Expiry,
	}
	if tok.RefreshToken != "" && tok.RefreshToken != refreshCredential {
		cred.RotatedRefresh = tok.RefreshToken
	}
	return cred, nil
}

// classify maps token endpoint failures onto the domain taxonomy.
// Only invalid_grant means the refresh credential itself is dead.
func classify(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.ErrorCode == "invalid_grant" {
		return fmt.Errorf("%w: %s", domain.ErrCredentialRevoked, describe(rerr))
	}
	return fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
}

func describe(rerr *oauth2.RetrieveError) string {
	if rerr.ErrorDescription != "" {
		return rerr.ErrorCode + ": " + rerr.ErrorDescription
	}
	return rerr.ErrorCode
}
