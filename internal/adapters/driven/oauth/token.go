// Package oauth talks to the mailbox provider's OAuth 2.0 token endpoint.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// DefaultScopes lets leadsync read the mailbox and send replies.
var DefaultScopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailSendScope,
}

// ProviderConfig describes the OAuth client registered with the provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string

	// AuthURL and TokenURL override the Google endpoints when set.
	AuthURL  string
	TokenURL string

	Scopes []string

	// HTTPClient is used for token requests. Defaults to a 30s client.
	HTTPClient *http.Client
}

// Validate checks that the client credentials are present.
func (c ProviderConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: oauth client id and secret", domain.ErrMissingConfig)
	}
	return nil
}

func (c ProviderConfig) oauth2Config(redirectURL string) *oauth2.Config {
	endpoint := google.Endpoint
	if c.AuthURL != "" {
		endpoint.AuthURL = c.AuthURL
	}
	if c.TokenURL != "" {
		endpoint.TokenURL = c.TokenURL
	}
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
	}
}

func (c ProviderConfig) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// AuthorizationRequest is a prepared authorization-code request with PKCE.
type AuthorizationRequest struct {
	URL      string
	State    string
	Verifier string
}

// AuthCodeURL builds the consent URL for a tenant connecting their mailbox.
// Offline access and forced consent make the provider return a refresh token.
func (c ProviderConfig) AuthCodeURL(redirectURL, state string) AuthorizationRequest {
	verifier := oauth2.GenerateVerifier()
	url := c.oauth2Config(redirectURL).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	return AuthorizationRequest{URL: url, State: state, Verifier: verifier}
}

// ExchangeCode exchanges an authorization code for the tenant's refresh
// credential.
func (c ProviderConfig) ExchangeCode(ctx context.Context, redirectURL, code, verifier string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient())
	tok, err := c.oauth2Config(redirectURL).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return "", errors.New("provider returned no refresh token; revoke the app's access and connect again")
	}
	return tok.RefreshToken, nil
}
