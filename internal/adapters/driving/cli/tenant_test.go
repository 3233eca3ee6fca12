package cli

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
)

func TestTenantAddCmd_CreatesTenant(t *testing.T) {
	tenants := newMockTenants()
	setupServices(t, &Services{Tenants: tenants})

	out, err := execute(t, "tenant", "add", "acme", "--mailbox", "sales@acme.example", "--timezone", "Europe/London")

	require.NoError(t, err)
	assert.Contains(t, out, "Added tenant acme.")
	assert.Contains(t, out, "leadsync tenant connect acme")
	assert.Equal(t, "sales@acme.example", tenants.profiles["acme"].MailboxAddress)
	assert.Equal(t, "Europe/London", tenants.profiles["acme"].TimeZone)
}

func TestTenantAddCmd_UpdatesKeepsCredential(t *testing.T) {
	tenants := newMockTenants(domain.TenantSyncProfile{
		ID:                "acme",
		MailboxAddress:    "old@acme.example",
		RefreshCredential: "refresh",
		AutoSyncEnabled:   true,
	})
	setupServices(t, &Services{Tenants: tenants})

	out, err := execute(t, "tenant", "add", "acme", "--mailbox", "new@acme.example")

	require.NoError(t, err)
	assert.Contains(t, out, "Updated tenant acme.")
	p := tenants.profiles["acme"]
	assert.Equal(t, "new@acme.example", p.MailboxAddress)
	assert.Equal(t, "refresh", p.RefreshCredential)
	assert.True(t, p.AutoSyncEnabled)
}

func TestTenantAddCmd_InvalidTimeZone(t *testing.T) {
	setupServices(t, &Services{Tenants: newMockTenants()})

	_, err := execute(t, "tenant", "add", "acme", "--timezone", "Mars/Olympus")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTenantShowCmd(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	syncer := &mockSyncer{status: &driving.SyncStatus{
		TenantID:        "acme",
		State:           domain.TenantIdle,
		AutoSyncEnabled: true,
		LastAutoSyncAt:  &at,
		LastError:       "mailbox sync failed",
	}}
	setupServices(t, &Services{Syncer: syncer})

	out, err := execute(t, "tenant", "show", "acme")

	require.NoError(t, err)
	assert.Contains(t, out, "Tenant: acme")
	assert.Contains(t, out, "Auto-sync:  on")
	assert.Contains(t, out, "Last error: mailbox sync failed")
}

func TestTenantShowCmd_NeverSynced(t *testing.T) {
	syncer := &mockSyncer{status: &driving.SyncStatus{TenantID: "acme", State: domain.TenantIdle}}
	setupServices(t, &Services{Syncer: syncer})

	out, err := execute(t, "tenant", "show", "acme")

	require.NoError(t, err)
	assert.Contains(t, out, "Last sync:  never")
}

func TestTenantAutoSyncCmd(t *testing.T) {
	controls := &mockControls{}
	setupServices(t, &Services{Controls: controls})

	out, err := execute(t, "tenant", "auto-sync", "acme", "on")

	require.NoError(t, err)
	require.NotNil(t, controls.autoSync)
	assert.True(t, *controls.autoSync)
	assert.Contains(t, out, "Auto-sync on for tenant acme.")
}

func TestTenantAutoSyncCmd_MissingCredential(t *testing.T) {
	setupServices(t, &Services{Controls: &mockControls{err: domain.ErrCredentialMissing}})

	_, err := execute(t, "tenant", "auto-sync", "acme", "on")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "leadsync tenant connect acme")
}

func TestTenantAutoSyncCmd_BadSwitch(t *testing.T) {
	setupServices(t, &Services{Controls: &mockControls{}})

	_, err := execute(t, "tenant", "auto-sync", "acme", "maybe")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// browserAuthorizer completes the consent flow by calling the redirect URI
// the way a browser would after consent.
type browserAuthorizer struct {
	mockAuthorizer
}

func (b browserAuthorizer) AuthCodeURL(redirectURL, state string) (string, string) {
	go func() {
		q := url.Values{"code": {"auth-code"}, "state": {state}}
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, redirectURL+"?"+q.Encode(), nil)
		if err != nil {
			return
		}
		if resp, err := http.DefaultClient.Do(req); err == nil {
			resp.Body.Close()
		}
	}()
	return b.mockAuthorizer.AuthCodeURL(redirectURL, state)
}

func TestTenantConnectCmd(t *testing.T) {
	tenants := newMockTenants(domain.TenantSyncProfile{ID: "acme"})
	setupServices(t, &Services{Tenants: tenants, Authorizer: browserAuthorizer{}})

	out, err := execute(t, "tenant", "connect", "acme", "--no-browser")

	require.NoError(t, err)
	assert.Contains(t, out, "https://accounts.example/auth")
	assert.Contains(t, out, "Mailbox connected for tenant acme.")
	assert.Equal(t, "refresh-1", tenants.profiles["acme"].RefreshCredential)
}

func TestTenantConnectCmd_UnknownTenant(t *testing.T) {
	setupServices(t, &Services{Tenants: newMockTenants(), Authorizer: mockAuthorizer{}})

	_, err := execute(t, "tenant", "connect", "ghost", "--no-browser")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "leadsync tenant add ghost")
}

func TestParseSwitch(t *testing.T) {
	for _, s := range []string{"on", "ON", "true", "enable"} {
		v, err := parseSwitch(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"off", "false", "Disabled", "no"} {
		v, err := parseSwitch(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := parseSwitch("2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
