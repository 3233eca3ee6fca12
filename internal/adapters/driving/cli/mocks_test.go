package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
)

// Compile-time interface checks.
var (
	_ driving.Sweeper             = (*mockSweeper)(nil)
	_ driving.TenantSyncer        = (*mockSyncer)(nil)
	_ driving.AutoReplyController = (*mockControls)(nil)
	_ driven.TenantStore          = (*mockTenants)(nil)
	_ driven.ClientSessionStore   = (*mockSessionStore)(nil)
	_ TokenIssuer                 = (*mockTokens)(nil)
	_ MailboxAuthorizer           = (*mockAuthorizer)(nil)
)

type mockSweeper struct {
	summary *domain.SweepSummary
	err     error
}

func (m *mockSweeper) Sweep(context.Context) (*domain.SweepSummary, error) {
	return m.summary, m.err
}

type mockSyncer struct {
	outcome  *domain.SyncOutcome
	status   *driving.SyncStatus
	err      error
	tenantID string
	lookback domain.Lookback
}

func (m *mockSyncer) SyncTenant(_ context.Context, tenantID string, l domain.Lookback) (*domain.SyncOutcome, error) {
	m.tenantID, m.lookback = tenantID, l
	return m.outcome, m.err
}

func (m *mockSyncer) Marker(_ context.Context, tenantID string) (domain.SyncMarker, error) {
	return domain.SyncMarker{TenantID: tenantID}, m.err
}

func (m *mockSyncer) Status(context.Context, string) (*driving.SyncStatus, error) {
	return m.status, m.err
}

type mockControls struct {
	settings  domain.AutoReplySettings
	autoReply *bool
	autoSync  *bool
	err       error
}

func (m *mockControls) SetAutoReplyEnabled(_ context.Context, _ string, enabled bool) error {
	m.autoReply = &enabled
	return m.err
}

func (m *mockControls) SetAutoSyncEnabled(_ context.Context, _ string, enabled bool) error {
	m.autoSync = &enabled
	return m.err
}

func (m *mockControls) Settings(context.Context, string) (domain.AutoReplySettings, error) {
	return m.settings, m.err
}

func (m *mockControls) UpdateSettings(_ context.Context, _ string, s domain.AutoReplySettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.settings = s
	return m.err
}

type mockTenants struct {
	profiles map[string]domain.TenantSyncProfile
}

func newMockTenants(profiles ...domain.TenantSyncProfile) *mockTenants {
	m := &mockTenants{profiles: make(map[string]domain.TenantSyncProfile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockTenants) ListAutoSyncProfiles(context.Context) ([]domain.TenantSyncProfile, error) {
	return nil, nil
}

func (m *mockTenants) Get(_ context.Context, id string) (*domain.TenantSyncProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *mockTenants) Save(_ context.Context, p domain.TenantSyncProfile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *mockTenants) SetAutoSyncEnabled(context.Context, string, bool) error { return nil }
func (m *mockTenants) DisableAutoSync(context.Context, string) error         { return nil }

func (m *mockTenants) UpdateRefreshCredential(_ context.Context, id, credential string) error {
	p, ok := m.profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.RefreshCredential = credential
	m.profiles[id] = p
	return nil
}

func (m *mockTenants) MarkSynced(context.Context, string, *time.Time, time.Time) error { return nil }

func (m *mockTenants) Marker(_ context.Context, id string) (domain.SyncMarker, error) {
	return domain.SyncMarker{TenantID: id}, nil
}

type mockTokens struct{}

func (mockTokens) Issue(tenantID string) (string, time.Time, error) {
	return "token-" + tenantID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), nil
}

func (mockTokens) Verify(token string) (string, error) {
	return token, nil
}

type mockAuthorizer struct{}

func (mockAuthorizer) AuthCodeURL(redirectURL, state string) (string, string) {
	return "https://accounts.example/auth?state=" + state + "&redirect_uri=" + redirectURL, "verifier"
}

func (mockAuthorizer) ExchangeCode(context.Context, string, string, string) (string, error) {
	return "refresh-1", nil
}

type mockSessionStore struct {
	session *driven.ClientSession
}

func (m *mockSessionStore) Save(s driven.ClientSession) error {
	m.session = &s
	return nil
}

func (m *mockSessionStore) Load() (*driven.ClientSession, error) {
	if m.session == nil {
		return nil, domain.ErrNotLoggedIn
	}
	return m.session, nil
}

func (m *mockSessionStore) Delete() error {
	m.session = nil
	return nil
}

// setupServices installs svc for the duration of the test.
func setupServices(t *testing.T, svc *Services) {
	t.Helper()
	old := services
	services = svc
	t.Cleanup(func() { services = old })
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
