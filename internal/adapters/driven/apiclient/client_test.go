package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(driven.ClientSession{ServerURL: srv.URL + "/", TenantID: "t1", Token: "tok"})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := New(driven.ClientSession{})
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	_, err = New(driven.ClientSession{ServerURL: "::", Token: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_SyncTenant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sync", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req struct {
			LookbackDays int `json:"lookback_days"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.LookbackDays)

		_, _ = w.Write([]byte(`{"tenant_id":"t1","success":true,"new_lead_count":4,"replies_sent":1,"replies_attempted":1}`))
	})

	outcome, err := c.SyncTenant(context.Background(), "t1", domain.Lookback3Days)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 4, outcome.NewLeadCount)
	assert.Equal(t, 1, outcome.Replies.Sent)
}

func TestClient_SyncTenant_FailedOutcomeKeepsErrorClass(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tenant_id":"t1","success":false,"credential_revoked":true,` +
			`"reauth_required":true,"error_code":"credential_revoked","error":"refresh credential revoked or expired"}`))
	})

	outcome, err := c.SyncTenant(context.Background(), "t1", domain.Lookback1Day)
	require.Error(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.CredentialRevoked)
	assert.ErrorIs(t, err, domain.ErrCredentialRevoked)
	assert.True(t, domain.IsReauthRequired(err))
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthenticated", status: 401, body: `{"error":"invalid or expired token","code":"unauthenticated"}`, wantErr: domain.ErrUnauthenticated},
		{name: "bare 401", status: 401, body: ``, wantErr: domain.ErrUnauthenticated},
		{name: "not found", status: 404, body: `{"error":"get tenant: not found","code":"not_found"}`, wantErr: domain.ErrNotFound},
		{name: "in progress", status: 409, body: `{"error":"sync in progress","code":"sync_in_progress"}`, wantErr: domain.ErrSyncInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Marker(context.Background(), "t1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Marker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/marker", r.URL.Path)
		_, _ = w.Write([]byte(`{"tenant_id":"t1","auto_sync_enabled":true,"last_auto_sync_at":"2026-03-02T09:00:00Z"}`))
	})

	marker, err := c.Marker(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, marker.LastAutoSyncAt)
	assert.True(t, marker.LastAutoSyncAt.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)))
}

func TestClient_Toggles(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"enabled":true}`))
	})

	require.NoError(t, c.SetAutoReplyEnabled(context.Background(), true))
	require.NoError(t, c.SetAutoSyncEnabled(context.Background(), false))
	assert.Equal(t, []string{"/api/auto-reply/enabled", "/api/auto-sync"}, paths)
}

func TestLeadCache(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"leads":[{"id":"l1","tenant_id":"t1"},{"id":"l2","tenant_id":"t1"}]}`))
	})

	var seen [][]domain.Lead
	view := NewLeadCache(c, 25, func(leads []domain.Lead) { seen = append(seen, leads) })

	require.NoError(t, view.Refresh(context.Background(), "t1"))
	assert.Len(t, view.Leads(), 2)

	view.Clear()
	assert.Empty(t, view.Leads())

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 2)
	assert.Empty(t, seen[1])
}
