package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

func setupSessionStore(t *testing.T) *mockSessionStore {
	t.Helper()
	store := &mockSessionStore{}
	old := sessionStore
	sessionStore = store
	t.Cleanup(func() { sessionStore = old })
	return store
}

func statusServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthenticated","code":"unauthenticated"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tenant_id":"acme","state":"idle","auto_sync_enabled":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginCmd_SavesSession(t *testing.T) {
	store := setupSessionStore(t)
	srv := statusServer(t)

	out, err := execute(t, "login", "--server", srv.URL+"/", "--token", "good")

	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as tenant acme")
	require.NotNil(t, store.session)
	assert.Equal(t, driven.ClientSession{ServerURL: srv.URL, TenantID: "acme", Token: "good"}, *store.session)
}

func TestLoginCmd_RejectedToken(t *testing.T) {
	store := setupSessionStore(t)
	srv := statusServer(t)

	_, err := execute(t, "login", "--server", srv.URL, "--token", "bad")

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Nil(t, store.session)
}

func TestLoginCmd_RequiresFlags(t *testing.T) {
	setupSessionStore(t)

	_, err := execute(t, "login", "--server", "http://localhost:8080")

	assert.Error(t, err)
}

func TestLogoutCmd(t *testing.T) {
	store := setupSessionStore(t)
	store.session = &driven.ClientSession{ServerURL: "http://x", TenantID: "acme", Token: "t"}

	out, err := execute(t, "logout")

	require.NoError(t, err)
	assert.Nil(t, store.session)
	assert.Contains(t, out, "Logged out.")
}

func TestSessionCmd_NotLoggedIn(t *testing.T) {
	setupSessionStore(t)

	_, err := execute(t, "session", "--headless")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}
