package mcp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil syncer returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSyncer)
	})

	t.Run("syncer only creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Syncer: &mockSyncer{}})
		require.NoError(t, err)
		assert.Equal(t, "dev", server.version)
	})

	t.Run("all ports and options", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Syncer:   &mockSyncer{},
			Sweeper:  &mockSweeper{},
			Controls: &mockControls{},
			Leads:    &mockLeads{},
		}, WithVersion("1.2.3"), WithHTTPSecret("s3cret"))
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", server.version)
		assert.Equal(t, "s3cret", server.secret)
	})
}

func TestHTTPHandler_RequiresSecret(t *testing.T) {
	server, err := NewServer(&Ports{Syncer: &mockSyncer{}}, WithHTTPSecret("s3cret"))
	require.NoError(t, err)
	handler := server.httpHandler()

	for _, auth := range []string{"", "Bearer wrong", "s3cret"} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "auth %q", auth)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}
