package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "revoked", err: fmt.Errorf("refresh: %w", ErrCredentialRevoked), want: "credential_revoked"},
		{name: "send rate limited", err: fmt.Errorf("%w: %w", ErrReplySend, ErrRateLimited), want: "rate_limited"},
		{name: "unauthorized", err: fmt.Errorf("%w: 401", ErrSendUnauthorized), want: "send_unauthorized"},
		{name: "unknown", err: errors.New("boom"), want: "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestErrorFromCode(t *testing.T) {
	err := ErrorFromCode("credential_revoked", "refresh credential revoked or expired: invalid_grant")
	assert.ErrorIs(t, err, ErrCredentialRevoked)
	assert.True(t, IsReauthRequired(err))
	assert.Equal(t, "refresh credential revoked or expired: invalid_grant", err.Error())

	assert.Equal(t, ErrSyncInProgress, ErrorFromCode("sync_in_progress", ""))
	assert.NoError(t, ErrorFromCode("", ""))

	unknown := ErrorFromCode("internal", "database is locked")
	assert.EqualError(t, unknown, "database is locked")
	assert.False(t, IsReauthRequired(unknown))
}

func TestErrorCode_RoundTrip(t *testing.T) {
	original := fmt.Errorf("%w: 403", ErrSendForbidden)
	back := ErrorFromCode(ErrorCode(original), original.Error())
	assert.ErrorIs(t, back, ErrSendForbidden)
	assert.True(t, IsReauthRequired(back))
}
