package domain

import (
	"errors"
	"fmt"
	"strings"
)

// errorCodes maps sentinels to stable wire codes. Order matters: the first
// match wins, so errors that wrap several sentinels report the most
// specific one.
var errorCodes = []struct {
	code string
	err  error
}{
	{"credential_revoked", ErrCredentialRevoked},
	{"credential_missing", ErrCredentialMissing},
	{"send_unauthorized", ErrSendUnauthorized},
	{"send_forbidden", ErrSendForbidden},
	{"rate_limited", ErrRateLimited},
	{"sync_in_progress", ErrSyncInProgress},
	{"token_refresh_failed", ErrTokenRefreshFailed},
	{"mailbox_sync_failed", ErrMailboxSync},
	{"reply_generation_failed", ErrReplyGeneration},
	{"reply_send_failed", ErrReplySend},
	{"missing_config", ErrMissingConfig},
	{"not_found", ErrNotFound},
	{"invalid_input", ErrInvalidInput},
	{"unauthenticated", ErrUnauthenticated},
}

// ErrorCode returns the wire code for err, or "internal" when no sentinel
// matches. A nil error has no code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// ErrorFromCode rebuilds an error received over the wire so that errors.Is
// keeps working on the client side.
func ErrorFromCode(code, message string) error {
	if code == "" && message == "" {
		return nil
	}
	for _, c := range errorCodes {
		if c.code != code {
			continue
		}
		detail := strings.TrimPrefix(message, c.err.Error())
		detail = strings.TrimPrefix(detail, ": ")
		if detail == "" {
			return c.err
		}
		return fmt.Errorf("%w: %s", c.err, detail)
	}
	if message == "" {
		message = code
	}
	return errors.New(message)
}
