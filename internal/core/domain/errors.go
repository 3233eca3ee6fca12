package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrSyncInProgress indicates another sweep holds the tenant's sync lease.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrMissingConfig indicates required startup configuration is absent.
	// It aborts a sweep before any tenant is processed.
	ErrMissingConfig = errors.New("missing required configuration")

	// Credential Errors.

	// ErrCredentialRevoked indicates the stored refresh credential can never
	// succeed again (invalid_grant). Fatal for the tenant.
	ErrCredentialRevoked = errors.New("refresh credential revoked or expired")

	// ErrCredentialMissing indicates the tenant has no refresh credential.
	ErrCredentialMissing = errors.New("refresh credential missing")

	// ErrTokenRefreshFailed indicates a transient token refresh failure.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Collaborator Errors.

	// ErrMailboxSync indicates the mailbox sync collaborator failed.
	ErrMailboxSync = errors.New("mailbox sync failed")

	// ErrReplyGeneration indicates the response-generation collaborator failed.
	ErrReplyGeneration = errors.New("reply generation failed")

	// ErrReplySend indicates the send collaborator failed.
	ErrReplySend = errors.New("reply send failed")

	// ErrSendUnauthorized indicates the send collaborator rejected the access
	// credential (HTTP 401).
	ErrSendUnauthorized = errors.New("send rejected: credential expired or invalid")

	// ErrSendForbidden indicates the send scope was denied (HTTP 403).
	ErrSendForbidden = errors.New("send rejected: send permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Store Errors.

	// ErrStaleMarker indicates a compare-and-swap on last_auto_sync lost
	// against a concurrent writer.
	ErrStaleMarker = errors.New("sync marker changed concurrently")

	// ErrAlreadyReplied indicates the lead already carries the durable
	// auto-replied flag.
	ErrAlreadyReplied = errors.New("lead already auto-replied")

	// ErrInvalidTransition indicates a state machine event that is not
	// valid for the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// Session Errors.

	// ErrUnauthenticated indicates a missing, malformed or expired session
	// token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotLoggedIn indicates no session token is stored on this machine.
	ErrNotLoggedIn = errors.New("not logged in")
)

// IsCredentialFatal reports whether err means the tenant's refresh
// credential is permanently unusable.
func IsCredentialFatal(err error) bool {
	return errors.Is(err, ErrCredentialRevoked) || errors.Is(err, ErrCredentialMissing)
}

// IsReauthRequired reports whether err should be surfaced to the user as a
// re-authentication prompt rather than a soft background failure.
func IsReauthRequired(err error) bool {
	return IsCredentialFatal(err) ||
		errors.Is(err, ErrSendUnauthorized) ||
		errors.Is(err, ErrSendForbidden)
}
