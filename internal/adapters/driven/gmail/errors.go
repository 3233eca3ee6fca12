package gmail

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// wrapError maps a Gmail API error onto the send error contract.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", domain.ErrSendUnauthorized, err)
		case http.StatusForbidden:
			if isRateLimitReason(gerr) {
				return fmt.Errorf("%w: %w: %w", domain.ErrReplySend, domain.ErrRateLimited, err)
			}
			return fmt.Errorf("%w: %w", domain.ErrSendForbidden, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w: %w", domain.ErrReplySend, domain.ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrReplySend, err)
}

// isRateLimitReason reports Gmail's quota errors, which arrive as 403 with
// a rate limit reason rather than 429.
func isRateLimitReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}

// wrapSyncError maps a Gmail API error onto the mailbox sync contract.
// Every failure is transient for the tenant; quota errors are tagged.
func wrapSyncError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests || (gerr.Code == http.StatusForbidden && isRateLimitReason(gerr)) {
			return fmt.Errorf("%w: %w: %w", domain.ErrMailboxSync, domain.ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrMailboxSync, err)
}
