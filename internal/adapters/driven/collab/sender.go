package collab

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure SenderClient implements the interface.
var _ driven.ReplySender = (*SenderClient)(nil)

// SenderClient calls the send collaborator.
type SenderClient struct {
	client
}

// NewSenderClient creates a reply send client.
func NewSenderClient(opts Options) *SenderClient {
	return &SenderClient{client: newClient(opts)}
}

type sendRequest struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	AccessToken string `json:"access_token"`
	InReplyTo   string `json:"in_reply_to,omitempty"`
}

// SendReply delivers the reply. 401 and 403 map to the re-authentication
// errors; everything else wraps domain.ErrReplySend.
func (c *SenderClient) SendReply(ctx context.Context, accessToken string, reply driven.OutgoingReply) error {
	err := c.postJSON(ctx, sendRequest{
		To:          reply.To,
		Subject:     reply.Subject,
		Body:        reply.Body,
		AccessToken: accessToken,
		InReplyTo:   reply.InReplyTo,
	}, nil)
	if err == nil {
		return nil
	}

	var serr *StatusError
	if errors.As(err, &serr) {
		switch serr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", domain.ErrSendUnauthorized, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", domain.ErrSendForbidden, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrReplySend, err)
}
