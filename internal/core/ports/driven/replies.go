package driven

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// ReplyRequest is the input to reply generation.
type ReplyRequest struct {
	Content string
	Subject string
	Sender  string
	Tone    domain.Tone
	Length  domain.ReplyLength
}

// ReplyGenerator produces the text of an automatic reply.
// Implementations may include:
//   - HTTP response-generation collaborator
//   - Ollama (local models)
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)
}

// OutgoingReply is a reply ready to send.
type OutgoingReply struct {
	From      string
	To        string
	Subject   string
	Body      string
	InReplyTo string
}

// ReplySender delivers a reply through the tenant's mailbox.
//
// Error contract:
//   - wraps domain.ErrSendUnauthorized on 401
//   - wraps domain.ErrSendForbidden on 403
//   - wraps domain.ErrReplySend otherwise
type ReplySender interface {
	SendReply(ctx context.Context, accessToken string, reply OutgoingReply) error
}
