package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure Sender implements the interface.
var _ driven.ReplySender = (*Sender)(nil)

// Sender delivers replies with users.messages.send.
type Sender struct {
	api
	now func() time.Time
}

// NewSender creates a Gmail reply sender.
func NewSender(opts ...Option) *Sender {
	return &Sender{api: newAPI(opts), now: time.Now}
}

// SendReply builds an RFC 5322 message and sends it as the authenticated
// user. The access token is only held for this call.
func (s *Sender) SendReply(ctx context.Context, accessToken string, reply driven.OutgoingReply) error {
	if reply.To == "" {
		return fmt.Errorf("%w: %w: recipient is required", domain.ErrReplySend, domain.ErrInvalidInput)
	}

	svc, err := s.service(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("%w: create gmail service: %w", domain.ErrReplySend, err)
	}

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(buildMessage(reply, s.now())),
	}
	_, err = svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	return wrapError(err)
}

// buildMessage renders a plain-text message. Threading headers are set when
// the reply refers to an original Message-ID.
func buildMessage(reply driven.OutgoingReply, now time.Time) []byte {
	var b strings.Builder
	if reply.From != "" {
		fmt.Fprintf(&b, "From: %s\r\n", reply.From)
	}
	fmt.Fprintf(&b, "To: %s\r\n", reply.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", reply.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	if reply.InReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", reply.InReplyTo)
		fmt.Fprintf(&b, "References: %s\r\n", reply.InReplyTo)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(reply.Body, "\n", "\r\n"))
	return []byte(b.String())
}
