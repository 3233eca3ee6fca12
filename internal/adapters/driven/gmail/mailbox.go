package gmail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// Ensure Mailbox implements the interface.
var _ driven.MailboxSyncClient = (*Mailbox)(nil)

// DefaultQuery selects inbox mail that is likely to come from a person.
const DefaultQuery = "in:inbox -category:promotions -category:social -category:updates"

const (
	pageSize = 100
	// maxMessages bounds one ingestion pass.
	maxMessages = 500
)

// Limiter throttles Gmail calls. collab.RateLimiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Mailbox ingests inbox messages as leads. It does not classify: every lead
// it returns is unclassified, which keeps it out of auto-reply selection
// until something else sets a priority.
type Mailbox struct {
	api
	known   driven.LeadStore
	query   string
	limiter Limiter
}

// MailboxOption configures a Mailbox beyond the shared API options.
type MailboxOption func(*Mailbox)

// WithQuery replaces DefaultQuery. The lookback window is always appended.
func WithQuery(q string) MailboxOption {
	return func(m *Mailbox) {
		if strings.TrimSpace(q) != "" {
			m.query = q
		}
	}
}

// WithLimiter throttles list and get calls.
func WithLimiter(l Limiter) MailboxOption {
	return func(m *Mailbox) { m.limiter = l }
}

// NewMailbox creates a Gmail ingestion client. known filters out messages
// that are already stored as leads; it may be nil.
func NewMailbox(known driven.LeadStore, apiOpts []Option, opts ...MailboxOption) *Mailbox {
	m := &Mailbox{api: newAPI(apiOpts), known: known, query: DefaultQuery}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SyncMailbox lists messages inside the lookback window and returns the
// ones not seen before.
func (m *Mailbox) SyncMailbox(ctx context.Context, req driven.MailboxSyncRequest) (*driven.MailboxSyncResult, error) {
	lookback := req.Lookback
	if lookback == 0 {
		lookback = domain.AutoSyncLookback
	}

	svc, err := m.service(ctx, req.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: create gmail service: %w", domain.ErrMailboxSync, err)
	}

	ids, err := m.listIDs(ctx, svc.Users.Messages, lookback)
	if err != nil {
		return nil, err
	}

	var leads []domain.Lead
	for _, id := range ids {
		seen, err := m.isKnown(ctx, req.TenantID, id)
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}

		if err := m.wait(ctx); err != nil {
			return nil, err
		}
		msg, err := svc.Users.Messages.Get("me", id).Format("raw").Context(ctx).Do()
		if err != nil {
			return nil, wrapSyncError(err)
		}
		if lead, ok := messageToLead(req.TenantID, msg); ok {
			leads = append(leads, lead)
		}
	}

	logger.Debug("gmail: tenant %s: %d messages listed, %d new leads", req.TenantID, len(ids), len(leads))
	return &driven.MailboxSyncResult{NewLeads: leads, Count: len(leads)}, nil
}

func (m *Mailbox) listIDs(ctx context.Context, messages *gmail.UsersMessagesService, lookback domain.Lookback) ([]string, error) {
	q := fmt.Sprintf("%s newer_than:%dd", m.query, lookback.Days())

	var ids []string
	pageToken := ""
	for len(ids) < maxMessages {
		if err := m.wait(ctx); err != nil {
			return nil, err
		}
		call := messages.List("me").Q(q).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, wrapSyncError(err)
		}
		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	if len(ids) > maxMessages {
		ids = ids[:maxMessages]
	}
	return ids, nil
}

func (m *Mailbox) isKnown(ctx context.Context, tenantID, messageID string) (bool, error) {
	if m.known == nil {
		return false, nil
	}
	_, err := m.known.Get(ctx, tenantID, leadID(tenantID, messageID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: lookup lead: %w", domain.ErrMailboxSync, err)
	}
}

func (m *Mailbox) wait(ctx context.Context) error {
	if m.limiter == nil {
		return nil
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMailboxSync, err)
	}
	return nil
}
