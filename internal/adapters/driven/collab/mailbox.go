package collab

import (
	"context"
	"fmt"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure MailboxClient implements the interface.
var _ driven.MailboxSyncClient = (*MailboxClient)(nil)

// MailboxClient calls the mailbox ingestion collaborator.
type MailboxClient struct {
	client
}

// NewMailboxClient creates a mailbox sync client.
func NewMailboxClient(opts Options) *MailboxClient {
	return &MailboxClient{client: newClient(opts)}
}

type mailboxRequest struct {
	TenantID     string `json:"tenant_id"`
	AccessToken  string `json:"access_token"`
	LookbackDays int    `json:"lookback_days"`
}

type mailboxResponse struct {
	NewLeadsData []domain.Lead `json:"new_leads_data"`
	Count        *int          `json:"count"`
}

// SyncMailbox runs one ingestion pass for the tenant.
func (c *MailboxClient) SyncMailbox(ctx context.Context, req driven.MailboxSyncRequest) (*driven.MailboxSyncResult, error) {
	lookback := req.Lookback
	if lookback == 0 {
		lookback = domain.AutoSyncLookback
	}

	var resp mailboxResponse
	err := c.postJSON(ctx, mailboxRequest{
		TenantID:     req.TenantID,
		AccessToken:  req.AccessToken,
		LookbackDays: lookback.Days(),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMailboxSync, err)
	}

	count := len(resp.NewLeadsData)
	if resp.Count != nil {
		count = *resp.Count
	}
	return &driven.MailboxSyncResult{NewLeads: resp.NewLeadsData, Count: count}, nil
}
