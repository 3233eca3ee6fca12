package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// AutoReplyDispatcher selects newly ingested leads that qualify for an
// automatic reply and replies to each of them at most once.
//
// Every attempt claims the lead in the ProcessedLeadCache before any
// network call. A claim is released when generation or sending fails so a
// later pass can retry; it is kept once a reply went out.
type AutoReplyDispatcher struct {
	leads     driven.LeadStore
	cache     driven.ProcessedLeadCache
	generator driven.ReplyGenerator
	sender    driven.ReplySender
	now       func() time.Time
}

// NewAutoReplyDispatcher creates a dispatcher.
func NewAutoReplyDispatcher(
	leads driven.LeadStore,
	cache driven.ProcessedLeadCache,
	generator driven.ReplyGenerator,
	sender driven.ReplySender,
) *AutoReplyDispatcher {
	return &AutoReplyDispatcher{
		leads:     leads,
		cache:     cache,
		generator: generator,
		sender:    sender,
		now:       time.Now,
	}
}

// Select returns the leads eligible for an automatic reply, without
// claiming them. Leads rejected by the tenant's gating are left for a
// manual reply.
func (d *AutoReplyDispatcher) Select(
	ctx context.Context,
	tenant domain.TenantSyncProfile,
	settings domain.AutoReplySettings,
	leads []domain.Lead,
) ([]domain.Lead, error) {
	if !settings.Enabled || len(leads) == 0 {
		return nil, nil
	}

	now := d.now().In(tenant.Location())

	var selected []domain.Lead
	for _, lead := range leads {
		if !lead.PriorityStatus.QualifiesForAutoReply() || !lead.AwaitingReply() {
			continue
		}
		if !settings.Admits(lead, now) {
			logger.Debug("autoreply: lead %s gated by tenant settings", lead.ID)
			continue
		}
		seen, err := d.cache.Contains(ctx, tenant.ID, lead.ID)
		if err != nil {
			return nil, fmt.Errorf("check processed leads: %w", err)
		}
		if seen {
			continue
		}
		selected = append(selected, lead)
	}

	if len(selected) == 0 || settings.MaxDailyReplies <= 0 {
		return selected, nil
	}

	sent, err := d.leads.CountAutoRepliedSince(ctx, tenant.ID, domain.StartOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("count replies today: %w", err)
	}
	remaining := settings.RemainingToday(sent)
	if remaining < len(selected) {
		logger.Info("autoreply: tenant %s daily cap reached, %d of %d leads deferred",
			tenant.ID, len(selected)-remaining, len(selected))
		selected = selected[:remaining]
	}
	return selected, nil
}

// Dispatch replies to every eligible lead concurrently and summarises the
// attempts. Leads that lose the claim to a concurrent dispatch are skipped
// and do not appear in the summary.
func (d *AutoReplyDispatcher) Dispatch(
	ctx context.Context,
	tenant domain.TenantSyncProfile,
	accessToken string,
	settings domain.AutoReplySettings,
	leads []domain.Lead,
) (domain.ReplySummary, error) {
	var summary domain.ReplySummary

	selected, err := d.Select(ctx, tenant, settings, leads)
	if err != nil {
		return summary, err
	}
	if len(selected) == 0 {
		return summary, nil
	}

	type attempt struct {
		result    domain.ReplyResult
		attempted bool
	}
	attempts := make([]attempt, len(selected))

	var wg sync.WaitGroup
	for i := range selected {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lead := selected[i]
			attempted, err := d.replyTo(ctx, tenant, accessToken, settings, lead)
			attempts[i] = attempt{
				result:    domain.ReplyResult{LeadID: lead.ID, Err: err},
				attempted: attempted,
			}
		}(i)
	}
	wg.Wait()

	for _, a := range attempts {
		if a.attempted {
			summary.Add(a.result)
		}
	}
	return summary, nil
}

// replyTo runs claim, re-read, generate, send and record for one lead.
// attempted is false when the lead was skipped without a reply attempt.
func (d *AutoReplyDispatcher) replyTo(
	ctx context.Context,
	tenant domain.TenantSyncProfile,
	accessToken string,
	settings domain.AutoReplySettings,
	lead domain.Lead,
) (attempted bool, err error) {
	claimed, err := d.cache.Claim(ctx, tenant.ID, lead.ID)
	if err != nil {
		return true, fmt.Errorf("claim lead %s: %w", lead.ID, err)
	}
	if !claimed {
		return false, nil
	}

	keepClaim := false
	defer func() {
		if keepClaim {
			return
		}
		if relErr := d.cache.Release(context.WithoutCancel(ctx), tenant.ID, lead.ID); relErr != nil {
			logger.Warn("autoreply: release claim for lead %s: %v", lead.ID, relErr)
		}
	}()

	// The durable flag is authoritative across processes.
	current, err := d.leads.Get(ctx, tenant.ID, lead.ID)
	if err != nil {
		return true, fmt.Errorf("load lead %s: %w", lead.ID, err)
	}
	if !current.AwaitingReply() {
		return false, nil
	}

	body, err := d.generator.GenerateReply(ctx, driven.ReplyRequest{
		Content: current.Body,
		Subject: current.Subject,
		Sender:  current.SenderAddress,
		Tone:    settings.Tone,
		Length:  settings.Length,
	})
	if err == nil && strings.TrimSpace(body) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		logger.Warn("autoreply: generate reply for lead %s: %v", lead.ID, err)
		return true, wrapIfNot(err, domain.ErrReplyGeneration)
	}

	err = d.sender.SendReply(ctx, accessToken, driven.OutgoingReply{
		From:      tenant.MailboxAddress,
		To:        current.SenderAddress,
		Subject:   replySubject(current.Subject),
		Body:      body,
		InReplyTo: current.ID,
	})
	if err != nil {
		logger.Warn("autoreply: send reply for lead %s: %v", lead.ID, err)
		if errors.Is(err, domain.ErrSendUnauthorized) || errors.Is(err, domain.ErrSendForbidden) {
			return true, err
		}
		return true, wrapIfNot(err, domain.ErrReplySend)
	}

	// The reply is out; from here on the claim must survive any failure.
	keepClaim = true

	err = d.leads.MarkAutoReplied(context.WithoutCancel(ctx), tenant.ID, lead.ID, d.now())
	switch {
	case errors.Is(err, domain.ErrAlreadyReplied):
		logger.Warn("autoreply: lead %s was marked replied concurrently", lead.ID)
		return true, nil
	case err != nil:
		logger.Error("autoreply: reply sent but not recorded for lead %s: %v", lead.ID, err)
		return true, fmt.Errorf("record reply for lead %s: %w", lead.ID, err)
	}

	logger.Debug("autoreply: replied to lead %s", lead.ID)
	return true, nil
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}

func wrapIfNot(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
