package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/leadsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// --- Fake collaborators shared by the orchestration tests ---

// fakeRefresher implements driven.CredentialRefresher.
type fakeRefresher struct {
	mu      sync.Mutex
	errs    map[string]error
	rotated map[string]string
	calls   []string
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{errs: make(map[string]error), rotated: make(map[string]string)}
}

func (f *fakeRefresher) Refresh(_ context.Context, refresh string) (*domain.AccessCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, refresh)
	if err := f.errs[refresh]; err != nil {
		return nil, err
	}
	return &domain.AccessCredential{
		Token:          "access-" + refresh,
		Expiry:         time.Now().Add(time.Hour),
		RotatedRefresh: f.rotated[refresh],
	}, nil
}

// fakeMailbox implements driven.MailboxSyncClient keyed by tenant.
type fakeMailbox struct {
	mu       sync.Mutex
	leads    map[string][]domain.Lead
	errs     map[string]error
	requests []driven.MailboxSyncRequest
	block    chan struct{}
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{leads: make(map[string][]domain.Lead), errs: make(map[string]error)}
}

func (f *fakeMailbox) SyncMailbox(ctx context.Context, req driven.MailboxSyncRequest) (*driven.MailboxSyncResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block
	err := f.errs[req.TenantID]
	leads := append([]domain.Lead(nil), f.leads[req.TenantID]...)
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &driven.MailboxSyncResult{NewLeads: leads, Count: len(leads)}, nil
}

func (f *fakeMailbox) Requests() []driven.MailboxSyncRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]driven.MailboxSyncRequest(nil), f.requests...)
}

// fakeGenerator implements driven.ReplyGenerator.
type fakeGenerator struct {
	mu    sync.Mutex
	err   error
	calls []driven.ReplyRequest
	delay time.Duration
}

func (f *fakeGenerator) GenerateReply(_ context.Context, req driven.ReplyRequest) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return "Thanks for reaching out about " + req.Subject, nil
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeSender implements driven.ReplySender and counts sends per recipient.
type fakeSender struct {
	mu    sync.Mutex
	err   error
	errTo map[string]error
	sent  []driven.OutgoingReply
	total atomic.Int32
}

func newFakeSender() *fakeSender {
	return &fakeSender{errTo: make(map[string]error)}
}

func (f *fakeSender) SendReply(_ context.Context, _ string, reply driven.OutgoingReply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errTo[reply.To]; err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, reply)
	f.total.Add(1)
	return nil
}

func (f *fakeSender) SentTo(to string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.sent {
		if r.To == to {
			n++
		}
	}
	return n
}

// failingLeadStore wraps a memory store and fails MarkAutoReplied.
type failingLeadStore struct {
	*memory.LeadStore
	markErr error
}

func (s *failingLeadStore) MarkAutoReplied(ctx context.Context, tenantID, leadID string, at time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	return s.LeadStore.MarkAutoReplied(ctx, tenantID, leadID, at)
}

// heldLeases implements driven.SyncLeaseStore with every tenant leased
// elsewhere.
type heldLeases struct{}

func (heldLeases) Acquire(context.Context, string, string, time.Duration) (bool, error) {
	return false, nil
}
func (heldLeases) Release(context.Context, string, string) error { return nil }

var errTransient = errors.New("connection reset by peer")

// Ensure fakes implement interfaces
var (
	_ driven.CredentialRefresher = (*fakeRefresher)(nil)
	_ driven.MailboxSyncClient   = (*fakeMailbox)(nil)
	_ driven.ReplyGenerator      = (*fakeGenerator)(nil)
	_ driven.ReplySender         = (*fakeSender)(nil)
	_ driven.LeadStore           = (*failingLeadStore)(nil)
	_ driven.SyncLeaseStore      = heldLeases{}
)

// harness wires an orchestrator to memory stores and fakes.
type harness struct {
	tenants   *memory.TenantStore
	leads     *memory.LeadStore
	settings  *memory.SettingsStore
	cache     *memory.ProcessedLeadCache
	leases    *memory.LeaseStore
	refresher *fakeRefresher
	mailbox   *fakeMailbox
	generator *fakeGenerator
	sender    *fakeSender
	orch      *SweepOrchestrator
	now       time.Time
}

// harnessNow is a Monday inside business hours.
var harnessNow = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func newHarness() *harness {
	h := &harness{
		tenants:   memory.NewTenantStore(),
		leads:     memory.NewLeadStore(),
		settings:  memory.NewSettingsStore(),
		cache:     memory.NewProcessedLeadCache(time.Hour),
		leases:    memory.NewLeaseStore(),
		refresher: newFakeRefresher(),
		mailbox:   newFakeMailbox(),
		generator: &fakeGenerator{},
		sender:    newFakeSender(),
		now:       harnessNow,
	}
	h.orch = h.build(nil)
	return h
}

func (h *harness) build(leads driven.LeadStore) *SweepOrchestrator {
	if leads == nil {
		leads = h.leads
	}
	o := NewSweepOrchestrator(SweepDeps{
		Tenants:   h.tenants,
		Leads:     leads,
		Settings:  h.settings,
		Cache:     h.cache,
		Refresher: h.refresher,
		Mailbox:   h.mailbox,
		Generator: h.generator,
		Sender:    h.sender,
		Leases:    h.leases,
	}, SweepOptions{BatchPause: -1})
	o.now = func() time.Time { return h.now }
	o.replies.now = o.now
	return o
}

func (h *harness) addTenant(id string) {
	err := h.tenants.Save(context.Background(), domain.TenantSyncProfile{
		ID:                id,
		MailboxAddress:    id + "@example.com",
		RefreshCredential: "rt-" + id,
		AutoSyncEnabled:   true,
	})
	if err != nil {
		panic(err)
	}
}

func (h *harness) enableAutoReply(id string) {
	s := domain.DefaultAutoReplySettings()
	s.Enabled = true
	if err := h.settings.Save(context.Background(), id, s); err != nil {
		panic(err)
	}
}

func lead(id, tenantID string, p domain.PriorityStatus) domain.Lead {
	return domain.Lead{
		ID:             id,
		TenantID:       tenantID,
		SenderAddress:  id + "@customer.test",
		Subject:        "Pricing for " + id,
		Body:           "Hi, can you send pricing?",
		PriorityStatus: p,
		ReceivedAt:     harnessNow.Add(-time.Hour),
	}
}

func confidence(v float64) *float64 { return &v }

// panicOn panics for one tenant and delegates otherwise.
type panicOn struct {
	tenant string
	next   driven.MailboxSyncClient
}

func (p panicOn) SyncMailbox(ctx context.Context, req driven.MailboxSyncRequest) (*driven.MailboxSyncResult, error) {
	if req.TenantID == p.tenant {
		panic("mailbox client bug")
	}
	return p.next.SyncMailbox(ctx, req)
}
