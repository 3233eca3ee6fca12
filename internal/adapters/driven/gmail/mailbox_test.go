package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

const plainMessage = "From: Buyer <buyer@example.com>\r\n" +
	"Subject: =?utf-8?q?Quote_for_caf=C3=A9?=\r\n" +
	"Date: Mon, 02 Mar 2026 09:00:00 +0000\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Can you send prices?\r\n"

const multipartMessage = "From: agent@example.com\r\n" +
	"Reply-To: Real Buyer <real@example.com>\r\n" +
	"Subject: Visit\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=b1\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n" +
	"<html><head><title>x</title></head><body><p>Hello&amp;welcome</p><div>Line two</div></body></html>\r\n" +
	"--b1--\r\n"

type fakeGmail struct {
	messages map[string]string
	labels   map[string][]string
	order    []string
	query    atomic.Value
	gets     atomic.Int32
	status   int
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error": {"code": %d, "message": "nope", "errors": [{"reason": "rateLimitExceeded"}]}}`, f.status)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/users/me/messages") {
		f.query.Store(r.URL.Query().Get("q"))
		var list []map[string]string
		for _, id := range f.order {
			list = append(list, map[string]string{"id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": list})
		return
	}

	f.gets.Add(1)
	id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	raw, ok := f.messages[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":           id,
		"labelIds":     f.labels[id],
		"internalDate": "1772442000000",
		"raw":          base64.URLEncoding.EncodeToString([]byte(raw)),
	})
}

func newFakeGmail(t *testing.T, f *fakeGmail) string {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv.URL + "/"
}

func TestMailbox_SyncMailbox(t *testing.T) {
	fake := &fakeGmail{
		messages: map[string]string{"m1": plainMessage, "m2": multipartMessage, "m3": plainMessage},
		labels:   map[string][]string{"m1": {"INBOX"}, "m2": {"INBOX"}, "m3": {"SPAM"}},
		order:    []string{"m1", "m2", "m3"},
	}
	mailbox := NewMailbox(nil, []Option{WithEndpoint(newFakeGmail(t, fake))})

	result, err := mailbox.SyncMailbox(context.Background(), driven.MailboxSyncRequest{
		TenantID:    "t1",
		AccessToken: "access-1",
		Lookback:    domain.Lookback(7),
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultQuery+" newer_than:7d", fake.query.Load())
	require.Len(t, result.NewLeads, 2)
	assert.Equal(t, 2, result.Count)

	first := result.NewLeads[0]
	assert.Equal(t, "gmail:t1:m1", first.ID)
	assert.Equal(t, "t1", first.TenantID)
	assert.Equal(t, "buyer@example.com", first.SenderAddress)
	assert.Equal(t, "Quote for café", first.Subject)
	assert.Equal(t, "Can you send prices?", first.Body)
	assert.Equal(t, domain.PriorityUnclassified, first.PriorityStatus)
	assert.Equal(t, time.UnixMilli(1772442000000).UTC(), first.ReceivedAt)

	second := result.NewLeads[1]
	assert.Equal(t, "real@example.com", second.SenderAddress)
	assert.Equal(t, "Hello&welcome\nLine two", second.Body)
}

func TestMailbox_SkipsKnownLeads(t *testing.T) {
	fake := &fakeGmail{
		messages: map[string]string{"m1": plainMessage, "m2": plainMessage},
		order:    []string{"m1", "m2"},
	}
	leads := memory.NewLeadStore()
	require.NoError(t, leads.RecordIngested(context.Background(), []domain.Lead{
		{ID: "gmail:t1:m1", TenantID: "t1", SenderAddress: "buyer@example.com"},
	}))
	mailbox := NewMailbox(leads, []Option{WithEndpoint(newFakeGmail(t, fake))}, WithQuery("label:leads"))

	result, err := mailbox.SyncMailbox(context.Background(), driven.MailboxSyncRequest{TenantID: "t1", AccessToken: "a"})
	require.NoError(t, err)

	require.Len(t, result.NewLeads, 1)
	assert.Equal(t, "gmail:t1:m2", result.NewLeads[0].ID)
	assert.Equal(t, int32(1), fake.gets.Load())
	assert.Equal(t, "label:leads newer_than:1d", fake.query.Load())
}

func TestMailbox_RateLimited(t *testing.T) {
	fake := &fakeGmail{status: http.StatusTooManyRequests}
	mailbox := NewMailbox(nil, []Option{WithEndpoint(newFakeGmail(t, fake))})

	_, err := mailbox.SyncMailbox(context.Background(), driven.MailboxSyncRequest{TenantID: "t1", AccessToken: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMailboxSync)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.False(t, domain.IsReauthRequired(err))
}

type countingLimiter struct{ n atomic.Int32 }

func (l *countingLimiter) Wait(context.Context) error {
	l.n.Add(1)
	return nil
}

func TestMailbox_UsesLimiter(t *testing.T) {
	fake := &fakeGmail{messages: map[string]string{"m1": plainMessage}, order: []string{"m1"}}
	limiter := &countingLimiter{}
	mailbox := NewMailbox(nil, []Option{WithEndpoint(newFakeGmail(t, fake))}, WithLimiter(limiter))

	_, err := mailbox.SyncMailbox(context.Background(), driven.MailboxSyncRequest{TenantID: "t1", AccessToken: "a"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), limiter.n.Load())
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<style>p{}</style><p>One</p><!-- c --><br/>Two &lt;3<script>x()</script>")
	assert.Equal(t, "One\nTwo <3", got)
}
