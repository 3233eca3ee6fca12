package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// DefaultTimeout bounds one collaborator call.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error response is kept in messages.
const maxErrorBody = 512

// Options configure a collaborator client.
type Options struct {
	// URL is the collaborator endpoint.
	URL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	// Limiter is shared across clients to bound total outbound calls.
	Limiter *RateLimiter
}

// StatusError is a non-2xx collaborator response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

type client struct {
	url     string
	apiKey  string
	http    *http.Client
	limiter *RateLimiter
}

func newClient(opts Options) client {
	c := client{
		url:     opts.URL,
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		limiter: opts.Limiter,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.limiter == nil {
		c.limiter = NewRateLimiter(DefaultRateLimit)
	}
	return c
}

// postJSON sends in as JSON and decodes a 2xx body into out (if non-nil).
// 429 responses set the limiter backoff and wrap domain.ErrRateLimited.
func (c client) postJSON(ctx context.Context, in, out any) error {
	if c.url == "" {
		return fmt.Errorf("%w: collaborator url", domain.ErrMissingConfig)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp.Header, c.limiter.now())
		c.limiter.Backoff(wait)
		return fmt.Errorf("%w: retry after %s", domain.ErrRateLimited, wait)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
