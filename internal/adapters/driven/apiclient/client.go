// Package apiclient talks to a remote leadsync server on behalf of a
// client session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
)

// Ensure Client implements the interface.
var _ driven.SessionBackend = (*Client)(nil)

// DefaultTimeout bounds one API call. A manual sync runs the whole
// refresh, sync and reply pipeline server-side.
const DefaultTimeout = 5 * time.Minute

// Client calls the leadsync HTTP API with a tenant session token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the session.
func New(session driven.ClientSession) (*Client, error) {
	if session.ServerURL == "" || session.Token == "" {
		return nil, domain.ErrNotLoggedIn
	}
	if _, err := url.ParseRequestURI(session.ServerURL); err != nil {
		return nil, fmt.Errorf("%w: server url: %w", domain.ErrInvalidInput, err)
	}
	return &Client{
		baseURL: strings.TrimRight(session.ServerURL, "/"),
		token:   session.Token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// SyncTenant triggers a sync on the server. The tenant is taken from the
// session token; tenantID is only used to label the outcome.
func (c *Client) SyncTenant(ctx context.Context, tenantID string, lookback domain.Lookback) (*domain.SyncOutcome, error) {
	var resp httpapi.OutcomeResponse
	if err := c.do(ctx, http.MethodPost, "/api/sync", httpapi.SyncRequest{LookbackDays: lookback.Days()}, &resp); err != nil {
		return nil, err
	}
	if resp.TenantID == "" {
		resp.TenantID = tenantID
	}
	outcome := resp.Outcome()
	return &outcome, outcome.Err
}

// Marker polls the server-side sync marker.
func (c *Client) Marker(ctx context.Context, _ string) (domain.SyncMarker, error) {
	var marker domain.SyncMarker
	err := c.do(ctx, http.MethodGet, "/api/sync/marker", nil, &marker)
	return marker, err
}

// Status returns the tenant's orchestration status.
func (c *Client) Status(ctx context.Context) (*driving.SyncStatus, error) {
	var status driving.SyncStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Leads returns the newest leads of the session's tenant.
func (c *Client) Leads(ctx context.Context, limit int) ([]domain.Lead, error) {
	path := "/api/leads"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp httpapi.LeadsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Leads, nil
}

// SetAutoReplyEnabled flips the server-side auto-reply switch.
func (c *Client) SetAutoReplyEnabled(ctx context.Context, enabled bool) error {
	return c.do(ctx, http.MethodPut, "/api/auto-reply/enabled", httpapi.ToggleRequest{Enabled: &enabled}, nil)
}

// SetAutoSyncEnabled flips the server-side auto-sync switch.
func (c *Client) SetAutoSyncEnabled(ctx context.Context, enabled bool) error {
	return c.do(ctx, http.MethodPut, "/api/auto-sync", httpapi.ToggleRequest{Enabled: &enabled}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
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

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e httpapi.ErrorResponse
	if json.Unmarshal(raw, &e) == nil && (e.Code != "" || e.Error != "") {
		if err := domain.ErrorFromCode(e.Code, e.Error); err != nil {
			return err
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrUnauthenticated
	}
	return errors.New("server returned " + resp.Status)
}
