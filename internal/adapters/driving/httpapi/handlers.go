package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

const (
	defaultLeadLimit = 50
	maxLeadLimit     = 500
)

// handleSweep runs one sweep synchronously.
// POST /api/sweep
func (s *Server) handleSweep(c *gin.Context) {
	summary, err := s.ports.Sweeper.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSweepResponse(summary))
}

// handleSync runs a client-triggered sync. A failed sync with an outcome is
// still a 200; the outcome carries the error.
// POST /api/sync
func (s *Server) handleSync(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
			return
		}
	}
	lookback := domain.Lookback(req.LookbackDays)
	if req.LookbackDays == 0 {
		lookback = domain.AutoSyncLookback
	}

	outcome, err := s.ports.Syncer.SyncTenant(c.Request.Context(), c.GetString(tenantKey), lookback)
	if outcome == nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOutcomeResponse(*outcome))
}

// GET /api/sync/marker
func (s *Server) handleMarker(c *gin.Context) {
	marker, err := s.ports.Syncer.Marker(c.Request.Context(), c.GetString(tenantKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, marker)
}

// GET /api/status
func (s *Server) handleStatus(c *gin.Context) {
	status, err := s.ports.Syncer.Status(c.Request.Context(), c.GetString(tenantKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GET /api/leads?limit=N
func (s *Server) handleLeads(c *gin.Context) {
	limit := defaultLeadLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput))
			return
		}
		limit = min(n, maxLeadLimit)
	}

	leads, err := s.ports.Leads.List(c.Request.Context(), c.GetString(tenantKey), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	c.JSON(http.StatusOK, LeadsResponse{Leads: leads})
}

// GET /api/auto-reply
func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.ports.Controls.Settings(c.Request.Context(), c.GetString(tenantKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PUT /api/auto-reply
func (s *Server) handleUpdateSettings(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := c.GetString(tenantKey)

	// Start from the stored settings so partial bodies only change the
	// fields they name.
	settings, err := s.ports.Controls.Settings(ctx, tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}
	if err := s.ports.Controls.UpdateSettings(ctx, tenantID, settings); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PUT /api/auto-reply/enabled
func (s *Server) handleSetAutoReply(c *gin.Context) {
	s.handleToggle(c, s.ports.Controls.SetAutoReplyEnabled)
}

// PUT /api/auto-sync
func (s *Server) handleSetAutoSync(c *gin.Context) {
	s.handleToggle(c, s.ports.Controls.SetAutoSyncEnabled)
}

func (s *Server) handleToggle(c *gin.Context, set func(ctx context.Context, tenantID string, enabled bool) error) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}
	if err := set(c.Request.Context(), c.GetString(tenantKey), *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}
