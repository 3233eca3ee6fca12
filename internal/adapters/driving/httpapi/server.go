package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// ErrMissingPort is returned when a required port is not provided.
var ErrMissingPort = errors.New("httpapi: required port missing")

// TokenVerifier returns the tenant ID a session token belongs to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// LeadLister reads a tenant's leads.
type LeadLister interface {
	List(ctx context.Context, tenantID string, limit int) ([]domain.Lead, error)
}

// Ports contains the services the API calls.
type Ports struct {
	Sweeper  driving.Sweeper
	Syncer   driving.TenantSyncer
	Controls driving.AutoReplyController
	Leads    LeadLister
	Tokens   TokenVerifier

	// SweepSecret guards POST /api/sweep. Empty disables the route.
	SweepSecret string
}

// Validate checks that all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Sweeper == nil:
		return fmt.Errorf("%w: sweeper", ErrMissingPort)
	case p.Syncer == nil:
		return fmt.Errorf("%w: syncer", ErrMissingPort)
	case p.Controls == nil:
		return fmt.Errorf("%w: controls", ErrMissingPort)
	case p.Leads == nil:
		return fmt.Errorf("%w: leads", ErrMissingPort)
	case p.Tokens == nil:
		return fmt.Errorf("%w: tokens", ErrMissingPort)
	}
	return nil
}

// Server is the HTTP API server.
type Server struct {
	ports  *Ports
	engine *gin.Engine
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{ports: ports, engine: engine}
	s.registerRoutes()
	return s, nil
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
		})

		api.POST("/sweep", SweepSecretMiddleware(s.ports.SweepSecret), s.handleSweep)

		tenant := api.Group("")
		tenant.Use(AuthMiddleware(s.ports.Tokens))
		{
			tenant.POST("/sync", s.handleSync)
			tenant.GET("/sync/marker", s.handleMarker)
			tenant.GET("/status", s.handleStatus)
			tenant.GET("/leads", s.handleLeads)
			tenant.GET("/auto-reply", s.handleGetSettings)
			tenant.PUT("/auto-reply", s.handleUpdateSettings)
			tenant.PUT("/auto-reply/enabled", s.handleSetAutoReply)
			tenant.PUT("/auto-sync", s.handleSetAutoSync)
		}
	}
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
