package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "leadsync://"

	// resourceLeadLimit caps the leads returned by the leads resource.
	resourceLeadLimit = 100
)

// registerResources registers the tenant resource templates.
func (s *Server) registerResources() {
	if s.ports.Leads != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "tenants/{tenantId}/leads",
			Name:        "tenant-leads",
			Description: "A tenant's most recent leads with priority and reply state",
			MIMEType:    "application/json",
		}, s.handleLeadsResource)
	}

	if s.ports.Controls != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "tenants/{tenantId}/settings",
			Name:        "tenant-settings",
			Description: "A tenant's auto-reply settings",
			MIMEType:    "application/json",
		}, s.handleSettingsResource)
	}
}

func (s *Server) handleLeadsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tenantID := extractTenantID(req.Params.URI, "/leads")
	if tenantID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	leads, err := s.ports.Leads.List(ctx, tenantID, resourceLeadLimit)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return jsonResource(req.Params.URI, leads)
}

func (s *Server) handleSettingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tenantID := extractTenantID(req.Params.URI, "/settings")
	if tenantID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	settings, err := s.ports.Controls.Settings(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return jsonResource(req.Params.URI, settings)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTenantID extracts the tenant ID from leadsync://tenants/{tenantId}<suffix>.
func extractTenantID(uri, suffix string) string {
	const prefix = uriScheme + "tenants/"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
