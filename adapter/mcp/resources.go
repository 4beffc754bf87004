package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	supportDomain "github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose the plan catalog and
// support levels.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Resource("consulta://plans").
		Name("Plans").
		Description("Every subscription plan with monthly and annual prices").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			plans := billingDomain.Plans()
			views := make([]planView, 0, len(plans))
			for _, p := range plans {
				views = append(views, toPlanView(p))
			}
			return jsonResource(uri, views)
		})

	srv.Resource("consulta://support/levels").
		Name("Support Levels").
		Description("Support channels from self-serve to corporate premium").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			levels := supportDomain.Levels()
			views := make([]levelView, 0, len(levels))
			for _, l := range levels {
				views = append(views, toLevelView(l))
			}
			return jsonResource(uri, views)
		})

	srv.Resource("consulta://entitlements/anonymous").
		Name("Anonymous Entitlements").
		Description("What a visitor without an account may use").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			return jsonResource(uri, toCapabilitiesView(billingDomain.AnonymousCapabilities()))
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
