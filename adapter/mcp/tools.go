package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerCoreTools(srv, deps)

	if err := registerBillingTools(srv, deps); err != nil {
		return err
	}
	if err := registerSupportTools(srv, deps); err != nil {
		return err
	}

	return nil
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check CLI wiring health").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			if app == nil {
				return nil, errors.New("app not initialized")
			}
			status := "ok"
			if app.Billing == nil {
				status = "limited"
			}
			return map[string]string{"status": status}, nil
		})
}
