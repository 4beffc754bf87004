package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/consulta/internal/app"
	mcpinternal "github.com/felixgeelhaar/consulta/internal/mcp"
	"github.com/felixgeelhaar/consulta/pkg/config"
	"github.com/felixgeelhaar/consulta/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an HTTP MCP server exposing billing and support tools.

Set MCP_AUTH_TOKEN to require a bearer token. Tools acting for an account
take the session_token printed by ` + "`consulta account login --print-token`" + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := observability.NewLogger(observability.LoggerConfig{
			Level:       cfg.LogLevel,
			Format:      observability.LogFormat(cfg.LogFormat),
			Output:      cmd.ErrOrStderr(),
			ServiceName: "consulta-mcp",
		})

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		cliApp := mcpinternal.NewCLIApp(container)
		err = mcpinternal.Serve(ctx, cfg, cliApp, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
