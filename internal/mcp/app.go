package mcp

import (
	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/felixgeelhaar/consulta/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
// MCP callers identify themselves per request with a session token, so the
// file-backed session of the local CLI is not attached.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.Identity,
		container.Billing,
		container.Checkout,
		container.Watcher,
		container.Support,
		nil,
		nil,
		container.Sessions,
	)
	cliApp.SetFlush(container.DrainOutbox)
	return cliApp
}
