package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/felixgeelhaar/consulta/adapter/cli/account"
	cliBilling "github.com/felixgeelhaar/consulta/adapter/cli/billing"
	"github.com/felixgeelhaar/consulta/adapter/cli/mcp"
	"github.com/felixgeelhaar/consulta/adapter/cli/support"
	"github.com/felixgeelhaar/consulta/internal/app"
	"github.com/felixgeelhaar/consulta/pkg/config"
	"github.com/felixgeelhaar/consulta/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLoggerConfig())

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = observability.NewLogger(observability.LoggerConfig{
		Level:          cfg.LogLevel,
		Format:         observability.LogFormat(cfg.LogFormat),
		Output:         os.Stderr,
		ServiceName:    "consulta",
		ServiceVersion: cli.Version,
	})
	cli.SetLogger(logger)

	// Without a database only `plans` and `version` work.
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		cliApp = cli.NewApp(
			container.Identity,
			container.Billing,
			container.Checkout,
			container.Watcher,
			container.Support,
			container.SessionStore,
			container.SessionResolver,
			container.Sessions,
		)
		cliApp.SetFlush(container.DrainOutbox)
	}

	cli.SetApp(cliApp)

	cli.AddCommand(account.Cmd)
	cli.AddCommand(cliBilling.Cmd)
	cli.AddCommand(support.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.ExecuteContext(ctx)
}
