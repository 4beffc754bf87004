package mcp

import (
	"context"
	"errors"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	supportApp "github.com/felixgeelhaar/consulta/internal/support/application"
	supportDomain "github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/felixgeelhaar/mcp-go"
)

type supportSessionInput struct {
	SessionToken string `json:"session_token,omitempty"`
}

type openTicketInput struct {
	SessionToken string `json:"session_token" jsonschema:"required"`
	Subject      string `json:"subject" jsonschema:"required"`
	Category     string `json:"category,omitempty"`
	Priority     string `json:"priority,omitempty"`
	Description  string `json:"description" jsonschema:"required"`
}

func registerSupportTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("support.level").
		Description("Get the support level and channels available to the caller").
		Handler(func(ctx context.Context, input supportSessionInput) (levelView, error) {
			if input.SessionToken == "" {
				return toLevelView(supportDomain.LevelFor(billingDomain.AnonymousCapabilities().SupportTier)), nil
			}
			if app.Support == nil {
				return levelView{}, errors.New("support level requires database connection")
			}
			accountID, err := caller(app, input.SessionToken)
			if err != nil {
				return levelView{}, err
			}
			level, err := app.Support.Level(ctx, accountID)
			if err != nil {
				return levelView{}, err
			}
			return toLevelView(level), nil
		})

	srv.Tool("support.open_ticket").
		Description("Open a support ticket. Category is technical, billing, account, feature or other; priority is low, medium, high or urgent").
		Handler(func(ctx context.Context, input openTicketInput) (ticketView, error) {
			if app.Support == nil {
				return ticketView{}, errors.New("support tickets require database connection")
			}
			accountID, err := requireCaller(app, input.SessionToken)
			if err != nil {
				return ticketView{}, err
			}
			ticket, err := app.Support.OpenTicket(ctx, supportApp.OpenTicketCommand{
				AccountID:   accountID,
				Subject:     input.Subject,
				Category:    input.Category,
				Priority:    input.Priority,
				Description: input.Description,
			})
			if err != nil {
				return ticketView{}, err
			}
			if app.Flush != nil {
				_ = app.Flush(ctx)
			}
			return toTicketView(ticket), nil
		})

	srv.Tool("support.list_tickets").
		Description("List the caller's support tickets, newest first").
		Handler(func(ctx context.Context, input supportSessionInput) ([]ticketView, error) {
			if app.Support == nil {
				return nil, errors.New("support tickets require database connection")
			}
			accountID, err := requireCaller(app, input.SessionToken)
			if err != nil {
				return nil, err
			}
			tickets, err := app.Support.ListTickets(ctx, accountID)
			if err != nil {
				return nil, err
			}
			views := make([]ticketView, 0, len(tickets))
			for _, t := range tickets {
				views = append(views, toTicketView(t))
			}
			return views, nil
		})

	return nil
}
