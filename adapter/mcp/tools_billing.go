package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/consulta/internal/billing/application/commands"
	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/felixgeelhaar/mcp-go"
)

type billingSessionInput struct {
	SessionToken string `json:"session_token,omitempty"`
}

type billingCheckoutInput struct {
	SessionToken   string `json:"session_token" jsonschema:"required"`
	Plan           string `json:"plan" jsonschema:"required"`
	Period         string `json:"period,omitempty"`
	CardholderName string `json:"cardholder_name" jsonschema:"required"`
	CardNumber     string `json:"card_number" jsonschema:"required"`
	Expiry         string `json:"expiry" jsonschema:"required"`
	CVV            string `json:"cvv" jsonschema:"required"`
	AddressLine1   string `json:"address_line1,omitempty"`
	City           string `json:"city,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	Country        string `json:"country,omitempty"`
}

func (in billingCheckoutInput) paymentDetails() billingDomain.PaymentDetails {
	return billingDomain.PaymentDetails{
		CardholderName: in.CardholderName,
		CardNumber:     in.CardNumber,
		Expiry:         in.Expiry,
		CVV:            in.CVV,
		Address: billingDomain.Address{
			Line1:      in.AddressLine1,
			City:       in.City,
			PostalCode: in.PostalCode,
			Country:    in.Country,
		}.Normalized(),
	}
}

type checkoutView struct {
	Reference string        `json:"reference"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Last4     string        `json:"card_last4"`
	BilledTo  string        `json:"billed_to,omitempty"`
	Dashboard dashboardView `json:"subscription"`
}

func registerBillingTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("billing.plans").
		Description("List subscription plans with prices and what they unlock").
		Handler(func(ctx context.Context, input struct{}) ([]planView, error) {
			plans := billingDomain.Plans()
			views := make([]planView, 0, len(plans))
			for _, p := range plans {
				views = append(views, toPlanView(p))
			}
			return views, nil
		})

	srv.Tool("billing.entitlements").
		Description("Resolve the assistants, automation and support the caller may use. Without a session_token the caller is anonymous").
		Handler(func(ctx context.Context, input billingSessionInput) (capabilitiesView, error) {
			if input.SessionToken == "" {
				return toCapabilitiesView(billingDomain.AnonymousCapabilities()), nil
			}
			if app.Billing == nil {
				return capabilitiesView{}, errors.New("entitlements require database connection")
			}
			accountID, err := caller(app, input.SessionToken)
			if err != nil {
				return capabilitiesView{}, err
			}
			caps, err := app.Billing.Entitlements(ctx, accountID)
			if err != nil {
				return capabilitiesView{}, err
			}
			return toCapabilitiesView(caps), nil
		})

	srv.Tool("billing.dashboard").
		Description("Get the caller's plan, status, countdown to expiry and progress").
		Handler(func(ctx context.Context, input billingSessionInput) (dashboardView, error) {
			if app.Billing == nil {
				return dashboardView{}, errors.New("billing dashboard requires database connection")
			}
			accountID, err := requireCaller(app, input.SessionToken)
			if err != nil {
				return dashboardView{}, err
			}
			d, err := app.Billing.Dashboard(ctx, accountID, app.Clock())
			if err != nil {
				return dashboardView{}, err
			}
			return toDashboardView(d), nil
		})

	srv.Tool("billing.checkout").
		Description("Charge a card for a plan and activate it. Period is monthly (default) or annual").
		Handler(func(ctx context.Context, input billingCheckoutInput) (checkoutView, error) {
			if app.Checkout == nil {
				return checkoutView{}, errors.New("checkout requires database connection")
			}
			accountID, err := requireCaller(app, input.SessionToken)
			if err != nil {
				return checkoutView{}, err
			}
			if input.Period == "" {
				input.Period = string(billingDomain.BillingMonthly)
			}
			period, err := billingDomain.ParseBillingPeriod(input.Period)
			if err != nil {
				return checkoutView{}, err
			}

			payment := input.paymentDetails()
			result, err := app.Checkout.Handle(ctx, commands.CheckoutCommand{
				AccountID: accountID,
				PlanID:    billingDomain.PlanID(input.Plan),
				Period:    period,
				Payment:   payment,
			})
			if err != nil {
				return checkoutView{}, err
			}
			if app.Flush != nil {
				_ = app.Flush(ctx)
			}

			d, err := app.Billing.Dashboard(ctx, accountID, app.Clock())
			if err != nil {
				return checkoutView{}, err
			}
			return checkoutView{
				Reference: result.Receipt.Reference,
				Amount:    result.Receipt.Amount,
				Currency:  result.Receipt.Currency,
				Last4:     result.Receipt.Last4,
				BilledTo:  payment.Address.String(),
				Dashboard: toDashboardView(d),
			}, nil
		})

	return nil
}
