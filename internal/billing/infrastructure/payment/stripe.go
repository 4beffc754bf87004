package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// Stripe test-mode payment methods. Raw card numbers never leave the process.
const (
	testPaymentMethodVisa     = "pm_card_visa"
	testPaymentMethodDeclined = "pm_card_chargeDeclined"
	declineTestCard           = "4000000000000002"
)

// StripeGateway confirms a PaymentIntent per charge.
type StripeGateway struct {
	paymentMethodFor func(domain.PaymentDetails) string
}

// NewStripeGateway configures the Stripe client with apiKey.
func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{paymentMethodFor: testPaymentMethod}
}

// Charge creates and confirms a PaymentIntent for the charge amount.
func (g *StripeGateway) Charge(ctx context.Context, charge domain.Charge) (domain.Receipt, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(charge.AmountCents()),
		Currency:      stripe.String(strings.ToLower(charge.Currency)),
		PaymentMethod: stripe.String(g.paymentMethodFor(charge.Payment)),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(charge.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: chargeMetadata(charge),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return domain.Receipt{}, mapStripeError(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return domain.Receipt{}, &domain.PaymentDeclinedError{
			Code:   string(pi.Status),
			Reason: "payment was not completed",
		}
	}

	return domain.Receipt{
		Reference: pi.ID,
		Amount:    charge.Amount,
		Currency:  charge.Currency,
		Last4:     charge.Payment.Last4(),
	}, nil
}

// chargeMetadata tags the PaymentIntent with the account and plan. The test
// payment methods carry no billing details, so a given billing address is
// recorded here too.
func chargeMetadata(charge domain.Charge) map[string]string {
	meta := map[string]string{
		"account_id": charge.AccountID.String(),
		"plan":       string(charge.Plan),
		"period":     string(charge.Period),
	}
	addr := charge.Payment.Address.Normalized()
	for key, v := range map[string]string{
		"billing_line1":       addr.Line1,
		"billing_city":        addr.City,
		"billing_postal_code": addr.PostalCode,
		"billing_country":     addr.Country,
	} {
		if v != "" {
			meta[key] = v
		}
	}
	return meta
}

// mapStripeError turns card errors into declines; anything else is a
// gateway failure.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		code := string(stripeErr.DeclineCode)
		if code == "" {
			code = string(stripeErr.Code)
		}
		return &domain.PaymentDeclinedError{Code: code, Reason: stripeErr.Msg}
	}
	return fmt.Errorf("stripe: %w", err)
}

func testPaymentMethod(p domain.PaymentDetails) string {
	if p.NormalizedCardNumber() == declineTestCard {
		return testPaymentMethodDeclined
	}
	return testPaymentMethodVisa
}

var _ domain.PaymentGateway = (*StripeGateway)(nil)
