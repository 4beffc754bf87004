package billing

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/felixgeelhaar/consulta/internal/billing/application/commands"
	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/spf13/cobra"
)

var (
	checkoutPlan       string
	checkoutPeriod     string
	checkoutCardholder string
	checkoutCard       string
	checkoutExpiry     string
	checkoutCVV        string
	checkoutAddress    domain.Address
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Buy a plan with a card",
	Long: `Charge a card for a plan and activate it immediately.
Monthly plans run 30 days, annual plans 365 days at a 20% discount.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.RequireAccount(cmd.Context())
		if err != nil {
			return err
		}

		plan, err := domain.PlanByID(domain.PlanID(checkoutPlan))
		if err != nil {
			return err
		}
		period, err := domain.ParseBillingPeriod(checkoutPeriod)
		if err != nil {
			return err
		}

		p := cli.NewPrompter(cmd)
		if checkoutCardholder, err = p.ValueOr(checkoutCardholder, "Cardholder name"); err != nil {
			return err
		}
		if checkoutCard, err = p.SecretOr(checkoutCard, "Card number"); err != nil {
			return err
		}
		if checkoutExpiry, err = p.ValueOr(checkoutExpiry, "Expiry (MM/YY)"); err != nil {
			return err
		}
		if checkoutCVV, err = p.SecretOr(checkoutCVV, "CVV"); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Charging %s for %s (%s)...\n", cli.Euros(plan.PriceFor(period)), plan.Name, period)

		result, err := app.Checkout.Handle(cmd.Context(), commands.CheckoutCommand{
			AccountID: accountID,
			PlanID:    plan.ID,
			Period:    period,
			Payment: domain.PaymentDetails{
				CardholderName: checkoutCardholder,
				CardNumber:     checkoutCard,
				Expiry:         checkoutExpiry,
				CVV:            checkoutCVV,
				Address:        checkoutAddress.Normalized(),
			},
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Payment accepted: %s, card ending %s, reference %s\n",
			cli.Euros(result.Receipt.Amount), result.Receipt.Last4, result.Receipt.Reference)
		if !checkoutAddress.IsZero() {
			fmt.Fprintf(out, "Billed to: %s\n", checkoutAddress)
		}
		fmt.Fprintf(out, "%s is active until %s.\n", plan.Name, result.Subscription.ExpiresAt.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutPlan, "plan", "", "plan id, see `consulta plans`")
	checkoutCmd.Flags().StringVar(&checkoutPeriod, "period", string(domain.BillingMonthly), "monthly or annual")
	checkoutCmd.Flags().StringVar(&checkoutCardholder, "cardholder", "", "name on the card")
	checkoutCmd.Flags().StringVar(&checkoutCard, "card", "", "card number (prompted when omitted)")
	checkoutCmd.Flags().StringVar(&checkoutExpiry, "expiry", "", "expiry as MM/YY")
	checkoutCmd.Flags().StringVar(&checkoutCVV, "cvv", "", "security code (prompted when omitted)")
	checkoutCmd.Flags().StringVar(&checkoutAddress.Line1, "address-line1", "", "billing street address (optional)")
	checkoutCmd.Flags().StringVar(&checkoutAddress.City, "city", "", "billing city (optional)")
	checkoutCmd.Flags().StringVar(&checkoutAddress.PostalCode, "postal-code", "", "billing postal code (optional)")
	checkoutCmd.Flags().StringVar(&checkoutAddress.Country, "country", "", "billing country code, e.g. DE (optional)")
	_ = checkoutCmd.MarkFlagRequired("plan")
}
