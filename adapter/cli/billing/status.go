package billing

import (
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	billingApp "github.com/felixgeelhaar/consulta/internal/billing/application"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your subscription dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.RequireAccount(cmd.Context())
		if err != nil {
			return err
		}

		dash, err := app.Billing.Dashboard(cmd.Context(), accountID, app.Clock())
		if err != nil {
			return err
		}
		printDashboard(cmd.OutOrStdout(), dash)
		return nil
	},
}

func printDashboard(out io.Writer, d billingApp.Dashboard) {
	period := string(d.Period)
	if period == "" {
		period = "trial"
	}
	fmt.Fprintf(out, "Plan:       %s (%s)\n", d.Plan.Name, d.Plan.ID)
	fmt.Fprintf(out, "Status:     %s\n", d.Status)
	fmt.Fprintf(out, "Period:     %s\n", period)
	fmt.Fprintf(out, "Expires:    %s\n", d.ExpiresAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, "Remaining:  %s\n", d.Countdown)
	fmt.Fprintf(out, "Progress:   %.0f%%\n", d.Progress)
	fmt.Fprintf(out, "Assistants: %s\n", cli.Assistants(d.Capabilities.Assistants))
	fmt.Fprintf(out, "Automation: %s\n", cli.Automation(d.Capabilities.AutomationQuota))
	fmt.Fprintf(out, "Support:    %s\n", d.Capabilities.SupportTier)
}
