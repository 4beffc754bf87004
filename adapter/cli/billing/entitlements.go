package billing

import (
	"fmt"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/spf13/cobra"
)

var entitlementsCmd = &cobra.Command{
	Use:   "entitlements",
	Short: "Show which assistants and features you can use",
	Long: `Show the capabilities of your plan. Without a login this shows what
anonymous visitors get.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.CurrentAccountID(cmd.Context())
		if err != nil {
			return err
		}

		caps, err := app.Billing.Entitlements(cmd.Context(), accountID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if caps.Anonymous {
			fmt.Fprintln(out, "Anonymous visitor")
		} else {
			fmt.Fprintf(out, "Plan:       %s\n", caps.Plan)
		}
		fmt.Fprintf(out, "Assistants: %s\n", cli.Assistants(caps.Assistants))
		fmt.Fprintf(out, "Automation: %s\n", cli.Automation(caps.AutomationQuota))
		fmt.Fprintf(out, "Support:    %s\n", caps.SupportTier)
		if caps.PhoneSupport {
			fmt.Fprintln(out, "Phone support included")
		}
		if caps.DedicatedSupport {
			fmt.Fprintln(out, "Dedicated support included")
		}
		return nil
	},
}
