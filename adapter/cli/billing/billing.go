package billing

import "github.com/spf13/cobra"

// Cmd is the billing command group.
var Cmd = &cobra.Command{
	Use:   "billing",
	Short: "Subscription status, entitlements and checkout",
	Long:  `Inspect your subscription and what it unlocks, or buy a plan.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(entitlementsCmd)
	Cmd.AddCommand(checkoutCmd)
	Cmd.AddCommand(watchCmd)
}
