package cli

import (
	"fmt"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/spf13/cobra"
)

var plansVerbose bool

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List subscription plans",
	Long:  `List every plan with its monthly and annual price and what it unlocks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		plans := billingDomain.Plans()
		if a := GetApp(); a != nil && a.Billing != nil {
			plans = a.Billing.Plans()
		}

		tw := NewTable(out)
		fmt.Fprintln(tw, "PLAN\tMONTHLY\tANNUAL\tASSISTANTS\tAUTOMATION")
		for _, p := range plans {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				p.ID,
				Euros(p.MonthlyPrice),
				Euros(p.AnnualPrice()),
				Assistants(p.Assistants),
				Automation(p.AutomationQuota),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if !plansVerbose {
			return nil
		}
		for _, p := range plans {
			fmt.Fprintf(out, "\n%s (%s)\n", p.Name, p.ID)
			for _, f := range p.Features {
				fmt.Fprintf(out, "  - %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	plansCmd.Flags().BoolVar(&plansVerbose, "features", false, "list every feature of each plan")
	rootCmd.AddCommand(plansCmd)
}
