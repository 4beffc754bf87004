package account

import (
	"fmt"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your account and subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.RequireAccount(cmd.Context())
		if err != nil {
			return err
		}

		if !deleteYes {
			ok, err := cli.NewPrompter(cmd).Confirm("Delete your account and subscription permanently?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if err := app.Identity.DeleteAccount(cmd.Context(), accountID); err != nil {
			return err
		}
		if err := app.Sessions.Delete(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}
